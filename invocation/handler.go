// Copyright 2020 by the Authors
// This file is part of the go-core library.
//
// The go-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-core library. If not, see <http://www.gnu.org/licenses/>.

package invocation

import (
	"github.com/core-coin/contract-testing/common"
	"github.com/core-coin/contract-testing/energy"
	"github.com/core-coin/contract-testing/interp"
	"github.com/core-coin/contract-testing/params"
	"github.com/core-coin/contract-testing/simconfig"
	"github.com/core-coin/contract-testing/simlog"
	"github.com/core-coin/contract-testing/store"
)

// ModuleRuntime resolves a (module, entrypoint) pair to a fresh
// interpreter instance. Implemented outside this package (by the chain
// package, backed by interp/scripted) so the Invocation Handler never
// depends on any particular interpreter technology (§1, §9, §11).
type ModuleRuntime interface {
	NewInterpreter(module common.ModuleReference, entrypoint common.EntrypointName) (interp.Interpreter, error)
	HasEntrypoint(module common.ModuleReference, entrypoint common.EntrypointName) bool
}

// Handler is the Invocation Handler (§2 component 3, §4.2): it owns the
// Change Set for one top-level invocation and drives the interpreter /
// Interrupt Resolver loop, grounded on the teacher's core/vm/cvm.go Call
// method (snapshot before the nested call, revert on failure) generalised
// from one flat StateDB to the explicit Change Set frame stack.
type Handler struct {
	store           *store.ChainStateStore
	runtime         ModuleRuntime
	rates           simconfig.ExchangeRates
	energyConstants simconfig.EnergyConstants
	log             *simlog.Logger
}

// NewHandler constructs a Handler bound to one chain state store.
func NewHandler(s *store.ChainStateStore, runtime ModuleRuntime, rates simconfig.ExchangeRates, ec simconfig.EnergyConstants) *Handler {
	return &Handler{store: s, runtime: runtime, rates: rates, energyConstants: ec, log: simlog.Root().With("component", "invocation")}
}

// InvokeEntrypointRequest bundles one invoke_entrypoint call's inputs
// (§3 InvocationData).
type InvokeEntrypointRequest struct {
	Invoker    common.AccountAddress
	Sender     common.Address
	Target     common.ContractAddress
	Entrypoint common.EntrypointName
	Parameter  common.OwnedParameter
	Amount     common.Amount
	Energy     uint64
}

// energyUsed converts the interpreter energy actually spent by one
// top-level invocation into the coarser chain-denominated unit a caller
// sees (§4.4, §6 energy_used).
func (h *Handler) energyUsed(budgeted, remaining uint64) EnergyUsed {
	return EnergyUsed(energy.ToChain(budgeted-remaining, h.energyConstants))
}

// InvokeTopLevel runs a fresh top-level invocation against a brand-new
// Change Set and Event Log, committing into the store on success and
// leaving the store untouched on any failure or trap (§4.2 step 8,
// §6 ContractUpdate).
func (h *Handler) InvokeTopLevel(req InvokeEntrypointRequest) (InvokeResponse, []ChainEvent, EnergyUsed, error) {
	cs := NewChangeSet(h.store)
	events := NewEventLog()

	resp, remaining, err := h.invokeEntrypoint(cs, events, req, 0)
	used := h.energyUsed(req.Energy, remaining)
	if err != nil {
		return InvokeResponse{}, nil, used, err
	}
	if resp.Outcome == OutcomeSuccess {
		if err := cs.CommitToStore(); err != nil {
			return InvokeResponse{}, nil, used, err
		}
		return resp, events.All(), used, nil
	}
	return resp, nil, used, nil
}

// InvokeReadOnly runs the same algorithm but always discards its outer
// frame regardless of outcome, the ContractInvoke simulation operation
// added in §4.6 of SPEC_FULL.md.
func (h *Handler) InvokeReadOnly(req InvokeEntrypointRequest) (InvokeResponse, []ChainEvent, EnergyUsed, error) {
	cs := NewChangeSet(h.store)
	events := NewEventLog()
	resp, remaining, err := h.invokeEntrypoint(cs, events, req, 0)
	used := h.energyUsed(req.Energy, remaining)
	return resp, events.All(), used, err
}

// invokeEntrypoint is the recursive core of §4.2's 8-step algorithm. depth
// counts nested cross-contract calls, bounded by params.CallCreateDepth.
// It returns the interpreter energy still remaining in budget alongside
// the response, so a caller servicing a Call interrupt can resume its own
// budget from exactly where the callee left off (§4.4, §8 monotonicity).
func (h *Handler) invokeEntrypoint(cs *ChangeSet, events *EventLog, req InvokeEntrypointRequest, depth int) (InvokeResponse, uint64, error) {
	if uint64(depth) > params.CallCreateDepth {
		return InvokeResponse{}, req.Energy, ErrCallDepthExceeded
	}

	// Step 1: resolve the target contract.
	_, ok := h.store.GetContract(req.Target)
	if !ok {
		return InvokeResponse{Outcome: OutcomeFailure, Category: FailureMissingContract}, req.Energy, nil
	}

	// Step 2: resolve the module and validate the entrypoint.
	moduleRef, err := cs.EffectiveModule(req.Target)
	if err != nil {
		return InvokeResponse{Outcome: OutcomeFailure, Category: FailureMissingContract}, req.Energy, nil
	}
	if !h.runtime.HasEntrypoint(moduleRef, req.Entrypoint) {
		return InvokeResponse{Outcome: OutcomeFailure, Category: FailureInvalidEntrypoint}, req.Energy, nil
	}

	// Step 3: push a fresh frame for this entrypoint's own mutations. The
	// amount transfer below is recorded inside this same frame so that a
	// later reject/trap discards the transfer along with everything else
	// the entrypoint did, instead of leaving it stranded in the caller's
	// frame.
	cs.Save()
	events.Save()

	// Step 4: move the transferred amount from sender to target's tentative
	// self-balance.
	if req.Amount > 0 {
		if req.Sender.IsAccount {
			if err := cs.ApplyAccountDelta(req.Sender.Account, NegativeDelta(req.Amount)); err != nil {
				cs.Discard()
				events.Discard()
				return InvokeResponse{Outcome: OutcomeFailure, Category: FailureInsufficientFunds}, req.Energy, nil
			}
		} else {
			if err := cs.ApplyContractDelta(req.Sender.Contract, NegativeDelta(req.Amount)); err != nil {
				cs.Discard()
				events.Discard()
				return InvokeResponse{Outcome: OutcomeFailure, Category: FailureInsufficientFunds}, req.Energy, nil
			}
		}
		if err := cs.ApplyContractDelta(req.Target, PositiveDelta(req.Amount)); err != nil {
			cs.Discard()
			events.Discard()
			return InvokeResponse{Outcome: OutcomeFailure, Category: FailureInsufficientFunds}, req.Energy, nil
		}
	}

	state, err := cs.EffectiveState(req.Target)
	if err != nil {
		cs.Discard()
		events.Discard()
		return InvokeResponse{Outcome: OutcomeFailure, Category: FailureMissingContract}, req.Energy, nil
	}

	// Step 5: start the interpreter.
	interpreter, err := h.runtime.NewInterpreter(moduleRef, req.Entrypoint)
	if err != nil {
		cs.Discard()
		events.Discard()
		return InvokeResponse{}, req.Energy, err
	}
	budget := energy.Interpreter(req.Energy)
	step, err := interpreter.Start(interp.Context{
		Sender:    req.Sender,
		Parameter: req.Parameter,
		Amount:    req.Amount,
		State:     state,
		Energy:    uint64(budget),
	})
	if err != nil {
		cs.Discard()
		events.Discard()
		return InvokeResponse{}, budget.Remaining(), err
	}

	// Step 6: service interrupts until the interpreter is done. The
	// modification index is captured before each interrupt is serviced and
	// compared against its value afterward, so the resumed interpreter can
	// be told whether its own state changed underneath it while the
	// interrupt (e.g. a reentrant Call back into this same contract) ran
	// (§3 Invariants, §4.2 step 7).
	for step.Outcome == interp.StepInterrupt {
		cost := h.energyConstants.BaseInterruptCost
		if step.Interrupt.Kind == interp.InterruptCall {
			cost = energy.InterruptCost(len(step.Interrupt.Parameter), h.energyConstants)
		}
		if err := budget.Charge(cost); err != nil {
			cs.Discard()
			events.Discard()
			return InvokeResponse{Outcome: OutcomeTrap}, budget.Remaining(), nil
		}
		entryIndex := cs.CurrentModIndex(req.Target)
		resp, resumeResp, err := h.resolveInterrupt(cs, events, req.Target, step.Interrupt, depth, req.Entrypoint, &budget)
		if err != nil {
			cs.Discard()
			events.Discard()
			return InvokeResponse{}, budget.Remaining(), err
		}
		_ = resp
		resumeResp.StateChanged = cs.CurrentModIndex(req.Target) != entryIndex
		step, err = interpreter.Resume(resumeResp)
		if err != nil {
			cs.Discard()
			events.Discard()
			return InvokeResponse{}, budget.Remaining(), err
		}
	}

	// Step 7/8: fold the interpreter's terminal result.
	switch step.Done.Kind {
	case interp.DoneSuccess:
		// A successful entrypoint always bumps its own contract's
		// modification index, even if the state value written back is
		// identical to what it already was (§4.2 step 7).
		if err := cs.SetState(req.Target, state); err != nil {
			return InvokeResponse{}, budget.Remaining(), err
		}
		newBalance, err := cs.EffectiveSelfBalance(req.Target)
		if err != nil {
			return InvokeResponse{}, budget.Remaining(), err
		}
		events.Emit(ChainEvent{Kind: EventUpdated, Address: req.Target, From: req.Sender, Amount: req.Amount, Entry: req.Entrypoint})
		if err := cs.Commit(); err != nil {
			return InvokeResponse{}, budget.Remaining(), err
		}
		if err := events.Commit(); err != nil {
			return InvokeResponse{}, budget.Remaining(), err
		}
		return InvokeResponse{
			Outcome:         OutcomeSuccess,
			ReturnValue:     step.Done.ReturnValue,
			HasReturnValue:  true,
			NewStateChanged: true,
			NewBalance:      newBalance,
		}, budget.Remaining(), nil
	case interp.DoneReject:
		cs.Discard()
		events.Discard()
		return InvokeResponse{
			Outcome:        OutcomeFailure,
			Category:       FailureLogicError,
			RejectCode:     step.Done.RejectCode,
			HasReturnValue: step.Done.HasReturnValue,
			ReturnValue:    step.Done.ReturnValue,
		}, budget.Remaining(), nil
	default: // interp.DoneTrap
		cs.Discard()
		events.Discard()
		return InvokeResponse{Outcome: OutcomeTrap}, budget.Remaining(), nil
	}
}

// resolveInterrupt is the Interrupt Resolver (§2 component 4, §4.3): it
// services exactly one interrupt, possibly recursing into
// invokeEntrypoint for a Call interrupt, and returns the interp.Response
// to resume the waiting interpreter with. budget is the calling
// invocation's live energy counter: a Call interrupt hands the sub-call
// whatever energy remains after the interrupt's own charge, then
// resynchronises budget to whatever the sub-call didn't spend, so a single
// logical energy counter threads through the whole call tree (§4.4).
// currentEntry is the entrypoint presently executing, consulted by
// serviceUpgrade to check the new module still exposes it.
func (h *Handler) resolveInterrupt(cs *ChangeSet, events *EventLog, caller common.ContractAddress, in interp.Interrupt, depth int, currentEntry common.EntrypointName, budget *energy.Interpreter) (InvokeResponse, interp.Response, error) {
	switch in.Kind {
	case interp.InterruptTransfer:
		resp := h.serviceTransfer(cs, events, caller, in)
		return resp, interp.Response{Succeeded: resp.Outcome == OutcomeSuccess, Code: EncodeReturnCode(resp)}, nil

	case interp.InterruptCall:
		sub := InvokeEntrypointRequest{
			Sender:     common.AddressFromContract(caller),
			Target:     in.Contract,
			Entrypoint: in.Entrypoint,
			Parameter:  in.Parameter,
			Amount:     in.Amount,
			Energy:     budget.Remaining(),
		}
		events.Emit(ChainEvent{Kind: EventInterrupted, Address: caller})
		resp, subRemaining, err := h.invokeEntrypoint(cs, events, sub, depth+1)
		*budget = energy.Interpreter(subRemaining)
		if err != nil {
			return InvokeResponse{}, interp.Response{}, err
		}
		events.Emit(ChainEvent{Kind: EventResumed, Address: caller, Success: resp.Outcome == OutcomeSuccess})
		return resp, interp.Response{Succeeded: resp.Outcome == OutcomeSuccess, ReturnValue: resp.ReturnValue, Code: EncodeReturnCode(resp)}, nil

	case interp.InterruptUpgrade:
		resp := h.serviceUpgrade(cs, events, caller, currentEntry, in)
		return resp, interp.Response{Succeeded: resp.Outcome == OutcomeSuccess}, nil

	case interp.InterruptQueryAccountBalance:
		balance, err := cs.EffectiveBalance(in.QueryAccount)
		if err != nil {
			resp := InvokeResponse{Outcome: OutcomeFailure, Category: FailureMissingAccount}
			return resp, interp.Response{Code: EncodeReturnCode(resp)}, nil
		}
		return InvokeResponse{Outcome: OutcomeSuccess}, interp.Response{Succeeded: true, Balance: balance}, nil

	case interp.InterruptQueryContractBalance:
		balance, err := cs.EffectiveSelfBalance(in.QueryContract)
		if err != nil {
			resp := InvokeResponse{Outcome: OutcomeFailure, Category: FailureMissingContract}
			return resp, interp.Response{Code: EncodeReturnCode(resp)}, nil
		}
		return InvokeResponse{Outcome: OutcomeSuccess}, interp.Response{Succeeded: true, Balance: balance}, nil

	case interp.InterruptQueryExchangeRates:
		return InvokeResponse{Outcome: OutcomeSuccess}, interp.Response{
			Succeeded: true,
			Rates: interp.ExchangeRatesView{
				EuroPerEnergyNumerator:     h.rates.EuroPerEnergy.Numerator,
				EuroPerEnergyDenominator:   h.rates.EuroPerEnergy.Denominator,
				MicroCCDPerEuroNumerator:   h.rates.MicroCCDPerEuro.Numerator,
				MicroCCDPerEuroDenominator: h.rates.MicroCCDPerEuro.Denominator,
			},
		}, nil

	case interp.InterruptQueryBlockTime:
		return InvokeResponse{Outcome: OutcomeSuccess}, interp.Response{Succeeded: true, BlockTime: h.store.BlockTime()}, nil

	default:
		resp := InvokeResponse{Outcome: OutcomeTrap}
		return resp, interp.Response{Code: EncodeReturnCode(resp)}, nil
	}
}

// serviceTransfer services a Transfer interrupt (§4.3): moving funds out of
// the calling contract's self-balance into an account. It saves its own
// frame first, mirroring the Call path's save-before-acting discipline, so
// a later fallible step added to either delta application would still roll
// back cleanly instead of leaving a partially-applied transfer behind.
func (h *Handler) serviceTransfer(cs *ChangeSet, events *EventLog, caller common.ContractAddress, in interp.Interrupt) InvokeResponse {
	cs.Save()
	events.Save()
	if !h.store.AccountExists(in.To) {
		cs.Discard()
		events.Discard()
		return InvokeResponse{Outcome: OutcomeFailure, Category: FailureMissingAccount}
	}
	if err := cs.ApplyContractDelta(caller, NegativeDelta(in.Amount)); err != nil {
		cs.Discard()
		events.Discard()
		return InvokeResponse{Outcome: OutcomeFailure, Category: FailureInsufficientFunds}
	}
	if err := cs.ApplyAccountDelta(in.To, PositiveDelta(in.Amount)); err != nil {
		cs.Discard()
		events.Discard()
		return InvokeResponse{Outcome: OutcomeFailure, Category: FailureInsufficientFunds}
	}
	events.Emit(ChainEvent{Kind: EventTransferred, Address: caller, To: in.To, Amount: in.Amount})
	cs.Commit()
	events.Commit()
	return InvokeResponse{Outcome: OutcomeSuccess}
}

// serviceUpgrade services an Upgrade interrupt (§4.3). Its failure modes —
// missing module, or a module that drops the entrypoint currently
// executing — never go through the 64-bit Call return-code encoding in the
// original ABI, so the simulator surfaces them as a plain unsuccessful
// interp.Response instead of a tagged category. On success it emits the
// Upgraded chain event (§4.5).
func (h *Handler) serviceUpgrade(cs *ChangeSet, events *EventLog, caller common.ContractAddress, currentEntry common.EntrypointName, in interp.Interrupt) InvokeResponse {
	mod, ok := h.store.GetModule(in.NewModule)
	if !ok {
		return InvokeResponse{Outcome: OutcomeFailure, Category: FailureMissingContract}
	}
	if !mod.HasEntrypoint(currentEntry) {
		return InvokeResponse{Outcome: OutcomeFailure, Category: FailureInvalidEntrypoint}
	}
	oldModule, err := cs.EffectiveModule(caller)
	if err != nil {
		return InvokeResponse{Outcome: OutcomeFailure, Category: FailureMissingContract}
	}
	if err := cs.SetModule(caller, in.NewModule); err != nil {
		return InvokeResponse{Outcome: OutcomeFailure, Category: FailureMissingContract}
	}
	events.Emit(ChainEvent{Kind: EventUpgraded, Address: caller, OldModule: oldModule, NewModule: in.NewModule})
	return InvokeResponse{Outcome: OutcomeSuccess}
}
