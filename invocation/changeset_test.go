package invocation

import (
	"testing"

	"github.com/core-coin/contract-testing/common"
	"github.com/core-coin/contract-testing/state"
	"github.com/core-coin/contract-testing/store"
)

func newTestStoreWithAccount(balance common.Amount) (*store.ChainStateStore, common.AccountAddress) {
	s := store.New()
	addr := common.BytesToAccountAddress([]byte{1})
	s.CreateAccount(addr, balance)
	return s, addr
}

func TestEffectiveBalanceFallsThroughToStore(t *testing.T) {
	s, addr := newTestStoreWithAccount(100)
	cs := NewChangeSet(s)
	got, err := cs.EffectiveBalance(addr)
	if err != nil || got != 100 {
		t.Fatalf("got %d, %v", got, err)
	}
}

func TestApplyAccountDeltaVisibleBeforeCommit(t *testing.T) {
	s, addr := newTestStoreWithAccount(100)
	cs := NewChangeSet(s)
	cs.Save()
	if err := cs.ApplyAccountDelta(addr, NegativeDelta(30)); err != nil {
		t.Fatal(err)
	}
	got, err := cs.EffectiveBalance(addr)
	if err != nil || got != 70 {
		t.Fatalf("got %d, %v", got, err)
	}
	// store itself must remain untouched until CommitToStore.
	if b, _ := s.AccountBalance(addr); b != 100 {
		t.Fatalf("store mutated before commit: %d", b)
	}
}

func TestDiscardDropsFrameMutationsEntirely(t *testing.T) {
	s, addr := newTestStoreWithAccount(100)
	cs := NewChangeSet(s)
	cs.Save()
	if err := cs.ApplyAccountDelta(addr, NegativeDelta(30)); err != nil {
		t.Fatal(err)
	}
	if err := cs.Discard(); err != nil {
		t.Fatal(err)
	}
	got, err := cs.EffectiveBalance(addr)
	if err != nil || got != 100 {
		t.Fatalf("discard leaked a mutation: got %d, %v", got, err)
	}
}

func TestCommitFoldsDeltaIntoLowerFrame(t *testing.T) {
	s, addr := newTestStoreWithAccount(100)
	cs := NewChangeSet(s)
	cs.Save()
	if err := cs.ApplyAccountDelta(addr, NegativeDelta(30)); err != nil {
		t.Fatal(err)
	}
	if err := cs.Commit(); err != nil {
		t.Fatal(err)
	}
	if cs.Depth() != 1 {
		t.Fatalf("expected depth 1 after commit, got %d", cs.Depth())
	}
	got, err := cs.EffectiveBalance(addr)
	if err != nil || got != 70 {
		t.Fatalf("got %d, %v", got, err)
	}
	if err := cs.CommitToStore(); err != nil {
		t.Fatal(err)
	}
	if b, _ := s.AccountBalance(addr); b != 70 {
		t.Fatalf("store not updated after CommitToStore: %d", b)
	}
}

func TestApplyAccountDeltaRejectsUnderflowWithoutMutating(t *testing.T) {
	s, addr := newTestStoreWithAccount(10)
	cs := NewChangeSet(s)
	cs.Save()
	if err := cs.ApplyAccountDelta(addr, NegativeDelta(50)); err != common.ErrUnderflow {
		t.Fatalf("expected ErrUnderflow, got %v", err)
	}
	got, err := cs.EffectiveBalance(addr)
	if err != nil || got != 10 {
		t.Fatalf("a rejected delta must not mutate the frame: got %d, %v", got, err)
	}
}

func TestCommitRequiresAtLeastTwoFrames(t *testing.T) {
	s, _ := newTestStoreWithAccount(10)
	cs := NewChangeSet(s)
	if err := cs.Commit(); err != ErrNoFrameToCommit {
		t.Fatalf("expected ErrNoFrameToCommit, got %v", err)
	}
}

func TestModificationIndexIncreasesOnEachSetState(t *testing.T) {
	s := store.New()
	contractAddr := common.ContractAddress{Index: 0}
	s.PutContract(contractAddr, &store.Contract{State: state.New()})
	cs := NewChangeSet(s)
	cs.Save()

	if got := cs.CurrentModIndex(contractAddr); got != 0 {
		t.Fatalf("expected 0 before any mutation, got %d", got)
	}
	if err := cs.SetState(contractAddr, state.New().Put([]byte("k"), []byte("v"))); err != nil {
		t.Fatal(err)
	}
	if got := cs.CurrentModIndex(contractAddr); got != 1 {
		t.Fatalf("expected 1 after first SetState, got %d", got)
	}
	if err := cs.SetState(contractAddr, state.New()); err != nil {
		t.Fatal(err)
	}
	if got := cs.CurrentModIndex(contractAddr); got != 2 {
		t.Fatalf("expected 2 after second SetState, got %d", got)
	}
}

func TestEventLogDropsDiscardedFrameEvents(t *testing.T) {
	log := NewEventLog()
	log.Emit(ChainEvent{Kind: EventTransferred})
	log.Save()
	log.Emit(ChainEvent{Kind: EventUpdated})
	if err := log.Discard(); err != nil {
		t.Fatal(err)
	}
	if got := len(log.All()); got != 1 {
		t.Fatalf("expected 1 surviving event, got %d", got)
	}
}

func TestEventLogSplicesCommittedFrameEvents(t *testing.T) {
	log := NewEventLog()
	log.Emit(ChainEvent{Kind: EventTransferred})
	log.Save()
	log.Emit(ChainEvent{Kind: EventUpdated})
	if err := log.Commit(); err != nil {
		t.Fatal(err)
	}
	if got := len(log.All()); got != 2 {
		t.Fatalf("expected 2 events after commit, got %d", got)
	}
}
