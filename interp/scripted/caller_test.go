package scripted

import (
	"bytes"
	"testing"

	"github.com/core-coin/contract-testing/common"
	"github.com/core-coin/contract-testing/interp"
)

func interpContext() interp.Context {
	return interp.Context{Sender: common.AddressFromAccount(common.AccountAddress{})}
}

func TestTransferParamRoundTrip(t *testing.T) {
	to := common.BytesToAccountAddress([]byte{7, 7, 7})
	encoded := EncodeTransferParam(to, 12345)
	got, err := DecodeCallParam(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if got.Instruction != InstructionTransfer || got.TransferTo != to || got.TransferAmount != 12345 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCallParamRoundTrip(t *testing.T) {
	target := common.ContractAddress{Index: 1234, Subindex: 5678}
	encoded := EncodeCallParam(target, "nonexisting", []byte("payload"), 99)
	got, err := DecodeCallParam(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if got.Instruction != InstructionCall || got.CallContract != target || got.CallEntrypoint != "nonexisting" ||
		!bytes.Equal(got.CallParameter, []byte("payload")) || got.CallAmount != 99 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestFailAlwaysRejectsWithReturnValue(t *testing.T) {
	f := Fail{}
	step, err := f.Start(interpContext())
	if err != nil {
		t.Fatal(err)
	}
	if step.Done.RejectCode != -17 || !step.Done.HasReturnValue {
		t.Fatalf("got %+v", step.Done)
	}
}

func TestTrapAlwaysTraps(t *testing.T) {
	tr := Trap{}
	step, err := tr.Start(interpContext())
	if err != nil {
		t.Fatal(err)
	}
	if step.Done.Kind != interp.DoneTrap {
		t.Fatalf("expected DoneTrap, got %v", step.Done.Kind)
	}
}
