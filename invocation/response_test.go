package invocation

import "testing"

func TestEncodeReturnCodeRejectingSubCall(t *testing.T) {
	code := EncodeReturnCode(InvokeResponse{
		Outcome:        OutcomeFailure,
		Category:       FailureLogicError,
		RejectCode:     -17,
		HasReturnValue: true,
	})
	if code != 0x0100_ffff_ffef {
		t.Fatalf("got %#x, want 0x0100ffffffef", code)
	}
}

func TestEncodeReturnCodeFailureCategories(t *testing.T) {
	cases := []struct {
		category FailureCategory
		want     uint64
	}{
		{FailureInsufficientFunds, 0x0001_0000_0000},
		{FailureMissingAccount, 0x0002_0000_0000},
		{FailureMissingContract, 0x0003_0000_0000},
		{FailureInvalidEntrypoint, 0x0004_0000_0000},
		{FailureTrap, 0x0006_0000_0000},
	}
	for _, tc := range cases {
		outcome := OutcomeFailure
		if tc.category == FailureTrap {
			outcome = OutcomeTrap
		}
		got := EncodeReturnCode(InvokeResponse{Outcome: outcome, Category: tc.category})
		if got != tc.want {
			t.Errorf("category %v: got %#x, want %#x", tc.category, got, tc.want)
		}
	}
}

func TestReturnCodeRoundTrip(t *testing.T) {
	resp := InvokeResponse{Outcome: OutcomeFailure, Category: FailureLogicError, RejectCode: -42, HasReturnValue: true}
	code := EncodeReturnCode(resp)
	present, category, reject := DecodeReturnCode(code)
	if !present || category != FailureLogicError || reject != -42 {
		t.Fatalf("round trip mismatch: present=%v category=%v reject=%d", present, category, reject)
	}
}

func TestEncodeReturnCodeBytesLittleEndian(t *testing.T) {
	buf := EncodeReturnCodeBytes(InvokeResponse{Outcome: OutcomeSuccess})
	if len(buf) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(buf))
	}
	// present=1 lands in the 6th byte (index 5) of a little-endian uint64
	// whose value is 1<<40.
	if buf[5] != 0x01 {
		t.Fatalf("expected byte 5 to carry the presence flag, got %#x", buf[5])
	}
}
