package txerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatching(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    Kind
		matches bool
	}{
		{"same kind matches", New(DustOutputs, "output 0"), DustOutputs, true},
		{"different kind does not match", New(DustOutputs, "output 0"), FeeTooLarge, false},
		{"wrapped error still matches by kind", fmt.Errorf("context: %w", New(MissingUtxoInfo, "")), MissingUtxoInfo, true},
		{"plain error never matches", errors.New("boom"), DustOutputs, false},
	}

	for _, tt := range tests {
		if got := Is(tt.err, tt.kind); got != tt.matches {
			t.Errorf("%s: Is(err, %v) = %v, want %v", tt.name, tt.kind, got, tt.matches)
		}
	}
}

func TestErrorsIsIntegration(t *testing.T) {
	err := New(LockTimeTooEarly, "timestamp too early")
	sentinel := New(LockTimeTooEarly, "")
	if !errors.Is(err, sentinel) {
		t.Errorf("errors.Is should match same-kind sentinel")
	}
	if errors.Is(err, New(BlockHeightTooHigh, "")) {
		t.Errorf("errors.Is should not match different-kind sentinel")
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("underlying io failure")
	wrapped := Wrap(NoData, cause, "reading header")

	if !errors.Is(wrapped, cause) {
		t.Errorf("Wrap should preserve Unwrap chain to the cause")
	}
	if wrapped.Error() == "" {
		t.Errorf("Error() should not be empty")
	}
}

func TestWithDetail(t *testing.T) {
	err := New(InvalidIndex, "index out of range").WithDetail("index", 5).WithDetail("len", 3)
	if err.Detail["index"] != 5 || err.Detail["len"] != 3 {
		t.Errorf("WithDetail did not attach both keys, got %+v", err.Detail)
	}
}

func TestKindString(t *testing.T) {
	if DustOutputs.String() != "DustOutputs" {
		t.Errorf("DustOutputs.String() = %q", DustOutputs.String())
	}
	if Kind(999).String() != "Unknown" {
		t.Errorf("unrecognized Kind should stringify to Unknown")
	}
}
