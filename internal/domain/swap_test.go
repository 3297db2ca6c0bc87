package domain

import "testing"

func TestSwapStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to SwapStatus
		want     bool
	}{
		{SwapPending, SwapAccepted, true},
		{SwapPending, SwapRejected, true},
		{SwapAccepted, SwapCompleted, true},
		{SwapPending, SwapCompleted, false},
		{SwapPending, SwapPending, false},
		{SwapRejected, SwapAccepted, false},
		{SwapCompleted, SwapPending, false},
		{SwapAccepted, SwapRejected, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestSwapStatusValid(t *testing.T) {
	for _, s := range []SwapStatus{SwapPending, SwapAccepted, SwapRejected, SwapCompleted} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if SwapStatus("archived").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}
