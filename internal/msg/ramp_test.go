package msg

import "testing"

func TestRampAdvanceReachesTerminal(t *testing.T) {
	r := NewRamp(RampDown, 1000)
	done := false
	for i := 0; i < 20 && !done; i++ {
		r, done = r.Advance(100)
	}
	if !done {
		t.Fatalf("ramp did not complete")
	}
	if r.Value != 0 {
		t.Fatalf("expected silent terminal value, got %d", r.Value)
	}
}

func TestRampUpReachesFullScale(t *testing.T) {
	r := NewRamp(RampUp, 500)
	r, done := r.Advance(500)
	if !done || r.Value != RampMax {
		t.Fatalf("expected ramp-up to complete at full scale, got value=%d done=%v", r.Value, done)
	}
}

// TestRampReversalInvariant checks §8 property 4: reversing mid-ramp
// retains the current value and the remaining time becomes
// duration-remaining, so the reversed ramp has no discontinuity at
// the reversal instant.
func TestRampReversalInvariant(t *testing.T) {
	duration := uint64(1000)
	r := NewRamp(RampDown, duration)
	r, _ = r.Advance(400) // 40% through the down-ramp

	valueBeforeReversal := r.Value
	reversed := r.Reverse(RampUp, duration)

	if reversed.Value != valueBeforeReversal {
		t.Fatalf("reversal changed value: before=%d after=%d", valueBeforeReversal, reversed.Value)
	}
	if reversed.Remaining != duration-r.Remaining {
		t.Fatalf("expected remaining=%d, got %d", duration-r.Remaining, reversed.Remaining)
	}
}

func TestRampMonotonic(t *testing.T) {
	r := NewRamp(RampDown, 1000)
	prev := r.Value
	for i := 0; i < 10; i++ {
		var done bool
		r, done = r.Advance(100)
		if r.Value > prev {
			t.Fatalf("ramp-down value increased: prev=%d now=%d", prev, r.Value)
		}
		prev = r.Value
		if done {
			break
		}
	}
}
