// SPDX-License-Identifier: EPL-2.0

package timing

import "testing"

func TestMapInputToOutputTime_NoSchedule(t *testing.T) {
	t.Parallel()

	if got := MapInputToOutputTime(2.0, 0.1, nil); !almost(got, 2.1) {
		t.Errorf("MapInputToOutputTime(2.0, 0.1, nil) = %v, want 2.1", got)
	}
	if got := MapInputToOutputTime(2.0, 0, nil); !almost(got, 2.0) {
		t.Errorf("MapInputToOutputTime(2.0, 0, nil) = %v, want 2.0", got)
	}
}

func TestMapInputToOutputTime_AfterRamp(t *testing.T) {
	t.Parallel()

	// Decay ramp 0.2 -> 0 over [1.0, 1.5]. A moment surfacing after the
	// ramp completes carries only the lookahead plus the end value.
	last := &StretchSchedule{StartTime: 1.0, StartValue: 0.2, EndTime: 1.5, EndValue: 0}

	if got := MapInputToOutputTime(2.0, 0.1, last); !almost(got, 2.1) {
		t.Errorf("MapInputToOutputTime(2.0) = %v, want 2.1", got)
	}
}

func TestMapInputToOutputTime_InsideRamp(t *testing.T) {
	t.Parallel()

	last := &StretchSchedule{StartTime: 1.0, StartValue: 0.2, EndTime: 1.5, EndValue: 0}

	// Moment 1.0 surfaces inside the ramp. Under the pre-ramp delay it
	// would surface at 1.3, an offset of 0.3 past the ramp start; the ramp
	// sheds 0.2 of delay over 0.5 of output time, compressing output
	// progress by (0.5+0.2)/0.5 = 1.4.
	got := MapInputToOutputTime(1.0, 0.1, last)
	want := 1.0 + 0.3/1.4
	if !almost(got, want) {
		t.Errorf("MapInputToOutputTime(1.0) = %v, want %v", got, want)
	}
}

func TestMapInputToOutputTime_ContinuousAtRampEnd(t *testing.T) {
	t.Parallel()

	last := &StretchSchedule{StartTime: 1.0, StartValue: 0.2, EndTime: 1.5, EndValue: 0}

	// The moment whose surfacing instant is exactly the ramp end must map
	// identically through both branches.
	boundary := last.EndTime - 0.1 // momentTime with lookahead 0.1, end value 0

	after := MapInputToOutputTime(boundary, 0.1, last)
	justInside := MapInputToOutputTime(boundary-1e-6, 0.1, last)

	if !almost(after, 1.5) {
		t.Errorf("boundary maps to %v, want 1.5", after)
	}
	if diff := after - justInside; diff < 0 || diff > 1e-5 {
		t.Errorf("mapping discontinuous at ramp end: %v vs %v", justInside, after)
	}
}

func TestMapInputToOutputTime_MonotoneInsideRamp(t *testing.T) {
	t.Parallel()

	last := &StretchSchedule{StartTime: 1.0, StartValue: 0.2, EndTime: 1.5, EndValue: 0}

	prev := MapInputToOutputTime(0.7, 0.1, last)
	for m := 0.71; m < 1.6; m += 0.01 {
		got := MapInputToOutputTime(m, 0.1, last)
		if got <= prev {
			t.Fatalf("mapping not strictly increasing at %v: %v <= %v", m, got, prev)
		}
		prev = got
	}
}

func TestMapInputToOutputTime_FlatSchedule(t *testing.T) {
	t.Parallel()

	// A zero-duration, zero-value schedule (the margin-less case) reduces
	// to the lookahead-only mapping.
	last := &StretchSchedule{StartTime: 1.0, StartValue: 0, EndTime: 1.0, EndValue: 0}

	if got := MapInputToOutputTime(3.0, 0.05, last); !almost(got, 3.05) {
		t.Errorf("MapInputToOutputTime(3.0) = %v, want 3.05", got)
	}
}

func TestMapInputToOutputTime_RisingRamp(t *testing.T) {
	t.Parallel()

	// Up-ramp 0 -> 0.2 over [1.0, 1.7]: delay grows, so output progress is
	// expanded rather than compressed while inside the ramp.
	last := &StretchSchedule{StartTime: 1.0, StartValue: 0, EndTime: 1.7, EndValue: 0.2}

	// momentTime 1.1: under the start delay it would surface at 1.2,
	// offset 0.2; multiplier (0.7-0.2)/0.7 stretches it to 0.28.
	got := MapInputToOutputTime(1.1, 0.1, last)
	want := 1.0 + 0.2/((0.7-0.2)/0.7)
	if !almost(got, want) {
		t.Errorf("MapInputToOutputTime(1.1) = %v, want %v", got, want)
	}
}
