// SPDX-License-Identifier: EPL-2.0

package timing

import "fmt"

// EventKind discriminates the two transition events.
type EventKind int

const (
	// SilenceStart fires when the envelope has stayed below the volume
	// threshold for the full hysteresis window.
	SilenceStart EventKind = iota
	// SilenceEnd fires when the envelope has stayed at or above the
	// threshold for the full hysteresis window.
	SilenceEnd
)

func (k EventKind) String() string {
	switch k {
	case SilenceStart:
		return "silence start"
	case SilenceEnd:
		return "silence end"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// TransitionEvent marks a silence boundary on the shared real-time clock.
type TransitionEvent struct {
	Kind EventKind
	Time float64
}

// SilenceDetector classifies a continuous envelope into alternating sounded
// and silent regions. A transition is only emitted after the new
// classification has held continuously for the duration threshold, converted
// from content time to real time at the speed active during the hold; this
// rejects transient dips and spikes. Initial state is sounded.
type SilenceDetector struct {
	threshold float64
	hold      float64 // content time
	speed     float64

	silent bool

	pending     bool
	pendingAt   float64
	pendingHold float64 // real time, captured when the hold began

	started  bool
	lastTime float64
}

// NewSilenceDetector creates a detector in the sounded state.
// initialSpeed is the playback speed used to convert the first hold window.
func NewSilenceDetector(volumeThreshold, durationThreshold, initialSpeed float64) *SilenceDetector {
	if initialSpeed <= 0 {
		initialSpeed = 1
	}
	return &SilenceDetector{
		threshold: volumeThreshold,
		hold:      durationThreshold,
		speed:     initialSpeed,
	}
}

// SetSpeed updates the playback speed used to convert subsequent hold
// windows. A hold already in progress keeps its captured duration.
func (d *SilenceDetector) SetSpeed(speed float64) {
	if speed > 0 {
		d.speed = speed
	}
}

// SetThresholds replaces both hysteresis parameters, for settings changes.
func (d *SilenceDetector) SetThresholds(volumeThreshold, durationThreshold float64) {
	d.threshold = volumeThreshold
	d.hold = durationThreshold
}

// Silent reports the current classification.
func (d *SilenceDetector) Silent() bool { return d.silent }

// Feed consumes one envelope reading at real time now and returns a
// transition event if the hysteresis condition completed. The event carries
// the exact instant the hold condition was satisfied, which may be slightly
// earlier than now when readings arrive in blocks.
//
// Readings must strictly advance the clock; a non-increasing timestamp is an
// upstream defect and is rejected, never reordered.
func (d *SilenceDetector) Feed(envelope, now float64) (*TransitionEvent, error) {
	if d.started && now <= d.lastTime {
		return nil, fmt.Errorf("%w: %v after %v", ErrNonMonotonicEvent, now, d.lastTime)
	}
	d.started = true
	d.lastTime = now

	below := envelope < d.threshold
	if below == d.silent {
		// Classification agrees with the current state; any hold in
		// progress was a transient.
		d.pending = false
		return nil, nil
	}

	if !d.pending {
		d.pending = true
		d.pendingAt = now
		d.pendingHold = d.hold / d.speed
	}

	if now-d.pendingAt < d.pendingHold {
		return nil, nil
	}

	d.silent = below
	d.pending = false

	ev := &TransitionEvent{Time: d.pendingAt + d.pendingHold}
	if d.silent {
		ev.Kind = SilenceStart
	} else {
		ev.Kind = SilenceEnd
	}
	return ev, nil
}

// Reset returns the detector to the initial sounded state.
func (d *SilenceDetector) Reset() {
	d.silent = false
	d.pending = false
	d.started = false
	d.lastTime = 0
}
