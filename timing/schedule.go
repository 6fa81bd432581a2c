// SPDX-License-Identifier: EPL-2.0

package timing

// StretchSchedule describes the most recently scheduled linear ramp of the
// stretcher's delay value: StartValue at StartTime, EndValue at EndTime,
// interpolated linearly in between. Exactly one schedule is tracked at a
// time; a later transition either supersedes it with a fresh one or mutates
// it in place via Interrupt.
type StretchSchedule struct {
	StartTime  float64
	StartValue float64
	EndTime    float64
	EndValue   float64

	// NewSpeedStartInputTime is the input-timeline instant of the
	// transition event that created this schedule. The margin split on
	// the next SilenceEnd is measured from here.
	NewSpeedStartInputTime float64
}

// ValueAt evaluates the scheduled delay at time t. Before StartTime the
// delay holds StartValue, after EndTime it holds EndValue.
func (s *StretchSchedule) ValueAt(t float64) float64 {
	switch {
	case t <= s.StartTime:
		return s.StartValue
	case t >= s.EndTime:
		return s.EndValue
	default:
		frac := (t - s.StartTime) / (s.EndTime - s.StartTime)
		return s.StartValue + (s.EndValue-s.StartValue)*frac
	}
}

// Interrupt truncates the ramp so it ends at endValue at endTime instead of
// its original target. Interrupting at or after the original end time leaves
// the schedule untouched, so a completed ramp is never rewritten.
func (s *StretchSchedule) Interrupt(endValue, endTime float64) {
	if endTime >= s.EndTime {
		return
	}
	if endTime < s.StartTime {
		endTime = s.StartTime
	}
	s.EndTime = endTime
	s.EndValue = endValue
}

// TotalDelay is the combined data-path delay: the fixed lookahead plus the
// stretcher's delay value.
func TotalDelay(lookaheadDelay, stretcherDelay float64) float64 {
	return lookaheadDelay + stretcherDelay
}
