// SPDX-License-Identifier: EPL-2.0

package timing

// MapInputToOutputTime answers: the sample present at momentTime on the
// input timeline emerges from the stretcher's output at what time?
//
// last is the most recent schedule, which may still be in flight. The answer
// is only meaningful for moments whose output time falls at or after
// last.StartTime; the scheduler never asks about moments predating the
// tracked schedule. With no schedule yet, only the fixed lookahead applies.
//
// Two cases:
//   - The moment surfaces at or after the ramp completes: the delay is simply
//     the lookahead plus the ramp's end value.
//   - The moment surfaces inside the ramp: take its offset from the ramp
//     start under the pre-ramp delay, and compress (or expand) that offset by
//     the ramp's speed-change multiplier to get real output time.
//
// The stream is never played backward; delay values are assumed to move
// monotonically within one schedule.
func MapInputToOutputTime(momentTime, lookaheadDelay float64, last *StretchSchedule) float64 {
	if last == nil {
		return momentTime + lookaheadDelay
	}

	if momentTime+TotalDelay(lookaheadDelay, last.EndValue) >= last.EndTime {
		return momentTime + TotalDelay(lookaheadDelay, last.EndValue)
	}

	rampDuration := last.EndTime - last.StartTime
	speedChangeMultiplier := (rampDuration + (last.StartValue - last.EndValue)) / rampDuration
	offsetUnderStartDelay := momentTime + TotalDelay(lookaheadDelay, last.StartValue) - last.StartTime
	return last.StartTime + offsetUnderStartDelay/speedChangeMultiplier
}
