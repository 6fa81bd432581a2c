// SPDX-License-Identifier: EPL-2.0

package timing

import "fmt"

// StretcherControl is the scheduler's view of the delay line. The audio
// package's Stretcher satisfies it; tests substitute recorders.
type StretcherControl interface {
	ScheduleRamp(startValue, endValue, startTime, endTime float64)
	Interrupt(endValue, endTime float64)
	SetBaseDelay(value float64)
}

// RateSink is a settable playback-rate target: a live host's media element,
// or the offline Varispeed renderer.
type RateSink interface {
	SetRate(rate float64)
	Rate() float64
}

// StretchScheduler reacts to silence transitions: it switches the playback
// rate immediately and reprograms the stretcher's delay ramp so the margin
// before each silence end is played back smoothly at sounded pace instead of
// jumping. It owns the single tracked "last schedule" record; the time
// mapper reads it within the same synchronous step, so no locking is needed.
//
// All schedules are derived from absolute event timestamps, never from the
// previous schedule's delta alone, so repeated adjustments do not accumulate
// floating-point drift.
type StretchScheduler struct {
	settings  Settings
	stretcher StretcherControl
	sink      RateSink
	observer  Observer

	// last is nil until the first transition; the time mapper's
	// preconditions require knowing whether a schedule exists at all.
	last *StretchSchedule

	silent        bool
	started       bool
	lastEventTime float64

	stats Stats
}

// NewStretchScheduler wires the control path. The settings snapshot is
// normalized on the way in. observer may be nil.
func NewStretchScheduler(s Settings, stretcher StretcherControl, sink RateSink, observer Observer) *StretchScheduler {
	return &StretchScheduler{
		settings:  s.Normalize(),
		stretcher: stretcher,
		sink:      sink,
		observer:  observer,
	}
}

// Settings returns the active settings snapshot.
func (sc *StretchScheduler) Settings() Settings { return sc.settings }

// SetSettings replaces the settings snapshot. Derived delays applied to the
// pipeline are the SettingsController's job; the scheduler only uses the
// snapshot for future transitions.
func (sc *StretchScheduler) SetSettings(s Settings) {
	sc.settings = s.Normalize()
}

// Silent reports the logical regime as of the last processed transition.
func (sc *StretchScheduler) Silent() bool { return sc.silent }

// LastSchedule exposes the tracked schedule, nil before the first
// transition. Callers must not retain it across scheduler calls.
func (sc *StretchScheduler) LastSchedule() *StretchSchedule { return sc.last }

// Stats reports accumulated per-regime playback durations up to the last
// processed transition.
func (sc *StretchScheduler) Stats() Stats { return sc.stats }

// StatsAt reports accumulated durations including the span from the last
// transition up to time t, without mutating the running accounts.
func (sc *StretchScheduler) StatsAt(t float64) Stats {
	st := sc.stats
	if sc.started && t > sc.lastEventTime {
		st.add(t-sc.lastEventTime, sc.silent)
	}
	return st
}

// Finish closes the stats accounting at teardown time t.
func (sc *StretchScheduler) Finish(t float64) {
	if sc.started && t > sc.lastEventTime {
		sc.stats.add(t-sc.lastEventTime, sc.silent)
	}
}

// HandleTransition processes one detector event to completion. Events must
// arrive in strictly increasing time order.
func (sc *StretchScheduler) HandleTransition(ev TransitionEvent) error {
	if sc.started && ev.Time <= sc.lastEventTime {
		return fmt.Errorf("%w: %v after %v", ErrNonMonotonicEvent, ev.Time, sc.lastEventTime)
	}
	if sc.started {
		sc.stats.add(ev.Time-sc.lastEventTime, sc.silent)
	}
	sc.started = true
	sc.lastEventTime = ev.Time

	var d Decision
	switch ev.Kind {
	case SilenceStart:
		d = sc.onSilenceStart(ev.Time)
		sc.silent = true
	case SilenceEnd:
		d = sc.onSilenceEnd(ev.Time)
		sc.silent = false
	}

	if sc.observer != nil {
		d.Event = ev
		sc.observer.OnDecision(d)
	}
	return nil
}

// onSilenceStart switches to silence speed and schedules the decay ramp that
// plays the buffered margin-before window out at sounded pace while the
// input races ahead.
func (sc *StretchScheduler) onSilenceStart(t float64) Decision {
	s := sc.settings
	sc.sink.SetRate(s.SilenceSpeed)

	startValue := s.StretcherSoundedDelay()
	lookahead := s.LookaheadDelay()

	// The decay begins when the margin-start sample surfaces: the
	// steady-state total delay, minus the real-time span the margin
	// occupied at sounded speed.
	startIn := TotalDelay(lookahead, startValue) - s.RealtimeMargin(s.SoundedSpeed)
	if startIn < 0 {
		startIn = 0
	}

	// A larger speed-up ratio eats the margin's delay debt faster.
	ratio := s.SilenceSpeed / s.SoundedSpeed
	duration := 0.0
	if startValue > 0 && ratio > 1 {
		duration = startValue / (ratio - 1)
	}

	sched := &StretchSchedule{
		StartTime:              t + startIn,
		StartValue:             startValue,
		EndTime:                t + startIn + duration,
		EndValue:               0,
		NewSpeedStartInputTime: t,
	}
	sc.stretcher.ScheduleRamp(sched.StartValue, sched.EndValue, sched.StartTime, sched.EndTime)
	sc.last = sched

	return Decision{Rate: s.SilenceSpeed, Schedule: *sched}
}

// onSilenceEnd switches back to sounded speed and schedules the compensating
// up-ramp that re-stretches whatever part of the margin was consumed at
// silence speed. If the previous decay ramp is still in flight, it is cut
// short at the margin start rather than allowed to finish.
func (sc *StretchScheduler) onSilenceEnd(t float64) Decision {
	s := sc.settings
	sc.sink.SetRate(s.SoundedSpeed)

	last := sc.last
	if last == nil {
		// No silence period has been scheduled; nothing to stretch.
		sched := &StretchSchedule{
			StartTime: t, EndTime: t,
			NewSpeedStartInputTime: t,
		}
		sc.stretcher.SetBaseDelay(0)
		sc.last = sched
		return Decision{Rate: s.SoundedSpeed, Schedule: *sched}
	}

	// Split the configured margin into the part that actually played at
	// silence speed and the part that was still at sounded speed when the
	// silence began.
	elapsedAtSilenceSpeed := t - last.NewSpeedStartInputTime
	silencePortionContent := elapsedAtSilenceSpeed * s.SilenceSpeed
	if silencePortionContent > s.MarginBefore {
		silencePortionContent = s.MarginBefore
	}
	soundedPortionContent := s.MarginBefore - silencePortionContent

	silencePortionReal := silencePortionContent / s.SilenceSpeed
	soundedPortionReal := soundedPortionContent / s.SoundedSpeed
	marginStartInputTime := t - silencePortionReal - soundedPortionReal

	lookahead := s.LookaheadDelay()
	startTime := MapInputToOutputTime(marginStartInputTime, lookahead, last)

	startValue := last.EndValue
	interrupted := false
	if startTime < last.EndTime {
		// The decay ramp has not finished: only the remaining portion
		// needs stretching. Cut the ramp at the margin start and pick
		// the new ramp up from whatever delay it reached there.
		startValue = last.ValueAt(startTime)
		last.Interrupt(startValue, startTime)
		sc.stretcher.Interrupt(startValue, startTime)
		interrupted = true
	}

	// Delay increase needed to stretch the silence-speed portion of the
	// margin back out to sounded-speed real time.
	increase := DelayChange(silencePortionReal, s.SilenceSpeed, s.SoundedSpeed)
	if increase < 0 {
		increase = 0
	}
	endValue := startValue + increase
	endTime := t + TotalDelay(lookahead, endValue)
	if endTime < startTime {
		// Flicker faster than one margin window can push the computed
		// end before the interruption point; degrade to an immediate
		// step rather than a backward ramp.
		endTime = startTime
	}

	sched := &StretchSchedule{
		StartTime:              startTime,
		StartValue:             startValue,
		EndTime:                endTime,
		EndValue:               endValue,
		NewSpeedStartInputTime: t,
	}
	sc.stretcher.ScheduleRamp(sched.StartValue, sched.EndValue, sched.StartTime, sched.EndTime)
	sc.last = sched

	return Decision{Rate: s.SoundedSpeed, Schedule: *sched, Interrupted: interrupted}
}
