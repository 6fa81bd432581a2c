// SPDX-License-Identifier: EPL-2.0

package timing

// DefaultUnityGap is the half-width of the exclusion band around speed 1.0.
// Playback back-ends tend to switch between a pass-through fast path and a
// resampled path near unity, which is audible as a glitch; keeping speeds out
// of the band avoids triggering the switch. The width is empirically tuned
// and back-end dependent, so it is a configurable constant, not a law.
const DefaultUnityGap = 0.01

// MinSpeed is the lowest speed a Settings snapshot normalizes to.
const MinSpeed = 0.05

// Settings is an immutable configuration snapshot, passed by value.
//
// MarginBefore and DurationThreshold are content-time durations in seconds;
// speeds are playback-rate multipliers. Changing any of MarginBefore,
// SoundedSpeed or SilenceSpeed invalidates every derived quantity, which is
// why derived values are pure functions here rather than stored fields.
type Settings struct {
	SoundedSpeed      float64
	SilenceSpeed      float64
	MarginBefore      float64 // content time, seconds
	VolumeThreshold   float64
	DurationThreshold float64 // content time, seconds

	// UnityGap overrides DefaultUnityGap when positive.
	UnityGap float64
}

// NormalizeSpeed clamps speed to the valid range: positive, at least
// MinSpeed, and outside the exclusion band (1-gap, 1+gap), snapping to the
// nearer band edge. A speed of exactly 1.0 snaps upward.
func NormalizeSpeed(speed, gap float64) float64 {
	if gap < 0 {
		gap = 0
	}
	if speed < MinSpeed {
		speed = MinSpeed
	}
	if speed > 1-gap && speed < 1+gap {
		if speed < 1 {
			return 1 - gap
		}
		return 1 + gap
	}
	return speed
}

// Normalize returns a copy with all configuration errors fixed by clamping:
// speeds forced valid per NormalizeSpeed, negative durations zeroed, and the
// unity gap defaulted.
func (s Settings) Normalize() Settings {
	if s.UnityGap <= 0 {
		s.UnityGap = DefaultUnityGap
	}
	s.SoundedSpeed = NormalizeSpeed(s.SoundedSpeed, s.UnityGap)
	s.SilenceSpeed = NormalizeSpeed(s.SilenceSpeed, s.UnityGap)
	if s.MarginBefore < 0 {
		s.MarginBefore = 0
	}
	if s.DurationThreshold < 0 {
		s.DurationThreshold = 0
	}
	if s.VolumeThreshold < 0 {
		s.VolumeThreshold = 0
	}
	return s
}

// LookaheadDelay is the fixed data-path delay: the minimum lead time such
// that, whichever speed is active, the engine has at least MarginBefore of
// content-time warning before a boundary reaches the output.
func (s Settings) LookaheadDelay() float64 {
	fastest := s.SoundedSpeed
	if s.SilenceSpeed > fastest {
		fastest = s.SilenceSpeed
	}
	if fastest <= 0 {
		return 0
	}
	return s.MarginBefore / fastest
}

// DelayChange reports how much longer a stretch of input lasting
// realtimeDuration at fromSpeed takes when played at toSpeed instead.
func DelayChange(realtimeDuration, fromSpeed, toSpeed float64) float64 {
	return realtimeDuration*fromSpeed/toSpeed - realtimeDuration
}

// StretcherSoundedDelay is the steady-state delay the stretcher holds while
// playback is at sounded speed: the extra time the margin-before window takes
// at sounded speed compared to silence speed. This is the fixed amount the
// stretcher owes whenever a sounded region begins.
func (s Settings) StretcherSoundedDelay() float64 {
	if s.SilenceSpeed <= 0 {
		return 0
	}
	d := DelayChange(s.MarginBefore/s.SilenceSpeed, s.SilenceSpeed, s.SoundedSpeed)
	if d < 0 {
		return 0
	}
	return d
}

// RealtimeMargin converts the content-time margin to real time at speed.
func (s Settings) RealtimeMargin(speed float64) float64 {
	if speed <= 0 {
		return 0
	}
	return s.MarginBefore / speed
}

// HoldDuration converts the content-time hysteresis window to real time at
// the given active speed.
func (s Settings) HoldDuration(speed float64) float64 {
	if speed <= 0 {
		return s.DurationThreshold
	}
	return s.DurationThreshold / speed
}

// MaxStretcherDelay bounds the stretcher's delay range for buffer sizing.
func (s Settings) MaxStretcherDelay() float64 {
	return s.StretcherSoundedDelay()
}

// Patch is a partial settings update; nil fields leave the current value
// untouched.
type Patch struct {
	SoundedSpeed      *float64
	SilenceSpeed      *float64
	MarginBefore      *float64
	VolumeThreshold   *float64
	DurationThreshold *float64
	UnityGap          *float64
}

// Apply merges the patch over base and returns the result un-normalized;
// callers decide when to Normalize.
func (p Patch) Apply(base Settings) Settings {
	if p.SoundedSpeed != nil {
		base.SoundedSpeed = *p.SoundedSpeed
	}
	if p.SilenceSpeed != nil {
		base.SilenceSpeed = *p.SilenceSpeed
	}
	if p.MarginBefore != nil {
		base.MarginBefore = *p.MarginBefore
	}
	if p.VolumeThreshold != nil {
		base.VolumeThreshold = *p.VolumeThreshold
	}
	if p.DurationThreshold != nil {
		base.DurationThreshold = *p.DurationThreshold
	}
	if p.UnityGap != nil {
		base.UnityGap = *p.UnityGap
	}
	return base
}
