// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

// Default envelope window lengths. Attack is short so the envelope reacts to
// speech onsets within a few milliseconds; release is longer so short gaps
// between words do not read as silence.
const (
	DefaultAttackWindow  = 0.003 // seconds
	DefaultReleaseWindow = 0.020 // seconds
)

// VolumeFilter smooths instantaneous amplitude into a short-window envelope.
//
// It is an asymmetric one-pole follower over the rectified signal: the
// envelope tracks rising amplitude with the attack coefficient and falling
// amplitude with the release coefficient. Multi-channel input is folded to a
// per-frame amplitude by averaging absolute values across channels, so the
// filter produces one envelope value per frame regardless of channel count.
type VolumeFilter struct {
	channels int
	attack   float32 // per-frame smoothing coefficient on rising amplitude
	release  float32 // per-frame smoothing coefficient on falling amplitude
	env      float32
}

// NewVolumeFilter creates an envelope follower for interleaved input with the
// given channel count at sampleRate, using the default window lengths.
func NewVolumeFilter(sampleRate, channels int) *VolumeFilter {
	return NewVolumeFilterWindows(sampleRate, channels, DefaultAttackWindow, DefaultReleaseWindow)
}

// NewVolumeFilterWindows creates an envelope follower with explicit attack and
// release window lengths in seconds. Windows shorter than one frame behave as
// instantaneous tracking.
func NewVolumeFilterWindows(sampleRate, channels int, attackWindow, releaseWindow float64) *VolumeFilter {
	return &VolumeFilter{
		channels: channels,
		attack:   windowCoefficient(sampleRate, attackWindow),
		release:  windowCoefficient(sampleRate, releaseWindow),
	}
}

// windowCoefficient converts a time-constant window into a one-pole smoothing
// coefficient: env += (x - env) * coeff per frame.
func windowCoefficient(sampleRate int, window float64) float32 {
	if window <= 0 {
		return 1
	}
	frames := window * float64(sampleRate)
	if frames <= 1 {
		return 1
	}
	return float32(1 - math.Exp(-1/frames))
}

// Feed consumes interleaved samples and returns the envelope value after the
// last frame. samples length that is not a multiple of the channel count is
// truncated to whole frames.
func (f *VolumeFilter) Feed(samples []float32) float32 {
	frames := len(samples) / f.channels
	inv := float32(1) / float32(f.channels)

	for fr := 0; fr < frames; fr++ {
		var amp float32
		base := fr * f.channels
		for c := 0; c < f.channels; c++ {
			v := samples[base+c]
			if v < 0 {
				v = -v
			}
			amp += v
		}
		amp *= inv

		f.feedFrame(amp)
	}

	return f.env
}

// FeedFrame consumes the rectified amplitude of a single frame and returns the
// updated envelope. Used by callers that already fold channels themselves.
func (f *VolumeFilter) FeedFrame(amplitude float32) float32 {
	if amplitude < 0 {
		amplitude = -amplitude
	}
	f.feedFrame(amplitude)
	return f.env
}

func (f *VolumeFilter) feedFrame(amp float32) {
	if amp > f.env {
		f.env += (amp - f.env) * f.attack
	} else {
		f.env += (amp - f.env) * f.release
	}
}

// Envelope returns the current envelope value without consuming input.
func (f *VolumeFilter) Envelope() float32 { return f.env }

// Reset clears the envelope state.
func (f *VolumeFilter) Reset() { f.env = 0 }
