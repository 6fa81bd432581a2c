// SPDX-License-Identifier: EPL-2.0

package timing

// LookaheadControl is the controller's view of the fixed-delay stage.
type LookaheadControl interface {
	SetDelay(delay float64)
}

// SettingsController applies configuration changes to a running pipeline.
// All derived quantities (lookahead delay, stretcher baseline delay,
// hysteresis thresholds) are recomputed wholesale from the new snapshot on
// every change; nothing is patched incrementally, so no derived value can go
// stale.
type SettingsController struct {
	scheduler *StretchScheduler
	sink      RateSink
	lookahead LookaheadControl
	stretcher StretcherControl
	detector  *SilenceDetector
}

// NewSettingsController wires the controller to the pipeline stages it
// reconfigures. lookahead and detector may be nil when the host manages
// those stages itself.
func NewSettingsController(scheduler *StretchScheduler, sink RateSink, lookahead LookaheadControl, stretcher StretcherControl, detector *SilenceDetector) *SettingsController {
	return &SettingsController{
		scheduler: scheduler,
		sink:      sink,
		lookahead: lookahead,
		stretcher: stretcher,
		detector:  detector,
	}
}

// Apply installs next. With prev == nil this is the initial setup: sounded
// speed is applied outright. With prev given, the currently active logical
// speed is preserved: if the host's rate matches prev's silence speed the
// new silence speed is adopted, so editing settings mid-silence does not
// yank playback back to sounded speed.
//
// Returns the normalized snapshot actually installed.
func (c *SettingsController) Apply(next Settings, prev *Settings) Settings {
	next = next.Normalize()

	rate := next.SoundedSpeed
	if prev != nil {
		switch c.sink.Rate() {
		case prev.SilenceSpeed:
			rate = next.SilenceSpeed
		case prev.SoundedSpeed:
			rate = next.SoundedSpeed
		}
	}
	c.sink.SetRate(rate)

	if c.lookahead != nil {
		c.lookahead.SetDelay(next.LookaheadDelay())
	}

	// Baseline stretcher delay for the current regime: the sounded
	// steady state owes the full margin debt, the silent one owes none.
	if c.stretcher != nil {
		if rate == next.SilenceSpeed && next.SilenceSpeed != next.SoundedSpeed {
			c.stretcher.SetBaseDelay(0)
		} else {
			c.stretcher.SetBaseDelay(next.StretcherSoundedDelay())
		}
	}

	if c.detector != nil {
		c.detector.SetThresholds(next.VolumeThreshold, next.DurationThreshold)
		c.detector.SetSpeed(rate)
	}

	if c.scheduler != nil {
		c.scheduler.SetSettings(next)
	}

	return next
}
