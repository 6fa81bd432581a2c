// SPDX-License-Identifier: EPL-2.0

package jumpcutter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MoCoXIII/jumpcutter/audio"
	"github.com/MoCoXIII/jumpcutter/timing"
	"github.com/MoCoXIII/jumpcutter/utils"
)

var (
	// ErrEngineDestroyed is returned by operations on a torn-down engine.
	ErrEngineDestroyed = errors.New("engine has been destroyed")
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithObserver injects an observability hook invoked at each scheduling
// decision. Absent, decisions cost nothing beyond a nil check.
func WithObserver(obs timing.Observer) Option {
	return func(e *Engine) { e.observer = obs }
}

// WithRateSink hands playback-rate control to the host (e.g., a media
// element wrapper). The engine then emits at the source's own pace and the
// host is responsible for honoring the rate; without this option the engine
// applies the rate itself through an internal Varispeed stage.
func WithRateSink(sink timing.RateSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// Engine is one silence-adaptive playback pipeline instance. It owns all of
// its state — detector, lookahead, stretcher, schedule — and shares nothing
// with other instances; create one per stream.
//
// The engine is itself a Source: reading from it pulls samples through the
// data path (lookahead → stretcher → rate application) while the control
// path (envelope → detector → scheduler) taps the undelayed input and
// reprograms the data path ahead of the samples reaching the output.
//
// All methods serialize on one mutex, so teardown requested while another
// call is in flight waits for it to complete, per the lifecycle contract.
type Engine struct {
	mu sync.Mutex

	src  audio.Source
	tap  *analysisTap
	look *audio.Lookahead
	str  *audio.Stretcher
	out  audio.Source

	sink     timing.RateSink
	observer timing.Observer

	det   *timing.SilenceDetector
	sched *timing.StretchScheduler
	ctrl  *timing.SettingsController

	settings    timing.Settings
	initialRate float64
	suspended   bool
	destroyed   bool
}

// New builds and starts an engine over src with the given settings. Settings
// are normalized (speeds clamped away from unity, negative durations
// zeroed). A source that cannot be processed fails here; no half-initialized
// engine is ever returned.
func New(src audio.Source, s timing.Settings, opts ...Option) (*Engine, error) {
	if src == nil || src.SampleRate() <= 0 || src.Channels() <= 0 {
		return nil, fmt.Errorf("jumpcutter: %w", audio.ErrInvalidSource)
	}

	e := &Engine{src: src}
	for _, opt := range opts {
		opt(e)
	}

	s = s.Normalize()

	e.det = timing.NewSilenceDetector(s.VolumeThreshold, s.DurationThreshold, s.SoundedSpeed)
	e.tap = newAnalysisTap(src, e)
	e.look = audio.NewLookahead(e.tap, s.LookaheadDelay())
	e.str = audio.NewStretcher(e.look, s.MaxStretcherDelay())

	if e.sink == nil {
		vari, err := audio.NewVarispeed(e.str, s.SoundedSpeed)
		if err != nil {
			return nil, fmt.Errorf("jumpcutter: %w", err)
		}
		e.sink = vari
		e.out = vari
	} else {
		e.out = e.str
	}

	e.initialRate = e.sink.Rate()
	e.sched = timing.NewStretchScheduler(s, e.str, e.sink, e.observer)
	e.ctrl = timing.NewSettingsController(e.sched, e.sink, e.look, e.str, e.det)
	e.settings = e.ctrl.Apply(s, nil)

	return e, nil
}

func (e *Engine) SampleRate() int { return e.src.SampleRate() }
func (e *Engine) Channels() int   { return e.src.Channels() }
func (e *Engine) BufSize() int    { return e.src.BufSize() }

// ReadSamples produces the smoothed, rate-adapted output stream.
func (e *Engine) ReadSamples(dst []float32) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return 0, ErrEngineDestroyed
	}
	return e.out.ReadSamples(dst)
}

// Settings returns the active normalized settings snapshot.
func (e *Engine) Settings() timing.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// UpdateSettings merges a partial patch over the current settings and
// applies the result, preserving the currently active logical speed: if
// playback is at the old silence speed it adopts the new silence speed, not
// the sounded one.
func (e *Engine) UpdateSettings(p timing.Patch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return ErrEngineDestroyed
	}
	prev := e.settings
	e.settings = e.ctrl.Apply(p.Apply(prev), &prev)
	return nil
}

// Suspend pauses the control path without tearing down state, for hosts
// whose playback activity stops. The data path keeps flowing; the detector
// simply stops classifying until Resume.
func (e *Engine) Suspend() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.suspended = true
}

// Resume reactivates a suspended control path.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.suspended = false
}

// Stats reports per-regime playback time accumulated so far.
func (e *Engine) Stats() timing.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sched.StatsAt(e.tap.Now())
}

// Destroy tears the engine down deterministically: future event delivery
// stops, the sink's rate is restored to its pre-engine value and the engine
// refuses further reads. The source itself is not closed; use Close to
// release the whole chain. Destroy is idempotent and, because it takes the
// same lock as every other call, waits for any in-flight operation.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return
	}
	e.sched.Finish(e.tap.Now())
	e.sink.SetRate(e.initialRate)
	e.destroyed = true
}

// Close destroys the engine and closes the underlying source chain.
func (e *Engine) Close() error {
	e.Destroy()
	if err := e.out.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// analysisTap sits between the raw source and the lookahead buffer. It
// passes samples through untouched while folding each frame into the volume
// envelope, advancing the shared clock and feeding the detector; transition
// events are dispatched to the scheduler before the frames in question clear
// the lookahead delay.
//
// The tap sees the stream before any rate is applied (the Varispeed stage,
// or the host's element, sits downstream), so one frame here is 1/sampleRate
// of content but only 1/(sampleRate*speed) of playback real time. The clock
// advances at the latter pace; the detector's and scheduler's content-to-real
// conversions depend on it.
type analysisTap struct {
	src audio.Source
	eng *Engine
	vol *audio.VolumeFilter

	channels int
	rate     int
	clock    float64 // real-time seconds of playback covered by consumed input
}

func newAnalysisTap(src audio.Source, eng *Engine) *analysisTap {
	return &analysisTap{
		src:      src,
		eng:      eng,
		vol:      audio.NewVolumeFilter(src.SampleRate(), src.Channels()),
		channels: src.Channels(),
		rate:     src.SampleRate(),
	}
}

func (t *analysisTap) SampleRate() int { return t.rate }
func (t *analysisTap) Channels() int   { return t.channels }
func (t *analysisTap) BufSize() int    { return t.src.BufSize() }
func (t *analysisTap) Close() error    { return t.src.Close() }

// Now is the real-time clock: playback time covered by the input consumed so
// far, in seconds.
func (t *analysisTap) Now() float64 {
	return t.clock
}

// activeRate is the speed the downstream stage plays the tapped stream at.
func (t *analysisTap) activeRate() float64 {
	r := t.eng.sink.Rate()
	if r <= 0 {
		return 1
	}
	return r
}

func (t *analysisTap) ReadSamples(dst []float32) (int, error) {
	n, err := t.src.ReadSamples(dst)
	frames := n / t.channels

	if t.eng.suspended {
		t.clock += utils.FramesToSeconds(frames, t.rate) / t.activeRate()
		return n, err
	}

	step := 1 / (float64(t.rate) * t.activeRate())
	inv := float32(1) / float32(t.channels)
	for f := 0; f < frames; f++ {
		var amp float32
		base := f * t.channels
		for c := 0; c < t.channels; c++ {
			v := dst[base+c]
			if v < 0 {
				v = -v
			}
			amp += v
		}
		env := t.vol.FeedFrame(amp * inv)

		t.clock += step
		ev, detErr := t.eng.det.Feed(float64(env), t.clock)
		if detErr != nil {
			return n, fmt.Errorf("%w", detErr)
		}
		if ev == nil {
			continue
		}
		if schedErr := t.eng.sched.HandleTransition(*ev); schedErr != nil {
			return n, fmt.Errorf("%w", schedErr)
		}
		// The transition changed the playback rate: hold windows and the
		// clock itself advance at the new speed from here on.
		t.eng.det.SetSpeed(t.eng.sink.Rate())
		step = 1 / (float64(t.rate) * t.activeRate())
	}

	return n, err
}
