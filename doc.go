// SPDX-License-Identifier: EPL-2.0

// Package jumpcutter adapts playback speed to silence: sounded stretches of
// a stream play at one rate, silent stretches at a faster one, and the
// abrupt transitions between them are smoothed into click-free,
// continuously time-stretched output.
//
// The engine classifies the signal with a hysteresis silence detector, gives
// itself reaction time with a fixed lookahead delay, and absorbs the timing
// mismatch that speed changes create with a dynamically ramped delay line
// (the stretcher). A scheduler reprograms the stretcher's delay curve on
// each silence boundary, interrupting a still-running ramp when a new
// boundary arrives mid-flight.
//
// # Quick Start
//
// The simplest way to process a file is RenderMono16:
//
//	decoder := wav.Decoder{}
//	file, _ := os.Open("talk.wav")
//	src, _ := decoder.Decode(file)
//
//	pcm16, rate, _ := jumpcutter.RenderMono16(src, timing.Settings{
//	    SoundedSpeed:      1.0,
//	    SilenceSpeed:      4.0,
//	    MarginBefore:      0.2,
//	    VolumeThreshold:   0.02,
//	    DurationThreshold: 0.1,
//	}, 4096)
//
//	// pcm16 is the shortened recording: silence compressed 4x,
//	// speech untouched, with smooth seams.
//
// # Streaming
//
// For streaming or multi-channel use, build an Engine; it implements the
// audio.Source interface and can be read like any other pipeline stage:
//
//	eng, err := jumpcutter.New(src, settings)
//	if err != nil { ... }
//	defer eng.Destroy()
//
//	buf := make([]float32, 4096)
//	for {
//	    n, err := eng.ReadSamples(buf)
//	    // consume buf[:n]
//	    if err != nil { break }
//	}
//
// A host that owns the playback rate itself (a media player) passes
// WithRateSink and applies the scheduler's rate changes to its own element;
// the engine then only performs the margin smoothing.
//
// # Settings
//
// See the timing package for the Settings shape and the meaning of margin
// and thresholds. Settings can be updated on a live engine with
// UpdateSettings; the currently active logical speed is preserved across
// the change.
//
// # Supported Formats
//
// The formats subpackages decode WAV, MP3, Ogg Vorbis and AIFF into
// pipeline sources:
//
//	wavDecoder := wav.Decoder{}
//	src, _ := wavDecoder.Decode(reader)
//
// All decoders return an audio.Source usable with the engine.
//
// # Observability
//
// Scheduling decisions can be observed by injecting a hook:
//
//	eng, _ := jumpcutter.New(src, settings,
//	    jumpcutter.WithObserver(timing.NewLogObserver(nil)))
//
// Without a hook, decisions are not recorded and cost nothing.
package jumpcutter
