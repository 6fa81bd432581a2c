// SPDX-License-Identifier: EPL-2.0

// Package audio provides the low-level data-path primitives of the engine.
//
// This package contains the building blocks the silence-adaptive pipeline is
// assembled from:
//   - Source interface for streaming audio input
//   - VolumeFilter for amplitude envelope following
//   - Lookahead for the fixed reaction-time delay
//   - Stretcher for the schedulable, ramping delay line
//   - Varispeed for dynamic-rate playback (the offline RateSink)
//   - MonoMixer for channel folding
//   - Format registry for decoder registration
//
// # Source Interface
//
// The Source interface is the foundation of the pipeline:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// All decoders and processors implement this interface, allowing them to be
// chained together. The engine's data path is such a chain:
//
//	look := audio.NewLookahead(src, 0.1)
//	stretch := audio.NewStretcher(look, 0.25)
//	out, _ := audio.NewVarispeed(stretch, 1.0)
//
// # Delay Scheduling
//
// The Stretcher exposes the delay as a value over the real-time clock shared
// with the control path:
//
//	stretch.ScheduleRamp(0.12, 0, 10.0, 10.3) // decay 120ms of delay over 300ms
//	stretch.Interrupt(0.04, 10.2)             // cut the ramp short mid-flight
//	d := stretch.CurrentDelay(10.1)
//
// Delay ramps are always linear in real time; that linearity is what keeps
// speed transitions click-free.
//
// # Sample Format
//
// Audio samples are interleaved float32 in the range [-1.0, 1.0]:
//   - 0.0 represents silence
//   - ±1.0 represents maximum amplitude
//
// # Error Handling
//
// Streaming functions return io.EOF when no more data is available. Other
// errors indicate problems with the source or processing:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    if err == io.EOF {
//	        break // Normal end of stream
//	    }
//	    if err != nil {
//	        return err // Processing error
//	    }
//	    // Process n samples from buf
//	}
package audio
