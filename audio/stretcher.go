// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/MoCoXIII/jumpcutter/utils"
)

// Stretcher is a delay line whose delay value can be scheduled to ramp
// linearly from one value to another over a real-time interval. Ramping the
// delay locally stretches or compresses the perceived timeline without
// touching the sample rate, which is what turns a hard speed switch into a
// click-free transition.
//
// Real time is derived from the output position: the sample emitted at time t
// is the input sample that entered the line CurrentDelay(t) seconds earlier.
// Fractional read positions are resolved with cubic interpolation, the same
// scheme the format-rate conversion in this module uses.
type Stretcher struct {
	src      Source
	rate     int
	channels int

	// Ring buffer over ingested frames. Frame f lives at
	// (f % capFrames) * channels. Frames older than writeFrame-capFrames
	// are overwritten; growth preserves everything still reachable.
	ring      []float32
	capFrames int
	written   int   // frames ingested from src
	eof       bool

	out int // frames emitted

	// Delay state: either a flat base value or the last scheduled ramp.
	base        float64
	hasSchedule bool
	startTime   float64
	startValue  float64
	endTime     float64
	endValue    float64

	lastPos  float64 // most recent fractional read position, for retention
	scratch  []float32
}

// NewStretcher wraps src with a schedulable delay line able to hold at least
// maxDelay seconds of history.
func NewStretcher(src Source, maxDelay float64) *Stretcher {
	if maxDelay < 0 {
		maxDelay = 0
	}
	capFrames := int(maxDelay*float64(src.SampleRate())) + src.BufSize() + 8
	return &Stretcher{
		src:       src,
		rate:      src.SampleRate(),
		channels:  src.Channels(),
		ring:      make([]float32, capFrames*src.Channels()),
		capFrames: capFrames,
		scratch:   make([]float32, 1024*src.Channels()),
	}
}

func (s *Stretcher) SampleRate() int { return s.rate }
func (s *Stretcher) Channels() int   { return s.channels }
func (s *Stretcher) BufSize() int    { return s.src.BufSize() }

func (s *Stretcher) Close() error {
	if err := s.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// CurrentDelay evaluates the delay at real time t: the scheduled ramp holds
// its start value before startTime, interpolates linearly inside the ramp and
// holds its end value afterwards.
func (s *Stretcher) CurrentDelay(t float64) float64 {
	if !s.hasSchedule {
		return s.base
	}
	switch {
	case t <= s.startTime:
		return s.startValue
	case t >= s.endTime:
		return s.endValue
	default:
		frac := (t - s.startTime) / (s.endTime - s.startTime)
		return s.startValue + (s.endValue-s.startValue)*frac
	}
}

// ScheduleRamp replaces the current delay trajectory with a linear ramp from
// startValue at startTime to endValue at endTime. A non-positive interval
// collapses to an immediate switch to endValue at startTime.
func (s *Stretcher) ScheduleRamp(startValue, endValue, startTime, endTime float64) {
	if endTime < startTime {
		endTime = startTime
	}
	s.hasSchedule = true
	s.startTime = startTime
	s.startValue = startValue
	s.endTime = endTime
	s.endValue = endValue
}

// Interrupt redirects an in-flight ramp so it ends at the given value and
// time instead of its original target. Interrupting at or after the original
// end time is a no-op, so completed ramps are never disturbed.
func (s *Stretcher) Interrupt(endValue, endTime float64) {
	if !s.hasSchedule {
		s.SetBaseDelay(endValue)
		return
	}
	if endTime >= s.endTime {
		return
	}
	if endTime < s.startTime {
		endTime = s.startTime
	}
	s.endTime = endTime
	s.endValue = endValue
}

// SetBaseDelay clears any schedule and holds the delay flat. Only meant for
// moments with no ramp in flight (e.g., applying new settings).
func (s *Stretcher) SetBaseDelay(value float64) {
	if value < 0 {
		value = 0
	}
	s.hasSchedule = false
	s.base = value
}

func (s *Stretcher) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	framesWanted := len(dst) / s.channels
	emitted := 0

	for emitted < framesWanted {
		t := utils.FramesToSeconds(s.out, s.rate)
		pos := (t - s.CurrentDelay(t)) * float64(s.rate)
		s.lastPos = pos
		ipos := int(math.Floor(pos))

		// Cubic interpolation reads frames ipos-1 .. ipos+2.
		for !s.eof && s.written <= ipos+2 {
			if err := s.ingest(); err != nil {
				if emitted > 0 {
					return emitted * s.channels, err
				}
				return 0, err
			}
		}
		if s.eof && ipos >= s.written {
			if emitted > 0 {
				return emitted * s.channels, io.EOF
			}
			return 0, io.EOF
		}

		frac := float32(pos - float64(ipos))
		base := emitted * s.channels
		for c := 0; c < s.channels; c++ {
			y0 := s.frameSample(ipos-1, c)
			y1 := s.frameSample(ipos, c)
			y2 := s.frameSample(ipos+1, c)
			y3 := s.frameSample(ipos+2, c)
			dst[base+c] = utils.CubicInterpolate(y0, y1, y2, y3, frac)
		}

		emitted++
		s.out++
	}

	return emitted * s.channels, nil
}

// frameSample reads one channel of frame f, clamping to the stream edges:
// frames before the start read as silence, frames past the end repeat the
// last ingested frame.
func (s *Stretcher) frameSample(f, c int) float32 {
	if f < 0 {
		return 0
	}
	if f >= s.written {
		if s.written == 0 {
			return 0
		}
		f = s.written - 1
	}
	return s.ring[(f%s.capFrames)*s.channels+c]
}

// ingest pulls one block from the source into the ring, growing the ring
// first if appending would overwrite history the read head still needs.
func (s *Stretcher) ingest() error {
	oldest := int(math.Floor(s.lastPos)) - 1
	if oldest < 0 {
		oldest = 0
	}
	blockFrames := len(s.scratch) / s.channels
	if s.written+blockFrames-oldest > s.capFrames {
		s.grow(s.written + blockFrames - oldest)
	}

	n, err := s.src.ReadSamples(s.scratch)
	frames := n / s.channels
	for f := 0; f < frames; f++ {
		idx := ((s.written + f) % s.capFrames) * s.channels
		copy(s.ring[idx:idx+s.channels], s.scratch[f*s.channels:(f+1)*s.channels])
	}
	s.written += frames

	if err == io.EOF {
		s.eof = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// grow reallocates the ring to hold at least needFrames, preserving order.
func (s *Stretcher) grow(needFrames int) {
	newCap := s.capFrames * 2
	if newCap < needFrames {
		newCap = needFrames
	}
	newRing := make([]float32, newCap*s.channels)

	keepFrom := s.written - s.capFrames
	if keepFrom < 0 {
		keepFrom = 0
	}
	for f := keepFrom; f < s.written; f++ {
		src := (f % s.capFrames) * s.channels
		dst := (f % newCap) * s.channels
		copy(newRing[dst:dst+s.channels], s.ring[src:src+s.channels])
	}

	s.ring = newRing
	s.capFrames = newCap
}
