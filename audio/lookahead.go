// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/MoCoXIII/jumpcutter/utils"
)

// Lookahead delays its source by a fixed duration so that control-path
// decisions made on the undelayed signal take effect before the corresponding
// samples reach the output.
//
// A fixed delay of a stream is equivalent to prepending that much silence and
// then passing the stream through unchanged, which is how this is implemented:
// no ring buffer is needed and the stream tail is never truncated. Delay
// changes only affect samples not yet emitted, per the contract that already
// buffered material keeps its original timing.
type Lookahead struct {
	src      Source
	channels int
	rate     int

	// lead is the number of silent frames still to emit before the stream.
	lead int
	// adjust is a pending frame-count correction from a delay change:
	// positive inserts silence, negative skips source frames.
	adjust  int
	delay   float64
	skipBuf []float32
}

// NewLookahead wraps src with a fixed delay in seconds.
func NewLookahead(src Source, delay float64) *Lookahead {
	if delay < 0 {
		delay = 0
	}
	frames := utils.SecondsToFrames(delay, src.SampleRate())
	return &Lookahead{
		src:      src,
		channels: src.Channels(),
		rate:     src.SampleRate(),
		lead:     frames,
		delay:    delay,
	}
}

func (l *Lookahead) SampleRate() int { return l.rate }
func (l *Lookahead) Channels() int   { return l.channels }
func (l *Lookahead) BufSize() int    { return l.src.BufSize() }

// Delay reports the configured delay in seconds.
func (l *Lookahead) Delay() float64 { return l.delay }

func (l *Lookahead) Close() error {
	if err := l.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// SetDelay changes the delay. The difference is applied to frames that have
// not been emitted yet; growing the delay inserts silence ahead of them,
// shrinking it skips source frames.
func (l *Lookahead) SetDelay(delay float64) {
	if delay < 0 {
		delay = 0
	}
	newFrames := utils.SecondsToFrames(delay, l.rate)
	oldFrames := utils.SecondsToFrames(l.delay, l.rate)
	l.adjust += newFrames - oldFrames
	l.delay = delay
}

func (l *Lookahead) ReadSamples(dst []float32) (int, error) {
	if len(dst)%l.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	// Fold any pending adjustment into the silent lead; a negative result
	// means source frames must be dropped before normal reading resumes.
	if l.adjust != 0 {
		l.lead += l.adjust
		l.adjust = 0
	}
	for l.lead < 0 {
		if err := l.skipFrames(-l.lead); err != nil {
			if err == io.EOF {
				l.lead = 0
				return 0, io.EOF
			}
			return 0, err
		}
		l.lead = 0
	}

	written := 0
	framesWanted := len(dst) / l.channels

	// Emit the silent lead first.
	for written < framesWanted && l.lead > 0 {
		base := written * l.channels
		for c := 0; c < l.channels; c++ {
			dst[base+c] = 0
		}
		written++
		l.lead--
	}

	if written == framesWanted {
		return written * l.channels, nil
	}

	n, err := l.src.ReadSamples(dst[written*l.channels:])
	total := written*l.channels + n
	if err != nil && err != io.EOF {
		return total, fmt.Errorf("%w", err)
	}
	if err == io.EOF && total == 0 {
		return 0, io.EOF
	}
	return total, err
}

// skipFrames discards frames from the source.
func (l *Lookahead) skipFrames(frames int) error {
	need := frames * l.channels
	if cap(l.skipBuf) < 4096 {
		l.skipBuf = make([]float32, 4096)
	}
	for need > 0 {
		chunk := need
		if chunk > cap(l.skipBuf) {
			// Hand the source whole frames only; a partial frame would
			// shift every later channel read.
			chunk = cap(l.skipBuf)
			chunk -= chunk % l.channels
		}
		n, err := l.src.ReadSamples(l.skipBuf[:chunk])
		need -= n
		if err != nil {
			return err
		}
		if n == 0 {
			return io.EOF
		}
	}
	return nil
}
