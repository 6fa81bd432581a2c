// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/MoCoXIII/jumpcutter/utils"
)

// Varispeed plays its source at a settable speed: 2.0 consumes two source
// frames per output frame, 0.5 stretches each frame over two. The output
// keeps the source's nominal sample rate; only the consumption ratio changes,
// exactly like a media element's playback-rate control. Speed changes take
// effect on the next output frame, so it doubles as the engine's RateSink in
// the offline render path.
//
// Works on interleaved samples, preserves channel count, and interpolates
// fractional positions cubically. A one-pole low-pass softens aliasing while
// the speed is above 1; a proper FIR would do better but costs far more.
type Varispeed struct {
	src      Source
	channels int
	speed    float64

	// Ring of 4 frames around the read position for cubic interpolation:
	// frames[0]=t-1, frames[1]=t0, frames[2]=t+1, frames[3]=t+2.
	frames   [4][]float32
	hasFrame [4]bool
	primed   bool

	// pos is the fractional position between frames[1] and frames[2].
	pos float64

	srcBuf []float32
	eof    bool

	filterState []float32
	filterAlpha float32
}

// NewVarispeed wraps src for playback at the given initial speed.
func NewVarispeed(src Source, speed float64) (*Varispeed, error) {
	if speed <= 0 {
		return nil, ErrInvalidSpeed
	}

	channels := src.Channels()
	v := &Varispeed{
		src:         src,
		channels:    channels,
		speed:       speed,
		srcBuf:      make([]float32, 4096),
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}
	for i := range v.frames {
		v.frames[i] = make([]float32, channels)
	}
	return v, nil
}

func (v *Varispeed) SampleRate() int { return v.src.SampleRate() }
func (v *Varispeed) Channels() int   { return v.channels }
func (v *Varispeed) BufSize() int    { return v.src.BufSize() }

func (v *Varispeed) Close() error {
	if err := v.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// SetRate changes the playback speed, effective from the next output frame.
// Non-positive rates are ignored.
func (v *Varispeed) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	v.speed = rate
}

// Rate reports the current playback speed.
func (v *Varispeed) Rate() float64 { return v.speed }

// fetchNextFrame shifts the interpolation window one source frame forward.
func (v *Varispeed) fetchNextFrame() error {
	if v.eof {
		return io.EOF
	}

	copy(v.frames[0], v.frames[1])
	copy(v.frames[1], v.frames[2])
	copy(v.frames[2], v.frames[3])
	v.hasFrame[0] = v.hasFrame[1]
	v.hasFrame[1] = v.hasFrame[2]
	v.hasFrame[2] = v.hasFrame[3]

	n, err := v.src.ReadSamples(v.srcBuf[:v.channels])
	if n > 0 {
		copy(v.frames[3], v.srcBuf[:n])
		v.hasFrame[3] = true

		// Anti-aliasing only matters while consuming faster than real time.
		if v.speed > 1 {
			for c := 0; c < v.channels; c++ {
				v.frames[3][c] = v.filterAlpha*v.frames[3][c] + (1-v.filterAlpha)*v.filterState[c]
				v.filterState[c] = v.frames[3][c]
			}
		}
	} else {
		v.hasFrame[3] = false
	}

	if err == io.EOF {
		v.eof = true
		if !v.hasFrame[3] {
			return io.EOF
		}
	} else if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// prime fills the initial interpolation window.
func (v *Varispeed) prime() error {
	for i := 0; i < 4; i++ {
		n, err := v.src.ReadSamples(v.srcBuf[:v.channels])
		if n > 0 {
			copy(v.frames[i], v.srcBuf[:n])
			v.hasFrame[i] = true
			if i == 0 {
				copy(v.filterState, v.srcBuf[:n])
			}
		}
		if err == io.EOF {
			v.eof = true
			if i == 0 {
				return io.EOF
			}
			for j := i; j < 4; j++ {
				copy(v.frames[j], v.frames[i-1])
				v.hasFrame[j] = true
			}
			break
		} else if err != nil {
			return fmt.Errorf("%w", err)
		}
	}
	v.primed = true
	return nil
}

// ReadSamples produces output frames at the current speed. dst length should
// be a multiple of the channel count.
func (v *Varispeed) ReadSamples(dst []float32) (int, error) {
	if len(dst)%v.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !v.primed {
		if err := v.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / v.channels

	for written < framesNeeded {
		for v.pos >= 1.0 {
			v.pos -= 1.0
			if err := v.fetchNextFrame(); err != nil {
				if err == io.EOF {
					if written == 0 {
						return 0, io.EOF
					}
					return written * v.channels, io.EOF
				}
				return written * v.channels, err
			}
		}

		if !v.hasFrame[1] || !v.hasFrame[2] {
			if written == 0 {
				return 0, io.EOF
			}
			return written * v.channels, io.EOF
		}

		alpha := float32(v.pos)
		for c := 0; c < v.channels; c++ {
			y1 := v.frames[1][c]
			y2 := v.frames[2][c]
			y0 := y1
			if v.hasFrame[0] {
				y0 = v.frames[0][c]
			}
			y3 := y2
			if v.hasFrame[3] {
				y3 = v.frames[3][c]
			}
			dst[written*v.channels+c] = utils.CubicInterpolate(y0, y1, y2, y3, alpha)
		}

		written++
		v.pos += v.speed
	}

	return written * v.channels, nil
}
