// SPDX-License-Identifier: EPL-2.0

package jumpcutter

import (
	"fmt"
	"io"

	"github.com/MoCoXIII/jumpcutter/audio"
	"github.com/MoCoXIII/jumpcutter/timing"
	"github.com/MoCoXIII/jumpcutter/utils"
)

// RenderMono16 is a high-level convenience that runs a whole source through
// the engine offline and collects the result as 16-bit PCM.
//
// The processing pipeline:
//  1. Folds the source to mono
//  2. Runs the silence-adaptive engine over it (silent stretches play at
//     silence speed, sounded stretches at sounded speed, transitions
//     smoothed by the stretcher)
//  3. Converts the float32 output to int16 PCM
//
// Parameters:
//   - src: The audio source to process (implements Source interface)
//   - s: Engine settings; normalized on the way in
//   - bufferSize: Size of the buffer for reading samples (e.g., 4096)
//
// Returns the collected samples, the output sample rate (same as the
// source's) and any processing error.
//
// For streaming use or multi-channel output, build an Engine directly with
// New and read from it.
//
// Example:
//
//	src, _ := decoder.Decode(file)
//	pcm16, rate, err := jumpcutter.RenderMono16(src, timing.Settings{
//	    SoundedSpeed:      1.0,
//	    SilenceSpeed:      4.0,
//	    MarginBefore:      0.2,
//	    VolumeThreshold:   0.02,
//	    DurationThreshold: 0.1,
//	}, 4096)
func RenderMono16(src audio.Source, s timing.Settings, bufferSize int) ([]int16, int, error) {
	mono := audio.NewMonoMixer(src)

	eng, err := New(mono, s)
	if err != nil {
		return nil, src.SampleRate(), err
	}
	defer eng.Destroy()

	var pcm16 []int16
	buf := make([]float32, bufferSize)

	for {
		n, err := eng.ReadSamples(buf)
		if n > 0 {
			for i := 0; i < n; i++ {
				pcm16 = append(pcm16, utils.Float32ToInt16(buf[i]))
			}
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, src.SampleRate(), fmt.Errorf("%w", err)
		}
	}

	return pcm16, src.SampleRate(), nil
}
