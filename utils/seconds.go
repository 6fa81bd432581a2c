// SPDX-License-Identifier: EPL-2.0

package utils

// SecondsToFrames converts a duration in seconds to a frame count at rate.
// The result is truncated toward zero.
func SecondsToFrames(seconds float64, rate int) int {
	return int(seconds * float64(rate))
}

// FramesToSeconds converts a frame count at rate to a duration in seconds.
func FramesToSeconds(frames int, rate int) float64 {
	return float64(frames) / float64(rate)
}
