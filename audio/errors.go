// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrInvalidSource  = errors.New("source must report positive sample rate and channel count")
	ErrInvalidSpeed   = errors.New("speed must be positive")
	ErrRampReversed   = errors.New("ramp end time precedes start time")
)
