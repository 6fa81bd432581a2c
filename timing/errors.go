// SPDX-License-Identifier: EPL-2.0

package timing

import "errors"

var (
	// ErrNonMonotonicEvent is returned when a transition event does not
	// strictly advance the clock. Upstream must deliver events in order;
	// the engine never reorders them silently.
	ErrNonMonotonicEvent = errors.New("transition event time must be strictly increasing")
)
