// SPDX-License-Identifier: EPL-2.0

// Package timing implements the control path of the silence-adaptive
// playback engine: silence classification, stretch scheduling and the
// input-to-output time mapping.
//
// # Clocks
//
// Everything is scheduled on a single monotonically increasing real-time
// clock, expressed in float64 seconds. A second, derived timeline — content
// time, the position within the original material — diverges from real time
// whenever the playback rate is not 1. Settings durations (margin,
// hysteresis window) are content time; schedules and delays are real time.
//
// # Flow
//
// The SilenceDetector consumes envelope readings and emits SilenceStart and
// SilenceEnd transitions with exact hold-completion timestamps. The
// StretchScheduler reacts to each transition: it sets the playback rate on
// the RateSink immediately and reprograms the stretcher's delay ramp so the
// margin ahead of each silence end plays out smoothly at sounded pace.
// MapInputToOutputTime reconciles a new transition with a ramp still in
// flight; when they overlap, the pending ramp is interrupted mid-flight and
// only the remaining portion is stretched.
//
// All of this runs single-threaded and event-driven: one transition is
// processed to completion before the next, and the only shared mutable
// record — the last schedule — is written by the scheduler and read by the
// mapper within the same synchronous step.
//
// # Settings
//
// Settings is an immutable snapshot; derived quantities are pure functions
// of it and recomputed on every change. Speeds are clamped away from a
// narrow band around 1.0 (NormalizeSpeed) because playback back-ends glitch
// when hopping between their pass-through and resampled paths near unity.
package timing
