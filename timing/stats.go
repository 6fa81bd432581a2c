// SPDX-License-Identifier: EPL-2.0

package timing

// Stats accumulates how much real time playback spent in each speed regime.
// Content time and time saved follow from the regime durations and the
// speeds in force, so only the raw durations are stored.
type Stats struct {
	SoundedRealTime float64
	SilenceRealTime float64
}

// ContentTime is the span of original material covered, given the speeds the
// regimes ran at.
func (st Stats) ContentTime(s Settings) float64 {
	return st.SoundedRealTime*s.SoundedSpeed + st.SilenceRealTime*s.SilenceSpeed
}

// TimeSaved is how much shorter playback was compared to playing the same
// material entirely at sounded speed.
func (st Stats) TimeSaved(s Settings) float64 {
	atSounded := st.ContentTime(s) / s.SoundedSpeed
	return atSounded - (st.SoundedRealTime + st.SilenceRealTime)
}

// add accrues a real-time span in the given regime.
func (st *Stats) add(duration float64, silent bool) {
	if duration <= 0 {
		return
	}
	if silent {
		st.SilenceRealTime += duration
	} else {
		st.SoundedRealTime += duration
	}
}
