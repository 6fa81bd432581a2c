// SPDX-License-Identifier: EPL-2.0

package timing

import "github.com/sirupsen/logrus"

// Decision is a snapshot of one scheduling step, handed to the observer.
type Decision struct {
	Event       TransitionEvent
	Rate        float64
	Schedule    StretchSchedule
	Interrupted bool // the previous ramp was cut short by this decision
}

// Observer receives scheduling decisions for debugging and instrumentation.
// A nil observer costs a single nil check per transition; there is no
// environment probing anywhere on the hot path.
type Observer interface {
	OnDecision(Decision)
}

// logObserver logs every scheduling decision with structured fields.
type logObserver struct {
	logger *logrus.Logger
}

// NewLogObserver returns an Observer backed by the given logrus logger.
// Passing nil uses the logrus standard logger.
func NewLogObserver(logger *logrus.Logger) Observer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &logObserver{logger: logger}
}

func (o *logObserver) OnDecision(d Decision) {
	o.logger.WithFields(logrus.Fields{
		"event":       d.Event.Kind.String(),
		"event_time":  d.Event.Time,
		"rate":        d.Rate,
		"start_time":  d.Schedule.StartTime,
		"start_value": d.Schedule.StartValue,
		"end_time":    d.Schedule.EndTime,
		"end_value":   d.Schedule.EndValue,
		"interrupted": d.Interrupted,
	}).Debug("stretch schedule updated")
}
