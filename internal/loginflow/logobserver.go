package loginflow

import (
	"go.uber.org/zap"

	"github.com/dropDatabas3/hellojohn-login/internal/observability/logger"
)

// LogObserver writes coordinator transitions to a zap logger.
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver returns an observer logging under l (the global logger if nil).
func NewLogObserver(l *zap.Logger) *LogObserver {
	if l == nil {
		l = logger.L()
	}
	return &LogObserver{log: l.With(logger.Component("loginflow"))}
}

func (o *LogObserver) Admitted(a Attempt) {
	o.log.Debug("attempt admitted",
		logger.AttemptID(a.ID.String()),
		logger.Origin(a.Origin.String()),
	)
}

func (o *LogObserver) Rejected(origin, owner Origin) {
	o.log.Debug("attempt rejected: gate held",
		logger.Origin(origin.String()),
		logger.String("owner", owner.String()),
	)
}

func (o *LogObserver) Resolved(a Attempt) {
	fields := []zap.Field{
		logger.AttemptID(a.ID.String()),
		logger.Origin(a.Origin.String()),
		logger.Outcome(a.Status.String()),
	}
	if a.EndedAt != nil {
		fields = append(fields, logger.DurationMs(a.EndedAt.Sub(a.StartedAt).Milliseconds()))
	}
	if a.Status == StatusFailed {
		o.log.Info("attempt failed", append(fields, logger.String("error_message", a.ErrorMessage))...)
		return
	}
	o.log.Info("attempt succeeded", fields...)
}

func (o *LogObserver) Abandoned(a Attempt) {
	o.log.Info("attempt abandoned",
		logger.AttemptID(a.ID.String()),
		logger.Origin(a.Origin.String()),
	)
}
