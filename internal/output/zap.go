package output

import "go.uber.org/zap"

// ZapEmitter mirrors events into a structured log.
type ZapEmitter struct {
	logger *zap.Logger
}

func NewZapEmitter(logger *zap.Logger) *ZapEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapEmitter{logger: logger}
}

func (e *ZapEmitter) Emit(event Event) error {
	fields := []zap.Field{
		zap.String("event", string(event.Event)),
		zap.Time("at", event.Timestamp),
	}
	if event.Scope != "" {
		fields = append(fields, zap.String("scope", event.Scope))
	}
	for key, value := range event.Details {
		fields = append(fields, zap.Any(key, value))
	}

	switch event.Level {
	case LevelError:
		e.logger.Error(event.Message, fields...)
	case LevelWarn:
		e.logger.Warn(event.Message, fields...)
	default:
		e.logger.Info(event.Message, fields...)
	}
	return nil
}
