package powermenu

import "go.uber.org/zap"

// LogKind classifies a LogEvent.
type LogKind string

const (
	LogAttached       LogKind = "attached"
	LogDetached       LogKind = "detached"
	LogEmitted        LogKind = "emitted"
	LogDeliveryFailed LogKind = "delivery_failed"
	LogReadFault      LogKind = "read_fault"
)

// LogEvent describes one lifecycle or delivery occurrence on a stream.
type LogEvent struct {
	Component string
	Kind      LogKind
	Visible   bool
	Err       error
}

// Logger records signal events. Implementations must be safe for concurrent
// use; events are reported from whichever goroutine delivered the upstream
// notification.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// WithLogger attaches a logger to the Signal.
func WithLogger(logger Logger) Option {
	return func(cfg *signalConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

type zapLogger struct {
	logger *zap.Logger
}

// NewZapLogger returns a Logger writing to logger. Delivery failures are
// reported at warn level, read faults at error level, everything else at
// debug level.
func NewZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return zapLogger{logger: logger}
}

func (l zapLogger) Log(event LogEvent) {
	fields := []zap.Field{
		zap.String("component", event.Component),
		zap.String("kind", string(event.Kind)),
	}
	switch event.Kind {
	case LogDeliveryFailed:
		fields = append(fields, zap.Bool("visible", event.Visible), zap.Error(event.Err))
		l.logger.Warn("failed to deliver power menu visibility", fields...)
	case LogReadFault:
		fields = append(fields, zap.Error(event.Err))
		l.logger.Error("power menu visibility read fault", fields...)
	case LogEmitted:
		fields = append(fields, zap.Bool("visible", event.Visible))
		l.logger.Debug("power menu visibility emitted", fields...)
	default:
		l.logger.Debug("power menu visibility stream "+string(event.Kind), fields...)
	}
}
