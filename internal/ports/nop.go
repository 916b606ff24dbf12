package ports

import "context"

// NopLogger is a Logger that discards all messages. It is the default for
// engine components constructed without a logger.
type NopLogger struct {
	level Level
}

// NewNopLogger creates a new no-op logger.
func NewNopLogger() *NopLogger {
	return &NopLogger{level: LevelInfo}
}

// Debug does nothing.
func (l *NopLogger) Debug(_ context.Context, _ string, _ ...Field) {}

// Info does nothing.
func (l *NopLogger) Info(_ context.Context, _ string, _ ...Field) {}

// Warn does nothing.
func (l *NopLogger) Warn(_ context.Context, _ string, _ ...Field) {}

// Error does nothing.
func (l *NopLogger) Error(_ context.Context, _ string, _ ...Field) {}

// With returns itself.
func (l *NopLogger) With(_ ...Field) Logger {
	return l
}

// Level returns the log level.
func (l *NopLogger) Level() Level {
	return l.level
}

// SetLevel sets the log level.
func (l *NopLogger) SetLevel(level Level) {
	l.level = level
}

// OrNop returns logger, or a NopLogger when logger is nil.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return NewNopLogger()
	}
	return logger
}

// LoggerOrNop returns the context's logger or a NopLogger.
func LoggerOrNop(ctx context.Context) Logger {
	return OrNop(LoggerFromContext(ctx))
}

var _ Logger = (*NopLogger)(nil)
