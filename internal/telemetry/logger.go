// Package telemetry wraps go.uber.org/zap behind a narrow Logger
// interface. The core logs at most at WARN when isolating a failing
// subscriber callback and at INFO when Reset() is called on a stateful
// operator; it never logs on the per-record hot path.
package telemetry

import "go.uber.org/zap"

// Logger is the structured-logging surface the core depends on. It is an
// interface so tests can substitute a no-op or observed logger without
// pulling in zap.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

type zapLogger struct {
	z *zap.Logger
}

// NewProduction builds a Logger backed by zap's production configuration.
func NewProduction() (Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{z: z}, nil
}

// NewNop returns a Logger that discards everything, used as the default
// for core constructors that don't take an explicit logger.
func NewNop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
