package logger

import (
	"context"
	"sync"
	"time"
)

type tcpLogger struct {
	sink          Sink
	owner         bool
	defaultFields map[string]interface{}
	mu            sync.RWMutex
}

// New starts a Transport and wraps it in the leveled Logger API. Closing the
// returned Logger closes the transport.
func New(config Config) (Logger, error) {
	t, err := NewTransport(config)
	if err != nil {
		return nil, err
	}
	return &tcpLogger{
		sink:          t,
		owner:         true,
		defaultFields: make(map[string]interface{}),
	}, nil
}

// NewWithSink builds a Logger on top of an existing sink. Close on the
// result does not close the sink.
func NewWithSink(sink Sink) Logger {
	return &tcpLogger{
		sink:          sink,
		defaultFields: make(map[string]interface{}),
	}
}

func (l *tcpLogger) Debug(msg string, fields ...Field) {
	l.log(LogLevelDebug, msg, fields...)
}

func (l *tcpLogger) Info(msg string, fields ...Field) {
	l.log(LogLevelInfo, msg, fields...)
}

func (l *tcpLogger) Warn(msg string, fields ...Field) {
	l.log(LogLevelWarn, msg, fields...)
}

func (l *tcpLogger) Error(msg string, fields ...Field) {
	l.log(LogLevelError, msg, fields...)
}

// Fatal ships the record at fatal level. It does not exit the process.
func (l *tcpLogger) Fatal(msg string, fields ...Field) {
	l.log(LogLevelFatal, msg, fields...)
}

func (l *tcpLogger) DebugContext(ctx context.Context, msg string, fields ...Field) {
	l.logContext(ctx, LogLevelDebug, msg, fields...)
}

func (l *tcpLogger) InfoContext(ctx context.Context, msg string, fields ...Field) {
	l.logContext(ctx, LogLevelInfo, msg, fields...)
}

func (l *tcpLogger) WarnContext(ctx context.Context, msg string, fields ...Field) {
	l.logContext(ctx, LogLevelWarn, msg, fields...)
}

func (l *tcpLogger) ErrorContext(ctx context.Context, msg string, fields ...Field) {
	l.logContext(ctx, LogLevelError, msg, fields...)
}

func (l *tcpLogger) FatalContext(ctx context.Context, msg string, fields ...Field) {
	l.logContext(ctx, LogLevelFatal, msg, fields...)
}

func (l *tcpLogger) WithFields(fields ...Field) Logger {
	newLogger := &tcpLogger{
		sink:          l.sink,
		defaultFields: make(map[string]interface{}),
	}

	l.mu.RLock()
	for k, v := range l.defaultFields {
		newLogger.defaultFields[k] = v
	}
	l.mu.RUnlock()

	for _, field := range fields {
		newLogger.defaultFields[field.Key] = field.Value
	}

	return newLogger
}

func (l *tcpLogger) Close() error {
	if !l.owner {
		return nil
	}
	return l.sink.Close()
}

func (l *tcpLogger) log(level LogLevel, msg string, fields ...Field) {
	l.logContext(context.Background(), level, msg, fields...)
}

func (l *tcpLogger) logContext(_ context.Context, level LogLevel, msg string, fields ...Field) {
	rec := make(Record, len(fields)+3)

	l.mu.RLock()
	for k, v := range l.defaultFields {
		rec[k] = v
	}
	l.mu.RUnlock()

	for _, field := range fields {
		rec[field.Key] = field.Value
	}

	rec["level"] = string(level)
	rec["message"] = msg
	if _, ok := rec["timestamp"]; !ok {
		rec["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	}

	l.sink.Log(rec, nil)
}
