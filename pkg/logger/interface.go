package logger

import (
	"context"
	"net"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	DebugContext(ctx context.Context, msg string, fields ...Field)
	InfoContext(ctx context.Context, msg string, fields ...Field)
	WarnContext(ctx context.Context, msg string, fields ...Field)
	ErrorContext(ctx context.Context, msg string, fields ...Field)
	FatalContext(ctx context.Context, msg string, fields ...Field)

	WithFields(fields ...Field) Logger

	Close() error
}

// Sink is the capability a host logging framework is given. Log accepts a
// record and calls done once the record is queued, never on delivery. Close
// is idempotent.
type Sink interface {
	Log(rec Record, done func())
	Close() error
}

type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}
