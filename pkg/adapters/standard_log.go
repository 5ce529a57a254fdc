package adapters

import (
	"io"
	"log"
	"strings"

	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/logger"
)

type StandardLogAdapter struct {
	writer *logWriter
}

type logWriter struct {
	sink  logger.Sink
	level logger.LogLevel
}

// NewStandardLogAdapter redirects the standard library logger to sink.
func NewStandardLogAdapter(sink logger.Sink) *StandardLogAdapter {
	adapter := &StandardLogAdapter{
		writer: &logWriter{
			sink:  sink,
			level: logger.LogLevelInfo,
		},
	}

	log.SetOutput(adapter.writer)

	return adapter
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	message := strings.TrimSpace(string(p))
	if message == "" {
		return len(p), nil
	}

	message = strings.TrimPrefix(message, log.Prefix())

	w.sink.Log(logger.Record{
		"level":   string(w.level),
		"message": message,
	}, nil)

	return len(p), nil
}

// SetLevel sets the level attached to every line written through the
// adapter.
func (a *StandardLogAdapter) SetLevel(level logger.LogLevel) {
	a.writer.level = level
}

func (a *StandardLogAdapter) GetWriter() io.Writer {
	return a.writer
}
