package adapters

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/logger"
)

// LogrusHook forwards every logrus entry to a sink.
type LogrusHook struct {
	sink logger.Sink
}

func NewLogrusHook(sink logger.Sink) *LogrusHook {
	return &LogrusHook{
		sink: sink,
	}
}

func (hook *LogrusHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *LogrusHook) Fire(entry *logrus.Entry) error {
	rec := make(logger.Record, len(entry.Data)+3)
	for key, value := range entry.Data {
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		rec[key] = value
	}

	rec["level"] = string(logrusLevel(entry.Level))
	rec["message"] = entry.Message
	if !entry.Time.IsZero() {
		rec["timestamp"] = entry.Time.UTC().Format(time.RFC3339Nano)
	}

	hook.sink.Log(rec, nil)
	return nil
}

func logrusLevel(l logrus.Level) logger.LogLevel {
	switch l {
	case logrus.TraceLevel, logrus.DebugLevel:
		return logger.LogLevelDebug
	case logrus.InfoLevel:
		return logger.LogLevelInfo
	case logrus.WarnLevel:
		return logger.LogLevelWarn
	case logrus.ErrorLevel:
		return logger.LogLevelError
	case logrus.FatalLevel, logrus.PanicLevel:
		return logger.LogLevelFatal
	default:
		return logger.LogLevelInfo
	}
}

// InstallLogrusHook registers the hook on the standard logrus logger.
func InstallLogrusHook(sink logger.Sink) {
	logrus.AddHook(NewLogrusHook(sink))
}

// LogrusFormatter ships each entry as it is formatted and then hands it to
// the wrapped formatter for local output.
type LogrusFormatter struct {
	hook     *LogrusHook
	original logrus.Formatter
}

func NewLogrusFormatter(sink logger.Sink, original logrus.Formatter) *LogrusFormatter {
	return &LogrusFormatter{
		hook:     NewLogrusHook(sink),
		original: original,
	}
}

func (f *LogrusFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	f.hook.Fire(entry)

	if f.original != nil {
		return f.original.Format(entry)
	}

	return []byte(fmt.Sprintf("[%s] %s\n", entry.Level.String(), entry.Message)), nil
}
