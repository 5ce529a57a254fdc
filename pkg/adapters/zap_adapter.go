package adapters

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/logger"
)

// ZapCore is a zapcore.Core that turns entries into records for a sink.
type ZapCore struct {
	zapcore.LevelEnabler
	sink   logger.Sink
	fields map[string]interface{}
}

func NewZapCore(sink logger.Sink) zapcore.Core {
	return NewZapCoreLevel(sink, zapcore.InfoLevel)
}

func NewZapCoreLevel(sink logger.Sink, level zapcore.LevelEnabler) zapcore.Core {
	return &ZapCore{
		LevelEnabler: level,
		sink:         sink,
		fields:       map[string]interface{}{},
	}
}

func (zc *ZapCore) With(fields []zapcore.Field) zapcore.Core {
	enc := zapcore.NewMapObjectEncoder()
	for k, v := range zc.fields {
		enc.Fields[k] = v
	}
	for _, field := range fields {
		field.AddTo(enc)
	}

	return &ZapCore{
		LevelEnabler: zc.LevelEnabler,
		sink:         zc.sink,
		fields:       enc.Fields,
	}
}

func (zc *ZapCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if zc.Enabled(entry.Level) {
		return checked.AddCore(entry, zc)
	}
	return checked
}

func (zc *ZapCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for k, v := range zc.fields {
		enc.Fields[k] = v
	}
	for _, field := range fields {
		field.AddTo(enc)
	}

	rec := logger.Record(enc.Fields)
	rec["level"] = string(zapLevel(entry.Level))
	rec["message"] = entry.Message
	if entry.LoggerName != "" {
		rec["logger"] = entry.LoggerName
	}
	if !entry.Time.IsZero() {
		rec["timestamp"] = entry.Time.UTC().Format(time.RFC3339Nano)
	}

	zc.sink.Log(rec, nil)
	return nil
}

func zapLevel(l zapcore.Level) logger.LogLevel {
	switch l {
	case zapcore.DebugLevel:
		return logger.LogLevelDebug
	case zapcore.InfoLevel:
		return logger.LogLevelInfo
	case zapcore.WarnLevel:
		return logger.LogLevelWarn
	case zapcore.ErrorLevel:
		return logger.LogLevelError
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return logger.LogLevelFatal
	default:
		return logger.LogLevelInfo
	}
}

func (zc *ZapCore) Sync() error {
	return nil
}

func NewZapLogger(sink logger.Sink) *zap.Logger {
	return zap.New(NewZapCore(sink))
}

func NewZapSugaredLogger(sink logger.Sink) *zap.SugaredLogger {
	return NewZapLogger(sink).Sugar()
}
