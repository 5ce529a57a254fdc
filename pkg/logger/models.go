package logger

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// Record is a free-form structured log record. It must carry a "message"
// key and may carry "level" plus any other fields.
type Record map[string]interface{}

func (r Record) Message() string {
	s, _ := r["message"].(string)
	return s
}

func (r Record) Level() LogLevel {
	switch v := r["level"].(type) {
	case LogLevel:
		return v
	case string:
		return LogLevel(v)
	default:
		return ""
	}
}

func (r Record) Clone() Record {
	c := make(Record, len(r)+1)
	for k, v := range r {
		c[k] = v
	}
	return c
}

type Field struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}
