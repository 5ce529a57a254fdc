package adapters

import (
	"context"
	"log/slog"
	"time"

	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/logger"
)

var _ slog.Handler = (*SlogHandler)(nil)

// SlogHandler is a log/slog handler that ships records to a sink. Groups
// become nested objects.
type SlogHandler struct {
	sink   logger.Sink
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

func NewSlogHandler(sink logger.Sink, level slog.Leveler) *SlogHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &SlogHandler{
		sink:  sink,
		level: level,
	}
}

func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	rec := logger.Record{}

	// Handler attrs are stored already nested under their groups; record
	// attrs go inside every open group.
	for _, a := range h.attrs {
		addAttr(rec, a)
	}
	scope := map[string]interface{}(rec)
	for _, g := range h.groups {
		next, ok := scope[g].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			scope[g] = next
		}
		scope = next
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(scope, a)
		return true
	})
	pruneEmpty(rec, h.groups)

	rec["level"] = string(slogLevel(r.Level))
	rec["message"] = r.Message
	if !r.Time.IsZero() {
		rec["timestamp"] = r.Time.UTC().Format(time.RFC3339Nano)
	}

	h.sink.Log(rec, nil)
	return nil
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.clone()
	for _, a := range attrs {
		h2.attrs = append(h2.attrs, nestAttr(h.groups, a))
	}
	return h2
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.groups = append(h2.groups, name)
	return h2
}

func (h *SlogHandler) clone() *SlogHandler {
	return &SlogHandler{
		sink:   h.sink,
		level:  h.level,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func nestAttr(path []string, a slog.Attr) slog.Attr {
	for i := len(path) - 1; i >= 0; i-- {
		a = slog.Group(path[i], a)
	}
	return a
}

func addAttr(dst map[string]interface{}, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if v.Kind() != slog.KindGroup {
		dst[a.Key] = slogValue(v)
		return
	}

	attrs := v.Group()
	if len(attrs) == 0 {
		return
	}
	if a.Key == "" {
		for _, ga := range attrs {
			addAttr(dst, ga)
		}
		return
	}

	sub, ok := dst[a.Key].(map[string]interface{})
	if !ok {
		sub = map[string]interface{}{}
		dst[a.Key] = sub
	}
	for _, ga := range attrs {
		addAttr(sub, ga)
	}
}

func slogValue(v slog.Value) interface{} {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	default:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	}
}

// pruneEmpty drops group objects that ended up with no attributes.
func pruneEmpty(rec logger.Record, groups []string) {
	if len(groups) == 0 {
		return
	}
	var walk func(m map[string]interface{}, path []string) bool
	walk = func(m map[string]interface{}, path []string) bool {
		if len(path) == 0 {
			return len(m) == 0
		}
		sub, ok := m[path[0]].(map[string]interface{})
		if !ok {
			return len(m) == 0
		}
		if walk(sub, path[1:]) {
			delete(m, path[0])
		}
		return len(m) == 0
	}
	walk(rec, groups)
}

func slogLevel(l slog.Level) logger.LogLevel {
	switch {
	case l < slog.LevelInfo:
		return logger.LogLevelDebug
	case l < slog.LevelWarn:
		return logger.LogLevelInfo
	case l < slog.LevelError:
		return logger.LogLevelWarn
	default:
		return logger.LogLevelError
	}
}
