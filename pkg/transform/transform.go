// Package transform turns raw log records into wire-ready objects.
//
// A Transformer is consulted once per record: Transform returns a Builder,
// the caller may still amend the record (the shipper injects its label at
// this point), and Build produces the object that is serialized onto the
// wire.
package transform

import (
	"github.com/segmentio/encoding/json"
)

type Transformer interface {
	Transform(rec map[string]interface{}) Builder
}

type Builder interface {
	Build(rec map[string]interface{}) map[string]interface{}
}

// Func adapts a plain function to a Transformer whose Builder applies it.
type Func func(rec map[string]interface{}) map[string]interface{}

func (f Func) Transform(map[string]interface{}) Builder {
	return f
}

func (f Func) Build(rec map[string]interface{}) map[string]interface{} {
	return f(rec)
}

// Identity ships records unchanged.
var Identity Transformer = Func(func(rec map[string]interface{}) map[string]interface{} {
	return rec
})

// JSONMerge is the default transformer. A string message that parses as a
// JSON object is removed and its fields are merged into the record, so
// callers can log plain text and structured payloads through the same call.
// Anything else is left untouched.
var JSONMerge Transformer = Func(mergeJSONMessage)

func mergeJSONMessage(rec map[string]interface{}) map[string]interface{} {
	msg, ok := rec["message"].(string)
	if !ok {
		return rec
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(msg), &payload); err != nil || payload == nil {
		return rec
	}

	out := make(map[string]interface{}, len(rec)+len(payload))
	for k, v := range rec {
		if k == "message" {
			continue
		}
		out[k] = v
	}
	for k, v := range payload {
		out[k] = v
	}
	return out
}

// Encode serializes a wire object as a single newline-terminated JSON line.
func Encode(dst []byte, obj map[string]interface{}) ([]byte, error) {
	b, err := json.Append(dst, obj, json.SortMapKeys)
	if err != nil {
		return dst, err
	}
	return append(b, '\n'), nil
}
