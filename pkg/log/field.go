package log

import "time"

// Field is one structured key/value attached to a log record.
type Field struct {
	Key   string
	Value any
}

func Str(key, value string) Field          { return Field{Key: key, Value: value} }
func Int(key string, value int) Field      { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field  { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field    { return Field{Key: key, Value: value} }
func Any(key string, value any) Field      { return Field{Key: key, Value: value} }
func Dur(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Err attaches an error under the conventional "error" key.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Component tags the emitting subsystem.
func Component(name string) Field { return Str("component", name) }
