package observability

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// JSONLogger writes one JSON object per line to the configured writer.
// The repository layer calls it for cache activity, hook failures and
// version append errors; fields are caller-supplied and the logger adds
// the event name and a UTC timestamp.
type JSONLogger struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLogger wraps the writer in a line-oriented logger. A nil writer
// yields a logger that discards everything.
func NewJSONLogger(w io.Writer) *JSONLogger {
	if w == nil {
		w = io.Discard
	}
	return &JSONLogger{enc: json.NewEncoder(w)}
}

// Log emits a single line. Encoding failures are swallowed; logging is
// best effort and must not disturb the commit path.
func (l *JSONLogger) Log(_ context.Context, event string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	entry["event"] = event
	entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.enc.Encode(entry)
}
