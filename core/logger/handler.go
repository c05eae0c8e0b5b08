package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

type logFormat int

const (
	formatJSON logFormat = iota
	formatKV
)

// defaultKeyOrder fixes the position of well-known keys at the head of each line.
// Remaining keys are appended alphabetically; err/err_code/duration_ms go last.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status", "rid",
	"handler", "update_id", "user_id", "chat_id",
}

var tailKeys = []string{"duration_ms", "err", "err_code"}

type handlerConfig struct {
	level  slog.Leveler
	writer io.Writer
	format logFormat
}

// structuredHandler renders slog records as ordered KV or JSON lines and
// merges correlation fields stored in the context by the transport layer.
type structuredHandler struct {
	cfg   handlerConfig
	attrs []slog.Attr
	mu    *sync.Mutex
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	return &structuredHandler{cfg: cfg, mu: &sync.Mutex{}}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.cfg.level != nil {
		min = h.cfg.level.Level()
	}
	return level >= min
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	// Groups are flattened; the schema is intentionally flat.
	return h
}

func (h *structuredHandler) Handle(ctx context.Context, rec slog.Record) error {
	fields := make(map[string]any, rec.NumAttrs()+len(h.attrs)+8)
	fields["ts"] = rec.Time.Format(time.RFC3339Nano)
	fields["level"] = rec.Level.String()
	fields["event"] = rec.Message

	for _, a := range h.attrs {
		putAttr(fields, a)
	}
	rec.Attrs(func(a slog.Attr) bool {
		putAttr(fields, a)
		return true
	})
	addContextFields(ctx, fields)

	var line []byte
	if h.cfg.format == formatKV {
		line = formatKVLine(fields)
	} else {
		var err error
		line, err = formatJSONLine(fields)
		if err != nil {
			return err
		}
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.cfg.writer.Write(line)
	return err
}

func putAttr(fields map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindDuration:
		fields[a.Key] = v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		fields[a.Key] = v.Time().Format(time.RFC3339Nano)
	default:
		fields[a.Key] = v.Any()
	}
}

func addContextFields(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	if _, ok := fields["rid"]; !ok {
		if rid := RIDFrom(ctx); rid != "" {
			fields["rid"] = rid
		}
	}
	if rid, ok := fields["rid"].(string); ok {
		fields["rid"] = CompactRID(rid)
	}
	if _, ok := fields["handler"]; !ok {
		if hn := HandlerFrom(ctx); hn != "" {
			fields["handler"] = hn
		}
	}
	if _, ok := fields["update_id"]; !ok {
		if id := UpdateIDFrom(ctx); id != 0 {
			fields["update_id"] = id
		}
	}
	if _, ok := fields["user_id"]; !ok {
		if id := UserIDFrom(ctx); id != 0 {
			fields["user_id"] = id
		}
	}
	if _, ok := fields["chat_id"]; !ok {
		if id := ChatIDFrom(ctx); id != 0 {
			fields["chat_id"] = id
		}
	}
}

func orderedKeys(fields map[string]any) []string {
	seen := make(map[string]struct{}, len(fields))
	keys := make([]string, 0, len(fields))
	for _, k := range defaultKeyOrder {
		if _, ok := fields[k]; ok {
			keys = append(keys, k)
			seen[k] = struct{}{}
		}
	}
	for _, k := range tailKeys {
		seen[k] = struct{}{}
	}
	var rest []string
	for k := range fields {
		if _, ok := seen[k]; ok {
			continue
		}
		rest = append(rest, k)
	}
	sort.Strings(rest)
	keys = append(keys, rest...)
	for _, k := range tailKeys {
		if _, ok := fields[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func formatJSONLine(fields map[string]any) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range orderedKeys(fields) {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(fields[k])
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func formatKVLine(fields map[string]any) []byte {
	var b strings.Builder
	for i, k := range orderedKeys(fields) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValueKV(fields[k]))
	}
	return []byte(b.String())
}

func formatValueKV(val any) string {
	s := fmt.Sprintf("%v", val)
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
