package logger

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

// defaultKeyOrder pins the attribute sequence so related events line up in
// column-ish output. Unknown keys are appended in insertion order.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"capability",
	"provider",
	"job_id",
	"outcome",
	"duration_ms",
	"sent",
	"failed",
	"count",
	"cache",
	"payload",
	"username",
	"mode",
	"http_code",
	"err",
	"err_kind",
	"attempts",
}

type handlerConfig struct {
	level    slog.Leveler
	writer   *lockedWriter
	format   logFormat
	keyOrder []string
}

type structuredHandler struct {
	cfg   handlerConfig
	attrs []slog.Attr
	rank  map[string]int
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	rank := make(map[string]int, len(cfg.keyOrder))
	for i, k := range cfg.keyOrder {
		rank[k] = i
	}
	return &structuredHandler{cfg: cfg, rank: rank}
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

func (h *structuredHandler) WithGroup(string) slog.Handler {
	// Groups are not used in this codebase; flatten.
	return h
}

type kv struct {
	key string
	val slog.Value
}

func (h *structuredHandler) Handle(ctx context.Context, rec slog.Record) error {
	pairs := make([]kv, 0, rec.NumAttrs()+len(h.attrs)+4)
	pairs = append(pairs,
		kv{"ts", slog.StringValue(rec.Time.Format(timeFormatMillis))},
		kv{"level", slog.StringValue(levelName(rec.Level))},
	)
	for _, a := range h.attrs {
		pairs = appendAttr(pairs, a)
	}
	if rec.Message != "" {
		pairs = append(pairs, kv{"msg", slog.StringValue(rec.Message)})
	}
	rec.Attrs(func(a slog.Attr) bool {
		pairs = appendAttr(pairs, a)
		return true
	})
	if rid := RIDFrom(ctx); rid != "" && !hasKey(pairs, "rid") {
		pairs = append(pairs, kv{"rid", slog.StringValue(rid)})
	}

	ordered := h.order(pairs)

	var line []byte
	switch h.cfg.format {
	case formatKV:
		line = renderKV(ordered)
	default:
		line = renderJSON(ordered)
	}
	line = append(line, '\n')
	return h.cfg.writer.Write(line)
}

func appendAttr(pairs []kv, a slog.Attr) []kv {
	if a.Equal(slog.Attr{}) {
		return pairs
	}
	a.Value = a.Value.Resolve()
	// Dedup: last write wins, matching slog semantics closely enough.
	for i := range pairs {
		if pairs[i].key == a.Key {
			pairs[i].val = a.Value
			return pairs
		}
	}
	return append(pairs, kv{a.Key, a.Value})
}

func hasKey(pairs []kv, key string) bool {
	for _, p := range pairs {
		if p.key == key {
			return true
		}
	}
	return false
}

func (h *structuredHandler) order(pairs []kv) []kv {
	known := make([]kv, 0, len(pairs))
	var rest []kv
	for _, want := range h.cfg.keyOrder {
		for _, p := range pairs {
			if p.key == want {
				known = append(known, p)
				break
			}
		}
	}
	for _, p := range pairs {
		if _, ok := h.rank[p.key]; !ok {
			rest = append(rest, p)
		}
	}
	return append(known, rest...)
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func renderKV(pairs []kv) []byte {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(kvValue(p.val))
	}
	return []byte(b.String())
}

func kvValue(v slog.Value) string {
	s := valueString(v)
	if s == "" || strings.ContainsAny(s, " \t\"=") {
		return strconv.Quote(s)
	}
	return s
}

func renderJSON(pairs []kv) []byte {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(p.key)
		b.Write(keyJSON)
		b.WriteByte(':')
		b.Write(jsonValue(p.val))
	}
	b.WriteByte('}')
	return []byte(b.String())
}

func jsonValue(v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindInt64:
		return []byte(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return []byte(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindBool:
		return []byte(strconv.FormatBool(v.Bool()))
	case slog.KindFloat64:
		if data, err := json.Marshal(v.Float64()); err == nil {
			return data
		}
	}
	data, err := json.Marshal(valueString(v))
	if err != nil {
		return []byte(`"?"`)
	}
	return data
}

func valueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(timeFormatMillis)
	default:
		return fmt.Sprint(v.Any())
	}
}

// lockedWriter serializes writes and fans them out to every sink.
type lockedWriter struct {
	mu    sync.Mutex
	sinks []*bufio.Writer
}

func newLockedWriter(writers []io.Writer) *lockedWriter {
	sinks := make([]*bufio.Writer, 0, len(writers))
	for _, w := range writers {
		if w == nil {
			continue
		}
		sinks = append(sinks, bufio.NewWriterSize(w, 16*1024))
	}
	return &lockedWriter{sinks: sinks}
}

func (w *lockedWriter) Write(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			return err
		}
		if err := sink.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *lockedWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sink := range w.sinks {
		if err := sink.Flush(); err != nil {
			return err
		}
	}
	return nil
}
