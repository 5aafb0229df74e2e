package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a log severity level.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

// ParseLevel parses one of debug, info, warn (or warning) and error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Info, fmt.Errorf("unknown log level %q", s)
	}
}

// Format is a log output format.
type Format string

const (
	Logfmt Format = "logfmt"
	JSON   Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "logfmt":
		return Logfmt, nil
	case "json":
		return JSON, nil
	default:
		return Logfmt, fmt.Errorf("unknown log format %q", s)
	}
}

// Logger is a small structured logger writing one line per record.
//
// All methods are safe for concurrent use, including on loggers derived
// with With, which share the parent's writer and lock.
type Logger struct {
	sink   *sink
	level  Level
	format Format
	ctx    []any
}

type sink struct {
	mu  sync.Mutex
	out io.Writer
}

func New(out io.Writer, level Level, format Format) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{sink: &sink{out: out}, level: level, format: format}
}

// With returns a logger that adds kv to every record.
func (l *Logger) With(kv ...any) *Logger {
	ctx := make([]any, 0, len(l.ctx)+len(kv))
	ctx = append(append(ctx, l.ctx...), kv...)
	return &Logger{sink: l.sink, level: l.level, format: l.format, ctx: ctx}
}

// Enabled reports whether records at lvl are written.
func (l *Logger) Enabled(lvl Level) bool { return lvl >= l.level }

func (l *Logger) Debug(msg string, kv ...any) { l.log(Debug, msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.log(Info, msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.log(Warn, msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.log(Error, msg, kv...) }

func (l *Logger) log(lvl Level, msg string, kv ...any) {
	if !l.Enabled(lvl) {
		return
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	levelStr := lvl.String()
	if len(l.ctx) > 0 {
		kv = append(append([]any{}, l.ctx...), kv...)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	switch l.format {
	case JSON:
		m := map[string]any{
			"ts":    now,
			"level": levelStr,
			"msg":   msg,
		}
		addKV(m, kv...)
		b, err := json.Marshal(m)
		if err != nil {
			b, _ = json.Marshal(map[string]any{"ts": now, "level": levelStr, "msg": msg, "log_error": err.Error()})
		}
		_, _ = l.sink.out.Write(append(b, '\n'))
	default:
		// logfmt-ish: values are quoted when needed, keys are written as given.
		sb := strings.Builder{}
		sb.WriteString("ts=")
		sb.WriteString(escapeLogfmt(now))
		sb.WriteString(" level=")
		sb.WriteString(escapeLogfmt(levelStr))
		sb.WriteString(" msg=")
		sb.WriteString(escapeLogfmt(msg))
		for i := 0; i+1 < len(kv); i += 2 {
			k, ok := kv[i].(string)
			if !ok {
				continue
			}
			sb.WriteString(" ")
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(escapeLogfmt(fmt.Sprint(kv[i+1])))
		}
		sb.WriteString("\n")
		_, _ = l.sink.out.Write([]byte(sb.String()))
	}
}

func (lvl Level) String() string {
	switch lvl {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func addKV(m map[string]any, kv ...any) {
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		v := kv[i+1]
		if err, ok := v.(error); ok {
			v = err.Error()
		} else if s, ok := v.(fmt.Stringer); ok {
			v = s.String()
		}
		m[k] = v
	}
}

func escapeLogfmt(s string) string {
	// Quote if contains spaces or special chars; keep it simple.
	if s == "" {
		return `""`
	}
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '"', '=':
			return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
		}
	}
	return s
}

