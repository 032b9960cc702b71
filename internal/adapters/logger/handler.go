package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/glaze/internal/ui/output"
	"go.trai.ch/glaze/internal/ui/style"
)

// PrettyHandler is a slog.Handler that writes one colored line per record:
// the message followed by key=value pairs.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	// fields are attributes added through WithAttrs, already qualified by
	// the groups open at the time.
	fields []string
	// prefix qualifies keys with the open groups, e.g. "run.".
	prefix string
}

// NewPrettyHandler creates a new PrettyHandler writing to w. Records below
// opts.Level (Info by default) are dropped.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	msg, color := h.decorate(r.Level, r.Message)

	fields := slices.Clip(h.fields)
	r.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.prefix, attr)
		return true
	})
	if len(fields) > 0 {
		msg += " " + strings.Join(fields, " ")
	}

	_, err := h.out.WriteString(h.out.String(msg).Foreground(color).String() + "\n")
	return err
}

func (h *PrettyHandler) decorate(level slog.Level, msg string) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross + " " + msg, h.out.Color(string(style.Red))
	case level >= slog.LevelWarn:
		return style.Warning + " " + msg, h.out.Color(string(style.Yellow))
	default:
		return msg, h.out.Color(string(style.Slate))
	}
}

// WithAttrs returns a handler that prints attrs on every record, qualified
// by the groups open now.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	c.fields = slices.Clip(h.fields)
	for _, attr := range attrs {
		c.fields = appendField(c.fields, h.prefix, attr)
	}
	return &c
}

// WithGroup returns a handler that qualifies later attributes with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

// appendField formats attr as key=value. Group values are flattened with
// dotted keys; empty attributes are skipped.
func appendField(fields []string, prefix string, attr slog.Attr) []string {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return fields
	}

	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, a := range attr.Value.Group() {
			fields = appendField(fields, prefix, a)
		}
		return fields
	}

	return append(fields, prefix+attr.Key+"="+quote(attr.Value.String()))
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
