package logger

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// messager matches errors that can report their own message without the
// chain, such as zerr.Error and domain.StepFailure.
type messager interface {
	Message() string
}

type metadataer interface {
	Metadata() map[string]any
}

type multiUnwrapper interface {
	Unwrap() []error
}

// errorEntry is one level of an error chain.
type errorEntry struct {
	message  string
	metadata map[string]any
}

// collectErrorEntries flattens an error chain into one entry per message.
// Joined errors contribute the entries of every branch. zerr wrappers that
// only carry metadata are merged into the entry that follows them.
func collectErrorEntries(err error) []errorEntry {
	var entries []errorEntry
	pending := map[string]any{}

	for current := err; current != nil; {
		if m, ok := current.(metadataer); ok {
			maps.Copy(pending, m.Metadata())
		}

		if j, ok := current.(multiUnwrapper); ok && !isMessager(current) {
			for _, branch := range j.Unwrap() {
				entries = append(entries, collectErrorEntries(branch)...)
			}
			break
		}

		m, ok := current.(messager)
		if !ok {
			entries = append(entries, errorEntry{message: current.Error(), metadata: pending})
			break
		}

		if msg := m.Message(); msg != "" {
			entries = append(entries, errorEntry{message: msg, metadata: pending})
			pending = map[string]any{}
		}
		current = errors.Unwrap(current)
	}

	if len(entries) > 0 && len(pending) > 0 {
		maps.Copy(entries[len(entries)-1].metadata, pending)
	}
	return entries
}

func isMessager(err error) bool {
	_, ok := err.(messager)
	return ok
}

// formatErrorEntries renders entries as an "Error:" line followed by an
// indented "Caused by:" list.
func formatErrorEntries(entries []errorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.message, "\n")

		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			for _, line := range msgLines[1:] {
				lines = append(lines, "       "+line)
			}
			lines = append(lines, formatMetadata(entry.metadata, "       ")...)
			continue
		}

		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, "      "+line)
		}
		lines = append(lines, formatMetadata(entry.metadata, "      ")...)
	}

	return strings.Join(lines, "\n")
}

func formatMetadata(metadata map[string]any, indent string) []string {
	keys := slices.Sorted(maps.Keys(metadata))
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, metadata[k]))
	}
	return lines
}

func entriesLogValue(entries []errorEntry) slog.Value {
	attrs := make([]slog.Attr, 0, len(entries))
	for i, entry := range entries {
		fields := []any{slog.String("message", entry.message)}
		for _, k := range slices.Sorted(maps.Keys(entry.metadata)) {
			fields = append(fields, slog.Any(k, entry.metadata[k]))
		}
		attrs = append(attrs, slog.Group(fmt.Sprintf("%d", i), fields...))
	}
	return slog.GroupValue(attrs...)
}
