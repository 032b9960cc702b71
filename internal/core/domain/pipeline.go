package domain

import (
	"errors"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/zerr"
)

// ServerConfig configures the dev server.
type ServerConfig struct {
	Host string
	Port int
	// Dir is the served directory, relative to the project root.
	Dir string
}

// Pipeline is the static description of a project: every task, every watch
// rule and the dev server settings. It is built once at start-up.
type Pipeline struct {
	// Root is the absolute project root.
	Root string
	// Source is the source root watched in dev mode, relative to Root.
	Source string
	// Dist is the output root, relative to Root.
	Dist   string
	Tasks  []*Task
	Rules  []WatchRule
	Server ServerConfig
}

// Task returns the task with the given name.
func (p *Pipeline) Task(name string) (*Task, bool) {
	for _, t := range p.Tasks {
		if t.Name.String() == name {
			return t, true
		}
	}
	return nil, false
}

// TaskNames returns the task names in declaration order.
func (p *Pipeline) TaskNames() []string {
	names := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		names[i] = t.Name.String()
	}
	return names
}

// Validate checks task definitions and the watch rule invariants: every rule
// names a task, and every rule pattern is covered by that task's inputs.
func (p *Pipeline) Validate() error {
	var errs error
	seen := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if err := ValidateTask(t); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		name := t.Name.String()
		if seen[name] {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(ErrDuplicateTask, "invalid pipeline"), "task", name))
		}
		seen[name] = true
	}

	for _, r := range p.Rules {
		t, ok := p.Task(r.Task)
		if !ok {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(ErrRuleTaskNotFound, "invalid watch rule"), "task", r.Task))
			continue
		}
		sel := r.Selector()
		for _, pattern := range sel.Include {
			if !doublestar.ValidatePattern(pattern) {
				errs = errors.Join(errs, zerr.With(zerr.Wrap(ErrInvalidPattern, "invalid watch rule"), "pattern", pattern))
				continue
			}
			if !t.Covers(pattern) {
				errs = errors.Join(errs, zerr.With(zerr.With(zerr.Wrap(ErrRuleNotCovered, "invalid watch rule"), "task", r.Task), "pattern", pattern))
			}
		}
	}
	return errs
}

// ValidateTask checks a single task definition.
func ValidateTask(t *Task) error {
	if t == nil || t.Name.IsZero() {
		return ErrInvalidTaskName
	}
	name := t.Name.String()
	if len(t.Selector.Include) == 0 {
		return zerr.With(zerr.Wrap(ErrEmptySelector, "invalid task"), "task", name)
	}
	for _, p := range append(t.Selector.Patterns(), t.Implicit...) {
		if !doublestar.ValidatePattern(strings.TrimPrefix(p, "!")) {
			return zerr.With(zerr.With(zerr.Wrap(ErrInvalidPattern, "invalid task"), "task", name), "pattern", p)
		}
	}
	for i, s := range t.Steps {
		if err := ValidateStep(s); err != nil {
			return zerr.With(zerr.With(err, "task", name), "step", i)
		}
	}
	return nil
}

// ValidateStep checks that a step has a known kind and the options it needs.
func ValidateStep(s Step) error {
	if !s.Kind.Valid() {
		return zerr.With(zerr.Wrap(ErrUnknownStepKind, "invalid step"), "kind", string(s.Kind))
	}
	if s.Kind == KindConcat && (s.Concat == nil || s.Concat.File == "") {
		return zerr.With(zerr.Wrap(ErrMissingStepOptions, "invalid step"), "kind", string(s.Kind))
	}
	if s.Kind == KindRename && s.Rename == nil {
		return zerr.With(zerr.Wrap(ErrMissingStepOptions, "invalid step"), "kind", string(s.Kind))
	}
	return nil
}

// Covers reports whether a change to a file matching pattern can affect the
// task: the pattern equals one of the task's include or implicit patterns, or
// a representative path of the pattern is selected by them.
func (t *Task) Covers(pattern string) bool {
	candidates := append(append([]string{}, t.Selector.Include...), t.Implicit...)
	for _, c := range candidates {
		if c == pattern {
			return true
		}
	}
	sample := SamplePath(pattern)
	for _, c := range t.Implicit {
		if doublestar.MatchUnvalidated(c, sample) {
			return true
		}
	}
	for _, c := range t.Selector.Exclude {
		if doublestar.MatchUnvalidated(c, sample) {
			return false
		}
	}
	for _, c := range t.Selector.Include {
		if doublestar.MatchUnvalidated(c, sample) {
			return true
		}
	}
	return false
}

var (
	altPattern   = regexp.MustCompile(`\{([^,}]*)[^}]*\}`)
	classPattern = regexp.MustCompile(`\[[^\]]*\]`)
)

// SamplePath turns a glob pattern into one concrete path it matches.
func SamplePath(pattern string) string {
	s := altPattern.ReplaceAllString(pattern, "$1")
	s = classPattern.ReplaceAllStringFunc(s, sampleClass)
	s = strings.ReplaceAll(s, "**", "x")
	s = strings.ReplaceAll(s, "*", "x")
	s = strings.ReplaceAll(s, "?", "x")
	return path.Clean(s)
}

// sampleClass picks a character matched by a bracket expression.
func sampleClass(class string) string {
	for _, c := range strings.Split("axyz0_-"+class, "") {
		if c == "[" || c == "]" || c == "!" || c == "^" {
			continue
		}
		if doublestar.MatchUnvalidated(class, c) {
			return c
		}
	}
	return "x"
}
