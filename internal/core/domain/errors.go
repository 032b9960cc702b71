package domain

import (
	"errors"
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrDuplicateTask is returned when registering a task whose name is already registered.
	ErrDuplicateTask = zerr.New("task already registered")

	// ErrTaskNotFound is returned when a requested task is not registered.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrInvalidTaskName is returned when a task has an empty name.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrUnknownStepKind is returned when a step descriptor names a kind no runner handles.
	ErrUnknownStepKind = zerr.New("unknown step kind")

	// ErrMissingStepOptions is returned when a step lacks the options its kind requires.
	ErrMissingStepOptions = zerr.New("missing step options")

	// ErrEmptySelector is returned when a task selects no include patterns.
	ErrEmptySelector = zerr.New("task selector has no include patterns")

	// ErrInvalidPattern is returned when a glob pattern cannot be parsed.
	ErrInvalidPattern = zerr.New("invalid glob pattern")

	// ErrRuleTaskNotFound is returned when a watch rule references an unregistered task.
	ErrRuleTaskNotFound = zerr.New("watch rule references unknown task")

	// ErrRuleNotCovered is returned when a watch rule pattern is not covered by its task's selector.
	ErrRuleNotCovered = zerr.New("watch rule pattern is not covered by the task inputs")

	// ErrStepFailed is the sentinel matched by every StepFailure.
	ErrStepFailed = zerr.New("step failed")

	// ErrBuildFailed is returned when one or more tasks of a build failed.
	ErrBuildFailed = zerr.New("build failed")

	// ErrOutputPathOutsideRoot is returned when an output path is outside the project root.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside project root")

	// ErrInputResolutionFailed is returned when a task's selector cannot be expanded.
	ErrInputResolutionFailed = zerr.New("failed to resolve inputs")

	// ErrInputReadFailed is returned when a selected source file cannot be read.
	ErrInputReadFailed = zerr.New("failed to read input file")

	// ErrOutputWriteFailed is returned when an output file cannot be written.
	ErrOutputWriteFailed = zerr.New("failed to write output file")

	// ErrOutputCollision is returned when two assets of a task map to the same output path.
	ErrOutputCollision = zerr.New("assets map to the same output path")

	// ErrFailedToCleanOutput is returned when a stale output cannot be removed.
	ErrFailedToCleanOutput = zerr.New("failed to clean stale output")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrManifestReadFailed is returned when a task manifest cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read task manifest")

	// ErrManifestUnmarshalFailed is returned when a task manifest cannot be decoded.
	ErrManifestUnmarshalFailed = zerr.New("failed to unmarshal task manifest")

	// ErrManifestMarshalFailed is returned when a task manifest cannot be encoded.
	ErrManifestMarshalFailed = zerr.New("failed to marshal task manifest")

	// ErrManifestWriteFailed is returned when a task manifest cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write task manifest")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrCommandFailed is returned when an external tool exits unsuccessfully.
	ErrCommandFailed = zerr.New("external command failed")

	// ErrStylesheetCompileFailed is returned when the stylesheet compiler rejects a source.
	ErrStylesheetCompileFailed = zerr.New("failed to compile stylesheet")

	// ErrScriptTransformFailed is returned when a script cannot be minified.
	ErrScriptTransformFailed = zerr.New("failed to transform script")

	// ErrCSSTransformFailed is returned when a stylesheet cannot be prefixed.
	ErrCSSTransformFailed = zerr.New("failed to transform stylesheet")

	// ErrImageDecodeFailed is returned when an image cannot be decoded.
	ErrImageDecodeFailed = zerr.New("failed to decode image")

	// ErrImageEncodeFailed is returned when an image cannot be re-encoded.
	ErrImageEncodeFailed = zerr.New("failed to encode image")

	// ErrIncludeNotFound is returned when an HTML include target does not exist.
	ErrIncludeNotFound = zerr.New("included file not found")

	// ErrIncludeCycle is returned when HTML includes form a cycle.
	ErrIncludeCycle = zerr.New("recursive include detected")

	// ErrIncludeSyntax is returned when an include directive cannot be parsed.
	ErrIncludeSyntax = zerr.New("malformed include directive")

	// ErrWatchLoopNotIdle is returned when starting a watch loop that already ran.
	ErrWatchLoopNotIdle = zerr.New("watch loop already started")

	// ErrDevServerStartFailed is returned when the dev server cannot listen.
	ErrDevServerStartFailed = zerr.New("failed to start dev server")
)

// StepFailure reports the task, step and file that caused a task run to fail.
type StepFailure struct {
	Task string
	Step StepKind
	File string
	Err  error
}

// NewStepFailure returns a StepFailure for file. Task and step are filled in
// by the runner that executes the step.
func NewStepFailure(file string, err error) *StepFailure {
	return &StepFailure{File: file, Err: err}
}

func (f *StepFailure) Error() string {
	var b strings.Builder
	if f.Task != "" {
		fmt.Fprintf(&b, "task %q: ", f.Task)
	}
	fmt.Fprintf(&b, "step %q failed", string(f.Step))
	if f.File != "" {
		fmt.Fprintf(&b, " on %q", f.File)
	}
	if f.Err != nil {
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

// Message returns the failure without its cause, so the logger can print
// the cause chain on its own lines.
func (f *StepFailure) Message() string {
	var b strings.Builder
	if f.Task != "" {
		fmt.Fprintf(&b, "task %q: ", f.Task)
	}
	fmt.Fprintf(&b, "step %q failed", string(f.Step))
	if f.File != "" {
		fmt.Fprintf(&b, " on %q", f.File)
	}
	return b.String()
}

func (f *StepFailure) Unwrap() error { return f.Err }

// Is makes errors.Is(err, ErrStepFailed) true for every StepFailure.
func (f *StepFailure) Is(target error) bool {
	return target == ErrStepFailed
}

// AggregateFailure lists the tasks that failed during a RunAll.
type AggregateFailure struct {
	Failed []string
	Err    error
}

func (f *AggregateFailure) Error() string {
	return f.Message() + ": " + errString(f.Err)
}

// Message returns the list of failed tasks without the joined causes.
func (f *AggregateFailure) Message() string {
	return fmt.Sprintf("%d task(s) failed: %s", len(f.Failed), strings.Join(f.Failed, ", "))
}

func (f *AggregateFailure) Unwrap() error { return f.Err }

// Is makes errors.Is(err, ErrBuildFailed) true for every AggregateFailure.
func (f *AggregateFailure) Is(target error) bool {
	return target == ErrBuildFailed
}

// FailedTasks returns the failed task names carried by err, if any.
func FailedTasks(err error) []string {
	var agg *AggregateFailure
	if errors.As(err, &agg) {
		return agg.Failed
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
