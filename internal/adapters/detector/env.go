// Package detector picks the log format and progress renderer from the
// terminal environment.
package detector

import (
	"os"

	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// LogFormat represents how log lines are rendered.
type LogFormat int

const (
	// FormatAuto selects the format from the environment.
	FormatAuto LogFormat = iota
	// FormatPretty renders colored, human-readable lines.
	FormatPretty
	// FormatJSON renders one JSON object per line.
	FormatJSON
)

// ErrUnknownLogFormat is returned for an unrecognized --log-format value.
var ErrUnknownLogFormat = zerr.New("unknown log format")

// DetectEnvironment returns the recommended log format. Machine-readable
// output is used when running under CI with stdout redirected.
func DetectEnvironment() LogFormat {
	return detect(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv("CI"))
}

func detect(isTTY bool, ci string) LogFormat {
	isCI := ci == "true" || ci == "1"
	if isCI && !isTTY {
		return FormatJSON
	}
	return FormatPretty
}

// ParseLogFormat parses the --log-format flag value.
func ParseLogFormat(flag string) (LogFormat, error) {
	switch flag {
	case "auto", "":
		return FormatAuto, nil
	case "pretty":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatAuto, zerr.With(zerr.Wrap(ErrUnknownLogFormat, "invalid log format"), "format", flag)
	}
}

// ResolveFormat applies the user's choice to the detected format.
func ResolveFormat(detected, user LogFormat) LogFormat {
	if user == FormatAuto {
		return detected
	}
	return user
}
