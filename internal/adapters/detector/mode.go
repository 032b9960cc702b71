package detector

import (
	"os"

	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// OutputMode represents the progress renderer used by a build.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeTUI forces the interactive TUI renderer.
	ModeTUI
	// ModeLinear forces the line-based renderer.
	ModeLinear
)

// ErrUnknownOutputMode is returned for an unrecognized --output-mode value.
var ErrUnknownOutputMode = zerr.New("unknown output mode")

// DetectMode returns the recommended output mode. The TUI is only used on
// an interactive terminal outside CI.
func DetectMode() OutputMode {
	return detectMode(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv("CI"))
}

func detectMode(isTTY bool, ci string) OutputMode {
	isCI := ci == "true" || ci == "1"
	if !isTTY || isCI {
		return ModeLinear
	}
	return ModeTUI
}

// ParseOutputMode parses the --output-mode flag value.
func ParseOutputMode(flag string) (OutputMode, error) {
	switch flag {
	case "auto", "":
		return ModeAuto, nil
	case "tui":
		return ModeTUI, nil
	case "linear", "ci":
		return ModeLinear, nil
	default:
		return ModeAuto, zerr.With(zerr.Wrap(ErrUnknownOutputMode, "invalid output mode"), "mode", flag)
	}
}

// ResolveMode applies the user's choice to the detected mode.
func ResolveMode(detected, user OutputMode) OutputMode {
	if user == ModeAuto {
		return detected
	}
	return user
}
