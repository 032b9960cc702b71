package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/detector"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		isTTY    bool
		ci       string
		expected detector.LogFormat
	}{
		{name: "CI=true without tty", isTTY: false, ci: "true", expected: detector.FormatJSON},
		{name: "CI=1 without tty", isTTY: false, ci: "1", expected: detector.FormatJSON},
		{name: "CI with tty", isTTY: true, ci: "true", expected: detector.FormatPretty},
		{name: "CI=false", isTTY: false, ci: "false", expected: detector.FormatPretty},
		{name: "no CI", isTTY: false, ci: "", expected: detector.FormatPretty},
		{name: "interactive", isTTY: true, ci: "", expected: detector.FormatPretty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.Detect(tt.isTTY, tt.ci))
		})
	}
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		flag     string
		expected detector.LogFormat
	}{
		{flag: "", expected: detector.FormatAuto},
		{flag: "auto", expected: detector.FormatAuto},
		{flag: "pretty", expected: detector.FormatPretty},
		{flag: "json", expected: detector.FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := detector.ParseLogFormat(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := detector.ParseLogFormat("xml")
	assert.ErrorContains(t, err, "unknown log format")
}

func TestResolveFormat(t *testing.T) {
	assert.Equal(t, detector.FormatJSON, detector.ResolveFormat(detector.FormatJSON, detector.FormatAuto))
	assert.Equal(t, detector.FormatPretty, detector.ResolveFormat(detector.FormatJSON, detector.FormatPretty))
	assert.Equal(t, detector.FormatJSON, detector.ResolveFormat(detector.FormatPretty, detector.FormatJSON))
}

func TestDetectEnvironment(t *testing.T) {
	t.Setenv("CI", "")

	// Test binaries run with stdout redirected or attached; without CI the
	// pretty format is always chosen.
	assert.Equal(t, detector.FormatPretty, detector.DetectEnvironment())
}
