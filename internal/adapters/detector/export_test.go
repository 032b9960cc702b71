package detector

// Detect exposes detect for testing.
func Detect(isTTY bool, ci string) LogFormat {
	return detect(isTTY, ci)
}

// DetectOutputMode exposes detectMode for testing.
func DetectOutputMode(isTTY bool, ci string) OutputMode {
	return detectMode(isTTY, ci)
}
