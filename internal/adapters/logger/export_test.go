package logger

// ErrorLines exposes the pretty error rendering for white-box tests.
func ErrorLines(err error) string {
	return formatErrorEntries(collectErrorEntries(err))
}
