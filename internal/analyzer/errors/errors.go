// Package errors declares the analyzer's warning-code table. Per
// spec.md §7, classification anomalies in the input are data, never
// errors; the only things reported here are configuration and I/O
// anomalies surfaced through the warning side-channel.
package errors

// Code constants organized by phase, following the teacher repo's
// compiler/errors E-code convention (E001-E099 lexer, E100-E199 parser,
// ...) adapted to this analyzer's two warning phases.
const (
	// Configuration warnings (W0xx): an out-of-range or invalid value was
	// clamped or ignored rather than failing the run.
	WarnMaxExamplesClamped   = "W001"
	WarnMaxLocationsClamped  = "W002"
	WarnUnknownLanguageCode  = "W003"
	WarnLongTokenMinInvalid  = "W004"

	// I/O warnings (W1xx): non-fatal problems reading input or writing
	// output; spec.md §6 reserves a non-zero exit code only for
	// catastrophic I/O errors, so these remain warnings unless the
	// driver decides otherwise.
	WarnLineReadTruncated = "W100"
	WarnReportWriteFailed = "W101"
)

// Warning is one entry on the warning side-channel: a stable code plus a
// human-readable message. It is never fatal on its own.
type Warning struct {
	Code    string
	Message string
}

func (w Warning) Error() string { return w.Code + ": " + w.Message }

// New constructs a Warning with the given code and message.
func New(code, message string) Warning {
	return Warning{Code: code, Message: message}
}
