package log

import "github.com/tacusci/logging/v2"

// Level names accepted by SetLevel.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	Silent     = "silent"
)

var Debug = func(format string, a ...interface{}) {
	logging.Debug(format, a...) //nolint
}

var Info = func(format string, a ...interface{}) {
	logging.Info(format, a...) //nolint
}

var Warn = func(format string, a ...interface{}) {
	logging.Warn(format, a...) //nolint
}

var Error = func(format string, a ...interface{}) {
	logging.Error(format, a...) //nolint
}

var Fatal = func(format string, a ...interface{}) {
	logging.Fatal(format, a...) //nolint
}

// SetLevel switches the global logging level by name, anything
// unrecognised falls back to warn.
func SetLevel(name string) {
	logging.CallbackLabelLevel = 5
	logging.ColorLogLevelLabelOnly = true
	switch name {
	case DebugLevel:
		logging.CurrentLoggingLevel = logging.DebugLevel
		logging.CallbackLabel = true
	case InfoLevel:
		logging.CurrentLoggingLevel = logging.InfoLevel
	case Silent:
		logging.CurrentLoggingLevel = logging.SilentLevel
	default:
		logging.CurrentLoggingLevel = logging.WarnLevel
	}
}
