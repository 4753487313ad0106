package core

// Logger logs to stdout and reports to an error tracker.
// args may hold an error, a map of extras and the user the event belongs to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
