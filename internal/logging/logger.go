// Package logging hides the concrete logging framework behind a small
// structured Logger interface so that pipeline stages can be tested with a
// recording logger and run with logrus in production.
package logging

// Logger is the structured logger every component receives through its
// constructor.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Fatal logs and terminates the process.
	Fatal(msg string, fields ...Field)
	Fatalf(msg string, args ...interface{})

	// WithError returns a child logger carrying err.
	WithError(err error) Logger
	// WithField returns a child logger carrying a single key/value pair.
	WithField(key string, value interface{}) Logger
	// WithFields returns a child logger carrying all given fields.
	WithFields(fields ...Field) Logger
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field inline.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
