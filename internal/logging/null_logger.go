package logging

// NullLogger discards everything. Used where a Logger is required but
// output is unwanted, e.g. library-style use of the queue.
type NullLogger struct{}

// NewNullLogger returns the discarding logger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Verbose(format string, args ...interface{}) {}

func (l *NullLogger) Info(format string, args ...interface{}) {}

func (l *NullLogger) Error(format string, args ...interface{}) {}
