package flash

import "time"

// Progress contains information about a streamed write sequence.
// Passed to ProgressCallback after each successful WriteStream call.
type Progress struct {
	// BytesWritten is the total number of bytes streamed so far,
	// measured from the region start.
	BytesWritten int

	// TotalBytes is the full application region size.
	TotalBytes int

	// Percentage is the completion percentage (0.0 to 100.0) relative
	// to the region size. An image smaller than the region finishes
	// below 100.
	Percentage float64

	// ElapsedTime is the time elapsed since the first streamed write.
	ElapsedTime time.Duration
}

// ProgressCallback is called after each successful streamed write.
// Implementations should return quickly; the write path blocks on them.
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the
// manager. This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	mgr, _ := flash.New(region, flash.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
