package flash

import "github.com/moffa90/go-flashboot/platform"

// Config holds the manager configuration.
type Config struct {
	// Platform is the hardware capability set (optional at construction;
	// may be bound later via Configure)
	Platform platform.Ops

	// Logger is used for logging operations (optional)
	Logger Logger

	// ProgressCallback is called during streamed writes to report
	// progress (optional)
	ProgressCallback ProgressCallback
}

// defaultConfig returns the default configuration: no platform bound, no
// logging, no progress reporting.
func defaultConfig() Config {
	return Config{}
}

// Option is a functional option for configuring the Manager.
type Option func(*Config)

// WithPlatform binds the hardware capability set at construction time.
// Equivalent to calling Configure on the new manager.
//
// Example:
//
//	mgr, err := flash.New(region, flash.WithPlatform(stm32g0.Ops()))
func WithPlatform(ops platform.Ops) Option {
	return func(c *Config) {
		c.Platform = ops
	}
}

// WithLogger sets a logger for the manager's operations.
//
// Example:
//
//	mgr, err := flash.New(region, flash.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithProgressCallback sets a callback function to track streamed write
// progress.
//
// Example:
//
//	mgr, err := flash.New(region,
//	    flash.WithProgressCallback(func(p flash.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}
