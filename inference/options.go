package inference

import "go.uber.org/zap"

// config carries the shared engine settings.
type config struct {
	log *zap.Logger
}

func defaultConfig() config {
	return config{log: zap.NewNop()}
}

// Option customizes an engine at construction time.
type Option func(*config)

// WithLogger attaches a logger for debug-level message-pass tracing.
// The default is zap.NewNop(); the engines never log above debug.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}
