// Package worker runs simulation jobs from a queue on a bounded pool of
// goroutines and reassembles their results in job order.
package worker

import (
	"github.com/okian/castaway/pkg/logger"
)

// Option applies a configuration option to a Pool.
type Option func(*settings)

type settings struct {
	name      string
	workers   int
	queueSize int
	logger    logger.Logger
}

// WithName sets the pool name for identification and logging.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithWorkers sets the number of goroutines. Values below 1 mean one per CPU.
func WithWorkers(n int) Option {
	return func(s *settings) {
		s.workers = n
	}
}

// WithQueueSize sets the capacity of the job queue.
func WithQueueSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
