package tree

import (
	"github.com/benz9527/xtree/lib/xlog"
)

type treeConfig struct {
	name   string
	logger xlog.XLogger
	stats  bool
	isDesc bool
}

type TreeOption func(*treeConfig)

// WithTreeName names the logger component and the stats meter.
func WithTreeName(name string) TreeOption {
	return func(cfg *treeConfig) {
		cfg.name = name
	}
}

func WithTreeLogger(logger xlog.XLogger) TreeOption {
	return func(cfg *treeConfig) {
		cfg.logger = logger
	}
}

// WithTreeStats records the operations by the global otel meter provider.
func WithTreeStats() TreeOption {
	return func(cfg *treeConfig) {
		cfg.stats = true
	}
}

// WithTreeDescOrder reverses the comparator.
func WithTreeDescOrder() TreeOption {
	return func(cfg *treeConfig) {
		cfg.isDesc = true
	}
}
