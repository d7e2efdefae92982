package docstore

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type storeOptions struct {
	now       func() time.Time
	publisher ChangePublisher
}

// Option configures a Store backend
type Option func(*storeOptions)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		o.now = now
	}
}

// WithPublisher announces local writes to other processes
func WithPublisher(p ChangePublisher) Option {
	return func(o *storeOptions) {
		o.publisher = p
	}
}

func buildOptions(opts []Option) storeOptions {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func publishChange(ctx context.Context, p ChangePublisher, logger *zap.Logger, collection string) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, collection); err != nil {
		logger.Warn("Failed to publish document change",
			zap.String("collection", collection),
			zap.Error(err),
		)
	}
}
