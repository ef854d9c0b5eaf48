package sqldb

import (
	"context"
	"time"

	"github.com/riskibarqy/matchlist/internal/platform/logging"
)

const (
	defaultOperationTimeout = 5 * time.Second
	defaultMaxOpenConns     = 4
)

type options struct {
	operationTimeout            time.Duration
	maxOpenConns                int
	disablePreparedBinaryResult bool
	logger                      *logging.Logger
}

type Option func(*options)

// WithOperationTimeout bounds every repository call and scope. Zero or
// negative disables the bound and leaves only the caller's deadline.
func WithOperationTimeout(d time.Duration) Option {
	return func(o *options) {
		o.operationTimeout = d
	}
}

func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithDisablePreparedBinaryResult appends disable_prepared_binary_result=yes
// to postgres URLs, for poolers that do not support binary results.
func WithDisablePreparedBinaryResult(disable bool) Option {
	return func(o *options) {
		o.disablePreparedBinaryResult = disable
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func defaultOptions() options {
	return options{
		operationTimeout: defaultOperationTimeout,
		maxOpenConns:     defaultMaxOpenConns,
		logger:           logging.Default(),
	}
}

func (o options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.operationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.operationTimeout)
}
