package build

import (
	"context"
	"sync"
	"time"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
	"github.com/conneroisu/pageforge/internal/logging"
)

// BuildFunc performs one rebuild.
type BuildFunc func(ctx context.Context) error

// RebuildResult describes a finished rebuild.
type RebuildResult struct {
	Seq      uint64
	Error    error
	Duration time.Duration
}

// RebuildCallback is called after every rebuild.
type RebuildCallback func(result RebuildResult)

// Rebuilder serializes rebuild requests. At most one rebuild runs at a time
// and at most one more is pending; requests arriving while one is pending
// are folded into it.
type Rebuilder struct {
	build     BuildFunc
	pending   chan struct{}
	callbacks []RebuildCallback
	metrics   *BuildMetrics
	logger    logging.Logger
	errors    *pferrors.ErrorHandler
	seq       uint64
	mutex     sync.RWMutex
}

// NewRebuilder creates a Rebuilder around fn.
func NewRebuilder(fn BuildFunc, logger logging.Logger) *Rebuilder {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithComponent("rebuild")
	return &Rebuilder{
		build:   fn,
		pending: make(chan struct{}, 1),
		metrics: NewBuildMetrics(),
		logger:  logger,
		errors:  pferrors.NewErrorHandler(logger),
	}
}

// OnResult registers a callback run after each rebuild.
func (r *Rebuilder) OnResult(cb RebuildCallback) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.callbacks = append(r.callbacks, cb)
}

// Metrics returns the rebuild metrics.
func (r *Rebuilder) Metrics() *BuildMetrics {
	return r.metrics
}

// Request schedules a rebuild without blocking. It reports false when the
// request was coalesced into one already pending.
func (r *Rebuilder) Request() bool {
	select {
	case r.pending <- struct{}{}:
		return true
	default:
		r.metrics.RecordCoalesced()
		return false
	}
}

// Run executes requested rebuilds until ctx is done.
func (r *Rebuilder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.pending:
			r.runOnce(ctx)
		}
	}
}

func (r *Rebuilder) runOnce(ctx context.Context) {
	r.seq++
	start := time.Now()
	err := r.build(ctx)
	result := RebuildResult{Seq: r.seq, Error: err, Duration: time.Since(start)}
	r.metrics.RecordBuild(result)

	if err != nil {
		r.errors.Handle(ctx, err, "seq", result.Seq)
	} else {
		r.logger.Debug(ctx, "Rebuild finished", "seq", result.Seq, "duration", result.Duration.String())
	}

	r.mutex.RLock()
	callbacks := r.callbacks
	r.mutex.RUnlock()
	for _, cb := range callbacks {
		cb(result)
	}
}
