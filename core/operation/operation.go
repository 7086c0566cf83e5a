package operation

import (
	"context"
	"sync"
	"time"

	"github.com/streampay/sdk-go/core/logging"
	"github.com/streampay/sdk-go/core/telemetry"
	"github.com/streampay/sdk-go/core/types"
	"go.uber.org/zap"
)

// Notifier receives the user-facing outcome of a wrapped operation. The
// runner is the single place notification decisions are made; lower layers
// only classify and raise.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// State is the runner's observable lifecycle snapshot.
type State struct {
	IsLoading bool
	// Error is the human-readable message from the last failed invocation,
	// empty after a success or reset.
	Error string
}

// Options controls notification behavior for a runner.
type Options struct {
	ShowSuccessMessage bool
	ShowErrorMessage   bool
	// SuccessMessage overrides the default success notification text.
	SuccessMessage string
	// ErrorMessage overrides the failure's own message in notifications.
	ErrorMessage string
}

// DefaultOptions shows error notifications and suppresses success ones.
func DefaultOptions() Options {
	return Options{ShowErrorMessage: true}
}

const defaultSuccessMessage = "Operation completed successfully"

// Runner standardizes the lifecycle of an asynchronous mutating action:
// in-flight state, error normalization, and optional notifications. Failures
// are reported through the ok return, never propagated as errors, so callers
// check the sentinel rather than rely on error plumbing.
//
// Each invocation is independent: the runner does not serialize or dedupe
// concurrent executions. At-most-one-in-flight semantics belong to the
// caller, which should gate on State().IsLoading.
type Runner[T any] struct {
	name     string
	notifier Notifier
	opts     Options
	logger   *zap.Logger
	tracker  *telemetry.Tracker
	now      func() time.Time

	mu    sync.Mutex
	state State
}

// RunnerOption configures a Runner.
type RunnerOption[T any] func(*Runner[T])

func WithLogger[T any](logger *zap.Logger) RunnerOption[T] {
	return func(r *Runner[T]) { r.logger = logger }
}

func WithTracker[T any](t *telemetry.Tracker) RunnerOption[T] {
	return func(r *Runner[T]) { r.tracker = t }
}

func WithClock[T any](now func() time.Time) RunnerOption[T] {
	return func(r *Runner[T]) { r.now = now }
}

// NewRunner creates a named runner. The name labels metrics and logs.
func NewRunner[T any](name string, notifier Notifier, opts Options, runnerOpts ...RunnerOption[T]) *Runner[T] {
	r := &Runner[T]{
		name:     name,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
	}
	for _, opt := range runnerOpts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.Default()
	}
	return r
}

// Execute runs op through the standard lifecycle. It returns the result and
// true on success, or the zero value and false on failure; the failure's
// message is retained in State until the next invocation or Reset.
func (r *Runner[T]) Execute(ctx context.Context, op func(context.Context) (T, error)) (T, bool) {
	r.setState(State{IsLoading: true})
	started := r.now()

	result, err := op(ctx)
	elapsed := r.now().Sub(started)
	r.tracker.ObserveOperation(r.name, elapsed, err == nil)

	if err != nil {
		message := types.UserMessage(err)
		r.setState(State{Error: message})
		r.logger.Warn("operation failed",
			zap.String("operation", r.name),
			zap.String("kind", string(types.KindOf(err))),
			zap.Error(err))
		if r.opts.ShowErrorMessage && r.notifier != nil {
			if r.opts.ErrorMessage != "" {
				r.notifier.Error(r.opts.ErrorMessage)
			} else {
				r.notifier.Error(message)
			}
		}
		var zero T
		return zero, false
	}

	r.setState(State{})
	if r.opts.ShowSuccessMessage && r.notifier != nil {
		if r.opts.SuccessMessage != "" {
			r.notifier.Success(r.opts.SuccessMessage)
		} else {
			r.notifier.Success(defaultSuccessMessage)
		}
	}
	return result, true
}

// State returns the current lifecycle snapshot.
func (r *Runner[T]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Reset clears the runner back to idle with no recorded error.
func (r *Runner[T]) Reset() {
	r.setState(State{})
}

func (r *Runner[T]) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}
