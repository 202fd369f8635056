// Package retry runs actions until they succeed or a strategy gives up.
package retry

import (
	"context"
)

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retrier retries actions with a fixed set of strategies.
type Retrier interface {
	Retry(action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier using strategies. With no strategies, actions
// are retried in a tight loop until they succeed.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(action Action) (uint, error) {
	return Retry(action, r.strategies...)
}

// Retry runs action until it succeeds or one of the strategies declines
// another attempt, returning the number of attempts and the last error.
//
// Strategies run in order after each failure, so strategies that sleep should
// be specified last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	var attempts uint
	for {
		attempts++

		err := action()
		if err == nil {
			return attempts, nil
		}

		if !shouldRetry(strategies, attempts, err) {
			return attempts, err
		}
	}
}

// RetryWithContext is Retry that stops once ctx is done. If ctx ends the
// retries, its error is returned instead of the action's.
func RetryWithContext(ctx context.Context, action Action, strategies ...Strategy) (uint, error) {
	attempts, err := Retry(action, append([]Strategy{Context(ctx)}, strategies...)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempts, ctxErr
		}
	}
	return attempts, err
}

func shouldRetry(strategies []Strategy, attempts uint, err error) bool {
	for _, s := range strategies {
		if !s(attempts, err) {
			return false
		}
	}
	return true
}
