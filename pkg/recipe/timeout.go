package recipe

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kyle-brindley/turbo-turtle/pkg/plan"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a recipe runs longer than EvalTimeout.
	ErrTimeout = errors.New("recipe: evaluation timed out")
	// ErrSuperseded is returned when a newer evaluation started first.
	ErrSuperseded = errors.New("recipe: evaluation superseded by newer request")
)

// evalResult passes evaluation results through channels.
type evalResult struct {
	plan   *plan.Plan
	errors []EvalError
	err    error
}

// waitFor returns the result sent on ch, ErrTimeout once timeout elapses,
// or ErrSuperseded when the generation moved on while gen was running. A
// timed out evaluation keeps running; its late result is dropped because
// nothing receives it.
func waitFor(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (*plan.Plan, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var res evalResult
	select {
	case res = <-ch:
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	mu.Lock()
	stale := gen != *currentGen
	mu.Unlock()
	if stale {
		return nil, nil, ErrSuperseded
	}
	return res.plan, res.errors, res.err
}
