package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	parseCacheSize = 128
	defaultTimeout = 2 * time.Second
)

// ErrNothingRenderable distinguishes a template that executed fine but
// returned nothing from an execution failure.
var ErrNothingRenderable = errors.New("template did not return a renderable element")

// Executor is the trust boundary for custom template code. Code is
// re-validated and re-repaired on every execution — stored templates may have
// been edited or corrupted, so render paths never trust persisted state.
// Parse results are cached by content hash; validation is not.
type Executor struct {
	cache   *lru.Cache[string, Expr]
	timeout time.Duration
	logger  *zap.Logger
}

func NewExecutor(logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, _ := lru.New[string, Expr](parseCacheSize)
	return &Executor{cache: cache, timeout: defaultTimeout, logger: logger}
}

// Execute runs template code against the fixed argument tuple. The three
// failure layers: validation/compile errors before any execution, runtime
// errors during the call, and a non-renderable result afterwards.
func (e *Executor) Execute(ctx context.Context, code string, args Args) (*Node, error) {
	if res := Validate(code); !res.IsValid {
		return nil, fmt.Errorf("Invalid template code: %s", res.Error)
	}
	for _, w := range MissingKeyWarnings(code) {
		e.logger.Warn("template iteration without key", zap.String("detail", w))
	}
	// idempotent, so running again over save-time-repaired code is harmless
	code = Repair(code)

	body, err := e.compile(code)
	if err != nil {
		return nil, fmt.Errorf("Invalid template code: %s", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type outcome struct {
		val any
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		// a panic on this goroutine would be fatal to the process, so it is
		// converted into the runtime-error failure layer here
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("template execution failed: %v", r)}
			}
		}()
		v, err := run(ctx, body, args)
		done <- outcome{val: v, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return nil, o.err
		}
		node, ok := o.val.(*Node)
		if !ok || node == nil {
			return nil, ErrNothingRenderable
		}
		return node, nil
	case <-ctx.Done():
		// the interpreter polls the context, so the goroutine unwinds too
		return nil, fmt.Errorf("template execution timed out: %w", ctx.Err())
	}
}

func (e *Executor) compile(code string) (Expr, error) {
	sum := sha256.Sum256([]byte(code))
	key := hex.EncodeToString(sum[:])
	if body, ok := e.cache.Get(key); ok {
		return body, nil
	}
	body, err := Parse(code)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, body)
	return body, nil
}
