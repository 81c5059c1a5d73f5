package docstore

import (
	"context"
	"time"

	"semstore/internal/observability"
)

// begin opens an observed operation scope: it fires the start hook and
// returns a completion callback that fires success or failure with the
// measured duration. Hook panics are recovered so observers can never mask
// or alter an operation's result.
func (s *Store) begin(ctx context.Context, op string, fields observability.Fields) func(err error) {
	start := time.Now()
	guarded(func() { s.hooks.OnStart(ctx, op, fields) })
	return func(err error) {
		elapsed := time.Since(start)
		if err != nil {
			guarded(func() { s.hooks.OnFailure(ctx, op, fields, elapsed, err) })
			return
		}
		guarded(func() { s.hooks.OnSuccess(ctx, op, fields, elapsed) })
	}
}

func guarded(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
