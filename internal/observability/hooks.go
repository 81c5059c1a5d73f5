// Package observability provides injectable operation hooks so that the core
// store stays unit-testable without any logging subsystem.
package observability

import (
	"context"
	"time"
)

// Fields carries operation-specific context (document counts, query text, ids).
type Fields map[string]any

// Hooks receives lifecycle notifications for each store operation. Hooks are
// pure side channels: implementations must not affect return values or
// control flow, and the caller shields itself from panics they raise.
type Hooks interface {
	OnStart(ctx context.Context, op string, fields Fields)
	OnSuccess(ctx context.Context, op string, fields Fields, elapsed time.Duration)
	OnFailure(ctx context.Context, op string, fields Fields, elapsed time.Duration, err error)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) OnStart(context.Context, string, Fields)                         {}
func (Nop) OnSuccess(context.Context, string, Fields, time.Duration)        {}
func (Nop) OnFailure(context.Context, string, Fields, time.Duration, error) {}

// Multi fans notifications out to several hook sets in order.
type Multi []Hooks

func (m Multi) OnStart(ctx context.Context, op string, fields Fields) {
	for _, h := range m {
		h.OnStart(ctx, op, fields)
	}
}

func (m Multi) OnSuccess(ctx context.Context, op string, fields Fields, elapsed time.Duration) {
	for _, h := range m {
		h.OnSuccess(ctx, op, fields, elapsed)
	}
}

func (m Multi) OnFailure(ctx context.Context, op string, fields Fields, elapsed time.Duration, err error) {
	for _, h := range m {
		h.OnFailure(ctx, op, fields, elapsed, err)
	}
}
