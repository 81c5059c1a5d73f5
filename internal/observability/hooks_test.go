package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCLILogger_RendersLifecycle(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCLILogger(&buf)
	ctx := context.Background()

	logger.OnStart(ctx, "add", Fields{"count": 3})
	logger.OnSuccess(ctx, "add", Fields{"count": 3}, 2*time.Millisecond)
	logger.OnFailure(ctx, "search", nil, time.Millisecond, errors.New("engine down"))

	out := buf.String()
	for _, want := range []string{
		"[add] started (count=3)",
		"[add] ok in",
		"[search] failed in",
		"engine down",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLILogger_FieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCLILogger(&buf)

	logger.OnStart(context.Background(), "op", Fields{"z": 1, "a": 2, "m": 3})
	out := buf.String()
	if !strings.Contains(out, "(a=2, m=3, z=1)") {
		t.Errorf("fields not sorted: %s", out)
	}
}

func TestMulti_FansOut(t *testing.T) {
	first := &countingHooks{}
	second := &countingHooks{}
	m := Multi{first, second}
	ctx := context.Background()

	m.OnStart(ctx, "op", nil)
	m.OnSuccess(ctx, "op", nil, time.Millisecond)
	m.OnFailure(ctx, "op", nil, time.Millisecond, errors.New("x"))

	for i, h := range []*countingHooks{first, second} {
		if h.starts != 1 || h.successes != 1 || h.failures != 1 {
			t.Errorf("hooks %d saw %d/%d/%d", i, h.starts, h.successes, h.failures)
		}
	}
}

func TestTracing_NoopProviderIsSafe(t *testing.T) {
	tr := NewTracing()
	ctx := context.Background()

	tr.OnStart(ctx, "add", Fields{"count": 1})
	tr.OnSuccess(ctx, "add", Fields{"count": 1}, time.Millisecond)
	tr.OnFailure(ctx, "add", nil, time.Millisecond, errors.New("x"))
}

type countingHooks struct {
	starts    int
	successes int
	failures  int
}

func (h *countingHooks) OnStart(context.Context, string, Fields) { h.starts++ }
func (h *countingHooks) OnSuccess(context.Context, string, Fields, time.Duration) {
	h.successes++
}
func (h *countingHooks) OnFailure(context.Context, string, Fields, time.Duration, error) {
	h.failures++
}
