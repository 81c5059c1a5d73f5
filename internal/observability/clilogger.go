package observability

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// CLILogger renders operation lifecycle events for terminal users:
// cyan start lines, green successes with timing, red failures.
type CLILogger struct {
	out io.Writer
}

// NewCLILogger creates a logger writing to out.
func NewCLILogger(out io.Writer) *CLILogger {
	return &CLILogger{out: out}
}

func (l *CLILogger) OnStart(ctx context.Context, op string, fields Fields) {
	color.New(color.FgCyan).Fprintf(l.out, "[%s] started%s\n", op, formatFields(fields))
}

func (l *CLILogger) OnSuccess(ctx context.Context, op string, fields Fields, elapsed time.Duration) {
	color.New(color.FgGreen).Fprintf(l.out, "[%s] ok in %s%s\n", op, elapsed.Round(time.Microsecond), formatFields(fields))
}

func (l *CLILogger) OnFailure(ctx context.Context, op string, fields Fields, elapsed time.Duration, err error) {
	color.New(color.FgRed).Fprintf(l.out, "[%s] failed in %s: %v%s\n", op, elapsed.Round(time.Microsecond), err, formatFields(fields))
}

func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, fields[k])
	}
	b.WriteString(")")
	return b.String()
}
