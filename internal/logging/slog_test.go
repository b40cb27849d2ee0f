package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withTerminal(t *testing.T, tty bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return tty }
	t.Cleanup(func() { isTerminal = orig })
}

func TestNewForWriter_TerminalUsesTextHandler(t *testing.T) {
	withTerminal(t, true)
	var buf bytes.Buffer

	log := newForWriter(&buf, 1, true)
	log.Debug(context.Background(), "dbg", "list_id", "abc")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "msg=dbg")
	assert.Contains(t, out, "list_id=abc")
}

func TestNewForWriter_PipeUsesJSONHandler(t *testing.T) {
	withTerminal(t, false)
	var buf bytes.Buffer

	log := newForWriter(&buf, 1, false)
	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "draw confirmed", "pairs", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden", "debug must be filtered at info level")
	assert.Contains(t, out, `"msg":"draw confirmed"`)
	assert.Contains(t, out, `"pairs":3`)
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	withTerminal(t, true)
	var buf bytes.Buffer

	log := newForWriter(&buf, 1, false).With("module", "draws")
	log.Warn(context.Background(), "retrying", "attempt", 2)

	out := buf.String()
	for _, s := range []string{"level=WARN", "msg=retrying", "module=draws", "attempt=2"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	var l Logger = Nop{}
	ctx := context.TODO()
	l.Debug(ctx, "x")
	l.Info(ctx, "x")
	l.Warn(ctx, "x")
	l.Error(ctx, "x")
	l.With("a", 1).Info(ctx, "y")
}
