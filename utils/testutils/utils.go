package testutils

import (
	"bytes"
	"io"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/benoitkugler/litebridge/logger"
)

func AssertEqual(t *testing.T, got, exp interface{}) {
	t.Helper()
	if !reflect.DeepEqual(exp, got) {
		t.Fatalf("expected\n%v\n got \n%v", exp, got)
	}
}

// CapturedLogs records the warnings emitted between
// CaptureLogs and one of the checking methods.
type CapturedLogs struct {
	buf bytes.Buffer
}

// CaptureLogs redirects logger.WarningLogger until a check method is called.
func CaptureLogs() *CapturedLogs {
	var out CapturedLogs
	logger.WarningLogger.SetOutput(&out.buf)
	return &out
}

func (c *CapturedLogs) release() []string {
	logger.WarningLogger.SetOutput(os.Stdout)
	var lines []string
	for _, line := range strings.Split(c.buf.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Logs stops the capture and returns the recorded lines.
func (c *CapturedLogs) Logs() []string { return c.release() }

// CheckEqual stops the capture and compares the recorded lines to `exp`.
func (c *CapturedLogs) CheckEqual(exp []string, t *testing.T) {
	t.Helper()
	got := c.release()
	if len(got) != len(exp) {
		t.Fatalf("expected %d logs, got %d: %v", len(exp), len(got), got)
	}
	for i := range exp {
		if !strings.Contains(got[i], exp[i]) {
			t.Fatalf("log %d: expected %q, got %q", i, exp[i], got[i])
		}
	}
}

// AssertNoLogs stops the capture and fails if anything was logged.
func (c *CapturedLogs) AssertNoLogs(t *testing.T) {
	t.Helper()
	if got := c.release(); len(got) != 0 {
		t.Fatalf("unexpected logs: %v", got)
	}
}

// Silence discards the progress logs for the duration of a test binary.
func Silence() {
	logger.ProgressLogger.SetOutput(io.Discard)
}
