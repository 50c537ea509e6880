package errors

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad port").Build(), expected: 2},
		{name: "config", err: ConfigError("unreadable").Build(), expected: 7},
		{name: "transform", err: TransformError("minify failed").Build(), expected: 11},
		{name: "filesystem", err: FileSystemError("copy failed").Build(), expected: 11},
		{name: "server", err: ServerError("listen failed").Build(), expected: 12},
		{name: "internal", err: InternalError("boom").Build(), expected: 10},
		{name: "wrapped classified", err: fmt.Errorf("stage: %w", TransformError("x").Build()), expected: 11},
		{name: "unclassified", err: fmt.Errorf("plain"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logBuf, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	adapter := NewCLIErrorAdapter(false, logger)
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	err := FileSystemError("copy third-party script").
		WithCause(fmt.Errorf("no such file")).
		WithContext("path", "dev/scripts/libs/jquery/jquery.js").
		Build()
	adapter.HandleError(err)

	if code != 11 {
		t.Fatalf("exit code = %d, want 11", code)
	}
	if !strings.Contains(out.String(), "Build failed: copy third-party script: no such file") {
		t.Errorf("unexpected user message %q", out.String())
	}
	if !strings.Contains(logBuf.String(), "path=dev/scripts/libs/jquery/jquery.js") {
		t.Errorf("context missing from log line: %q", logBuf.String())
	}
}

func TestCLIErrorAdapter_FormatVerbose(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, slog.Default())
	msg := adapter.FormatError(InternalError("boom").Build())
	if msg != "[internal:fatal] boom" {
		t.Errorf("FormatError() = %q", msg)
	}
}
