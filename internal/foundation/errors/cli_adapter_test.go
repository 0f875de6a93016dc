package errors

import (
	"errors"
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
		{name: "validation", err: ValidationError("undeclared parameter").Build(), expected: 2},
		{name: "config", err: ConfigError("missing site.yaml").Build(), expected: 7},
		{name: "sync", err: SyncError("fast-forward only").Build(), expected: 8},
		{name: "template", err: TemplateError("parse page.html.tmpl").Build(), expected: 9},
		{name: "render", err: RenderError("execute page").Build(), expected: 9},
		{name: "codegen", err: CodegenError("format main.go").Build(), expected: 9},
		{name: "filesystem", err: IOError("write page").Build(), expected: 11},
		{name: "unclassified", err: errors.New("boom"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := ValidationError("declared parameter missing from path").
		WithPath("a/<id>.md").
		WithCause(errors.New("user_id")).
		Build()

	quiet := NewCLIErrorAdapter(false, slog.Default()).FormatError(err)
	if !strings.Contains(quiet, "validation") || !strings.Contains(quiet, "a/<id>.md") || !strings.Contains(quiet, "user_id") {
		t.Errorf("unexpected non-verbose format: %q", quiet)
	}

	verbose := NewCLIErrorAdapter(true, slog.Default()).FormatError(err)
	if verbose != err.Error() {
		t.Errorf("verbose format should be the full error, got %q", verbose)
	}

	if got := NewCLIErrorAdapter(false, nil).FormatError(errors.New("plain")); got != "Error: plain" {
		t.Errorf("unexpected unclassified format: %q", got)
	}
}
