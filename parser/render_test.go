package parser_test

import (
	"strings"
	"testing"

	"github.com/posh-lang/posh/parser"
)

func TestRenderTextEmptyTree(t *testing.T) {
	result, err := parser.Parse("")
	if err == nil {
		t.Fatal("expected empty input to fail")
	}
	if got := parser.RenderText(result.Tree); got != "(empty)\n" {
		t.Errorf("RenderText(empty) = %q", got)
	}
}

func TestRenderText(t *testing.T) {
	result := mustParse(t, "ls test; echo")
	out := parser.RenderText(result.Tree)

	if !strings.HasPrefix(out, "complete_command\n") {
		t.Errorf("render should start at the root:\n%s", out)
	}
	for _, want := range []string{"list", "and_or", "pipeline", "pipe_sequence",
		`cmd_name "ls"`, `cmd_suffix "test"`, `separator ";"`, `cmd_name "echo"`} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}

	// Every line after the root is connected by a branch glyph
	for i, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if i == 0 {
			continue
		}
		if !strings.Contains(line, "├── ") && !strings.Contains(line, "└── ") {
			t.Errorf("line %d lacks a branch glyph: %q", i, line)
		}
	}
}
