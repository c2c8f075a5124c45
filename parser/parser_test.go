package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/posh-lang/posh/lexer"
	"github.com/posh-lang/posh/parser"
)

// drainWords destructively extracts every operand payload in order.
func drainWords(t *testing.T, tree *parser.Tree[lexer.Token]) []string {
	t.Helper()

	if err := tree.Bottom(); err != nil {
		t.Fatalf("Bottom() failed: %v", err)
	}
	var words []string
	for {
		tok, ok := tree.Next()
		if !ok {
			return words
		}
		words = append(words, tok.String())
	}
}

func mustParse(t *testing.T, input string) *parser.Result {
	t.Helper()

	result, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	return result
}

func TestParseRootIsCompleteCommand(t *testing.T) {
	inputs := []string{
		"ls",
		"ls test",
		"ls test; echo hello",
		"a; b & c",
		"ls &",
		"true && false || maybe",
		"a | b | c",
		"! grep pattern file",
		"(ls; pwd)",
		"ls\necho next",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			result := mustParse(t, input)
			if got := result.Tree.Head().Kind(); got != parser.NodeCompleteCommand {
				t.Errorf("root kind = %s, want %s", got, parser.NodeCompleteCommand)
			}
		})
	}
}

func TestDrainYieldsWordsInSourceOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		words []string
	}{
		{
			name:  "single_command",
			input: "ls",
			words: []string{"ls"},
		},
		{
			name:  "command_with_arguments",
			input: "ls -l src",
			words: []string{"ls", "-l", "src"},
		},
		{
			name:  "semicolon_list",
			input: "ls test; echo hello",
			words: []string{"ls", "test", "echo", "hello"},
		},
		{
			name:  "background_and_sequence",
			input: "build & test; deploy",
			words: []string{"build", "test", "deploy"},
		},
		{
			name:  "and_or_chain",
			input: "make && make install || echo failed",
			words: []string{"make", "make", "install", "echo", "failed"},
		},
		{
			name:  "pipeline",
			input: "cat notes | grep todo | wc -l",
			words: []string{"cat", "notes", "grep", "todo", "wc", "-l"},
		},
		{
			name:  "negated_pipeline",
			input: "! grep pattern file",
			words: []string{"grep", "pattern", "file"},
		},
		{
			name:  "subshell",
			input: "(ls; pwd) | sort",
			words: []string{"ls", "pwd", "sort"},
		},
		{
			name:  "newline_separated",
			input: "ls\necho next",
			words: []string{"ls", "echo", "next"},
		},
		{
			name:  "trailing_separator",
			input: "ls test;",
			words: []string{"ls", "test"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustParse(t, tt.input)
			got := drainWords(t, result.Tree)
			if diff := cmp.Diff(tt.words, got); diff != "" {
				t.Errorf("drained words mismatch (-expected +actual):\n%s", diff)
			}

			// One extra call past the last word reports no value
			if _, ok := result.Tree.Next(); ok {
				t.Error("drained tree still yields values")
			}
		})
	}
}

func TestDrainYieldsExactlyTheWordTokens(t *testing.T) {
	inputs := []string{
		"ls",
		"ls test; echo hello",
		"a && b || c; d & e | f",
		"! grep x y\nsort",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			var want []string
			for _, tok := range lexer.NewLexer(input).GetTokens() {
				if tok.Type == lexer.WORD {
					want = append(want, tok.String())
				}
			}

			result := mustParse(t, input)
			got := drainWords(t, result.Tree)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("drain does not match WORD tokens (-expected +actual):\n%s", diff)
			}
		})
	}
}

func TestPipelineShape(t *testing.T) {
	result := mustParse(t, "! grep x")

	// complete_command -> list -> and_or -> pipeline
	node := result.Tree.Head()
	for _, want := range []parser.NodeKind{parser.NodeList, parser.NodeAndOr, parser.NodePipeline} {
		node = node.Child(parser.Left)
		if node == nil {
			t.Fatalf("missing %s node", want)
		}
		if node.Kind() != want {
			t.Fatalf("kind = %s, want %s", node.Kind(), want)
		}
	}

	bang := node.Child(parser.Left)
	if bang == nil || bang.Kind() != parser.NodeReserved {
		t.Fatalf("negated pipeline should hold a reserved node on the left, got %v", bang)
	}
	if tok, ok := bang.Value(); !ok || tok.Symbol() != "!" {
		t.Errorf("reserved node should carry the bang token, got %v", tok)
	}
	if seq := node.Child(parser.Right); seq == nil || seq.Kind() != parser.NodePipeSequence {
		t.Errorf("pipe_sequence should sit on the right of a negated pipeline")
	}
}

func TestListSeparatorsCarryOperatorTokens(t *testing.T) {
	result := mustParse(t, "ls; echo &")

	list := result.Tree.Head().Child(parser.Left)
	if list == nil || list.Kind() != parser.NodeList {
		t.Fatalf("expected list under root, got %v", list)
	}

	var ops []string
	for sep := list.Child(parser.Right); sep != nil; sep = sep.Child(parser.Right) {
		if sep.Kind() != parser.NodeSeparator {
			t.Fatalf("expected separator in right chain, got %s", sep.Kind())
		}
		tok, ok := sep.Value()
		if !ok {
			t.Fatal("separator node missing its operator token")
		}
		ops = append(ops, tok.Symbol())
	}

	if diff := cmp.Diff([]string{";", "&"}, ops); diff != "" {
		t.Errorf("separator chain mismatch (-expected +actual):\n%s", diff)
	}
}

func TestCursorRestsOnRootAfterParse(t *testing.T) {
	result := mustParse(t, "ls test; echo hello | sort")
	if result.Tree.Current() != result.Tree.Head() {
		t.Errorf("cursor ended on %s, want the root", result.Tree.Current().Kind())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  error  // sentinel to match with errors.Is, if any
		contains string // substring of the error message
	}{
		{
			name:    "empty_input",
			input:   "",
			wantErr: parser.ErrNoTokens,
		},
		{
			name:    "blank_input",
			input:   "   \t ",
			wantErr: parser.ErrNoTokens,
		},
		{
			name:     "dangling_and_if",
			input:    "ls &&",
			contains: `missing command after "&&"`,
		},
		{
			name:     "dangling_pipe",
			input:    "ls |",
			contains: `missing command after "|"`,
		},
		{
			name:     "bang_without_command",
			input:    "!",
			contains: `missing command after "!"`,
		},
		{
			name:     "unclosed_subshell",
			input:    "(ls",
			contains: `missing ")"`,
		},
		{
			name:     "empty_subshell",
			input:    "()",
			contains: "a command",
		},
		{
			name:     "unmatched_close_paren",
			input:    "ls)",
			contains: `unexpected ")"`,
		},
		{
			name:     "unterminated_quote",
			input:    "echo 'oops",
			contains: "unterminated quoted string",
		},
		{
			name:    "while_loop_slot",
			input:   "while true; do sleep 1; done",
			wantErr: parser.ErrNotImplemented,
		},
		{
			name:    "brace_group_slot",
			input:   "{ ls; }",
			wantErr: parser.ErrNotImplemented,
		},
		{
			name:    "function_definition_slot",
			input:   "greet() { echo hi; }",
			wantErr: parser.ErrNotImplemented,
		},
		{
			name:    "leading_redirect_slot",
			input:   "> out.txt",
			wantErr: parser.ErrNotImplemented,
		},
		{
			name:    "io_number_redirect_slot",
			input:   "cmd 2> err.log",
			wantErr: parser.ErrNotImplemented,
		},
		{
			name:     "trailing_redirect",
			input:    "cat > out.txt",
			contains: `unexpected ">"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parser.Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.input)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.contains)
			}

			// Even a failed parse returns the partial tree, and clearing
			// it leaves it reusable.
			if result == nil || result.Tree == nil {
				t.Fatal("failed parse should still return its partial tree")
			}
			result.Tree.Clear()
			if !result.Tree.Empty() {
				t.Error("Clear left nodes behind")
			}
		})
	}
}

func TestParseErrorRendersContext(t *testing.T) {
	_, err := parser.Parse("ls)")
	if err == nil {
		t.Fatal("expected error")
	}

	var parseErr *parser.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Position.Line != 1 || parseErr.Position.Column != 3 {
		t.Errorf("position = %+v, want line 1 column 3", parseErr.Position)
	}

	msg := err.Error()
	if !strings.Contains(msg, "ls)") {
		t.Errorf("error should include the source line:\n%s", msg)
	}
	if !strings.Contains(msg, "^") {
		t.Errorf("error should include a caret marker:\n%s", msg)
	}
}

func TestParseTokens(t *testing.T) {
	// A pre-classified sequence without an EOF terminator
	tokens := []lexer.Token{
		{Type: lexer.WORD, Text: []byte("ls")},
		{Type: lexer.WORD, Text: []byte("test")},
		{Type: lexer.SEMI},
		{Type: lexer.WORD, Text: []byte("echo")},
		{Type: lexer.WORD, Text: []byte("hello")},
	}

	result, err := parser.ParseTokens(tokens)
	if err != nil {
		t.Fatalf("ParseTokens failed: %v", err)
	}

	got := drainWords(t, result.Tree)
	want := []string{"ls", "test", "echo", "hello"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("drained words mismatch (-expected +actual):\n%s", diff)
	}
}

func TestParseTelemetry(t *testing.T) {
	result := mustParse(t, "ls test; echo hello")
	if result.Telemetry != nil {
		t.Error("telemetry should be nil when disabled")
	}

	result, err := parser.Parse("ls test; echo hello", parser.WithTelemetryBasic())
	if err != nil {
		t.Fatal(err)
	}
	if result.Telemetry == nil {
		t.Fatal("expected telemetry")
	}
	if result.Telemetry.TokenCount != 5 {
		t.Errorf("TokenCount = %d, want 5", result.Telemetry.TokenCount)
	}
	if result.Telemetry.NodeCount == 0 {
		t.Error("NodeCount should be positive")
	}

	result, err = parser.Parse("ls | sort", parser.WithTelemetryTiming())
	if err != nil {
		t.Fatal(err)
	}
	if result.Telemetry.TotalTime < result.Telemetry.ParseTime {
		t.Error("TotalTime should include ParseTime")
	}
}

func TestParseDebugEvents(t *testing.T) {
	result, err := parser.Parse("ls test", parser.WithDebugTokens())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.DebugEvents) == 0 {
		t.Error("expected debug events when tracing is enabled")
	}

	result = mustParse(t, "ls test")
	if len(result.DebugEvents) != 0 {
		t.Error("expected no debug events by default")
	}
}

func BenchmarkParse(b *testing.B) {
	input := "cat notes | grep todo | sort -u; echo ok & make install"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		result, err := parser.Parse(input)
		if err != nil {
			b.Fatal(err)
		}
		result.Tree.Clear()
	}
}

func BenchmarkDrain(b *testing.B) {
	input := "one two three four five six seven eight"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		result, err := parser.Parse(input)
		if err != nil {
			b.Fatal(err)
		}
		if err := result.Tree.Bottom(); err != nil {
			b.Fatal(err)
		}
		for {
			if _, ok := result.Tree.Next(); !ok {
				break
			}
		}
	}
}
