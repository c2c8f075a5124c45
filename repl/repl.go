// Package repl provides the interactive read-eval-print loop. Input
// lines are parsed and rendered; meta-commands prefixed with ':'
// expose the token stream, the drained word list, and the canonical
// tree hash.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/posh-lang/posh/lexer"
	"github.com/posh-lang/posh/parser"
)

const (
	prompt     = "posh> "
	morePrompt = "  ... "
)

var metaCommands = []string{"tokens", "tree", "drain", "hash", "help", "quit"}

var completer = readline.NewPrefixCompleter(
	readline.PcItem(":tokens"),
	readline.PcItem(":tree"),
	readline.PcItem(":drain"),
	readline.PcItem(":hash"),
	readline.PcItem(":help"),
	readline.PcItem(":quit"),
)

// REPL owns the line editor and the output stream.
type REPL struct {
	rl  *readline.Instance
	out io.Writer
}

// New creates a REPL with history, completion, and interrupt handling.
func New() (*REPL, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(os.TempDir(), "posh_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing line editor: %w", err)
	}
	return &REPL{rl: rl, out: rl.Stdout()}, nil
}

// Run reads lines until EOF or :quit. A trailing backslash continues
// the command on the next line; Ctrl-C abandons the pending input.
func (r *REPL) Run() error {
	defer r.rl.Close()

	var pending strings.Builder
	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			pending.Reset()
			r.rl.SetPrompt(prompt)
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if pending.Len() == 0 && strings.TrimSpace(line) == "" {
			continue
		}

		pending.WriteString(line)
		if strings.HasSuffix(strings.TrimRight(line, " \t"), "\\") {
			pending.WriteByte('\n')
			r.rl.SetPrompt(morePrompt)
			continue
		}

		input := pending.String()
		pending.Reset()
		r.rl.SetPrompt(prompt)

		if !r.dispatch(input) {
			return nil
		}
	}
}

// dispatch handles one complete input. Returns false when the session
// should end.
func (r *REPL) dispatch(input string) bool {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, ":") {
		return r.metaCommand(trimmed)
	}
	r.showTree(input)
	return true
}

func (r *REPL) metaCommand(input string) bool {
	name, rest, _ := strings.Cut(strings.TrimPrefix(input, ":"), " ")
	name = strings.ToLower(strings.TrimSpace(name))
	rest = strings.TrimSpace(rest)

	switch name {
	case "quit", "q", "exit":
		return false
	case "help", "h":
		r.printHelp()
	case "tokens":
		r.showTokens(rest)
	case "tree":
		r.showTree(rest)
	case "drain":
		r.showDrain(rest)
	case "hash":
		r.showHash(rest)
	default:
		fmt.Fprintf(r.out, "unknown command :%s\n", name)
		if suggestion := suggestMeta(name); suggestion != "" {
			fmt.Fprintf(r.out, "did you mean :%s?\n", suggestion)
		}
	}
	return true
}

// suggestMeta returns the closest meta-command name, or "".
func suggestMeta(name string) string {
	ranks := fuzzy.RankFindFold(name, metaCommands)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.out, `commands:
  :tokens <input>   show the classified token stream
  :tree   <input>   show the syntax tree (default for plain input)
  :drain  <input>   destructively extract the words in order
  :hash   <input>   show the canonical tree hash
  :help             show this help
  :quit             leave the session
`)
}

// parseOrReport parses the input, printing any error to the session.
func (r *REPL) parseOrReport(input string) *parser.Result {
	if strings.TrimSpace(input) == "" {
		fmt.Fprintln(r.out, "nothing to parse; see :help")
		return nil
	}
	result, err := parser.Parse(input)
	if err != nil {
		fmt.Fprintln(r.out, err)
		if result != nil && result.Tree != nil {
			result.Tree.Clear()
		}
		return nil
	}
	return result
}

func (r *REPL) showTokens(input string) {
	if strings.TrimSpace(input) == "" {
		fmt.Fprintln(r.out, "usage: :tokens <input>")
		return
	}
	for _, tok := range lexer.NewLexer(input).GetTokens() {
		if tok.Type == lexer.EOF {
			break
		}
		fmt.Fprintf(r.out, "%3d:%-3d %-10s %s\n",
			tok.Position.Line, tok.Position.Column, tok.Type, tok.Symbol())
	}
}

func (r *REPL) showTree(input string) {
	result := r.parseOrReport(input)
	if result == nil {
		return
	}
	fmt.Fprint(r.out, parser.RenderText(result.Tree))
	result.Tree.Clear()
}

func (r *REPL) showDrain(input string) {
	result := r.parseOrReport(input)
	if result == nil {
		return
	}
	if err := result.Tree.Bottom(); err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	for {
		tok, ok := result.Tree.Next()
		if !ok {
			return
		}
		fmt.Fprintln(r.out, tok.String())
	}
}

func (r *REPL) showHash(input string) {
	result := r.parseOrReport(input)
	if result == nil {
		return
	}
	defer result.Tree.Clear()

	hash, err := parser.Canonicalize(result.Tree).Hash()
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	fmt.Fprintln(r.out, hash)
}
