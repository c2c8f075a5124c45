// Command posh parses POSIX shell commands into a concrete syntax tree.
//
// Input comes from a file argument, a -c command string, or piped
// stdin; with no input on a terminal it starts an interactive session.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/posh-lang/posh/lexer"
	"github.com/posh-lang/posh/parser"
	"github.com/posh-lang/posh/repl"
	"github.com/spf13/cobra"
)

type options struct {
	command   string
	tokens    bool
	format    string
	telemetry bool
	watch     bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "posh [file]",
		Short: "Parse POSIX shell commands into a syntax tree",
		Long: `posh parses POSIX shell command lines into a concrete syntax tree.

Reads from a file argument, a -c command string, or piped stdin.
Run with no input on a terminal to start an interactive session.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.command, "command", "c", "", "parse the given command string")
	cmd.Flags().BoolVar(&opts.tokens, "tokens", false, "print the token stream instead of the tree")
	cmd.Flags().StringVar(&opts.format, "format", "text", "tree output format: text or cbor")
	cmd.Flags().BoolVar(&opts.telemetry, "telemetry", false, "print parse telemetry to stderr")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "watch the file and re-parse on change")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	switch {
	case opts.command != "":
		return parseAndPrint(cmd, opts, opts.command)

	case len(args) == 1:
		if opts.watch {
			return watch(cmd, opts, args[0])
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return parseAndPrint(cmd, opts, string(data))

	default:
		if opts.watch {
			return fmt.Errorf("--watch requires a file argument")
		}
		if stdinIsPiped() {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			return parseAndPrint(cmd, opts, string(data))
		}
		session, err := repl.New()
		if err != nil {
			return err
		}
		return session.Run()
	}
}

// stdinIsPiped reports whether stdin carries piped or redirected data.
func stdinIsPiped() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}

func parseAndPrint(cmd *cobra.Command, opts *options, source string) error {
	out := cmd.OutOrStdout()

	if opts.tokens {
		for _, tok := range lexer.NewLexer(source).GetTokens() {
			if tok.Type == lexer.EOF {
				break
			}
			fmt.Fprintf(out, "%3d:%-3d %-10s %s\n",
				tok.Position.Line, tok.Position.Column, tok.Type, tok.Symbol())
		}
		return nil
	}

	var parserOpts []parser.ParserOpt
	if opts.telemetry {
		parserOpts = append(parserOpts, parser.WithTelemetryTiming())
	}

	result, err := parser.Parse(source, parserOpts...)
	if opts.telemetry && result != nil && result.Telemetry != nil {
		printTelemetry(cmd.ErrOrStderr(), result.Telemetry)
	}
	if err != nil {
		if result != nil && result.Tree != nil {
			result.Tree.Clear()
		}
		return err
	}
	defer result.Tree.Clear()

	switch opts.format {
	case "text":
		fmt.Fprint(out, parser.RenderText(result.Tree))
		return nil
	case "cbor":
		data, err := parser.Canonicalize(result.Tree).MarshalBinary()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q (want text or cbor)", opts.format)
	}
}

func printTelemetry(w io.Writer, t *parser.ParseTelemetry) {
	fmt.Fprintf(w, "tokens:     %d\n", t.TokenCount)
	fmt.Fprintf(w, "nodes:      %d\n", t.NodeCount)
	fmt.Fprintf(w, "lex time:   %s\n", t.LexTime)
	fmt.Fprintf(w, "parse time: %s\n", t.ParseTime)
	fmt.Fprintf(w, "total time: %s\n", t.TotalTime)
}

// watch re-parses the file on every change until interrupted. The
// parent directory is watched because most editors replace the file on
// save instead of writing it in place.
func watch(cmd *cobra.Command, opts *options, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	errOut := cmd.ErrOrStderr()

	parseFile := func() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return
		}
		if err := parseAndPrint(cmd, opts, string(data)); err != nil {
			fmt.Fprintln(errOut, err)
		}
	}
	parseFile()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				fmt.Fprintf(errOut, "-- %s changed --\n", path)
				parseFile()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(errOut, "watch error:", err)
		}
	}
}
