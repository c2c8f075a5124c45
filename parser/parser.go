// Package parser builds a concrete syntax tree for POSIX shell commands.
//
// The grammar is parsed by recursive descent, one routine per grammar
// level (complete_command → list → and_or → pipeline → pipe_sequence →
// command → simple_command). The tree uses a binary child layout: the
// first production of a level hangs off Left, and repetition at the
// same level is encoded as a right-leaning chain of separator nodes
// carrying the operator token. A single cursor, shared by all grammar
// routines, moves down as nodes are inserted and back up as each
// routine returns, so the cursor ends where the routine found it.
package parser

import (
	"fmt"
	"time"

	"github.com/posh-lang/posh/invariant"
	"github.com/posh-lang/posh/lexer"
)

// Result holds the output of a parse: the token stream, the finished
// syntax tree, and any telemetry or debug data that was enabled. On a
// failed parse the tree holds whatever partial shape existed at the
// failure point; callers that keep it must Clear it themselves.
type Result struct {
	Tokens      []lexer.Token
	Tree        *Tree[lexer.Token]
	Telemetry   *ParseTelemetry
	DebugEvents []DebugEvent
}

// Parser consumes a classified token sequence left-to-right, exactly
// once, and drives the tree cursor to mirror grammar nesting.
type Parser struct {
	config ParserConfig

	source []byte // original input, for error context lines
	tokens []lexer.Token
	index  int

	tree      *Tree[lexer.Token]
	nodeCount int

	debugEvents []DebugEvent
}

// Parse tokenizes and parses a shell command line.
func Parse(source string, opts ...ParserOpt) (*Result, error) {
	config := ParserConfig{}
	for _, opt := range opts {
		opt(&config)
	}

	var lexStart time.Time
	if config.telemetry >= lexer.TelemetryTiming {
		lexStart = time.Now()
	}

	l := lexer.NewLexer(source, config.lexerOpts...)
	tokens := l.GetTokens()

	var lexTime time.Duration
	if config.telemetry >= lexer.TelemetryTiming {
		lexTime = time.Since(lexStart)
	}

	p := &Parser{
		config: config,
		source: []byte(source),
		tokens: tokens,
		tree:   &Tree[lexer.Token]{},
	}
	return p.run(lexTime)
}

// ParseTokens parses an already-classified token sequence. The sequence
// may, but need not, be terminated by an EOF token.
func ParseTokens(tokens []lexer.Token, opts ...ParserOpt) (*Result, error) {
	config := ParserConfig{}
	for _, opt := range opts {
		opt(&config)
	}

	p := &Parser{
		config: config,
		tokens: tokens,
		tree:   &Tree[lexer.Token]{},
	}
	return p.run(0)
}

func (p *Parser) run(lexTime time.Duration) (*Result, error) {
	var parseStart time.Time
	if p.config.telemetry >= lexer.TelemetryTiming {
		parseStart = time.Now()
	}

	err := p.parse()

	result := &Result{
		Tokens:      p.tokens,
		Tree:        p.tree,
		DebugEvents: p.debugEvents,
	}

	if p.config.telemetry > lexer.TelemetryOff {
		telemetry := &ParseTelemetry{
			TokenCount: p.meaningfulTokens(),
			NodeCount:  p.nodeCount,
		}
		if err != nil {
			telemetry.ErrorCount = 1
		}
		if p.config.telemetry >= lexer.TelemetryTiming {
			telemetry.LexTime = lexTime
			telemetry.ParseTime = time.Since(parseStart)
			telemetry.TotalTime = lexTime + telemetry.ParseTime
		}
		result.Telemetry = telemetry
	}

	if err != nil {
		return result, err
	}
	return result, nil
}

// meaningfulTokens counts tokens excluding the EOF terminator.
func (p *Parser) meaningfulTokens() int {
	n := len(p.tokens)
	if n > 0 && p.tokens[n-1].Type == lexer.EOF {
		n--
	}
	return n
}

// parse is the grammar entry point. The root is always a
// complete_command node; after a successful parse the cursor rests on
// it and every token has been consumed.
func (p *Parser) parse() error {
	if p.done() {
		return ErrNoTokens
	}

	if err := p.consume(NodeCompleteCommand, nil, Left); err != nil {
		return err
	}
	if err := p.completeCommand(); err != nil {
		return err
	}

	if !p.done() {
		tok := p.tokens[p.index]
		return p.unexpected(tok, "end of input")
	}
	return nil
}

// completeCommand → list, chained on NEWLINE separators.
func (p *Parser) completeCommand() error {
	if err := p.list(); err != nil {
		return err
	}

	seps := 0
	for {
		tok, ok := p.peek()
		if !ok || tok.Type != lexer.NEWLINE {
			break
		}
		if err := p.consume(NodeSeparator, p.current(), Right); err != nil {
			return err
		}
		seps++
		if p.done() {
			break
		}
		if err := p.list(); err != nil {
			return err
		}
	}
	return p.unwind(seps)
}

// list → and_or, chained on `;` and `&` separators.
func (p *Parser) list() error {
	if err := p.consume(NodeList, nil, Left); err != nil {
		return err
	}
	if err := p.andOr(); err != nil {
		return err
	}

	seps := 0
	for {
		tok, ok := p.peek()
		if !ok || (tok.Type != lexer.SEMI && tok.Type != lexer.AMP) {
			break
		}
		if err := p.consume(NodeSeparator, p.current(), Right); err != nil {
			return err
		}
		seps++
		if p.done() {
			break
		}
		// A trailing `;` or `&` before a newline ends the list.
		if next, ok := p.peek(); ok && (next.Type == lexer.NEWLINE || next.Type == lexer.RPAREN) {
			break
		}
		if err := p.andOr(); err != nil {
			return err
		}
	}

	if err := p.unwind(seps); err != nil {
		return err
	}
	return p.tree.VisitParent()
}

// andOr → pipeline, chained on `&&` and `||` separators.
func (p *Parser) andOr() error {
	if err := p.consume(NodeAndOr, nil, Left); err != nil {
		return err
	}
	if err := p.pipeline(); err != nil {
		return err
	}

	seps := 0
	for {
		tok, ok := p.peek()
		if !ok || (tok.Type != lexer.AND_IF && tok.Type != lexer.OR_IF) {
			break
		}
		if err := p.consume(NodeSeparator, p.current(), Right); err != nil {
			return err
		}
		seps++
		if p.done() {
			return p.atEnd(fmt.Sprintf("missing command after %q", tok.Symbol()), "a command")
		}
		if err := p.pipeline(); err != nil {
			return err
		}
	}

	if err := p.unwind(seps); err != nil {
		return err
	}
	return p.tree.VisitParent()
}

// pipeline → pipe_sequence, with an optional leading `!` consumed as a
// Left reserved node; the pipe_sequence then goes Right. Without the
// bang the pipe_sequence is the plain Left production.
func (p *Parser) pipeline() error {
	if err := p.consume(NodePipeline, nil, Left); err != nil {
		return err
	}

	side := Left
	if tok, ok := p.peek(); ok && tok.Type == lexer.BANG {
		if err := p.consume(NodeReserved, p.current(), Left); err != nil {
			return err
		}
		if err := p.tree.VisitParent(); err != nil {
			return err
		}
		if p.done() {
			return p.atEnd("missing command after \"!\"", "a command")
		}
		side = Right
	}

	if err := p.consume(NodePipeSequence, nil, side); err != nil {
		return err
	}
	if err := p.pipeSequence(); err != nil {
		return err
	}
	if err := p.tree.VisitParent(); err != nil {
		return err
	}
	return p.tree.VisitParent()
}

// pipeSequence → command, chained on `|` separators. The enclosing
// pipe_sequence node is created by pipeline, so this routine starts and
// ends with the cursor on it.
func (p *Parser) pipeSequence() error {
	if err := p.command(); err != nil {
		return err
	}

	seps := 0
	for {
		tok, ok := p.peek()
		if !ok || tok.Type != lexer.PIPE {
			break
		}
		if err := p.consume(NodeSeparator, p.current(), Right); err != nil {
			return err
		}
		seps++
		if p.done() {
			return p.atEnd("missing command after \"|\"", "a command")
		}
		if err := p.command(); err != nil {
			return err
		}
	}
	return p.unwind(seps)
}

// command dispatches on the current token: `(` opens a subshell, other
// compound openers and function definitions are recognized but
// unsupported grammar slots, a word starts a simple command, and
// redirection operators fall through to the (unsupported) redirect
// list. Unsupported slots fail with ErrNotImplemented rather than
// inserting an empty placeholder and looping on an unconsumed token.
func (p *Parser) command() error {
	tok, ok := p.peek()
	if !ok {
		return p.atEnd("missing command", "a command")
	}

	if err := p.consume(NodeCommand, nil, Left); err != nil {
		return err
	}
	p.recordDebugEvent("dispatch", tok.Type.String(), tok.Position)

	var err error
	switch {
	case tok.Type == lexer.ILLEGAL:
		err = &ParseError{
			Position:   tok.Position,
			Message:    "unterminated quoted string",
			Context:    sourceLine(p.source, tok.Position.Offset),
			Got:        fmt.Sprintf("%q", tok.String()),
			Suggestion: "add the missing closing quote",
		}
	case tok.Type == lexer.LPAREN:
		err = p.subshell()
	case tok.Type.IsReserved() && tok.Type != lexer.BANG:
		err = p.compoundCommand(tok)
	case tok.Type == lexer.WORD && p.peekAt(1).Type == lexer.LPAREN:
		err = p.functionDefinition(tok)
	case tok.Type == lexer.WORD:
		err = p.simpleCommand()
	case tok.Type == lexer.RPAREN:
		err = p.unexpected(tok, "a command")
	default:
		err = p.redirectList(tok)
	}
	if err != nil {
		return err
	}
	return p.tree.VisitParent()
}

// subshell → `(` list `)`. The parentheses are validated and consumed
// but carry no nodes of their own; the inner list hangs off the
// subshell node's Left.
func (p *Parser) subshell() error {
	if err := p.consume(NodeSubshell, nil, Left); err != nil {
		return err
	}
	if err := p.expect(lexer.LPAREN, "\"(\""); err != nil {
		return err
	}
	if tok, ok := p.peek(); !ok || tok.Type == lexer.RPAREN {
		if !ok {
			return p.atEnd("missing command in subshell", "a command")
		}
		return p.unexpected(tok, "a command")
	}
	if err := p.list(); err != nil {
		return err
	}
	if err := p.expect(lexer.RPAREN, "\")\""); err != nil {
		return err
	}
	return p.tree.VisitParent()
}

// compoundCommand reserves the grammar slot for brace groups, loops,
// conditionals, and case statements. The opening reserved word is
// recorded on the node so partial trees stay inspectable.
func (p *Parser) compoundCommand(tok lexer.Token) error {
	if err := p.consume(NodeCompoundCommand, p.current(), Left); err != nil {
		return err
	}
	return p.notImplemented(tok, fmt.Sprintf("%q commands", tok.Symbol()))
}

// functionDefinition reserves the grammar slot for `name()` forms,
// recording the function name on the node.
func (p *Parser) functionDefinition(tok lexer.Token) error {
	if err := p.consume(NodeFunctionDefinition, p.current(), Left); err != nil {
		return err
	}
	return p.notImplemented(tok, "function definitions")
}

// redirectList reserves the grammar slot for redirections.
func (p *Parser) redirectList(tok lexer.Token) error {
	if err := p.consume(NodeRedirectList, nil, Right); err != nil {
		return err
	}
	return p.notImplemented(tok, "redirections")
}

// simpleCommand → the first word becomes cmd_name on the Left; every
// following word becomes a cmd_suffix on the Right chain, hanging off
// the simple_command node rather than nesting under the name.
func (p *Parser) simpleCommand() error {
	if err := p.consume(NodeSimpleCommand, nil, Left); err != nil {
		return err
	}

	if err := p.consume(NodeCmdName, p.current(), Left); err != nil {
		return err
	}
	if err := p.tree.VisitParent(); err != nil {
		return err
	}

	suffixes := 0
	for {
		tok, ok := p.peek()
		if !ok || (tok.Type != lexer.WORD && tok.Type != lexer.IO_NUMBER) {
			break
		}
		if tok.Type == lexer.IO_NUMBER {
			// An IO number announces a redirection, which the suffix
			// grammar does not cover.
			return p.notImplemented(tok, "redirections")
		}
		if err := p.consume(NodeCmdSuffix, p.current(), Right); err != nil {
			return err
		}
		suffixes++
	}

	if err := p.unwind(suffixes); err != nil {
		return err
	}
	return p.tree.VisitParent()
}

// consume is the single primitive every grammar routine builds on. With
// a token it advances the token index; either way it walks the cursor
// down any already-existing chain on side (so repeated productions
// extend the chain instead of colliding), inserts the new tagged node,
// and descends onto it.
func (p *Parser) consume(kind NodeKind, tok *lexer.Token, side Side) error {
	if tok != nil {
		invariant.Invariant(p.index < len(p.tokens), "token index %d out of range (%d tokens)", p.index, len(p.tokens))
		p.index++
		p.recordDebugEvent("consume", kind.String()+" "+tok.Symbol(), tok.Position)
	} else {
		p.recordDebugEvent("consume", kind.String(), lexer.Position{})
	}

	for p.tree.BranchExists(side) {
		if err := p.tree.VisitBranch(side); err != nil {
			return err
		}
	}

	wasEmpty := p.tree.Empty()
	if err := p.tree.AddChild(kind, tok, side); err != nil {
		return err
	}
	p.nodeCount++

	if wasEmpty {
		// AddChild on an empty tree seats the cursor on the new root.
		return nil
	}
	return p.tree.VisitBranch(side)
}

// unwind retraces n parent hops, returning the cursor to where a chain
// of consumes started.
func (p *Parser) unwind(n int) error {
	for i := 0; i < n; i++ {
		if err := p.tree.VisitParent(); err != nil {
			return err
		}
	}
	return nil
}

// expect validates and advances past a token that contributes no node.
func (p *Parser) expect(want lexer.TokenType, describe string) error {
	tok, ok := p.peek()
	if !ok {
		return p.atEnd("missing "+describe, describe)
	}
	if tok.Type != want {
		return p.unexpected(tok, describe)
	}
	p.index++
	return nil
}

// done reports whether the token sequence is exhausted. An explicit EOF
// terminator token and running off the end of the slice are equivalent.
func (p *Parser) done() bool {
	return p.index >= len(p.tokens) || p.tokens[p.index].Type == lexer.EOF
}

// peek returns the current token without consuming it.
func (p *Parser) peek() (lexer.Token, bool) {
	if p.done() {
		return lexer.Token{}, false
	}
	return p.tokens[p.index], true
}

// peekAt returns the token n positions ahead, or an EOF token.
func (p *Parser) peekAt(n int) lexer.Token {
	i := p.index + n
	if i >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[i]
}

// current returns a handle on the token at the index, for attaching as
// a node payload. Callers must have peeked first.
func (p *Parser) current() *lexer.Token {
	invariant.Precondition(p.index < len(p.tokens), "token index %d out of range (%d tokens)", p.index, len(p.tokens))
	return &p.tokens[p.index]
}

func (p *Parser) recordDebugEvent(event, context string, pos lexer.Position) {
	if p.config.debug == lexer.DebugOff {
		return
	}
	p.debugEvents = append(p.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		Position:  pos,
		Context:   context,
	})
}

// unexpected builds a ParseError for a token that cannot appear here.
func (p *Parser) unexpected(tok lexer.Token, expected string) error {
	return &ParseError{
		Position: tok.Position,
		Message:  fmt.Sprintf("unexpected %q", tok.Symbol()),
		Context:  sourceLine(p.source, tok.Position.Offset),
		Expected: expected,
		Got:      fmt.Sprintf("%q", tok.Symbol()),
	}
}

// atEnd builds a ParseError for input that stops mid-production.
func (p *Parser) atEnd(message, expected string) error {
	pos := lexer.Position{Line: 1, Column: 1}
	if n := len(p.tokens); n > 0 {
		pos = p.tokens[n-1].Position
	}
	return &ParseError{
		Position: pos,
		Message:  message,
		Context:  sourceLine(p.source, pos.Offset),
		Expected: expected,
		Got:      "end of input",
	}
}

// notImplemented builds a ParseError wrapping ErrNotImplemented for a
// recognized but unsupported grammar slot.
func (p *Parser) notImplemented(tok lexer.Token, what string) error {
	return &ParseError{
		Position: tok.Position,
		Message:  what + " are not supported",
		Context:  sourceLine(p.source, tok.Position.Offset),
		Got:      fmt.Sprintf("%q", tok.Symbol()),
		wrapped:  ErrNotImplemented,
	}
}
