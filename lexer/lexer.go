package lexer

import (
	"time"
)

// ASCII character lookup tables for fast classification
var (
	isBlank    [128]bool // Inline whitespace; newlines are significant
	isDigit    [128]bool
	isWordStop [128]bool // Characters that terminate an unquoted word
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isBlank[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f'
		isDigit[i] = '0' <= ch && ch <= '9'
		isWordStop[i] = isBlank[i] || ch == '\n' || ch == '&' || ch == '|' ||
			ch == ';' || ch == '<' || ch == '>' || ch == '(' || ch == ')'
	}
}

// LexerOpt represents a lexer configuration option
type LexerOpt func(*LexerConfig)

// TelemetryMode controls telemetry collection (production-safe)
type TelemetryMode int

const (
	TelemetryOff    TelemetryMode = iota // Zero overhead (default)
	TelemetryBasic                       // Token counts only
	TelemetryTiming                      // Token counts + timing per type
)

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff      DebugLevel = iota // No debug info (default)
	DebugTokens                     // Token-level tracing
	DebugDetailed                   // Character-level tracing
)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	telemetry TelemetryMode
	debug     DebugLevel
}

// WithTelemetryBasic enables basic telemetry (token counts only)
func WithTelemetryBasic() LexerOpt {
	return func(c *LexerConfig) {
		c.telemetry = TelemetryBasic
	}
}

// WithTelemetryTiming enables timing telemetry (counts + timing per type)
func WithTelemetryTiming() LexerOpt {
	return func(c *LexerConfig) {
		c.telemetry = TelemetryTiming
	}
}

// WithDebugTokens enables token-level debug tracing (development only)
func WithDebugTokens() LexerOpt {
	return func(c *LexerConfig) {
		c.debug = DebugTokens
	}
}

// WithDebugDetailed enables character-level debug tracing (development only)
func WithDebugDetailed() LexerOpt {
	return func(c *LexerConfig) {
		c.debug = DebugDetailed
	}
}

// TokenTelemetry holds per-token type telemetry (production-safe)
type TokenTelemetry struct {
	Type      TokenType
	Count     int
	TotalTime time.Duration
	AvgTime   time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// DebugEvent holds debug tracing information (development only)
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "token", "comment", "continuation"
	Position  Position
	Context   string
}

// Lexer tokenizes POSIX shell command input
type Lexer struct {
	input    []byte
	position int
	line     int
	column   int

	// Track if last emitted token was NEWLINE (to skip consecutive ones)
	lastWasNewline bool

	// Telemetry (nil when disabled for zero allocation)
	telemetryMode  TelemetryMode
	tokenTelemetry map[TokenType]*TokenTelemetry

	// Debug (nil when disabled for zero allocation)
	debugLevel  DebugLevel
	debugEvents []DebugEvent
}

// NewLexer creates a new lexer instance with optional configuration
func NewLexer(input string, opts ...LexerOpt) *Lexer {
	config := &LexerConfig{}
	for _, opt := range opts {
		opt(config)
	}

	l := &Lexer{
		telemetryMode: config.telemetry,
		debugLevel:    config.debug,
	}

	if config.telemetry > TelemetryOff {
		l.tokenTelemetry = make(map[TokenType]*TokenTelemetry)
	}
	if config.debug > DebugOff {
		l.debugEvents = make([]DebugEvent, 0, 256)
	}

	l.Init([]byte(input))
	return l
}

// Init resets the lexer with new input (following Go scanner pattern)
func (l *Lexer) Init(input []byte) {
	l.input = input
	l.position = 0
	l.line = 1
	l.column = 1
	l.lastWasNewline = false

	if l.telemetryMode > TelemetryOff && l.tokenTelemetry != nil {
		for k := range l.tokenTelemetry {
			delete(l.tokenTelemetry, k)
		}
	}
	if l.debugLevel > DebugOff && l.debugEvents != nil {
		l.debugEvents = l.debugEvents[:0]
	}
}

// GetTokenTelemetry returns per-token type telemetry (production safe)
func (l *Lexer) GetTokenTelemetry() map[TokenType]*TokenTelemetry {
	if l.telemetryMode == TelemetryOff || l.tokenTelemetry == nil {
		return nil
	}

	// Return a copy to prevent external modification
	result := make(map[TokenType]*TokenTelemetry, len(l.tokenTelemetry))
	for k, v := range l.tokenTelemetry {
		telemetryCopy := *v
		result[k] = &telemetryCopy
	}
	return result
}

// GetDebugEvents returns debug events (development only)
func (l *Lexer) GetDebugEvents() []DebugEvent {
	if l.debugLevel == DebugOff || l.debugEvents == nil {
		return nil
	}

	result := make([]DebugEvent, len(l.debugEvents))
	copy(result, l.debugEvents)
	return result
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	var start time.Time
	if l.telemetryMode >= TelemetryTiming {
		start = time.Now()
	}

	token := l.lexToken()

	if l.telemetryMode > TelemetryOff {
		var elapsed time.Duration
		if l.telemetryMode >= TelemetryTiming {
			elapsed = time.Since(start)
		}
		l.recordTokenTelemetry(token.Type, elapsed)
	}
	if l.debugLevel >= DebugTokens {
		l.recordDebugEvent("token", token.Type.String()+" "+token.Symbol())
	}

	return token
}

// GetTokens returns all tokens using the batch interface.
// The returned slice is terminated by an EOF token.
func (l *Lexer) GetTokens() []Token {
	var tokens []Token
	for {
		token := l.NextToken()
		tokens = append(tokens, token)
		if token.Type == EOF {
			return tokens
		}
	}
}

// recordTokenTelemetry records per-token type telemetry (production safe)
func (l *Lexer) recordTokenTelemetry(tokenType TokenType, elapsed time.Duration) {
	telemetry, exists := l.tokenTelemetry[tokenType]
	if !exists {
		telemetry = &TokenTelemetry{
			Type:    tokenType,
			MinTime: elapsed,
			MaxTime: elapsed,
		}
		l.tokenTelemetry[tokenType] = telemetry
	}

	telemetry.Count++

	if l.telemetryMode >= TelemetryTiming {
		telemetry.TotalTime += elapsed
		telemetry.AvgTime = telemetry.TotalTime / time.Duration(telemetry.Count)

		if elapsed < telemetry.MinTime || telemetry.Count == 1 {
			telemetry.MinTime = elapsed
		}
		if elapsed > telemetry.MaxTime || telemetry.Count == 1 {
			telemetry.MaxTime = elapsed
		}
	}
}

// recordDebugEvent records debug events when debug tracing is enabled
func (l *Lexer) recordDebugEvent(event, context string) {
	if l.debugLevel == DebugOff || l.debugEvents == nil {
		return
	}

	l.debugEvents = append(l.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		Position:  Position{Line: l.line, Column: l.column, Offset: l.position},
		Context:   context,
	})
}

// lexToken performs the actual tokenization work
func (l *Lexer) lexToken() Token {
	l.skipBlanks()

	// Handle newlines - emit NEWLINE token, skip consecutive ones
	if l.position < len(l.input) && l.input[l.position] == '\n' {
		if !l.lastWasNewline {
			start := l.here()
			l.advanceChar()
			l.lastWasNewline = true
			return Token{Type: NEWLINE, Text: nil, Position: start}
		}
		for l.position < len(l.input) && l.input[l.position] == '\n' {
			l.advanceChar()
		}
		return l.lexToken()
	}

	l.lastWasNewline = false

	if l.position >= len(l.input) {
		return Token{Type: EOF, Text: nil, Position: l.here()}
	}

	ch := l.input[l.position]

	// Comments run to (but do not consume) the end of the line
	if ch == '#' {
		if l.debugLevel >= DebugDetailed {
			l.recordDebugEvent("comment", "skipping to end of line")
		}
		for l.position < len(l.input) && l.input[l.position] != '\n' {
			l.advanceChar()
		}
		return l.lexToken()
	}

	// Two-character operators take precedence over their single-char prefixes
	if l.position+1 < len(l.input) {
		if tok, ok := TwoCharTokens[string(l.input[l.position:l.position+2])]; ok {
			start := l.here()
			l.advanceChar()
			l.advanceChar()
			return Token{Type: tok, Text: nil, Position: start}
		}
	}

	if tok, ok := SingleCharTokens[ch]; ok {
		start := l.here()
		l.advanceChar()
		return Token{Type: tok, Text: nil, Position: start}
	}

	// A run of digits directly before < or > is an IO_NUMBER, not a word
	if isDigit[ch] {
		if tok, ok := l.lexIONumber(); ok {
			return tok
		}
	}

	return l.lexWord()
}

// lexIONumber scans a digit run and emits IO_NUMBER only when the run is
// immediately followed by a redirection operator. Otherwise the position is
// left untouched and the digits lex as part of a word.
func (l *Lexer) lexIONumber() (Token, bool) {
	end := l.position
	for end < len(l.input) && l.input[end] < 128 && isDigit[l.input[end]] {
		end++
	}
	if end >= len(l.input) || (l.input[end] != '<' && l.input[end] != '>') {
		return Token{}, false
	}

	start := l.here()
	text := l.input[l.position:end]
	for l.position < end {
		l.advanceChar()
	}
	return Token{Type: IO_NUMBER, Text: text, Position: start}, true
}

// lexWord scans a word, honoring single quotes, double quotes, and backslash
// escapes. Quote removal is not performed: Token.Text is the raw lexeme.
func (l *Lexer) lexWord() Token {
	start := l.here()
	wordStart := l.position

	for l.position < len(l.input) {
		ch := l.input[l.position]
		if ch < 128 && isWordStop[ch] {
			break
		}

		switch ch {
		case '\\':
			// Backslash escapes the next character; a backslash-newline pair
			// is a line continuation and joins the word
			l.advanceChar()
			if l.position < len(l.input) {
				l.advanceChar()
			}
		case '\'':
			if !l.scanQuoted('\'', false) {
				return l.illegalFrom(wordStart, start)
			}
		case '"':
			if !l.scanQuoted('"', true) {
				return l.illegalFrom(wordStart, start)
			}
		default:
			l.advanceChar()
		}
	}

	text := l.input[wordStart:l.position]
	return Token{
		Type:     LookupWord(string(text)),
		Text:     text,
		Position: start,
	}
}

// scanQuoted consumes a quoted span including both quote characters.
// Returns false if the closing quote is missing.
func (l *Lexer) scanQuoted(quote byte, allowEscape bool) bool {
	l.advanceChar() // opening quote
	for l.position < len(l.input) {
		ch := l.input[l.position]
		if allowEscape && ch == '\\' {
			l.advanceChar()
			if l.position < len(l.input) {
				l.advanceChar()
			}
			continue
		}
		if ch == quote {
			l.advanceChar() // closing quote
			return true
		}
		l.advanceChar()
	}
	return false
}

// illegalFrom consumes the rest of the input as an ILLEGAL token; an
// unterminated quote poisons everything after it
func (l *Lexer) illegalFrom(wordStart int, start Position) Token {
	for l.position < len(l.input) {
		l.advanceChar()
	}
	return Token{Type: ILLEGAL, Text: l.input[wordStart:], Position: start}
}

// skipBlanks skips inline whitespace and backslash-newline continuations
func (l *Lexer) skipBlanks() {
	for l.position < len(l.input) {
		ch := l.input[l.position]
		if ch < 128 && isBlank[ch] {
			l.advanceChar()
			continue
		}
		if ch == '\\' && l.position+1 < len(l.input) && l.input[l.position+1] == '\n' {
			if l.debugLevel >= DebugDetailed {
				l.recordDebugEvent("continuation", "backslash-newline")
			}
			l.advanceChar()
			l.advanceChar()
			continue
		}
		return
	}
}

// here captures the current source position
func (l *Lexer) here() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.position}
}

// advanceChar consumes one byte, maintaining line and column counters
func (l *Lexer) advanceChar() {
	if l.position >= len(l.input) {
		return
	}
	if l.input[l.position] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.position++
}
