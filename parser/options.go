package parser

import (
	"time"

	"github.com/posh-lang/posh/lexer"
)

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// ParserConfig holds parser configuration
type ParserConfig struct {
	telemetry lexer.TelemetryMode
	debug     lexer.DebugLevel
	lexerOpts []lexer.LexerOpt
}

// WithTelemetryBasic enables basic telemetry (token and node counts)
func WithTelemetryBasic() ParserOpt {
	return func(c *ParserConfig) {
		c.telemetry = lexer.TelemetryBasic
		c.lexerOpts = append(c.lexerOpts, lexer.WithTelemetryBasic())
	}
}

// WithTelemetryTiming enables timing telemetry (counts + phase timing)
func WithTelemetryTiming() ParserOpt {
	return func(c *ParserConfig) {
		c.telemetry = lexer.TelemetryTiming
		c.lexerOpts = append(c.lexerOpts, lexer.WithTelemetryTiming())
	}
}

// WithDebugTokens enables production-level debug tracing
func WithDebugTokens() ParserOpt {
	return func(c *ParserConfig) {
		c.debug = lexer.DebugTokens
		c.lexerOpts = append(c.lexerOpts, lexer.WithDebugTokens())
	}
}

// WithDebugDetailed enables token-level debug tracing
func WithDebugDetailed() ParserOpt {
	return func(c *ParserConfig) {
		c.debug = lexer.DebugDetailed
		c.lexerOpts = append(c.lexerOpts, lexer.WithDebugDetailed())
	}
}

// ParseTelemetry holds parsing phase telemetry (production-safe)
type ParseTelemetry struct {
	LexTime    time.Duration
	ParseTime  time.Duration
	TotalTime  time.Duration
	TokenCount int
	NodeCount  int
	ErrorCount int
}

// DebugEvent holds parse tracing information (development only)
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "production", "consume", "dispatch"
	Position  lexer.Position
	Context   string
}
