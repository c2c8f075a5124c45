package lexer

// TokenType classifies a lexical token of the POSIX shell command grammar
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Line structure
	NEWLINE // \n - ends a complete command

	// Words and word-like tokens
	WORD      // command names, arguments, quoted strings
	IO_NUMBER // fd number immediately preceding a redirection operator

	// Control operators
	AND_IF // &&
	OR_IF  // ||
	PIPE   // |
	SEMI   // ;
	DSEMI  // ;; (case item terminator)
	AMP    // &
	LPAREN // (
	RPAREN // )

	// Redirection operators
	LESS   // <
	GREAT  // >
	DLESS  // <<
	DGREAT // >>

	// Reserved words (recognized as standalone words, position-independent;
	// the parser decides whether a reserved word is meaningful in context)
	BANG   // !
	LBRACE // {
	RBRACE // }
	IF
	THEN
	ELSE
	ELIF
	FI
	DO
	DONE
	CASE
	ESAC
	WHILE
	UNTIL
	FOR
	IN
)

// Token represents a lexical token
type Token struct {
	Type     TokenType
	Text     []byte // Slice into the original input; zero-copy
	Position Position
}

// Position represents a position in the source
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// String returns the token text as a string (for testing and debugging)
func (t Token) String() string {
	return string(t.Text)
}

// Symbol returns the token's symbol or text representation.
// For tokens with Text (words, reserved words), returns the text.
// For operator tokens with empty Text, returns the static symbol.
func (t Token) Symbol() string {
	if len(t.Text) > 0 {
		return string(t.Text)
	}

	switch t.Type {
	case AND_IF:
		return "&&"
	case OR_IF:
		return "||"
	case PIPE:
		return "|"
	case SEMI:
		return ";"
	case DSEMI:
		return ";;"
	case AMP:
		return "&"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LESS:
		return "<"
	case GREAT:
		return ">"
	case DLESS:
		return "<<"
	case DGREAT:
		return ">>"
	case NEWLINE:
		return "\\n"
	default:
		return ""
	}
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case ILLEGAL:
		return "ILLEGAL"
	case NEWLINE:
		return "NEWLINE"
	case WORD:
		return "WORD"
	case IO_NUMBER:
		return "IO_NUMBER"
	case AND_IF:
		return "AND_IF"
	case OR_IF:
		return "OR_IF"
	case PIPE:
		return "PIPE"
	case SEMI:
		return "SEMI"
	case DSEMI:
		return "DSEMI"
	case AMP:
		return "AMP"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LESS:
		return "LESS"
	case GREAT:
		return "GREAT"
	case DLESS:
		return "DLESS"
	case DGREAT:
		return "DGREAT"
	case BANG:
		return "BANG"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case IF:
		return "IF"
	case THEN:
		return "THEN"
	case ELSE:
		return "ELSE"
	case ELIF:
		return "ELIF"
	case FI:
		return "FI"
	case DO:
		return "DO"
	case DONE:
		return "DONE"
	case CASE:
		return "CASE"
	case ESAC:
		return "ESAC"
	case WHILE:
		return "WHILE"
	case UNTIL:
		return "UNTIL"
	case FOR:
		return "FOR"
	case IN:
		return "IN"
	default:
		return "UNKNOWN"
	}
}

// IsReserved reports whether the token type is a shell reserved word
func (t TokenType) IsReserved() bool {
	return t >= BANG && t <= IN
}

// IsOperator reports whether the token type is a control or redirection operator
func (t TokenType) IsOperator() bool {
	return t >= AND_IF && t <= DGREAT
}

// Keywords maps reserved-word spellings to their token types. The brace and
// bang forms are reserved words in the POSIX grammar, not operators: they are
// only recognized when they form a complete word.
var Keywords = map[string]TokenType{
	"!":     BANG,
	"{":     LBRACE,
	"}":     RBRACE,
	"if":    IF,
	"then":  THEN,
	"else":  ELSE,
	"elif":  ELIF,
	"fi":    FI,
	"do":    DO,
	"done":  DONE,
	"case":  CASE,
	"esac":  ESAC,
	"while": WHILE,
	"until": UNTIL,
	"for":   FOR,
	"in":    IN,
}

// LookupWord classifies a completed word as a reserved word or plain WORD
func LookupWord(word string) TokenType {
	if tok, ok := Keywords[word]; ok {
		return tok
	}
	return WORD
}

// SingleCharTokens maps single operator characters to their token types
var SingleCharTokens = map[byte]TokenType{
	'&': AMP,
	'|': PIPE,
	';': SEMI,
	'<': LESS,
	'>': GREAT,
	'(': LPAREN,
	')': RPAREN,
}

// TwoCharTokens maps two-character operator sequences to their token types
var TwoCharTokens = map[string]TokenType{
	"&&": AND_IF,
	"||": OR_IF,
	";;": DSEMI,
	"<<": DLESS,
	">>": DGREAT,
}
