package lineage

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

//nolint:revive // TOKEN_* names are intentionally ALL_CAPS for SQL token conventions
const (
	// TOKEN_EOF represents end of input.
	TOKEN_EOF TokenType = iota
	// TOKEN_ILLEGAL represents a byte the lexer cannot classify. Scanners
	// skip over it; it never aborts tokenization.
	TOKEN_ILLEGAL

	// TOKEN_KEYWORD represents a reserved SQL word.
	TOKEN_KEYWORD
	// TOKEN_NAME represents a bare identifier.
	TOKEN_NAME
	// TOKEN_QUOTED_NAME represents a double-quoted identifier with the
	// quotes stripped.
	TOKEN_QUOTED_NAME
	// TOKEN_STRING represents a single-quoted string literal.
	TOKEN_STRING
	// TOKEN_COMMENT represents a -- line comment or /* */ block comment.
	TOKEN_COMMENT
	// TOKEN_WHITESPACE represents a run of spaces, tabs, or newlines.
	TOKEN_WHITESPACE

	TOKEN_DOT    // .
	TOKEN_COMMA  // ,
	TOKEN_SEMI   // ;
	TOKEN_LPAREN // (
	TOKEN_RPAREN // )
)

// Token represents a lexical token with position information.
// Tokens are immutable once produced by the lexer.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position represents a location in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	TOKEN_EOF:     "EOF",
	TOKEN_ILLEGAL: "ILLEGAL",

	TOKEN_KEYWORD:     "KEYWORD",
	TOKEN_NAME:        "NAME",
	TOKEN_QUOTED_NAME: "QUOTED_NAME",
	TOKEN_STRING:      "STRING",
	TOKEN_COMMENT:     "COMMENT",
	TOKEN_WHITESPACE:  "WHITESPACE",

	TOKEN_DOT:    ".",
	TOKEN_COMMA:  ",",
	TOKEN_SEMI:   ";",
	TOKEN_LPAREN: "(",
	TOKEN_RPAREN: ")",
}

// keywords is the reserved-word set used to separate keywords from table
// and column names. It is built once at process start and never mutated.
var keywords = map[string]struct{}{
	"all":        {},
	"alter":      {},
	"and":        {},
	"as":         {},
	"asc":        {},
	"begin":      {},
	"between":    {},
	"by":         {},
	"case":       {},
	"cast":       {},
	"create":     {},
	"cross":      {},
	"database":   {},
	"delete":     {},
	"desc":       {},
	"distinct":   {},
	"drop":       {},
	"else":       {},
	"end":        {},
	"except":     {},
	"exists":     {},
	"from":       {},
	"full":       {},
	"global":     {},
	"grant":      {},
	"group":      {},
	"having":     {},
	"in":         {},
	"inner":      {},
	"insert":     {},
	"intersect":  {},
	"into":       {},
	"is":         {},
	"join":       {},
	"lateral":    {},
	"left":       {},
	"like":       {},
	"limit":      {},
	"merge":      {},
	"multiset":   {},
	"not":        {},
	"null":       {},
	"offset":     {},
	"on":         {},
	"or":         {},
	"order":      {},
	"outer":      {},
	"procedure":  {},
	"qualify":    {},
	"recursive":  {},
	"replace":    {},
	"revoke":     {},
	"right":      {},
	"sample":     {},
	"select":     {},
	"set":        {},
	"table":      {},
	"temporary":  {},
	"then":       {},
	"top":        {},
	"truncate":   {},
	"union":      {},
	"update":     {},
	"using":      {},
	"values":     {},
	"view":       {},
	"volatile":   {},
	"when":       {},
	"where":      {},
	"with":       {},
}

// LookupIdent returns the token type for the given lowercased word.
// If the word is a reserved keyword, TOKEN_KEYWORD is returned.
// Otherwise, TOKEN_NAME is returned.
func LookupIdent(ident string) TokenType {
	if _, ok := keywords[ident]; ok {
		return TOKEN_KEYWORD
	}
	return TOKEN_NAME
}
