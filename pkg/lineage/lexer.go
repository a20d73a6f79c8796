package lineage

import "strings"

// Lexer tokenizes SQL input. It is total: every byte of the input is
// covered by exactly one token, and unterminated strings or block
// comments simply run to end of input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token. Identifier and keyword literals are
// lowercased; the extractor reports lowercase-normalized names.
func (l *Lexer) NextToken() Token {
	pos := l.currentPos()

	var tok Token
	tok.Pos = pos

	switch {
	case l.ch == 0:
		tok.Type = TOKEN_EOF
		tok.Literal = ""
		return tok
	case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
		tok.Type = TOKEN_WHITESPACE
		tok.Literal = l.readWhitespace()
		return tok
	case l.ch == '/' && l.peekChar() == '*':
		tok.Type = TOKEN_COMMENT
		tok.Literal = l.readBlockComment()
		return tok
	case l.ch == '-' && l.peekChar() == '-':
		tok.Type = TOKEN_COMMENT
		tok.Literal = l.readLineComment()
		return tok
	case l.ch == '\'':
		tok.Type = TOKEN_STRING
		tok.Literal = l.readString()
		return tok
	case l.ch == '"':
		// Quoted identifier (Teradata/ANSI style), quotes stripped
		tok.Type = TOKEN_QUOTED_NAME
		tok.Literal = strings.ToLower(l.readQuotedIdentifier())
		return tok
	}

	switch l.ch {
	case '.':
		tok = l.newToken(TOKEN_DOT, ".")
	case ',':
		tok = l.newToken(TOKEN_COMMA, ",")
	case ';':
		tok = l.newToken(TOKEN_SEMI, ";")
	case '(':
		tok = l.newToken(TOKEN_LPAREN, "(")
	case ')':
		tok = l.newToken(TOKEN_RPAREN, ")")
	default:
		if isWordChar(l.ch) {
			word := strings.ToLower(l.readWord())
			tok.Literal = word
			tok.Type = LookupIdent(word)
			tok.Pos = pos
			return tok
		}
		tok = l.newToken(TOKEN_ILLEGAL, string(l.ch))
	}

	l.readChar()
	return tok
}

// newToken creates a new token.
func (l *Lexer) newToken(tokenType TokenType, literal string) Token {
	return Token{Type: tokenType, Literal: literal, Pos: l.currentPos()}
}

// readWhitespace reads a run of whitespace characters.
func (l *Lexer) readWhitespace() string {
	start := l.pos
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readLineComment reads a -- comment up to (not including) the newline.
func (l *Lexer) readLineComment() string {
	start := l.pos
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readBlockComment reads a /* */ comment, or to end of input when
// unterminated.
func (l *Lexer) readBlockComment() string {
	start := l.pos
	l.readChar() // skip '/'
	l.readChar() // skip '*'

	for {
		if l.ch == 0 {
			// Unterminated block comment
			return l.input[start:l.pos]
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			return l.input[start:l.pos]
		}
		l.readChar()
	}
}

// readString reads a single-quoted string literal.
// Handles doubled single quotes as escape: 'it''s' -> it's
func (l *Lexer) readString() string {
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		if l.ch == 0 {
			// Unterminated string
			break
		}
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				// Doubled quote escape
				result.WriteByte('\'')
				l.readChar() // skip first quote
				l.readChar() // skip second quote
			} else {
				// End of string
				l.readChar() // skip closing quote
				break
			}
		} else {
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
	return result.String()
}

// readQuotedIdentifier reads a double-quoted identifier.
// Handles doubled double quotes as escape: "col""name" -> col"name
func (l *Lexer) readQuotedIdentifier() string {
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		if l.ch == 0 {
			// Unterminated identifier
			break
		}
		if l.ch == '"' {
			if l.peekChar() == '"' {
				// Doubled quote escape
				result.WriteByte('"')
				l.readChar() // skip first quote
				l.readChar() // skip second quote
			} else {
				// End of identifier
				l.readChar() // skip closing quote
				break
			}
		} else {
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
	return result.String()
}

// readWord reads an unquoted word: a run of [A-Za-z0-9_$].
func (l *Lexer) readWord() string {
	start := l.pos
	for isWordChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// isWordChar returns true if ch can appear in an unquoted identifier.
func isWordChar(ch byte) bool {
	return ch == '_' || ch == '$' || isDigit(ch) ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, ending with TOKEN_EOF.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF {
			break
		}
	}
	return tokens
}
