package lineage

// Statement is one semicolon-delimited unit of a SQL script. It holds
// only the significant tokens: whitespace and comments carry no table
// information and are dropped at split time. Statements are transient;
// they do not outlive a single extraction call.
type Statement struct {
	Tokens []Token
}

// SplitStatements partitions a token stream into statements. A top-level
// semicolon closes the current statement and is not part of it; a
// trailing statement without a terminating semicolon is still emitted.
// Empty statements are discarded.
func SplitStatements(tokens []Token) []Statement {
	var stmts []Statement
	var current []Token
	depth := 0

	flush := func() {
		if len(current) > 0 {
			stmts = append(stmts, Statement{Tokens: current})
			current = nil
		}
	}

	for _, tok := range tokens {
		switch tok.Type {
		case TOKEN_EOF:
			// stream terminator, not statement content
		case TOKEN_WHITESPACE, TOKEN_COMMENT:
			// dropped entirely
		case TOKEN_LPAREN:
			depth++
			current = append(current, tok)
		case TOKEN_RPAREN:
			if depth > 0 {
				depth--
			}
			current = append(current, tok)
		case TOKEN_SEMI:
			if depth == 0 {
				flush()
			} else {
				// A semicolon inside parentheses is malformed SQL; keep
				// it in the statement body and let the scanners skip it.
				current = append(current, tok)
			}
		default:
			current = append(current, tok)
		}
	}
	flush()
	return stmts
}
