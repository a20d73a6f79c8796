package lineage

// Keyword spellings the scanners branch on. The lexer lowercases keyword
// literals, so all comparisons here use the lowercase form. Like the
// reserved-word set, these are built once and never mutated.
var (
	// collectTriggers open a source-table clause: FROM and JOIN for
	// queries, INTO for INSERT/MERGE targets, USING for MERGE sources.
	collectTriggers = map[string]struct{}{
		"from":  {},
		"join":  {},
		"into":  {},
		"using": {},
	}

	// joinQualifiers keep an open clause open without contributing a
	// table reference themselves.
	joinQualifiers = map[string]struct{}{
		"inner":   {},
		"left":    {},
		"right":   {},
		"full":    {},
		"outer":   {},
		"cross":   {},
		"lateral": {},
		"as":      {},
		"on":      {},
	}

	// createModifiers may appear between CREATE and TABLE|VIEW in any
	// order and number.
	createModifiers = map[string]struct{}{
		"volatile":  {},
		"set":       {},
		"multiset":  {},
		"global":    {},
		"temporary": {},
		"or":        {},
		"replace":   {},
	}
)

// aliasSet records which bare names are table aliases within a single
// statement. An alias is a local naming relation, never a table.
type aliasSet map[string]struct{}

func (a aliasSet) record(name string) {
	a[name] = struct{}{}
}

func (a aliasSet) contains(name string) bool {
	_, ok := a[name]
	return ok
}

// candidateKind classifies what candidateAt found at a position.
type candidateKind int

const (
	candNone        candidateKind = iota // no table-shaped token here
	candTable                            // accepted name or schema.name
	candAliasColumn                      // alias.column expression, not a table
)

// candidate is a provisionally identified table reference.
type candidate struct {
	kind candidateKind
	name string // normalized name, set for candTable
	end  int    // index of the candidate's last token
}

// referenceScanner walks one statement's tokens collecting source-table
// references into found. It never fails: tokens that do not fit the
// expected shape are skipped, and an ambiguous fragment is omitted
// rather than guessed at.
type referenceScanner struct {
	tokens  []Token
	aliases aliasSet
	found   map[string]struct{}
}

// scanReferences collects the statement's source tables into found.
// The alias set is scoped to this one statement and discarded afterward.
func scanReferences(stmt Statement, found map[string]struct{}) {
	s := &referenceScanner{
		tokens:  stmt.Tokens,
		aliases: make(aliasSet),
		found:   found,
	}
	s.run()
}

func (s *referenceScanner) run() {
	collecting := false

	i := 0
	for i < len(s.tokens) {
		tok := s.tokens[i]

		if tok.Type == TOKEN_KEYWORD {
			if _, ok := collectTriggers[tok.Literal]; ok {
				collecting = true
				i++
				continue
			}
		}

		if !collecting {
			i++
			continue
		}

		cand := s.candidateAt(i)
		switch cand.kind {
		case candNone:
			collecting = keepsCollecting(tok)
			i++

		case candAliasColumn:
			// alias.column means the clause has moved past its table
			// list into expressions.
			collecting = false
			i++

		case candTable:
			i = cand.end
			if cand.isDotted() && s.followedByCloseParen(i+1) {
				// A dotted name directly before ')' is a function
				// argument, e.g. COUNT(o.id), not a table.
				collecting = false
				i++
				continue
			}
			s.found[cand.name] = struct{}{}
			i = s.captureAlias(i + 1)
			// A comma continues the table list; anything else closes it
			// until the next FROM/JOIN.
			if i < len(s.tokens) && s.tokens[i].Type == TOKEN_COMMA {
				i++
			} else {
				collecting = false
			}
		}
	}
}

// candidateAt tries to read a table-reference candidate starting at i:
// a single name token, or name '.' name forming schema.table. A dotted
// form whose qualifier is a known alias is an alias.column expression.
func (s *referenceScanner) candidateAt(i int) candidate {
	tok := s.tokens[i]
	if !isNameToken(tok) {
		return candidate{kind: candNone}
	}

	if i+2 < len(s.tokens) && s.tokens[i+1].Type == TOKEN_DOT && isNameToken(s.tokens[i+2]) {
		if s.aliases.contains(tok.Literal) {
			return candidate{kind: candAliasColumn, end: i + 2}
		}
		name := tok.Literal + "." + s.tokens[i+2].Literal
		if allDigits(tok.Literal) || allDigits(s.tokens[i+2].Literal) {
			// Numeric fragments (e.g. 3.14 split across tokens) are
			// never table names.
			return candidate{kind: candNone}
		}
		return candidate{kind: candTable, name: name, end: i + 2}
	}

	if allDigits(tok.Literal) {
		return candidate{kind: candNone}
	}
	return candidate{kind: candTable, name: tok.Literal, end: i}
}

// captureAlias records the table alias following an accepted reference,
// either AS <name> or a bare trailing name. It returns the index of the
// first unconsumed token.
func (s *referenceScanner) captureAlias(i int) int {
	if i >= len(s.tokens) {
		return i
	}

	tok := s.tokens[i]
	if tok.Type == TOKEN_KEYWORD && tok.Literal == "as" {
		i++
		if i < len(s.tokens) && s.tokens[i].Type == TOKEN_NAME {
			s.aliases.record(s.tokens[i].Literal)
			return i + 1
		}
		return i
	}

	if tok.Type == TOKEN_NAME {
		if i+1 < len(s.tokens) && s.tokens[i+1].Type == TOKEN_DOT {
			// name.something is not a bare alias
			return i
		}
		s.aliases.record(tok.Literal)
		return i + 1
	}

	return i
}

// followedByCloseParen reports whether the token at i closes a call.
func (s *referenceScanner) followedByCloseParen(i int) bool {
	return i < len(s.tokens) && s.tokens[i].Type == TOKEN_RPAREN
}

// keepsCollecting decides whether a non-candidate token leaves the
// current FROM/JOIN clause open. Join qualifiers and commas do; any
// other keyword, an opening parenthesis (subquery), or stray
// punctuation ends the clause.
func keepsCollecting(tok Token) bool {
	switch tok.Type {
	case TOKEN_KEYWORD:
		_, ok := joinQualifiers[tok.Literal]
		return ok
	case TOKEN_COMMA:
		return true
	default:
		return false
	}
}

func (c candidate) isDotted() bool {
	for i := 0; i < len(c.name); i++ {
		if c.name[i] == '.' {
			return true
		}
	}
	return false
}

// scanDefinitions collects the statement's CREATE ... TABLE|VIEW
// definitions into found. Only statements opening with CREATE qualify;
// modifier keywords between CREATE and the object type are skipped.
func scanDefinitions(stmt Statement, found map[string]struct{}) {
	toks := stmt.Tokens
	if len(toks) == 0 || toks[0].Type != TOKEN_KEYWORD || toks[0].Literal != "create" {
		return
	}

	i := 1
	for i < len(toks) && toks[i].Type == TOKEN_KEYWORD {
		if _, ok := createModifiers[toks[i].Literal]; !ok {
			break
		}
		i++
	}

	if i >= len(toks) || toks[i].Type != TOKEN_KEYWORD {
		return
	}
	if toks[i].Literal != "table" && toks[i].Literal != "view" {
		return
	}

	i++
	if i >= len(toks) || !isNameToken(toks[i]) || allDigits(toks[i].Literal) {
		return
	}

	name := toks[i].Literal
	if i+2 < len(toks) && toks[i+1].Type == TOKEN_DOT && isNameToken(toks[i+2]) && !allDigits(toks[i+2].Literal) {
		name = name + "." + toks[i+2].Literal
	}
	if name != "" {
		found[name] = struct{}{}
	}
}

// isNameToken reports whether tok can act as (part of) a table name.
func isNameToken(tok Token) bool {
	return tok.Type == TOKEN_NAME || tok.Type == TOKEN_QUOTED_NAME
}

// allDigits reports whether s is a purely numeric word.
func allDigits(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
