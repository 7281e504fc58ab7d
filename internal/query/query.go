// Package query parses the DSL described for TagBox's search surface into
// a tree of Node values that internal/search translates into SQL. Parsing
// never touches the database - a malformed query fails here, before any
// SQL is built.
package query

// Node is one term of a parsed query expression.
type Node interface {
	node()
}

// FieldClause is a "key:value" or "-key:value" term.
type FieldClause struct {
	Key     string
	Value   string
	Negated bool
}

func (FieldClause) node() {}

// YearRange is a "year:2000..2010", "year:>2020" or "year:<=1999" term.
type YearRange struct {
	Op      string // "..", ">", ">=", "<", "<="
	Lo, Hi  int    // both set only when Op == ".."
	Negated bool
}

func (YearRange) node() {}

// Phrase is a quoted free-text term, matched verbatim against the FTS index.
type Phrase struct {
	Text string
}

func (Phrase) node() {}

// FreeText is an unquoted bareword, matched against the FTS index.
type FreeText struct {
	Text string
}

func (FreeText) node() {}

// And is the conjunction of two terms. The DSL's default combinator between
// adjacent terms.
type And struct {
	Left, Right Node
}

func (And) node() {}

// Or is the disjunction of two terms, introduced by an explicit OR.
type Or struct {
	Left, Right Node
}

func (Or) node() {}

// FieldKeys enumerates the field names the DSL recognizes in a key:value
// clause. Anything else is treated as free text even if it contains a colon.
var FieldKeys = map[string]bool{
	"tag":       true,
	"author":    true,
	"title":     true,
	"year":      true,
	"publisher": true,
	"category":  true,
	"ext":       true,
	"hash":      true,
	"id":        true,
}
