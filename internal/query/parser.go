package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

var errInvalidYear = errors.New("invalid year range")

// Parse parses a DSL query string into a Node tree. It returns a
// *tberr.QueryError (never executes SQL) if the query is malformed.
func Parse(dsl string) (Node, error) {
	toks, err := lex(dsl)
	if err != nil {
		pos := 0
		if le, ok := err.(*queryLexError); ok {
			pos = le.pos
		}
		return nil, &tberr.QueryError{Query: dsl, Position: pos, Reason: err.Error()}
	}

	p := &parser{toks: toks, dsl: dsl}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf("unexpected token %q", p.peek().text)
	}
	if node == nil {
		return nil, &tberr.QueryError{Query: dsl, Position: 0, Reason: "empty query"}
	}
	return node, nil
}

type parser struct {
	toks []token
	pos  int
	dsl  string
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...any) error {
	return &tberr.QueryError{Query: p.dsl, Position: p.peek().pos, Reason: fmt.Sprintf(format, args...)}
}

// parseOr handles the lowest-precedence OR combinator.
func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, p.errorf("expected term after OR")
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

// parseAnd handles explicit AND and the implicit AND between adjacent terms.
func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokAnd:
			p.advance()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			if right == nil {
				return nil, p.errorf("expected term after AND")
			}
			left = And{Left: left, Right: right}
		case tokLParen, tokString, tokWord:
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			if right == nil {
				return left, nil
			}
			left = And{Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

// parseTerm parses a single term: a group, a phrase, or a bareword/clause.
// Returns (nil, nil) when no term is present (end of input or a closing
// token the caller should handle).
func (p *parser) parseTerm() (Node, error) {
	switch p.peek().kind {
	case tokLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.errorf("missing closing parenthesis")
		}
		p.advance()
		if inner == nil {
			return nil, p.errorf("empty group")
		}
		return inner, nil
	case tokString:
		t := p.advance()
		return Phrase{Text: t.text}, nil
	case tokWord:
		t := p.advance()
		return p.parseWord(t)
	default:
		return nil, nil
	}
}

func (p *parser) parseWord(t token) (Node, error) {
	word := t.text
	negated := false
	if strings.HasPrefix(word, "-") && len(word) > 1 {
		negated = true
		word = word[1:]
	}

	key, value, hasColon := strings.Cut(word, ":")
	if !hasColon || !FieldKeys[strings.ToLower(key)] {
		if negated {
			return nil, &tberr.QueryError{Query: p.dsl, Position: t.pos, Reason: "negation is only valid on field-scoped clauses"}
		}
		return FreeText{Text: word}, nil
	}
	key = strings.ToLower(key)

	if key == "year" {
		yr, err := parseYearRange(value, negated)
		if err != nil {
			return nil, &tberr.QueryError{Query: p.dsl, Position: t.pos, Reason: err.Error()}
		}
		return yr, nil
	}

	if value == "" {
		return nil, &tberr.QueryError{Query: p.dsl, Position: t.pos, Reason: "empty value for field " + key}
	}
	return FieldClause{Key: key, Value: value, Negated: negated}, nil
}

func parseYearRange(value string, negated bool) (YearRange, error) {
	switch {
	case strings.Contains(value, ".."):
		lo, hi, ok := strings.Cut(value, "..")
		if !ok {
			return YearRange{}, errInvalidYear
		}
		loN, err := strconv.Atoi(lo)
		if err != nil {
			return YearRange{}, errInvalidYear
		}
		hiN, err := strconv.Atoi(hi)
		if err != nil {
			return YearRange{}, errInvalidYear
		}
		return YearRange{Op: "..", Lo: loN, Hi: hiN, Negated: negated}, nil
	case strings.HasPrefix(value, ">="):
		n, err := strconv.Atoi(value[2:])
		if err != nil {
			return YearRange{}, errInvalidYear
		}
		return YearRange{Op: ">=", Lo: n, Negated: negated}, nil
	case strings.HasPrefix(value, "<="):
		n, err := strconv.Atoi(value[2:])
		if err != nil {
			return YearRange{}, errInvalidYear
		}
		return YearRange{Op: "<=", Lo: n, Negated: negated}, nil
	case strings.HasPrefix(value, ">"):
		n, err := strconv.Atoi(value[1:])
		if err != nil {
			return YearRange{}, errInvalidYear
		}
		return YearRange{Op: ">", Lo: n, Negated: negated}, nil
	case strings.HasPrefix(value, "<"):
		n, err := strconv.Atoi(value[1:])
		if err != nil {
			return YearRange{}, errInvalidYear
		}
		return YearRange{Op: "<", Lo: n, Negated: negated}, nil
	default:
		n, err := strconv.Atoi(value)
		if err != nil {
			return YearRange{}, errInvalidYear
		}
		return YearRange{Op: "..", Lo: n, Hi: n, Negated: negated}, nil
	}
}
