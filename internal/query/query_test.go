package query

import (
	"errors"
	"testing"

	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

func TestParseBareword(t *testing.T) {
	n, err := Parse("quantum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ft, ok := n.(FreeText)
	if !ok || ft.Text != "quantum" {
		t.Fatalf("got %#v", n)
	}
}

func TestParseImplicitAnd(t *testing.T) {
	n, err := Parse("quantum physics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	and, ok := n.(And)
	if !ok {
		t.Fatalf("got %#v, want And", n)
	}
	if and.Left.(FreeText).Text != "quantum" || and.Right.(FreeText).Text != "physics" {
		t.Fatalf("got %#v", and)
	}
}

func TestParseFieldClause(t *testing.T) {
	n, err := Parse("author:feynman")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fc, ok := n.(FieldClause)
	if !ok || fc.Key != "author" || fc.Value != "feynman" || fc.Negated {
		t.Fatalf("got %#v", n)
	}
}

func TestParseNegatedFieldClause(t *testing.T) {
	n, err := Parse("-tag:archived")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fc, ok := n.(FieldClause)
	if !ok || !fc.Negated || fc.Key != "tag" || fc.Value != "archived" {
		t.Fatalf("got %#v", n)
	}
}

func TestParseNegatedFreeTextRejected(t *testing.T) {
	_, err := Parse("-quantum")
	if err == nil {
		t.Fatal("expected error for negated free text")
	}
	var qe *tberr.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected *tberr.QueryError, got %T", err)
	}
}

func TestParsePhrase(t *testing.T) {
	n, err := Parse(`"general relativity"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ph, ok := n.(Phrase); !ok || ph.Text != "general relativity" {
		t.Fatalf("got %#v", n)
	}
}

func TestParseOrLowerPrecedenceThanAnd(t *testing.T) {
	n, err := Parse("tag:physics author:feynman OR author:einstein")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	or, ok := n.(Or)
	if !ok {
		t.Fatalf("got %#v, want top-level Or", n)
	}
	and, ok := or.Left.(And)
	if !ok {
		t.Fatalf("left side of Or should be And, got %#v", or.Left)
	}
	if and.Left.(FieldClause).Key != "tag" || and.Right.(FieldClause).Key != "author" {
		t.Fatalf("got %#v", and)
	}
	if or.Right.(FieldClause).Value != "einstein" {
		t.Fatalf("got %#v", or.Right)
	}
}

func TestParseGrouping(t *testing.T) {
	n, err := Parse("(author:feynman OR author:einstein) tag:physics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	and, ok := n.(And)
	if !ok {
		t.Fatalf("got %#v, want And", n)
	}
	if _, ok := and.Left.(Or); !ok {
		t.Fatalf("left side should be the grouped Or, got %#v", and.Left)
	}
}

func TestParseYearExact(t *testing.T) {
	n, err := Parse("year:2005")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	yr := n.(YearRange)
	if yr.Op != ".." || yr.Lo != 2005 || yr.Hi != 2005 {
		t.Fatalf("got %#v", yr)
	}
}

func TestParseYearRange(t *testing.T) {
	n, err := Parse("year:2000..2010")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	yr := n.(YearRange)
	if yr.Op != ".." || yr.Lo != 2000 || yr.Hi != 2010 {
		t.Fatalf("got %#v", yr)
	}
}

func TestParseYearComparison(t *testing.T) {
	n, err := Parse("year:>=2020")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	yr := n.(YearRange)
	if yr.Op != ">=" || yr.Lo != 2020 {
		t.Fatalf("got %#v", yr)
	}
}

func TestParseCategoryPrefix(t *testing.T) {
	n, err := Parse("category:tech/*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fc := n.(FieldClause)
	if fc.Key != "category" || fc.Value != "tech/*" {
		t.Fatalf("got %#v", fc)
	}
}

func TestParseMismatchedParenFails(t *testing.T) {
	if _, err := Parse("(author:feynman"); err == nil {
		t.Fatal("expected error for unclosed paren")
	}
}

func TestParseEmptyGroupFails(t *testing.T) {
	if _, err := Parse("()"); err == nil {
		t.Fatal("expected error for empty group")
	}
}

func TestParseEmptyQueryFails(t *testing.T) {
	if _, err := Parse("   "); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestParseInvalidYearFails(t *testing.T) {
	if _, err := Parse("year:abc"); err == nil {
		t.Fatal("expected error for invalid year")
	}
}

func TestParseUnknownKeyIsFreeText(t *testing.T) {
	n, err := Parse("unknownkey:value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ft, ok := n.(FreeText); !ok || ft.Text != "unknownkey:value" {
		t.Fatalf("got %#v", n)
	}
}
