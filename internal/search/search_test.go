package search

import (
	"strings"
	"testing"

	"github.com/nerdneilsfield/tagbox/internal/query"
)

func mustParse(t *testing.T, dsl string) query.Node {
	t.Helper()
	n, err := query.Parse(dsl)
	if err != nil {
		t.Fatalf("parse %q: %v", dsl, err)
	}
	return n
}

func TestBuildFreeTextUsesMatch(t *testing.T) {
	plan, err := Build(mustParse(t, "quantum"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.UsesMatch {
		t.Fatal("expected UsesMatch")
	}
	if !strings.Contains(plan.SelectSQL, "files_fts") {
		t.Fatalf("expected MATCH subquery in %q", plan.SelectSQL)
	}
	if len(plan.Args) != 1 || plan.Args[0] != `"quantum"` {
		t.Fatalf("got args %#v", plan.Args)
	}
}

func TestBuildCombinesAdjacentTextIntoOneMatch(t *testing.T) {
	plan, err := Build(mustParse(t, "quantum physics"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(plan.SelectSQL, "MATCH") != 1 {
		t.Fatalf("expected a single MATCH clause, got %q", plan.SelectSQL)
	}
	if len(plan.Args) != 1 || plan.Args[0] != `("quantum" AND "physics")` {
		t.Fatalf("got args %#v", plan.Args)
	}
}

func TestBuildFieldClauseUsesExists(t *testing.T) {
	plan, err := Build(mustParse(t, "author:feynman"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.UsesMatch {
		t.Fatal("field clause alone should not set UsesMatch")
	}
	if !strings.Contains(plan.SelectSQL, "EXISTS") {
		t.Fatalf("expected EXISTS subquery, got %q", plan.SelectSQL)
	}
}

func TestBuildNegatedFieldUsesNotExists(t *testing.T) {
	plan, err := Build(mustParse(t, "-tag:archived"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(plan.SelectSQL, "NOT EXISTS") {
		t.Fatalf("expected NOT EXISTS, got %q", plan.SelectSQL)
	}
}

func TestBuildExcludesDeletedByDefault(t *testing.T) {
	plan, err := Build(mustParse(t, "title:foo"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(plan.SelectSQL, "f.deleted_at IS NULL") {
		t.Fatalf("expected soft-delete filter, got %q", plan.SelectSQL)
	}
}

func TestBuildIncludeDeletedOmitsFilter(t *testing.T) {
	plan, err := Build(mustParse(t, "title:foo"), Options{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(plan.SelectSQL, "f.deleted_at IS NULL") {
		t.Fatalf("did not expect soft-delete filter, got %q", plan.SelectSQL)
	}
}

func TestBuildYearRangeBetween(t *testing.T) {
	plan, err := Build(mustParse(t, "year:2000..2010"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(plan.SelectSQL, "BETWEEN") {
		t.Fatalf("expected BETWEEN, got %q", plan.SelectSQL)
	}
	if len(plan.Args) != 2 || plan.Args[0] != 2000 || plan.Args[1] != 2010 {
		t.Fatalf("got args %#v", plan.Args)
	}
}

func TestBuildCategoryPrefix(t *testing.T) {
	plan, err := Build(mustParse(t, "category:tech/*"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(plan.SelectSQL, "LIKE") {
		t.Fatalf("expected LIKE prefix match, got %q", plan.SelectSQL)
	}
	if plan.Args[0] != "tech/%" {
		t.Fatalf("got args %#v", plan.Args)
	}
}

func TestBuildMixedAndOrUsesSQLBoolean(t *testing.T) {
	plan, err := Build(mustParse(t, "quantum OR author:einstein"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(plan.SelectSQL, " OR ") {
		t.Fatalf("expected SQL OR, got %q", plan.SelectSQL)
	}
	if !plan.UsesMatch {
		t.Fatal("expected UsesMatch since one branch is free text")
	}
}

func TestBuildDefaultPagination(t *testing.T) {
	plan, err := Build(mustParse(t, "title:foo"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(plan.SelectSQL, "LIMIT 50 OFFSET 0") {
		t.Fatalf("expected default pagination, got %q", plan.SelectSQL)
	}
}

func TestBuildCustomPagination(t *testing.T) {
	plan, err := Build(mustParse(t, "title:foo"), Options{Limit: 10, Offset: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(plan.SelectSQL, "LIMIT 10 OFFSET 20") {
		t.Fatalf("expected custom pagination, got %q", plan.SelectSQL)
	}
}

func TestBuildSortByTitle(t *testing.T) {
	plan, err := Build(mustParse(t, "title:foo"), Options{SortBy: SortTitle, SortDirection: Asc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(plan.SelectSQL, "ORDER BY f.title ASC") {
		t.Fatalf("expected title sort, got %q", plan.SelectSQL)
	}
}

func TestFuzzyNodeProducesPrefixFreeText(t *testing.T) {
	n := FuzzyNode("quan")
	ft, ok := n.(query.FreeText)
	if !ok || ft.Text != "quan*" {
		t.Fatalf("got %#v", n)
	}
}
