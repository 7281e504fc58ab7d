package pathgen

import "testing"

func TestValidateTemplateRejectsUnknown(t *testing.T) {
	if err := ValidateTemplate("{title} by {editor}"); err == nil {
		t.Fatal("expected error for unknown placeholder {editor}")
	}
	if err := ValidateTemplate("{category1}/{title}"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerateBasic(t *testing.T) {
	md := Metadata{
		Title:     "Intro to Rust",
		Authors:   []string{"Ada Lovelace"},
		Year:      2024,
		Category1: "tech",
	}
	rel, err := Generate(md, "{category1}/{year}", "{title}", ".pdf", DefaultOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := "tech/2024/Intro to Rust.pdf"
	if rel != want {
		t.Errorf("Generate() = %q, want %q", rel, want)
	}
}

func TestGenerateSanitisesForbiddenChars(t *testing.T) {
	md := Metadata{Title: `Who: What? <Really>`}
	rel, err := Generate(md, "", "{title}", ".txt", DefaultOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, c := range []string{":", "?", "<", ">"} {
		if contains(rel, c) {
			t.Errorf("Generate() = %q still contains forbidden char %q", rel, c)
		}
	}
}

func TestResolveCollision(t *testing.T) {
	got := ResolveCollision("tech/intro.pdf", "abcdef1234567890")
	want := "tech/intro-abcdef1.pdf"
	if got != want {
		t.Errorf("ResolveCollision() = %q, want %q", got, want)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
