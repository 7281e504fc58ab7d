package config

import "testing"

func validConfig() Config {
	return Config{
		Database: Database{Path: "tagbox.db"},
		Storage: Storage{
			RootDir:          "/library",
			ClassifyTemplate: "{category1}/{year}",
			RenameTemplate:   "{title}",
		},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsMissingRootDir(t *testing.T) {
	c := validConfig()
	c.Storage.RootDir = ""
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing storage.root_dir")
	}
}

func TestValidateRejectsUnknownHashAlgorithm(t *testing.T) {
	c := validConfig()
	c.Hash.Algorithm = "rot13"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for unknown hash algorithm")
	}
}

func TestValidateRejectsUnknownTemplatePlaceholder(t *testing.T) {
	c := validConfig()
	c.Storage.ClassifyTemplate = "{editor}"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for unknown placeholder")
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	c := validConfig()
	if err := c.Set("hash.algorithm", "blake3"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get("hash.algorithm")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "blake3" {
		t.Errorf("Get = %q, want blake3", got)
	}
}

func TestSetRejectsUnknownKey(t *testing.T) {
	c := validConfig()
	if err := c.Set("nonsense.key", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestIsSetDistinguishesDefaults(t *testing.T) {
	c := validConfig()
	if c.IsSet("hash.algorithm") {
		t.Error("hash.algorithm should not be set before an explicit Set")
	}
	if err := c.Set("hash.algorithm", "sha256"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !c.IsSet("hash.algorithm") {
		t.Error("hash.algorithm should be set after an explicit Set")
	}
}
