// Package config loads and saves TagBox configuration. Reading prefers a
// local (.tagbox/config.yaml) file, falling back to the global
// (~/.tagbox/config.yaml) file; writing defaults to global unless the
// caller asks for local scope explicitly.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/nerdneilsfield/tagbox/internal/hash"
	"github.com/nerdneilsfield/tagbox/internal/pathgen"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrInvalidValue is returned when a config value fails validation.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope selects which configuration file Load/Save targets.
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeLocal
)

// Database holds connection and pool settings for the SQLite catalogue.
type Database struct {
	Path          string `yaml:"path"`
	MaxOpenConns  *int   `yaml:"max_open_conns,omitempty"`
	BusyTimeoutMS *int   `yaml:"busy_timeout_ms,omitempty"`
}

// Storage configures where imported files are relocated to and how their
// destination path is derived.
type Storage struct {
	RootDir          string `yaml:"root_dir"`
	ClassifyTemplate string `yaml:"classify_template"`
	RenameTemplate   string `yaml:"rename_template"`
	OnImport         string `yaml:"on_import"` // "copy", "move", or "symlink"
	MaxSegmentLen    *int   `yaml:"max_segment_len,omitempty"`
}

// Import configures metadata extraction behavior during import.
type Import struct {
	PreferJSON      *bool  `yaml:"prefer_json,omitempty"`
	FallbackPDF     *bool  `yaml:"fallback_pdf,omitempty"`
	Workers         *int   `yaml:"workers,omitempty"`
	DefaultCategory string `yaml:"default_category,omitempty"`
}

// Search configures defaults applied to DSL queries.
type Search struct {
	DefaultLimit *int `yaml:"default_limit,omitempty"`
}

// Hash selects the content-fingerprinting algorithm used on import and
// re-verification.
type Hash struct {
	Algorithm string `yaml:"algorithm"`
}

// Config is the full TagBox configuration surface.
type Config struct {
	Database Database `yaml:"database"`
	Storage  Storage  `yaml:"storage"`
	Import   Import   `yaml:"import,omitempty"`
	Search   Search   `yaml:"search,omitempty"`
	Hash     Hash     `yaml:"hash,omitempty"`

	path  string
	scope Scope
}

const (
	DefaultMaxOpenConns  = 8
	DefaultBusyTimeoutMS = 5000
	DefaultMaxSegmentLen = 200
	DefaultWorkers       = 0 // 0 means runtime.NumCPU()
	DefaultSearchLimit   = 50
)

// Validate rejects nonsensical combinations: unknown hash algorithm,
// unknown on_import mode, or a classify/rename template using an unknown
// placeholder.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidValue)
	}
	if c.Storage.RootDir == "" {
		return fmt.Errorf("%w: storage.root_dir is required", ErrInvalidValue)
	}
	switch c.Storage.OnImport {
	case "", "copy", "move", "symlink":
	default:
		return fmt.Errorf("%w: storage.on_import must be copy, move, or symlink, got %q", ErrInvalidValue, c.Storage.OnImport)
	}
	if err := pathgen.ValidateTemplate(c.Storage.ClassifyTemplate); err != nil {
		return fmt.Errorf("%w: storage.classify_template: %w", ErrInvalidValue, err)
	}
	if err := pathgen.ValidateTemplate(c.Storage.RenameTemplate); err != nil {
		return fmt.Errorf("%w: storage.rename_template: %w", ErrInvalidValue, err)
	}
	if c.Hash.Algorithm != "" && !hash.Valid(hash.Algorithm(c.Hash.Algorithm)) {
		return fmt.Errorf("%w: hash.algorithm %q is not recognised", ErrInvalidValue, c.Hash.Algorithm)
	}
	return nil
}

// HashAlgorithm returns the configured hash algorithm, defaulting to
// SHA-256.
func (c *Config) HashAlgorithm() hash.Algorithm {
	if c.Hash.Algorithm == "" {
		return hash.SHA256
	}
	return hash.Algorithm(c.Hash.Algorithm)
}

// MaxOpenConns returns the configured pool size, defaulting to 8.
func (c *Config) MaxOpenConns() int {
	if c.Database.MaxOpenConns == nil {
		return DefaultMaxOpenConns
	}
	return *c.Database.MaxOpenConns
}

// OnImportMode returns the configured import disposition, defaulting to "copy".
func (c *Config) OnImportMode() string {
	if c.Storage.OnImport == "" {
		return "copy"
	}
	return c.Storage.OnImport
}

// PreferJSON returns whether JSON sidecar extraction is enabled, defaulting to true.
func (c *Config) PreferJSON() bool {
	if c.Import.PreferJSON == nil {
		return true
	}
	return *c.Import.PreferJSON
}

// FallbackPDF returns whether PDF structured extraction is enabled, defaulting to true.
func (c *Config) FallbackPDF() bool {
	if c.Import.FallbackPDF == nil {
		return true
	}
	return *c.Import.FallbackPDF
}

// Workers returns the configured importer worker-pool size, defaulting to
// runtime.NumCPU() when unset or zero.
func (c *Config) Workers() int {
	if c.Import.Workers == nil || *c.Import.Workers <= 0 {
		return runtime.NumCPU()
	}
	return *c.Import.Workers
}

// PathgenOptions derives pathgen.Options from storage configuration.
func (c *Config) PathgenOptions() pathgen.Options {
	opts := pathgen.DefaultOptions()
	if c.Storage.MaxSegmentLen != nil {
		opts.MaxSegmentLen = *c.Storage.MaxSegmentLen
	}
	return opts
}

// LocalPath returns the repository-scoped config file path.
func LocalPath() string {
	return filepath.Join(".tagbox", "config.yaml")
}

// GlobalPath returns the user-scoped config file path: ~/.tagbox/config.yaml.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tagbox", "config.yaml")
}

// Load reads configuration: local if present, otherwise global.
func Load() (*Config, error) {
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	return LoadScope(ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	path := pathForScope(scope)
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope reports which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Save writes the configuration back to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(path)
}

func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
