// config_keys.go provides key-value access to configuration settings by
// dotted key name (Get/Set/IsSet over ValidKeys). Pointers back each
// optional field so Get/Set/IsSet can distinguish "not set" from
// "explicitly set to the zero value".
package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrUnknownKey is returned when getting/setting a key outside ValidKeys.
var ErrUnknownKey = errors.New("unknown config key")

// ValidKeys returns every recognised configuration key.
func ValidKeys() []string {
	return []string{
		"database.path", "database.max_open_conns", "database.busy_timeout_ms",
		"storage.root_dir", "storage.classify_template", "storage.rename_template",
		"storage.on_import", "storage.max_segment_len",
		"import.prefer_json", "import.fallback_pdf", "import.workers",
		"search.default_limit",
		"hash.algorithm",
	}
}

// IsValidKey reports whether key is one of ValidKeys.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of key as a string, applying defaults where unset.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "database.path":
		return c.Database.Path, nil
	case "database.max_open_conns":
		return strconv.Itoa(c.MaxOpenConns()), nil
	case "database.busy_timeout_ms":
		if c.Database.BusyTimeoutMS == nil {
			return strconv.Itoa(DefaultBusyTimeoutMS), nil
		}
		return strconv.Itoa(*c.Database.BusyTimeoutMS), nil
	case "storage.root_dir":
		return c.Storage.RootDir, nil
	case "storage.classify_template":
		return c.Storage.ClassifyTemplate, nil
	case "storage.rename_template":
		return c.Storage.RenameTemplate, nil
	case "storage.on_import":
		return c.OnImportMode(), nil
	case "storage.max_segment_len":
		return strconv.Itoa(c.PathgenOptions().MaxSegmentLen), nil
	case "import.prefer_json":
		return strconv.FormatBool(c.PreferJSON()), nil
	case "import.fallback_pdf":
		return strconv.FormatBool(c.FallbackPDF()), nil
	case "import.workers":
		if c.Import.Workers == nil {
			return strconv.Itoa(DefaultWorkers), nil
		}
		return strconv.Itoa(*c.Import.Workers), nil
	case "search.default_limit":
		if c.Search.DefaultLimit == nil {
			return strconv.Itoa(DefaultSearchLimit), nil
		}
		return strconv.Itoa(*c.Search.DefaultLimit), nil
	case "hash.algorithm":
		return string(c.HashAlgorithm()), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set assigns value to key after validating it.
func (c *Config) Set(key, value string) error {
	switch key {
	case "database.path":
		c.Database.Path = value
	case "database.max_open_conns":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: database.max_open_conns must be a positive integer", ErrInvalidValue)
		}
		c.Database.MaxOpenConns = &n
	case "database.busy_timeout_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: database.busy_timeout_ms must be a non-negative integer", ErrInvalidValue)
		}
		c.Database.BusyTimeoutMS = &n
	case "storage.root_dir":
		c.Storage.RootDir = value
	case "storage.classify_template":
		c.Storage.ClassifyTemplate = value
	case "storage.rename_template":
		c.Storage.RenameTemplate = value
	case "storage.on_import":
		if value != "copy" && value != "move" && value != "symlink" {
			return fmt.Errorf("%w: storage.on_import must be copy, move, or symlink", ErrInvalidValue)
		}
		c.Storage.OnImport = value
	case "storage.max_segment_len":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: storage.max_segment_len must be a positive integer", ErrInvalidValue)
		}
		c.Storage.MaxSegmentLen = &n
	case "import.prefer_json":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: import.prefer_json must be true or false", ErrInvalidValue)
		}
		c.Import.PreferJSON = &b
	case "import.fallback_pdf":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: import.fallback_pdf must be true or false", ErrInvalidValue)
		}
		c.Import.FallbackPDF = &b
	case "import.workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: import.workers must be a non-negative integer", ErrInvalidValue)
		}
		c.Import.Workers = &n
	case "search.default_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: search.default_limit must be a positive integer", ErrInvalidValue)
		}
		c.Search.DefaultLimit = &n
	case "hash.algorithm":
		c.Hash.Algorithm = strings.ToLower(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// All returns every configuration value as a map, applying defaults.
func (c *Config) All() map[string]string {
	out := map[string]string{}
	for _, key := range ValidKeys() {
		v, _ := c.Get(key)
		out[key] = v
	}
	return out
}

// IsSet reports whether key has an explicit value rather than a default.
func (c *Config) IsSet(key string) bool {
	switch key {
	case "database.path":
		return c.Database.Path != ""
	case "database.max_open_conns":
		return c.Database.MaxOpenConns != nil
	case "database.busy_timeout_ms":
		return c.Database.BusyTimeoutMS != nil
	case "storage.root_dir":
		return c.Storage.RootDir != ""
	case "storage.classify_template":
		return c.Storage.ClassifyTemplate != ""
	case "storage.rename_template":
		return c.Storage.RenameTemplate != ""
	case "storage.on_import":
		return c.Storage.OnImport != ""
	case "storage.max_segment_len":
		return c.Storage.MaxSegmentLen != nil
	case "import.prefer_json":
		return c.Import.PreferJSON != nil
	case "import.fallback_pdf":
		return c.Import.FallbackPDF != nil
	case "import.workers":
		return c.Import.Workers != nil
	case "search.default_limit":
		return c.Search.DefaultLimit != nil
	case "hash.algorithm":
		return c.Hash.Algorithm != ""
	default:
		return false
	}
}
