// Package config loads php_checker.yaml, the analyzer's configuration
// file.
package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"
	"github.com/xyproto/env/v2"
)

// DefaultPHPVersion is the PHP version targeted when none is configured.
const DefaultPHPVersion = "8.3"

// FileNames are the names Find looks for, in order.
var FileNames = []string{"php_checker.yaml", "php_checker.yml"}

type Config struct {
	// Rules enables or disables rules and rule groups. The most specific
	// key wins: "strict_typing/phpdoc_var_check" overrides "strict_typing".
	Rules map[string]bool `mapstructure:"rules"`

	// PHPVersion is the targeted PHP version; it decides which type hint
	// keywords exist.
	PHPVersion string `mapstructure:"php_version"`

	// Workers is the number of files analyzed in parallel.
	Workers int `mapstructure:"workers"`

	// Exclude lists glob patterns of paths skipped during discovery,
	// matched against paths relative to the analysis root.
	Exclude []string `mapstructure:"exclude"`

	// Path is the file the configuration was loaded from, if any.
	Path string `mapstructure:"-"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Rules:      map[string]bool{},
		PHPVersion: env.Str("PHPCHECK_PHP_VERSION", DefaultPHPVersion),
		Workers:    env.Int("PHPCHECK_WORKERS", runtime.NumCPU()),
	}
}

// Find returns the configuration file to use for root: explicit if set,
// then $PHPCHECK_CONFIG, then the first of FileNames present in root.
// It returns "" when there is none.
func Find(explicit, root string) string {
	if explicit != "" {
		return explicit
	}
	if fromEnv := env.Str("PHPCHECK_CONFIG"); fromEnv != "" {
		return fromEnv
	}
	for _, name := range FileNames {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Load reads the configuration file at path. Settings missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("php_version", cfg.PHPVersion)
	v.SetDefault("workers", cfg.Workers)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path

	if cfg.Rules == nil {
		cfg.Rules = map[string]bool{}
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if _, err := cfg.Version(); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFor finds and loads the configuration for the analysis root.
func LoadFor(explicit, root string) (*Config, error) {
	return Load(Find(explicit, root))
}

// Enabled reports whether the rule called name should run. A rule is
// enabled unless it, or the closest group configured above it, is
// switched off.
func (c *Config) Enabled(name string) bool {
	if c == nil {
		return true
	}
	candidate := strings.ToLower(name)
	for {
		if enabled, ok := c.lookup(candidate); ok {
			return enabled
		}
		i := strings.LastIndexByte(candidate, '/')
		if i < 0 {
			return true
		}
		candidate = candidate[:i]
	}
}

func (c *Config) lookup(key string) (bool, bool) {
	for k, v := range c.Rules {
		if strings.EqualFold(strings.TrimSuffix(k, "/"), key) {
			return v, true
		}
	}
	return false, false
}

// Version parses the configured PHP version. An empty version means the
// latest.
func (c *Config) Version() (*semver.Version, error) {
	if c == nil || c.PHPVersion == "" {
		return nil, nil
	}
	v, err := semver.NewVersion(c.PHPVersion)
	if err != nil {
		return nil, fmt.Errorf("php_version %q: %w", c.PHPVersion, err)
	}
	return v, nil
}

// Excluded reports whether rel, a slash-separated path relative to the
// analysis root, matches one of the exclude patterns. A pattern matching
// a directory excludes everything below it; a pattern without a slash is
// matched against each path element.
func (c *Config) Excluded(rel string) bool {
	if c == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.Exclude {
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		anywhere := !strings.Contains(pattern, "/")
		for p := rel; p != "." && p != "/" && p != ""; p = path.Dir(p) {
			if ok, _ := path.Match(pattern, p); ok {
				return true
			}
			if ok, _ := path.Match(pattern, path.Base(p)); ok && anywhere {
				return true
			}
		}
	}
	return false
}
