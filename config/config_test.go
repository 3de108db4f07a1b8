package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestEnabledHierarchy(t *testing.T) {
	cfg := &Config{Rules: map[string]bool{
		"strict_typing":                  false,
		"strict_typing/phpdoc_var_check": true,
		"cleanup/":                       false,
	}}

	tests := []struct {
		rule string
		want bool
	}{
		{"strict_typing/phpdoc_var_check", true},
		{"strict_typing/phpdoc_param_check", false},
		{"strict_typing", false},
		{"Strict_Typing/PHPDoc_Var_Check", true},
		{"cleanup/unused_use", false},
		{"sanity/undefined_variable", true},
	}
	for _, tt := range tests {
		if got := cfg.Enabled(tt.rule); got != tt.want {
			t.Errorf("Enabled(%q): expected %v, got %v", tt.rule, tt.want, got)
		}
	}

	var none *Config
	if !none.Enabled("anything") {
		t.Error("expected every rule enabled without configuration")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "php_checker.yaml", `
rules:
  strict_typing/phpdoc_return_check: false
php_version: "7.4"
workers: 3
exclude:
  - vendor
  - "*.blade.php"
`)

	path := Find("", dir)
	if filepath.Base(path) != "php_checker.yaml" {
		t.Fatalf("expected to find php_checker.yaml, got %q", path)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Enabled("strict_typing/phpdoc_return_check") {
		t.Error("expected return check to be disabled")
	}
	if !cfg.Enabled("strict_typing/phpdoc_var_check") {
		t.Error("expected var check to be enabled")
	}
	if cfg.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Workers)
	}
	v, err := cfg.Version()
	if err != nil || v.String() != "7.4.0" {
		t.Errorf("unexpected version %v (%v)", v, err)
	}
	if !cfg.Excluded("vendor/acme/lib.php") || !cfg.Excluded("views/home.blade.php") {
		t.Error("expected exclusions to match")
	}
	if cfg.Excluded("src/Controller.php") {
		t.Error("did not expect src to be excluded")
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "php_checker.yml", "rules: {}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PHPVersion != DefaultPHPVersion && os.Getenv("PHPCHECK_PHP_VERSION") == "" {
		t.Errorf("expected default version, got %q", cfg.PHPVersion)
	}
	if cfg.Workers < 1 {
		t.Errorf("expected at least one worker, got %d", cfg.Workers)
	}

	if Find("", t.TempDir()) != "" && os.Getenv("PHPCHECK_CONFIG") == "" {
		t.Error("expected no config in an empty directory")
	}
	if Find("explicit.yaml", dir) != "explicit.yaml" {
		t.Error("expected an explicit path to win")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	bad := writeFile(t, dir, "bad.yaml", "php_version: \"eight\"\n")
	if _, err := Load(bad); err == nil {
		t.Error("expected error for an invalid version")
	}
}
