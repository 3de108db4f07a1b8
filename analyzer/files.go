package analyzer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhamidi/phpcheck/config"
)

// CollectFiles returns the PHP files at root. A file is returned as is if
// it has a .php extension; a directory is walked, skipping hidden
// directories, vendor and anything excluded by cfg.
func CollectFiles(root string, cfg *config.Config) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}
	if !info.IsDir() {
		if IsPHPFile(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || name == "vendor" || cfg.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsPHPFile(path) && !cfg.Excluded(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan php files in %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// IsPHPFile reports whether path has a .php extension, in any case.
func IsPHPFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".php")
}
