package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Suffixes that mark a YAML file as a corpus file.
var Suffixes = []string{".corpus.yaml", ".corpus.yml"}

// Scanner scans for corpus files in a directory
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all corpus files under root, in lexical order
func (s *Scanner) Scan(root string) ([]string, error) {
	var files []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("corpus path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		for _, suffix := range Suffixes {
			if strings.HasSuffix(d.Name(), suffix) {
				files = append(files, path)
				break
			}
		}
		return nil
	})

	return files, err
}
