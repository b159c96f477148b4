package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		"cases/positive.corpus.yaml",
		"cases/negative.corpus.yml",
		"cases/nested/interactive.corpus.yaml",
		"node_modules/pkg/other.corpus.yaml",
		".git/stray.corpus.yaml",
		"README.md",
		"plain.yaml",
	}
	for _, file := range files {
		fullPath := filepath.Join(tmpDir, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("cases: []\n"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}

	scanner := NewScanner([]string{"node_modules"})

	t.Run("scans corpus files correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Errorf("expected 3 corpus files, got %d: %v", len(results), results)
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		if _, err := scanner.Scan("/non/existent/path"); err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		if _, err := scanner.Scan(filepath.Join(tmpDir, "plain.yaml")); err == nil {
			t.Error("expected error for file path")
		}
	})
}
