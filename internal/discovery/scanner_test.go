package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()

	testFiles := []string{
		"tests/unit/UserTest.php",
		"tests/unit/PaymentTest.php",
		"tests/integration/OrderTest.php",
		"tests/.hidden/SecretTest.php",
		"vendor/some/LibTest.php",
		"node_modules/some/file.js",
		"not_a_test.php",
	}
	for _, file := range testFiles {
		fullPath := filepath.Join(tmpDir, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("<?php\n"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}

	scanner := NewScanner([]string{"vendor", "node_modules"})

	t.Run("scans test files in lexical order", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{
			filepath.Join(tmpDir, "tests/integration/OrderTest.php"),
			filepath.Join(tmpDir, "tests/unit/PaymentTest.php"),
			filepath.Join(tmpDir, "tests/unit/UserTest.php"),
		}
		if diff := cmp.Diff(want, results); diff != "" {
			t.Errorf("Scan mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("accepts a single test file", func(t *testing.T) {
		file := filepath.Join(tmpDir, "tests/unit/UserTest.php")
		results, err := scanner.Scan(file)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 || results[0] != file {
			t.Errorf("expected only %s, got %v", file, results)
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for a file that is not a test", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "not_a_test.php"))
		if err == nil {
			t.Error("expected error for non-test file path")
		}
	})
}
