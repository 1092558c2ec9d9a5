package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scanner scans for test source units in a directory
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

// Scan finds all PHP files under root whose name ends in "Test.php", in lexical order.
// A root that is itself a test file is returned as the only result.
func (s *Scanner) Scan(root string) ([]string, error) {
	var testfiles []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		if IsTestFile(root) {
			return []string{root}, nil
		}
		return nil, fmt.Errorf("test path is neither a directory nor a test file: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if IsTestFile(path) {
			testfiles = append(testfiles, path)
		}
		return nil
	})

	return testfiles, err
}

// IsTestFile reports whether path names a PHP test source unit
func IsTestFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "Test.php")
}
