package discovery

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Loader reads PHP source units into a Registry, following literal includes
type Loader struct {
	registry     *Registry
	includePaths []string
	logger       *slog.Logger
	loading      map[string]bool
}

// NewLoader creates a Loader that registers into reg and resolves plain
// include targets against includePaths after the including file's directory
func NewLoader(reg *Registry, includePaths []string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{
		registry:     reg,
		includePaths: includePaths,
		logger:       logger,
		loading:      make(map[string]bool),
	}
}

// Registry returns the registry the loader fills
func (l *Loader) Registry() *Registry {
	return l.registry
}

// Load parses path and registers the classes it declares. Files it includes
// with a literal path are loaded first, so their classes precede its own in
// registry order. Loading the same file twice returns the first unit.
func (l *Loader) Load(path string) (*Unit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if u, ok := l.registry.Unit(abs); ok {
		return u, nil
	}
	if l.loading[abs] {
		// include cycle; require_once semantics make this a no-op
		return nil, nil
	}
	l.loading[abs] = true
	defer delete(l.loading, abs)

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", path, err)
	}
	unit, err := ParseSource(abs, src)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(abs)
	for _, inc := range unit.Includes {
		target := resolveInclude(inc, dir, l.includePaths, fileExists)
		if target == "" {
			l.logger.Debug("Skipping unresolved include", "file", abs, "line", inc.Line, "target", inc.Target)
			continue
		}
		if _, err := l.Load(target); err != nil {
			return nil, fmt.Errorf("include %s from %s:%d: %w", inc.Target, abs, inc.Line, err)
		}
	}

	if err := l.registry.Add(unit); err != nil {
		return nil, err
	}
	l.logger.Debug("Loaded source unit", "file", abs, "classes", len(unit.Entities))
	return unit, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
