package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pth/internal/domain"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func entityNames(entities []*domain.Entity) []string {
	var names []string
	for _, e := range entities {
		names = append(names, e.Name)
	}
	return names
}

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/User.php": "<?php\nclass User {}\n",
		"lib/Fixtures.php": "<?php\nclass FixtureTest {}\n",
		"tests/UserTest.php": `<?php
require_once __DIR__ . '/../src/User.php';
require_once 'Fixtures.php';
require_once 'PHPUnit/Autoload.php';

class UserTest extends FixtureTest
{
    public function testName() {}
}
`,
	})

	reg := NewRegistry()
	loader := NewLoader(reg, []string{filepath.Join(root, "lib")}, nil)

	unit, err := loader.Load(filepath.Join(root, "tests/UserTest.php"))
	require.NoError(t, err)
	assert.Equal(t, []string{"UserTest"}, entityNames(unit.Entities))

	assert.Equal(t, []string{"User", "FixtureTest", "UserTest"}, entityNames(reg.Entities()))

	selected, err := SelectEntity(reg.Entities())
	require.NoError(t, err)
	assert.Equal(t, "UserTest", selected)

	again, err := loader.Load(filepath.Join(root, "tests", "..", "tests", "UserTest.php"))
	require.NoError(t, err)
	assert.Same(t, unit, again)

	e, ok := reg.Entity("usertest")
	require.True(t, ok)
	assert.Equal(t, []string{"testName"}, e.Cases)
}

func TestLoader_IncludeCycle(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"A.php": "<?php\nrequire_once __DIR__ . '/B.php';\nclass ATest {}\n",
		"B.php": "<?php\nrequire_once __DIR__ . '/A.php';\nclass B {}\n",
	})

	reg := NewRegistry()
	_, err := NewLoader(reg, nil, nil).Load(filepath.Join(root, "A.php"))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "ATest"}, entityNames(reg.Entities()))
}

func TestLoader_Errors(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"Broken.php":   "<?php\nclass BrokenTest {\n",
		"FooTest.php":  "<?php\nclass FooTest {}\n",
		"Again.php":    "<?php\nclass footest {}\n",
		"Includes.php": "<?php\nrequire __DIR__ . '/Broken.php';\nclass IncludesTest {}\n",
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(NewRegistry(), nil, nil).Load(filepath.Join(root, "Missing.php"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := NewLoader(NewRegistry(), nil, nil).Load(filepath.Join(root, "Broken.php"))
		var pe *ParseError
		require.True(t, errors.As(err, &pe))
	})

	t.Run("parse error in include", func(t *testing.T) {
		_, err := NewLoader(NewRegistry(), nil, nil).Load(filepath.Join(root, "Includes.php"))
		var pe *ParseError
		require.True(t, errors.As(err, &pe))
	})

	t.Run("class declared twice", func(t *testing.T) {
		loader := NewLoader(NewRegistry(), nil, nil)
		_, err := loader.Load(filepath.Join(root, "FooTest.php"))
		require.NoError(t, err)
		_, err = loader.Load(filepath.Join(root, "Again.php"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot declare class")
	})
}

func TestSelectEntity(t *testing.T) {
	mk := func(names ...string) []*domain.Entity {
		var es []*domain.Entity
		for _, n := range names {
			es = append(es, &domain.Entity{Name: n})
		}
		return es
	}

	tests := []struct {
		name     string
		entities []*domain.Entity
		want     string
		wantErr  error
	}{
		{name: "single match", entities: mk("Helper", "FooTest"), want: "FooTest"},
		{name: "last match wins", entities: mk("ATest", "Helper", "BTest"), want: "BTest"},
		{name: "case-insensitive suffix", entities: mk("Helper", "foo_TEST"), want: "foo_TEST"},
		{name: "name is exactly test", entities: mk("Test"), want: "Test"},
		{name: "suffix must be at the end", entities: mk("TestHelper", "Tester"), wantErr: ErrNoTestEntity},
		{name: "nothing loaded", entities: nil, wantErr: ErrNoTestEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectEntity(tt.entities)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
