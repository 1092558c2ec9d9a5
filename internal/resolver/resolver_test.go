package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pth/internal/domain"
	"pth/internal/skeleton"
)

type fakeBuilder struct {
	suites map[string]*domain.Suite
	errs   map[string]error
	calls  []string
}

func (b *fakeBuilder) BuildSuite(_ context.Context, entity, sourcePath string) (*domain.Suite, error) {
	b.calls = append(b.calls, entity+"@"+filepath.Base(sourcePath))
	if err, ok := b.errs[entity]; ok {
		return nil, err
	}
	if s, ok := b.suites[entity]; ok {
		return s, nil
	}
	return nil, &domain.EmptyEntityError{Entity: entity}
}

type fakeGenerator struct {
	outcome domain.SkeletonOutcome
	err     error
	calls   int
	mode    skeleton.Mode
	source  string
}

func (g *fakeGenerator) Generate(_, sourcePath string, mode skeleton.Mode) (domain.SkeletonOutcome, error) {
	g.calls++
	g.mode = mode
	g.source = sourcePath
	return g.outcome, g.err
}

func TestResolve_DirectSuite(t *testing.T) {
	foo := &domain.Suite{Name: "FooTest", Cases: []string{"testOne"}}
	builder := &fakeBuilder{suites: map[string]*domain.Suite{"FooTest": foo}}
	gen := &fakeGenerator{}

	got, err := New(builder, gen, t.TempDir(), nil).Resolve(context.Background(), "FooTest", "FooTest.php")
	require.NoError(t, err)
	assert.Same(t, foo, got)
	assert.Zero(t, gen.calls)
}

func TestResolve_Fallback(t *testing.T) {
	workDir := t.TempDir()
	baz := &domain.Suite{Name: "BazTest", Cases: []string{"testAdd"}}
	builder := &fakeBuilder{suites: map[string]*domain.Suite{"BazTest": baz}}
	gen := &fakeGenerator{outcome: domain.SkeletonOutcome{
		GeneratedCode: "<?php\nclass BazTest {}\n?>\n",
	}}

	got, err := New(builder, gen, workDir, nil).Resolve(context.Background(), "Baz", "Baz.php")
	require.NoError(t, err)
	assert.Equal(t, "BazTest", got.Name)
	assert.Equal(t, []string{"testAdd"}, got.Cases)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, skeleton.Full, gen.mode)
	assert.Equal(t, []string{"Baz@Baz.php", "BazTest@BazTest.php"}, builder.calls)

	data, err := os.ReadFile(filepath.Join(workDir, "BazTest.php"))
	require.NoError(t, err)
	assert.Equal(t, "<?php\nclass BazTest {}\n", string(data))
}

func TestResolve_GeneratesFromDeclaringFile(t *testing.T) {
	builder := &fakeBuilder{errs: map[string]error{
		"Baz": &domain.EmptyEntityError{Entity: "Baz", File: "/lib/Baz.php"},
	}}
	gen := &fakeGenerator{outcome: domain.SkeletonOutcome{Incomplete: true}}

	got, err := New(builder, gen, t.TempDir(), nil).Resolve(context.Background(), "Baz", "/tests/run.php")
	require.NoError(t, err)
	assert.Equal(t, "/lib/Baz.php", gen.source)
	assert.True(t, got.IsWarning())
	assert.Equal(t, "/tests/run.php", got.SourcePath)
}

func TestResolve_IncompleteKeepsWarningSuite(t *testing.T) {
	workDir := t.TempDir()
	builder := &fakeBuilder{}
	gen := &fakeGenerator{outcome: domain.SkeletonOutcome{GeneratedCode: "<?php ?>", Incomplete: true}}

	got, err := New(builder, gen, workDir, nil).Resolve(context.Background(), "Baz", "Baz.php")
	require.NoError(t, err)
	assert.Equal(t, domain.NewWarningSuite("Baz", "Baz.php"), got)
	assert.Equal(t, []string{"Baz@Baz.php"}, builder.calls)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolve_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		builder *fakeBuilder
		gen     *fakeGenerator
		wantErr error
	}{
		{
			name:    "build error is not retried",
			builder: &fakeBuilder{errs: map[string]error{"Baz": boom}},
			gen:     &fakeGenerator{},
			wantErr: boom,
		},
		{
			name:    "empty error for another entity",
			builder: &fakeBuilder{errs: map[string]error{"Baz": &domain.EmptyEntityError{Entity: "Other"}}},
			gen:     &fakeGenerator{},
		},
		{
			name:    "generator error",
			builder: &fakeBuilder{},
			gen:     &fakeGenerator{err: boom},
			wantErr: boom,
		},
		{
			name:    "generated suite still empty",
			builder: &fakeBuilder{},
			gen:     &fakeGenerator{outcome: domain.SkeletonOutcome{GeneratedCode: "<?php class BazTest {}"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.builder, tt.gen, t.TempDir(), nil).Resolve(context.Background(), "Baz", "Baz.php")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPHPFile(t *testing.T) {
	assert.Equal(t, "<?php\nclass A {}\n", phpFile("  <?php\n\nclass A {}\n?>\n"))
	assert.Equal(t, "<?php\nclass A {}\n", phpFile("class A {}"))
}
