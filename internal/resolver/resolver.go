// Package resolver turns a test entity name into an executable suite,
// generating a test class when the entity has none.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pth/internal/domain"
	"pth/internal/skeleton"
)

// SuiteBuilder builds a suite from an entity declared in (or included by) sourcePath
type SuiteBuilder interface {
	BuildSuite(ctx context.Context, entity, sourcePath string) (*domain.Suite, error)
}

// SkeletonGenerator synthesizes a test class for an entity
type SkeletonGenerator interface {
	Generate(entity, sourcePath string, mode skeleton.Mode) (domain.SkeletonOutcome, error)
}

// Resolver applies the empty-entity fallback
type Resolver struct {
	builder   SuiteBuilder
	generator SkeletonGenerator
	workDir   string
	logger    *slog.Logger
}

// New creates a Resolver that writes generated test classes into workDir
func New(builder SuiteBuilder, generator SkeletonGenerator, workDir string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		builder:   builder,
		generator: generator,
		workDir:   workDir,
		logger:    logger,
	}
}

// Resolve builds the suite for entity. When the entity defines no tests a
// skeleton is generated for it; a complete skeleton becomes the suite
// <entity>Test, an incomplete one leaves a warning-only suite for entity.
func (r *Resolver) Resolve(ctx context.Context, entity, sourcePath string) (*domain.Suite, error) {
	suite, err := r.builder.BuildSuite(ctx, entity, sourcePath)
	if err == nil {
		return suite, nil
	}
	var empty *domain.EmptyEntityError
	if !errors.As(err, &empty) || !strings.EqualFold(empty.Entity, entity) {
		return nil, err
	}

	declaredIn := sourcePath
	if empty.File != "" {
		declaredIn = empty.File
	}
	r.logger.Debug("No tests found, generating skeleton", "entity", entity, "source", declaredIn)
	outcome, err := r.generator.Generate(entity, declaredIn, skeleton.Full)
	if err != nil {
		return nil, fmt.Errorf("generate skeleton for %s: %w", entity, err)
	}
	if outcome.Incomplete {
		r.logger.Debug("Skeleton is incomplete, keeping empty suite", "entity", entity)
		return domain.NewWarningSuite(entity, sourcePath), nil
	}

	testEntity := entity + "Test"
	path := filepath.Join(r.workDir, testEntity+".php")
	if err := os.WriteFile(path, []byte(phpFile(outcome.GeneratedCode)), 0644); err != nil {
		return nil, fmt.Errorf("write skeleton: %w", err)
	}
	r.logger.Debug("Wrote skeleton", "entity", testEntity, "path", path)

	suite, err = r.builder.BuildSuite(ctx, testEntity, path)
	if err != nil {
		return nil, fmt.Errorf("build generated suite %s: %w", testEntity, err)
	}
	return suite, nil
}

// phpFile strips the open and close tags around generated code and writes it
// back as a plain PHP file with a single leading open tag
func phpFile(code string) string {
	body := strings.TrimSpace(code)
	body = strings.TrimPrefix(body, "<?php")
	body = strings.TrimSuffix(body, "?>")
	return "<?php\n" + strings.TrimSpace(body) + "\n"
}
