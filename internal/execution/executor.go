package execution

import (
	"context"

	"pth/internal/domain"
)

// Executor runs a set of test sources and summarizes the outcome
type Executor interface {
	Execute(ctx context.Context, files []string) (*domain.ScanSummary, error)
}
