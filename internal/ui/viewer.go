package ui

import "pth/internal/domain"

// Viewer displays test failures
type Viewer interface {
	View(failures []domain.TestFailure) error
}
