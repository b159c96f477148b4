package ui

import "livecheck/internal/domain"

// Viewer displays run results in an interactive TUI
type Viewer interface {
	View(report *domain.RunReport) error
}
