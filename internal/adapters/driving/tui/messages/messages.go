// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driving"
)

// StatusPolled carries a snapshot of the running load.
type StatusPolled struct {
	Status driving.LoadStatus
}

// LoadCompleted is sent when LoadFiles returns.
type LoadCompleted struct {
	Documents []*domain.Document
	Err       error
}
