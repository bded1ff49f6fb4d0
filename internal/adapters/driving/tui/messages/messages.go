// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSelector picks the report type, period and department.
	ViewSelector
	// ViewVariations browses pages and chooses variations.
	ViewVariations
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSelector:
		return "selector"
	case ViewVariations:
		return "variations"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// RequestSubmitted is sent when the selector has a complete request.
type RequestSubmitted struct {
	Request domain.ReportRequest
}

// RetrievalProgressed carries a retrieval progress snapshot.
// Seq identifies the load that produced it.
type RetrievalProgressed struct {
	Seq     int
	State   domain.RetrievalState
	Overall float64
}

// ContentsLoaded carries retrieved contents or the retrieval error.
type ContentsLoaded struct {
	Seq      int
	Request  domain.ReportRequest
	Contents *domain.DocumentContents
	Err      error
}

// GenerationProgressed carries generation counts of one cycle.
type GenerationProgressed struct {
	Seq      int
	Progress driving.Progress
}

// GenerationCompleted signals a generation cycle finished.
type GenerationCompleted struct {
	Seq    int
	Result *driving.GenerationResult
	Err    error
}

// DownloadCompleted signals a file was written.
type DownloadCompleted struct {
	Path string
	Err  error
}

// ProposalRequested asks the app to run the batch proposal.
type ProposalRequested struct{}

// ProposalCompleted signals the proposal deck was written.
type ProposalCompleted struct {
	Path     string
	Proposal *domain.Proposal
	Err      error
}
