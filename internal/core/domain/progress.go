package domain

import (
	"fmt"
	"sort"
)

// RetrievalState is the state of a streaming content retrieval.
type RetrievalState string

// Retrieval states.
const (
	RetrievalIdle       RetrievalState = "idle"
	RetrievalInitiated  RetrievalState = "initiated"
	RetrievalInProgress RetrievalState = "in_progress"
	RetrievalDone       RetrievalState = "done"
	RetrievalFailed     RetrievalState = "failed"
)

// IsTerminal reports whether no further transitions are possible.
func (s RetrievalState) IsTerminal() bool {
	return s == RetrievalDone || s == RetrievalFailed
}

func isAllowedRetrievalTransition(from, to RetrievalState) bool {
	if to == RetrievalFailed {
		return !from.IsTerminal()
	}
	switch from {
	case RetrievalIdle:
		return to == RetrievalInitiated
	case RetrievalInitiated:
		return to == RetrievalInProgress || to == RetrievalDone
	case RetrievalInProgress:
		return to == RetrievalInProgress || to == RetrievalDone
	default:
		return false
	}
}

// RetrievalProgress tracks a retrieval stream:
// Idle -> Initiated{TotalPages} -> InProgress{per-page percent} -> Done{Contents} | Failed{Err}.
type RetrievalProgress struct {
	state      RetrievalState
	totalPages int
	pages      map[int]float64
	contents   *DocumentContents
	err        error
}

// NewRetrievalProgress returns a tracker in the Idle state.
func NewRetrievalProgress() *RetrievalProgress {
	return &RetrievalProgress{state: RetrievalIdle}
}

// State returns the current state.
func (p *RetrievalProgress) State() RetrievalState {
	return p.state
}

// TotalPages returns the page count announced by the init event.
func (p *RetrievalProgress) TotalPages() int {
	return p.totalPages
}

// Contents returns the retrieved contents once Done.
func (p *RetrievalProgress) Contents() *DocumentContents {
	return p.contents
}

// Err returns the failure once Failed.
func (p *RetrievalProgress) Err() error {
	return p.err
}

func (p *RetrievalProgress) transition(to RetrievalState) error {
	if !isAllowedRetrievalTransition(p.state, to) {
		return fmt.Errorf("retrieval %s -> %s: %w", p.state, to, ErrInvalidTransition)
	}
	p.state = to
	return nil
}

// Init records the number of pages being retrieved.
func (p *RetrievalProgress) Init(totalPages int) error {
	if totalPages < 0 {
		return fmt.Errorf("total pages %d: %w", totalPages, ErrInvalidInput)
	}
	if err := p.transition(RetrievalInitiated); err != nil {
		return err
	}
	p.totalPages = totalPages
	p.pages = make(map[int]float64, totalPages)
	for i := 1; i <= totalPages; i++ {
		p.pages[i] = 0
	}
	return nil
}

// Advance records that tag of totalTags on page has been retrieved.
// Per-page progress never decreases.
func (p *RetrievalProgress) Advance(page, tag, totalTags int) error {
	if page <= 0 || totalTags <= 0 || tag < 0 {
		return fmt.Errorf("progress page=%d tag=%d total=%d: %w", page, tag, totalTags, ErrInvalidInput)
	}
	if err := p.transition(RetrievalInProgress); err != nil {
		return err
	}
	percent := float64(tag) / float64(totalTags) * 100
	if percent > 100 {
		percent = 100
	}
	if percent > p.pages[page] {
		p.pages[page] = percent
	}
	return nil
}

// Complete records the final contents.
func (p *RetrievalProgress) Complete(contents *DocumentContents) error {
	if contents == nil {
		return fmt.Errorf("retrieval completed without contents: %w", ErrInvalidInput)
	}
	if err := p.transition(RetrievalDone); err != nil {
		return err
	}
	p.contents = contents
	for page := range p.pages {
		p.pages[page] = 100
	}
	return nil
}

// Fail records a failure from any non-terminal state.
func (p *RetrievalProgress) Fail(err error) error {
	if terr := p.transition(RetrievalFailed); terr != nil {
		return terr
	}
	p.err = err
	return nil
}

// PageProgress returns the percent complete for a page.
func (p *RetrievalProgress) PageProgress(page int) float64 {
	return p.pages[page]
}

// Pages returns the page numbers being tracked in order.
func (p *RetrievalProgress) Pages() []int {
	pages := make([]int, 0, len(p.pages))
	for page := range p.pages {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}

// Overall returns the mean percent complete across pages.
func (p *RetrievalProgress) Overall() float64 {
	if p.state == RetrievalDone {
		return 100
	}
	if len(p.pages) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.pages {
		sum += v
	}
	return sum / float64(len(p.pages))
}

// RetrievalEvent is one event of a retrieval stream.
type RetrievalEvent struct {
	Type RetrievalEventType

	// TotalPages is set for init events.
	TotalPages int

	// Page, Tag and TotalTags are set for progress events.
	Page      int
	Tag       int
	TotalTags int

	// Contents is set for done events.
	Contents *DocumentContents
}

// RetrievalEventType names a stream event.
type RetrievalEventType string

// Stream event names.
const (
	EventInit     RetrievalEventType = "init"
	EventProgress RetrievalEventType = "progress"
	EventDone     RetrievalEventType = "done"
)

// Apply feeds a stream event into the state machine.
func (p *RetrievalProgress) Apply(ev RetrievalEvent) error {
	switch ev.Type {
	case EventInit:
		return p.Init(ev.TotalPages)
	case EventProgress:
		return p.Advance(ev.Page, ev.Tag, ev.TotalTags)
	case EventDone:
		return p.Complete(ev.Contents)
	default:
		return fmt.Errorf("event %q: %w", ev.Type, ErrInvalidInput)
	}
}
