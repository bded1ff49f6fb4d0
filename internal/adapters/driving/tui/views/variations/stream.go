package variations

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// stream carries messages from a background operation to the update loop.
// Progress is offered without blocking; the final message is always delivered
// unless the operation was cancelled.
type stream struct {
	ctx context.Context
	ch  chan tea.Msg
}

func newStream(ctx context.Context) *stream {
	return &stream{ctx: ctx, ch: make(chan tea.Msg, 16)}
}

func (s *stream) offer(msg tea.Msg) {
	select {
	case s.ch <- msg:
	default:
	}
}

func (s *stream) finish(msg tea.Msg) {
	defer close(s.ch)
	select {
	case s.ch <- msg:
	case <-s.ctx.Done():
	}
}

// next waits for the following message. A closed stream yields nil.
func (s *stream) next() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-s.ch
		if !ok {
			return nil
		}
		return msg
	}
}
