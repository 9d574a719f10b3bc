package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/tokenctl/internal/store"
)

// subscription bridges a store subscription into the Bubble Tea loop.
// The store keeps only the latest snapshot in the channel, so a slow
// render never blocks the store's writer goroutine.
type subscription struct {
	mu          sync.Mutex
	ch          <-chan store.State
	unsubscribe func()
	closed      bool
}

func newSubscription(s *store.Store) *subscription {
	ch, unsubscribe := s.Subscribe()
	return &subscription{ch: ch, unsubscribe: unsubscribe}
}

// wait returns a command that blocks until the next snapshot. It must be
// re-issued after every stateMsg.
func (s *subscription) wait() tea.Cmd {
	ch := s.ch
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return storeClosedMsg{}
		}
		return stateMsg(state)
	}
}

// close unsubscribes once; a pending wait then returns storeClosedMsg
func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.unsubscribe()
}

// IsClosed reports whether close was called
func (s *subscription) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
