package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/async"
)

// Message types for the TUI

// workReadyMsg signals that the foreground queue has posted work
type workReadyMsg struct{}

// clearNoticeMsg expires a transient notice
type clearNoticeMsg struct {
	seq int
}

// waitForWork blocks on a helper goroutine until the queue has work.
// The work itself runs in Update, on the Bubble Tea goroutine.
func waitForWork(q *async.Queue) tea.Cmd {
	return func() tea.Msg {
		<-q.Ready()
		return workReadyMsg{}
	}
}
