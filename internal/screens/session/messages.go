package session

import (
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
)

// timers hands out one id per armed countdown, unique across screens.
var timers atomic.Uint64

// timerTickMsg is sent every second to drive the countdown. A screen only
// accepts ticks carrying the timer id it armed last; everything else is
// stale and dropped.
type timerTickMsg struct {
	Timer uint64
}

func tickCmd(timer uint64) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{Timer: timer}
	})
}
