// Package screens holds the dependencies shared by the TUI screens. The
// screens themselves live in sub-packages.
package screens

import (
	"github.com/abhisek/secprep/internal/bank"
	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/screen"
	"github.com/abhisek/secprep/internal/store"
)

// Env is built once by the app and handed to every screen.
type Env struct {
	Banks     *bank.Registry
	Events    store.EventRepo
	Snapshots store.SnapshotRepo
	Reporter  exam.Reporter

	// TimeLimit in seconds; zero defers to each bank's own limit.
	TimeLimit int

	// Home builds a fresh home screen. Screens deeper in the stack use it
	// to return to the menu with up-to-date progress.
	Home func() screen.Screen
}

// HomeScreen returns a fresh home screen, or nil when no factory is set.
func (e *Env) HomeScreen() screen.Screen {
	if e.Home == nil {
		return nil
	}
	return e.Home()
}
