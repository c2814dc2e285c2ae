package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if id := a.session.Identity(); id != nil {
		return fmt.Sprintf("(%s)", id.Username)
	}
	return "(guest)"
}

// Root prints the greeting, starts the session watcher and runs the REPL.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to cracksmith CLI (type 'help' for commands)")
	if id := a.session.Identity(); id != nil {
		printlnFn("Logged in as", id.Username)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartSessionWatcher(ctx, a.config.SessionCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
