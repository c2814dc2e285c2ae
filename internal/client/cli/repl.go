package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	SetPIN(ctx context.Context) error
	Submit(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Wait(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Dashboard(ctx context.Context) error
	isAdmin() bool
	Admin(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help                      show available commands
//	  - register                  create an account
//	  - login                     authenticate (asks for a PIN when required)
//	  - exit | quit               leave the program
//
//	Logged in:
//	  - submit [hash] [type]      submit a hash; type defaults to auto
//	  - (l)ist | jobs [status] [page]
//	  - show <id>                 job details and the actions it allows
//	  - wait <id>                 poll until the job finishes
//	  - delete <id>               delete a queued or failed job
//	  - stats                     user statistics
//	  - dashboard                 statistics with per-day chart
//	  - whoami | setpin | logout
//
//	Admins only:
//	  - admin stats               platform-wide counters
//	  - admin users [page]        all accounts
//	  - admin upgrade <id>        mark an account as paid
//	  - admin grant <id>          make an account admin (asks for the admin PIN)
//	  - admin installations [page]
//	  - admin jobs [status] [page]
//	  - admin settings | admin set <key> <value>
//
// Handler errors are reported by the handlers themselves; the loop only
// keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("cs %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if needsSession(cmd) && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: submit, (l)ist, show, wait, delete, stats, dashboard, whoami, setpin, logout, exit")
				if a.isAdmin() {
					printlnFn(adminUsage)
				}
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "setpin":
			_ = a.SetPIN(ctx)

		case "submit":
			_ = a.Submit(ctx, args)

		case "l", "list", "jobs":
			_ = a.List(ctx, args)

		case "show":
			_ = a.Show(ctx, args)

		case "wait":
			_ = a.Wait(ctx, args)

		case "delete":
			_ = a.Delete(ctx, args)

		case "stats":
			_ = a.Stats(ctx)

		case "dashboard":
			_ = a.Dashboard(ctx)

		case "admin":
			_ = a.Admin(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func needsSession(cmd string) bool {
	switch cmd {
	case "whoami", "setpin", "submit", "l", "list", "jobs", "show", "wait", "delete", "stats",
		"dashboard", "admin":
		return true
	}
	return false
}
