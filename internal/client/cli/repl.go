package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context) error
	GuestLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Update(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a. It returns
// on EOF, on "exit"/"quit", or when ctx is cancelled between commands.
//
//	Not logged in:  help, login, guest, whoami, exit
//	Logged in:      help, whoami, profile, update, sync, logout, exit
//
// Handlers print their own outcome; their errors do not stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("hk> %s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: whoami, profile, update field=value..., sync, logout, exit")
			} else {
				printlnFn("Available commands: login, guest, whoami, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "guest":
			_ = a.GuestLogin(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "update":
			if len(args) == 0 {
				printlnFn("Usage: update field=value ... (fields: " + strings.Join(updateFields, ", ") + ")")
				continue
			}
			_ = a.Update(ctx, args)

		case "sync":
			_ = a.Sync(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
