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
	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	Navigate(view string) error
}

// runREPL starts a simple read-eval-print loop for the gophsession CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
//	Not logged in:
//	  - help                 show available commands
//	  - signup | register    create an account
//	  - signin | login       authenticate
//	  - open <view>          switch view (home, signin, signup, profile)
//	  - status               show local session state
//	  - exit | quit          leave the program
//
//	Logged in:
//	  - help, open, status, exit
//	  - whoami               reload and show the user
//	  - refresh              renew the access token now
//	  - logout               log out
//
// Errors returned by command handlers are ignored here; handlers report
// them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gs %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, status, refresh, open <view>, logout, exit")
			} else {
				printlnFn("Available commands: signup, signin, status, open <view>, exit")
			}

		case "signup", "register":
			_ = a.SignUp(ctx)

		case "signin", "login":
			_ = a.SignIn(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "status":
			_ = a.Status(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <home|signin|signup|profile>")
				continue
			}
			if err := a.Navigate(args[0]); err != nil {
				printlnFn(err.Error())
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
