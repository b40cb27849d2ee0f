package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Create(ctx context.Context, args []string) error
	Lists(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Draw(ctx context.Context, args []string) error
	Resend(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Archive(ctx context.Context, args []string) error
	Ping(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: login, create <name>, show <list>, add <list>, remove <list> <index|id>, draw <list>, resend <list> <draw>, ping, exit"
	helpLoggedIn  = "Available commands: create <name>, (l)ists, show <list>, add <list>, remove <list> <index|id>, draw <list>, resend <list> <draw>, delete <list>, archive <list> <draw>, logout, ping, exit"
)

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit". The first word is the command, the rest its arguments.
// Handlers report their own errors, so the loop ignores them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("santa %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "login":
			_ = a.Login(ctx, args)

		case "logout":
			_ = a.Logout(ctx, args)

		case "create":
			_ = a.Create(ctx, args)

		case "l", "lists":
			_ = a.Lists(ctx, args)

		case "show":
			_ = a.Show(ctx, args)

		case "add":
			_ = a.Add(ctx, args)

		case "remove", "rm":
			_ = a.Remove(ctx, args)

		case "draw":
			_ = a.Draw(ctx, args)

		case "resend":
			_ = a.Resend(ctx, args)

		case "delete":
			_ = a.Delete(ctx, args)

		case "archive":
			_ = a.Archive(ctx, args)

		case "ping":
			_ = a.Ping(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
