package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/secretsanta/internal/filex"
	"github.com/dmitrijs2005/secretsanta/internal/netx"
	gs "github.com/dmitrijs2005/secretsanta/internal/server/grpc"
	"google.golang.org/grpc/status"
)

var errUsage = errors.New("usage")

// archiveDir is where downloaded draw records are written.
const archiveDir = "archives"

// test seams
var (
	downloadFn   = netx.DownloadFromPresignedURL
	createFileFn = filex.CreateInSubDir
)

// call prepares a per-request context carrying the token, if any.
func (a *App) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.token != "" {
		ctx = gs.WithToken(ctx, a.token)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// report prints err in a human form and returns it.
func (a *App) report(err error) error {
	if errors.Is(err, errUsage) {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	if st, ok := status.FromError(err); ok {
		fmt.Fprintf(a.out, "Error (%s): %s\n", st.Code(), st.Message())
		return err
	}
	fmt.Fprintln(a.out, "Error:", err.Error())
	return err
}

func usage(s string) error {
	return fmt.Errorf("%w: %s", errUsage, s)
}

func (a *App) Login(ctx context.Context, args []string) error {
	email := strings.Join(args, "")
	if email == "" {
		var err error
		if email, err = a.ask("E-mail"); err != nil {
			return err
		}
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	res, err := a.api.Login(ctx, email)
	if err != nil {
		return a.report(err)
	}
	a.token, a.email = res.Token, res.Email
	fmt.Fprintf(a.out, "Logged in as %s (%d list(s))\n", res.Email, len(res.ListIDs))
	return nil
}

func (a *App) Logout(_ context.Context, _ []string) error {
	a.token, a.email = "", ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Create(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		return a.report(usage("create <name>"))
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	l, err := a.api.CreateList(ctx, name)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "List %q created, id: %s\n", l.Name, l.ID)
	return nil
}

func (a *App) Lists(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return a.report(usage("login first"))
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	res, err := a.api.ListsForUser(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(res.Lists) == 0 {
		fmt.Fprintln(a.out, "No lists")
		return nil
	}
	for _, l := range res.Lists {
		fmt.Fprintf(a.out, "%s  %-24s %d participant(s), %d draw(s)\n", l.ID, l.Name, len(l.Participants), len(l.Draws))
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.report(usage("show <list>"))
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	l, err := a.api.GetList(ctx, args[0])
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "%s (version %d)\n", l.Name, l.Version)
	for i, p := range l.Participants {
		fmt.Fprintf(a.out, "  [%d] %s <%s>  %s\n", i, p.Name, p.Email, p.ID)
	}
	for _, d := range l.Draws {
		line := fmt.Sprintf("  draw %s  %s  %s  %d pair(s)", d.ID, d.CreatedAt.Format("2006-01-02 15:04"), d.Status, d.PairsCount)
		if len(d.FailedRecipients) > 0 {
			line += "  failed: " + strings.Join(d.FailedRecipients, ", ")
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// Add takes "add <list> <email> <name...>" or prompts for the missing parts.
func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return a.report(usage("add <list> [email name]"))
	}
	listID := args[0]

	var email, name string
	if len(args) >= 3 {
		email, name = args[1], strings.Join(args[2:], " ")
	} else {
		var err error
		if name, err = a.ask("Name"); err != nil {
			return err
		}
		if email, err = a.ask("E-mail"); err != nil {
			return err
		}
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	res, err := a.api.AddParticipant(ctx, listID, name, email)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Added, list now has %d participant(s)\n", len(res.Participants))
	return nil
}

// Remove takes a position or a participant id.
func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.report(usage("remove <list> <index|id>"))
	}

	req := &gs.RemoveParticipantRequest{ListID: args[0]}
	if i, err := strconv.Atoi(args[1]); err == nil {
		req.Index = i
	} else {
		req.ParticipantID = args[1]
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	res, err := a.api.RemoveParticipant(ctx, req)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Removed, list now has %d participant(s)\n", len(res.Participants))
	return nil
}

func (a *App) printDraw(d *gs.DrawResponse) {
	fmt.Fprintf(a.out, "Draw %s: %s, %d pair(s)\n", d.DrawID, d.Status, d.PairsCount)
	if len(d.Failed) > 0 {
		fmt.Fprintf(a.out, "Not notified: %s\nRun: resend %s %s\n", strings.Join(d.Failed, ", "), d.ListID, d.DrawID)
	}
}

func (a *App) Draw(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.report(usage("draw <list>"))
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	res, err := a.api.Draw(ctx, args[0])
	if err != nil {
		return a.report(err)
	}
	a.printDraw(res)
	return nil
}

func (a *App) Resend(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.report(usage("resend <list> <draw>"))
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	res, err := a.api.ResendFailed(ctx, args[0], args[1])
	if err != nil {
		return a.report(err)
	}
	a.printDraw(res)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.report(usage("delete <list>"))
	}
	if !a.isLoggedIn() {
		return a.report(usage("login first"))
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	if err := a.api.DeleteList(ctx, args[0]); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "List deleted")
	return nil
}

func (a *App) Ping(ctx context.Context, _ []string) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	s, err := a.api.Ping(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Server:", s)
	return nil
}

// Archive downloads the stored record of a finished draw into ./archives.
func (a *App) Archive(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.report(usage("archive <list> <draw>"))
	}
	if !a.isLoggedIn() {
		return a.report(usage("login first"))
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	url, err := a.api.ArchiveURL(ctx, args[0], args[1])
	if err != nil {
		return a.report(err)
	}

	f, path, err := createFileFn(archiveDir, args[1]+".json")
	if err != nil {
		return a.report(err)
	}
	defer f.Close()

	n, err := downloadFn(ctx, url, f)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", n, path)
	return nil
}
