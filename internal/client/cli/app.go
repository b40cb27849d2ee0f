// Package cli implements the interactive Secret Santa command-line client.
// It talks to the server over gRPC and keeps the login token in memory.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/secretsanta/internal/client/config"
	gs "github.com/dmitrijs2005/secretsanta/internal/server/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// santaAPI is the subset of the gRPC client the commands use.
type santaAPI interface {
	Login(ctx context.Context, email string) (*gs.LoginResponse, error)
	CreateList(ctx context.Context, name string) (*gs.ListView, error)
	GetList(ctx context.Context, listID string) (*gs.ListView, error)
	AddParticipant(ctx context.Context, listID, name, email string) (*gs.ParticipantsResponse, error)
	RemoveParticipant(ctx context.Context, in *gs.RemoveParticipantRequest) (*gs.ParticipantsResponse, error)
	Draw(ctx context.Context, listID string) (*gs.DrawResponse, error)
	ResendFailed(ctx context.Context, listID, drawID string) (*gs.DrawResponse, error)
	DeleteList(ctx context.Context, listID string) error
	ListsForUser(ctx context.Context) (*gs.ListsResponse, error)
	ArchiveURL(ctx context.Context, listID, drawID string) (string, error)
	Ping(ctx context.Context) (string, error)
}

type App struct {
	config  *config.Config
	api     santaAPI
	conn    io.Closer
	token   string
	email   string
	scanner *bufio.Scanner
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	conn, err := grpc.NewClient(c.ServerEndpointAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}

	return &App{
		config:  c,
		api:     gs.NewClient(conn),
		conn:    conn,
		scanner: bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) status() string {
	if a.email == "" {
		return ""
	}
	return "(" + a.email + ") "
}

// Run starts the REPL on stdin and closes the connection when it ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.conn.Close(); err != nil {
			log.Printf("closing connection: %v", err)
		}
	}()

	log.Println("Welcome to the Secret Santa CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.scanner)
}

// ask prints a prompt and reads one line from the same scanner the REPL
// uses, so buffered input is never split between two readers.
func (a *App) ask(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt+"\n> ")
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(a.scanner.Text()), nil
}
