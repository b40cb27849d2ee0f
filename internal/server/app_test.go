package server

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/logging"
	"github.com/dmitrijs2005/secretsanta/internal/server/config"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/dmitrijs2005/secretsanta/internal/server/notify"
	"github.com/dmitrijs2005/secretsanta/internal/server/participants"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secretsanta/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddress = "127.0.0.1:0"
	c.GRPCAddress = "127.0.0.1:0"
	return c
}

func TestNewApp_InMemoryDefaults(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	assert.NotNil(t, app.userService)
	assert.NotNil(t, app.listService)
	assert.NotNil(t, app.drawService)
}

func TestNewApp_ImportsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	data := `{"listas":[{"id":"1733050000000","nome":"Familia","dataCriacao":"2024-12-01T10:00:00.000Z",
		"participantes":[{"nome":"Alice","email":"alice@example.com"}],"sorteios":[]}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c := testConfig()
	c.ImportFile = path

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	l, err := app.listService.GetList(context.Background(), "1733050000000")
	require.NoError(t, err)
	assert.Equal(t, "Familia", l.Name)
	require.Len(t, l.Participants, 1)
}

func TestNewApp_MissingImportFile(t *testing.T) {
	c := testConfig()
	c.ImportFile = filepath.Join(t.TempDir(), "missing.json")

	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}

type blockingDispatcher struct {
	started chan struct{}
	release chan struct{}
}

func (d *blockingDispatcher) SendBatch(_ context.Context, msgs []notify.Message) []notify.Outcome {
	d.started <- struct{}{}
	<-d.release
	out := make([]notify.Outcome, len(msgs))
	for i, m := range msgs {
		out[i].To = m.To
	}
	return out
}

type closeRecorder struct {
	repomanager.RepositoryManager
	closed atomic.Bool
}

func (r *closeRecorder) Close() error {
	r.closed.Store(true)
	return r.RepositoryManager.Close()
}

func TestRun_KeepsStorageOpenForRunningDraw(t *testing.T) {
	c := testConfig()
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	repos := &closeRecorder{RepositoryManager: app.repos}
	app.repos = repos

	d := &blockingDispatcher{started: make(chan struct{}, 1), release: make(chan struct{})}
	app.drawService = services.NewDrawService(repos, app.userService, participants.NewRegistry(false), d,
		notify.Templates{}, services.NewListLocks(), app.clock, logging.Nop{})

	ctx := context.Background()
	l, err := app.listService.CreateList(ctx, "Office", "")
	require.NoError(t, err)
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		_, err := app.listService.AddParticipant(ctx, l.ID, name, name+"@example.com")
		require.NoError(t, err)
	}

	drawn := make(chan error, 1)
	go func() {
		_, err := app.drawService.Draw(ctx, l.ID)
		drawn <- err
	}()
	<-d.started

	runCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		app.Run(runCtx)
		close(stopped)
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-stopped:
		t.Fatal("Run returned while a draw was still dispatching")
	case <-time.After(200 * time.Millisecond):
	}
	assert.False(t, repos.closed.Load(), "storage closed under a running draw")

	close(d.release)
	require.NoError(t, <-drawn)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after the draw finished")
	}
	assert.True(t, repos.closed.Load())

	got, err := repos.Lists().Get(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, got.Draws, 1)
	assert.Equal(t, models.DrawConfirmed, got.Draws[0].Status)
}
