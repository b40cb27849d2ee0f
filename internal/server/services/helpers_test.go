package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/logging"
	"github.com/dmitrijs2005/secretsanta/internal/server/config"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/dmitrijs2005/secretsanta/internal/server/notify"
	"github.com/dmitrijs2005/secretsanta/internal/server/pairing"
	"github.com/dmitrijs2005/secretsanta/internal/server/participants"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/lists"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// flakyLists wraps a lists.Repository and injects failures.
type flakyLists struct {
	lists.Repository
	conflicts atomic.Int32 // Update calls that fail with a conflict before succeeding
	updateErr error
	updates   atomic.Int32
}

func (f *flakyLists) Update(ctx context.Context, l *models.List) error {
	f.updates.Add(1)
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.conflicts.Load() > 0 {
		f.conflicts.Add(-1)
		// simulate a writer in another process
		fresh, err := f.Repository.Get(ctx, l.ID)
		if err != nil {
			return err
		}
		if err := f.Repository.Update(ctx, fresh); err != nil {
			return err
		}
	}
	return f.Repository.Update(ctx, l)
}

type flakyManager struct {
	repomanager.RepositoryManager
	lists *flakyLists
}

func (m *flakyManager) Lists() lists.Repository { return m.lists }

var errStoreDown = errors.New("store down")

// fakeDispatcher records messages and fails the configured recipients.
type fakeDispatcher struct {
	mu      sync.Mutex
	batches [][]notify.Message
	fail    map[string]bool
	// failName fails by giver name, for lists where e-mails repeat.
	failName map[string]bool
	started  chan struct{}
	block    chan struct{}
}

func (d *fakeDispatcher) SendBatch(ctx context.Context, msgs []notify.Message) []notify.Outcome {
	if d.started != nil {
		d.started <- struct{}{}
	}
	if d.block != nil {
		<-d.block
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, msgs)

	out := make([]notify.Outcome, len(msgs))
	for i, m := range msgs {
		out[i].To = m.To
		if d.fail[m.To] || d.failName[m.ToName] {
			out[i].Err = errors.New("mailbox unavailable")
		}
	}
	return out
}

func (d *fakeDispatcher) sent() []notify.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	var all []notify.Message
	for _, b := range d.batches {
		all = append(all, b...)
	}
	return all
}

type fakeArchive struct {
	mu   sync.Mutex
	puts map[string]models.DrawRecord
}

func (a *fakeArchive) Put(_ context.Context, listID string, rec models.DrawRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.puts == nil {
		a.puts = map[string]models.DrawRecord{}
	}
	a.puts[listID+"/"+rec.ID] = rec
	return nil
}

func (a *fakeArchive) URL(_ context.Context, listID, drawID string) (string, error) {
	return "https://archive/" + listID + "/" + drawID, nil
}

type fixture struct {
	manager    repomanager.RepositoryManager
	flaky      *flakyLists
	clock      *testClock
	locks      *ListLocks
	users      *UserService
	lists      *ListService
	draws      *DrawService
	dispatcher *fakeDispatcher
	archive    *fakeArchive
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := repomanager.NewMemoryRepositoryManager()
	flaky := &flakyLists{Repository: mem.Lists()}
	m := &flakyManager{RepositoryManager: mem, lists: flaky}

	clk := newTestClock()
	cfg := &config.Config{SecretKey: "k", UserTokenValidityDuration: time.Hour}
	reg := participants.NewRegistry(false)
	locks := NewListLocks()
	d := &fakeDispatcher{fail: map[string]bool{}}
	a := &fakeArchive{}

	us := NewUserService(m, cfg, clk, logging.Nop{})
	return &fixture{
		manager:    m,
		flaky:      flaky,
		clock:      clk,
		locks:      locks,
		users:      us,
		lists:      NewListService(m, us, reg, locks, clk, logging.Nop{}),
		draws:      NewDrawService(m, us, reg, d, notify.Templates{}, locks, clk, logging.Nop{}, WithPairingEngine(pairing.New(1, 2)), WithArchive(a)),
		dispatcher: d,
		archive:    a,
	}
}

func (f *fixture) listWith(t *testing.T, owner string, people ...string) *models.List {
	t.Helper()
	ctx := context.Background()
	l, err := f.lists.CreateList(ctx, "Office party", owner)
	require.NoError(t, err)
	for _, name := range people {
		_, err := f.lists.AddParticipant(ctx, l.ID, name, name+"@example.com")
		require.NoError(t, err)
	}
	got, err := f.lists.GetList(ctx, l.ID)
	require.NoError(t, err)
	return got
}

func (f *fixture) login(t *testing.T, email string) *LoginResult {
	t.Helper()
	res, err := f.users.Login(context.Background(), email)
	require.NoError(t, err)
	return res
}

func names(ps []models.Participant) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}
