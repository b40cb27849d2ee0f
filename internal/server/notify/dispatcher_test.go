package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []string
	fail     map[string]error
	delay    map[string]time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeSender) Send(ctx context.Context, m Message) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if d, ok := f.delay[m.To]; ok {
		time.Sleep(d)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[m.To]; ok {
		return err
	}
	f.sent = append(f.sent, m.To)
	return nil
}

func msgs(to ...string) []Message {
	out := make([]Message, 0, len(to))
	for _, t := range to {
		out = append(out, Message{To: t, Subject: Subject})
	}
	return out
}

func TestBatchDispatcher_AllSucceed(t *testing.T) {
	s := &fakeSender{}
	d := NewBatchDispatcher(s, time.Second, 4, logging.Nop{})

	out := d.SendBatch(context.Background(), msgs("a@x.com", "b@x.com", "c@x.com"))

	require.Len(t, out, 3)
	for i, want := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		assert.Equal(t, want, out[i].To)
		assert.NoError(t, out[i].Err)
	}
	assert.Empty(t, Failed(out))
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com", "c@x.com"}, s.sent)
}

func TestBatchDispatcher_PartialFailureKeepsOrder(t *testing.T) {
	boom := errors.New("smtp down")
	s := &fakeSender{fail: map[string]error{"b@x.com": boom}}
	d := NewBatchDispatcher(s, time.Second, 2, logging.Nop{})

	out := d.SendBatch(context.Background(), msgs("a@x.com", "b@x.com", "c@x.com"))

	require.Len(t, out, 3)
	assert.NoError(t, out[0].Err)
	assert.ErrorIs(t, out[1].Err, boom)
	assert.NoError(t, out[2].Err)
	assert.Equal(t, []string{"b@x.com"}, Failed(out))
}

func TestBatchDispatcher_TimeoutFailsSlowItems(t *testing.T) {
	s := &fakeSender{delay: map[string]time.Duration{"slow@x.com": 2 * time.Second}}
	d := NewBatchDispatcher(s, 50*time.Millisecond, 4, logging.Nop{})

	start := time.Now()
	out := d.SendBatch(context.Background(), msgs("a@x.com", "slow@x.com"))

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, out, 2)
	assert.NoError(t, out[0].Err)
	assert.ErrorIs(t, out[1].Err, context.DeadlineExceeded)
	assert.Equal(t, []string{"slow@x.com"}, Failed(out))
}

func TestBatchDispatcher_RespectsConcurrencyLimit(t *testing.T) {
	delay := map[string]time.Duration{}
	var to []string
	for _, a := range []string{"a", "b", "c", "d", "e", "f"} {
		addr := a + "@x.com"
		to = append(to, addr)
		delay[addr] = 20 * time.Millisecond
	}
	s := &fakeSender{delay: delay}
	d := NewBatchDispatcher(s, time.Second, 2, logging.Nop{})

	out := d.SendBatch(context.Background(), msgs(to...))

	assert.Empty(t, Failed(out))
	assert.LessOrEqual(t, s.peak.Load(), int32(2))
}

func TestBatchDispatcher_CancelledContext(t *testing.T) {
	s := &fakeSender{}
	d := NewBatchDispatcher(s, time.Second, 1, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := d.SendBatch(ctx, msgs("a@x.com", "b@x.com"))

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, Failed(out))
	assert.Empty(t, s.sent)
}

func TestBatchDispatcher_EmptyBatch(t *testing.T) {
	d := NewBatchDispatcher(&fakeSender{}, 0, 0, logging.Nop{})
	assert.Empty(t, d.SendBatch(context.Background(), nil))
	assert.Equal(t, DefaultTimeout, d.timeout)
	assert.Equal(t, DefaultConcurrency, d.concurrency)
}
