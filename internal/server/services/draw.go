package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/clock"
	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/logging"
	"github.com/dmitrijs2005/secretsanta/internal/server/archive"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/dmitrijs2005/secretsanta/internal/server/notify"
	"github.com/dmitrijs2005/secretsanta/internal/server/pairing"
	"github.com/dmitrijs2005/secretsanta/internal/server/participants"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/lists"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// DrawResult summarizes a draw. Pairs are never part of it.
type DrawResult struct {
	ListID     string
	DrawID     string
	PairsCount int
	Timestamp  time.Time
	Status     models.DrawStatus
	Failed     []string
}

// NotificationError reports the givers that could not be notified. The draw
// itself is stored with status partial.
type NotificationError struct {
	ListID string
	DrawID string
	Failed []string
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("draw %s of list %s: %d notification(s) failed: %s",
		e.DrawID, e.ListID, len(e.Failed), strings.Join(e.Failed, ", "))
}

func (e *NotificationError) Is(target error) bool {
	return target == common.ErrNotificationFailed
}

type DrawOption func(*DrawService)

func WithPairingEngine(e *pairing.Engine) DrawOption {
	return func(s *DrawService) { s.engine = e }
}

func WithArchive(a archive.Archive) DrawOption {
	return func(s *DrawService) { s.archive = a }
}

// DrawService is the draw orchestrator. A draw runs under the list's lock,
// is stored as pending before any e-mail goes out, and is finalized as
// confirmed or partial once every notification has settled.
type DrawService struct {
	repo       lists.Repository
	auth       Authenticator
	registry   *participants.Registry
	engine     *pairing.Engine
	dispatcher notify.Dispatcher
	templates  notify.Templates
	archive    archive.Archive
	locks      *ListLocks
	clock      clock.Clock
	logger     logging.Logger
	newID      func() string
	running    inflight
}

func NewDrawService(m repomanager.RepositoryManager, auth Authenticator, reg *participants.Registry,
	d notify.Dispatcher, tpl notify.Templates, locks *ListLocks, clk clock.Clock, l logging.Logger,
	opts ...DrawOption) *DrawService {
	s := &DrawService{
		repo:       m.Lists(),
		auth:       auth,
		registry:   reg,
		engine:     pairing.NewRandom(),
		dispatcher: d,
		templates:  tpl,
		archive:    archive.Nop{},
		locks:      locks,
		clock:      clk,
		logger:     l.With("module", "draw_service"),
		newID:      uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Draw pairs the participants of a list and notifies every giver.
//
// When some notifications fail the draw is still stored (status partial)
// and Draw returns both the result and a *NotificationError.
func (s *DrawService) Draw(ctx context.Context, listID string) (*DrawResult, error) {
	defer s.running.begin()()

	release, err := s.locks.TryAcquireDraw(listID)
	if err != nil {
		return nil, fmt.Errorf("draw list %s: %w", listID, err)
	}
	defer release()

	l, err := s.repo.Get(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("draw list %s: %w", listID, storeErr(err))
	}
	if err := s.registry.CheckDrawable(l); err != nil {
		return nil, fmt.Errorf("draw list %s: %w", listID, err)
	}

	pairs, err := s.engine.Pair(l.Participants)
	if err != nil {
		return nil, fmt.Errorf("draw list %s: %w", listID, err)
	}
	if err := pairing.Verify(l.Participants, pairs); err != nil {
		return nil, fmt.Errorf("draw list %s: %w: %w", listID, common.ErrorInternal, err)
	}
	msgs, err := s.templates.RenderAll(l.Name, pairs)
	if err != nil {
		return nil, fmt.Errorf("draw list %s: %w: %w", listID, common.ErrorInternal, err)
	}

	rec := models.DrawRecord{
		ID:        s.newID(),
		CreatedAt: s.clock.Now(),
		Status:    models.DrawPending,
		Pairs:     pairs,
	}
	l.Draws = append(l.Draws, rec)
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, fmt.Errorf("draw list %s: %w", listID, storeErr(err))
	}
	s.logger.Info(ctx, "draw pending", "list_id", listID, "draw_id", rec.ID, "pairs", len(pairs))

	// The pending record is stored; finish even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	outcomes := s.dispatcher.SendBatch(ctx, msgs)

	return s.finish(ctx, l, rec.ID, failedPairs(pairs, outcomes))
}

// Wait blocks until every running draw and resend has been finalized or ctx
// is done. Storage must stay open until it returns.
func (s *DrawService) Wait(ctx context.Context) error {
	return s.running.wait(ctx)
}

// failedPairs returns the pairs whose notification failed. Outcomes are
// index aligned with the messages, which are index aligned with pairs.
func failedPairs(pairs []models.Pair, outcomes []notify.Outcome) []models.Pair {
	var failed []models.Pair
	for i, o := range outcomes {
		if o.Err != nil && i < len(pairs) {
			failed = append(failed, pairs[i])
		}
	}
	return failed
}

// ResendFailed re-sends the notifications that failed in a partial draw,
// using the stored pairing.
func (s *DrawService) ResendFailed(ctx context.Context, listID, drawID string) (*DrawResult, error) {
	defer s.running.begin()()

	release, err := s.locks.TryAcquireDraw(listID)
	if err != nil {
		return nil, fmt.Errorf("resend draw %s: %w", drawID, err)
	}
	defer release()

	l, err := s.repo.Get(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("resend draw %s: %w", drawID, storeErr(err))
	}
	idx := l.FindDraw(drawID)
	if idx < 0 {
		return nil, fmt.Errorf("resend draw %s: %w", drawID, common.ErrDrawNotFound)
	}
	rec := l.Draws[idx]
	if rec.Status != models.DrawPartial || len(rec.FailedRecipients) == 0 {
		return nil, fmt.Errorf("resend draw %s: %w", drawID, common.ErrNothingToResend)
	}

	retry := retryPairs(rec)
	msgs, err := s.templates.RenderAll(l.Name, retry)
	if err != nil {
		return nil, fmt.Errorf("resend draw %s: %w: %w", drawID, common.ErrorInternal, err)
	}

	ctx = context.WithoutCancel(ctx)

	s.logger.Info(ctx, "resending notifications", "list_id", listID, "draw_id", drawID, "count", len(msgs))
	outcomes := s.dispatcher.SendBatch(ctx, msgs)

	return s.finish(ctx, l, drawID, failedPairs(retry, outcomes))
}

// retryPairs selects the pairs of a partial draw whose giver was not
// notified. Records written before giver ids were kept fall back to e-mails.
func retryPairs(rec models.DrawRecord) []models.Pair {
	keys, byID := rec.FailedGivers, true
	if len(keys) == 0 {
		keys, byID = rec.FailedRecipients, false
	}
	pending := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		pending[k] = struct{}{}
	}

	var retry []models.Pair
	for _, p := range rec.Pairs {
		key := p.GiverID
		if !byID {
			key = p.GiverEmail
		}
		if _, ok := pending[key]; ok {
			retry = append(retry, p)
		}
	}
	return retry
}

// finish records the notification outcome on the draw, archives it and
// builds the result.
func (s *DrawService) finish(ctx context.Context, l *models.List, drawID string, failed []models.Pair) (*DrawResult, error) {
	final, err := s.finalize(ctx, l, drawID, failed)
	if err != nil {
		s.logger.Error(ctx, "draw not finalized", "list_id", l.ID, "draw_id", drawID, "error", err)
		return nil, fmt.Errorf("finalize draw %s of list %s: %w", drawID, l.ID, storeErr(err))
	}

	s.logger.Info(ctx, "draw finalized", "list_id", l.ID, "draw_id", drawID,
		"status", final.Status, "failed", len(final.FailedRecipients))

	if err := s.archive.Put(ctx, l.ID, final); err != nil {
		s.logger.Warn(ctx, "draw not archived", "list_id", l.ID, "draw_id", drawID, "error", err)
	}

	res := &DrawResult{
		ListID:     l.ID,
		DrawID:     drawID,
		PairsCount: len(final.Pairs),
		Timestamp:  final.CreatedAt,
		Status:     final.Status,
		Failed:     final.FailedRecipients,
	}
	if final.Status == models.DrawPartial {
		return res, &NotificationError{ListID: l.ID, DrawID: drawID, Failed: final.FailedRecipients}
	}
	return res, nil
}

// finalize moves the draw to confirmed or partial. Another process may have
// written the list in between, so a version conflict reloads the list and
// applies the same change again.
func (s *DrawService) finalize(ctx context.Context, l *models.List, drawID string, failed []models.Pair) (models.DrawRecord, error) {
	now := s.clock.Now()

	var emails, givers []string
	for _, p := range failed {
		emails = append(emails, p.GiverEmail)
		givers = append(givers, p.GiverID)
	}

	for attempt := 1; ; attempt++ {
		idx := l.FindDraw(drawID)
		if idx < 0 {
			return models.DrawRecord{}, common.ErrDrawNotFound
		}
		d := &l.Draws[idx]
		d.CompletedAt = &now
		d.FailedRecipients = emails
		d.FailedGivers = givers
		if len(failed) == 0 {
			d.Status = models.DrawConfirmed
		} else {
			d.Status = models.DrawPartial
		}

		err := s.repo.Update(ctx, l)
		if err == nil {
			return d.Clone(), nil
		}
		if !errors.Is(err, common.ErrVersionConflict) || attempt >= maxWriteAttempts {
			return models.DrawRecord{}, err
		}

		s.logger.Warn(ctx, "version conflict on finalize, reloading", "list_id", l.ID, "attempt", attempt)
		if l, err = s.repo.Get(ctx, l.ID); err != nil {
			return models.DrawRecord{}, err
		}
	}
}

// ArchiveURL returns a presigned link to the archived draw record. Only the
// list owner may fetch it.
func (s *DrawService) ArchiveURL(ctx context.Context, listID, drawID, callerToken string) (string, error) {
	userID, err := s.auth.Authenticate(ctx, callerToken)
	if err != nil {
		return "", err
	}

	l, err := s.repo.Get(ctx, listID)
	if err != nil {
		return "", fmt.Errorf("archive of list %s: %w", listID, storeErr(err))
	}
	if l.OwnerID == "" || l.OwnerID != userID {
		return "", fmt.Errorf("archive of list %s: %w", listID, common.ErrorUnauthorized)
	}
	idx := l.FindDraw(drawID)
	if idx < 0 || l.Draws[idx].Status == models.DrawPending {
		return "", fmt.Errorf("archive of draw %s: %w", drawID, common.ErrDrawNotFound)
	}

	url, err := s.archive.URL(ctx, listID, drawID)
	if err != nil {
		return "", fmt.Errorf("archive of draw %s: %w", drawID, err)
	}
	return url, nil
}
