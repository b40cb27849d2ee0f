// Package legacy imports the single-file JSON database of the earlier
// Node.js deployment into the list store.
package legacy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/lists"
	"github.com/google/uuid"
)

type file struct {
	Lists []list `json:"listas"`
}

type list struct {
	ID           string        `json:"id"`
	Name         string        `json:"nome"`
	CreatedAt    string        `json:"dataCriacao"`
	Participants []participant `json:"participantes"`
	Draws        []draw        `json:"sorteios"`
}

type participant struct {
	Name  string `json:"nome"`
	Email string `json:"email"`
}

type draw struct {
	Date  string `json:"data"`
	Pairs []pair `json:"pares"`
}

// pair references participants by e-mail.
type pair struct {
	Giver    string `json:"presenteador"`
	Receiver string `json:"presenteado"`
}

// Result reports what Import did.
type Result struct {
	Imported int
	Skipped  []string
}

var newID = uuid.NewString

// Import reads the legacy file from r and stores every list not already
// present in repo, in one atomic batch. List ids are kept since clients use
// them as access tokens. Participants get fresh ids and historical draws are
// stored as confirmed.
func Import(ctx context.Context, r io.Reader, repo lists.Repository, now time.Time) (*Result, error) {
	var f file
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode legacy data: %w", err)
	}

	existing, err := repo.All(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, l := range existing {
		known[l.ID] = struct{}{}
	}

	res := &Result{}
	var batch []*models.List
	for _, src := range f.Lists {
		if src.ID == "" {
			continue
		}
		if _, ok := known[src.ID]; ok {
			res.Skipped = append(res.Skipped, src.ID)
			continue
		}
		known[src.ID] = struct{}{}
		batch = append(batch, convert(src, now))
	}

	if len(batch) == 0 {
		return res, nil
	}
	if err := repo.SaveAll(ctx, batch); err != nil {
		return nil, fmt.Errorf("store legacy lists: %w", err)
	}
	res.Imported = len(batch)
	return res, nil
}

func convert(src list, now time.Time) *models.List {
	created := parseTime(src.CreatedAt, now)
	l := &models.List{
		ID:           src.ID,
		Name:         strings.TrimSpace(src.Name),
		CreatedAt:    created,
		Participants: make([]models.Participant, 0, len(src.Participants)),
		Draws:        make([]models.DrawRecord, 0, len(src.Draws)),
	}

	byEmail := make(map[string]models.Participant, len(src.Participants))
	for _, p := range src.Participants {
		np := models.Participant{
			ID:      newID(),
			Name:    strings.TrimSpace(p.Name),
			Email:   strings.TrimSpace(p.Email),
			AddedAt: created,
		}
		l.Participants = append(l.Participants, np)
		key := strings.ToLower(np.Email)
		if _, dup := byEmail[key]; !dup {
			byEmail[key] = np
		}
	}

	for _, d := range src.Draws {
		at := parseTime(d.Date, created)
		rec := models.DrawRecord{
			ID:          newID(),
			CreatedAt:   at,
			CompletedAt: &at,
			Status:      models.DrawConfirmed,
			Pairs:       make([]models.Pair, 0, len(d.Pairs)),
		}
		for _, p := range d.Pairs {
			g := lookup(byEmail, p.Giver)
			r := lookup(byEmail, p.Receiver)
			rec.Pairs = append(rec.Pairs, models.Pair{
				GiverID: g.ID, GiverName: g.Name, GiverEmail: g.Email,
				ReceiverID: r.ID, ReceiverName: r.Name, ReceiverEmail: r.Email,
			})
		}
		l.Draws = append(l.Draws, rec)
	}
	return l
}

// lookup falls back to an id-less participant named after the e-mail when
// the person has since left the list.
func lookup(byEmail map[string]models.Participant, email string) models.Participant {
	email = strings.TrimSpace(email)
	if p, ok := byEmail[strings.ToLower(email)]; ok {
		return p
	}
	return models.Participant{Name: email, Email: email}
}

func parseTime(s string, fallback time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	return fallback
}
