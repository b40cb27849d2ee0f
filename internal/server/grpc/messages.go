package grpc

import (
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/dmitrijs2005/secretsanta/internal/server/services"
)

type LoginRequest struct {
	Email string `json:"email"`
}

type LoginResponse struct {
	UserID  string   `json:"userId"`
	Email   string   `json:"email"`
	Token   string   `json:"token"`
	ListIDs []string `json:"listIds"`
}

// CreateListRequest creates a list. The owner is taken from the access
// token metadata when one is sent.
type CreateListRequest struct {
	Name string `json:"name"`
}

type ListRef struct {
	ListID string `json:"listId"`
}

type AddParticipantRequest struct {
	ListID string `json:"listId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// RemoveParticipantRequest removes by ParticipantID when it is set,
// otherwise by Index. A positive ExpectedVersion guards index removal.
type RemoveParticipantRequest struct {
	ListID          string `json:"listId"`
	Index           int    `json:"index"`
	ParticipantID   string `json:"participantId,omitempty"`
	ExpectedVersion int64  `json:"expectedVersion,omitempty"`
}

type ParticipantsResponse struct {
	Participants []models.Participant `json:"participants"`
}

type DrawRef struct {
	ListID string `json:"listId"`
	DrawID string `json:"drawId"`
}

// DrawResponse reports a finished draw. A partial draw is not an RPC error:
// Status is "partial" and Failed names the givers still to be notified.
type DrawResponse struct {
	ListID     string            `json:"listId"`
	DrawID     string            `json:"drawId"`
	PairsCount int               `json:"pairsCount"`
	Timestamp  time.Time         `json:"timestamp"`
	Status     models.DrawStatus `json:"status"`
	Failed     []string          `json:"failed,omitempty"`
}

func toDrawResponse(r *services.DrawResult) *DrawResponse {
	return &DrawResponse{
		ListID:     r.ListID,
		DrawID:     r.DrawID,
		PairsCount: r.PairsCount,
		Timestamp:  r.Timestamp,
		Status:     r.Status,
		Failed:     r.Failed,
	}
}

type DrawSummary struct {
	ID               string            `json:"id"`
	CreatedAt        time.Time         `json:"createdAt"`
	CompletedAt      *time.Time        `json:"completedAt,omitempty"`
	Status           models.DrawStatus `json:"status"`
	PairsCount       int               `json:"pairsCount"`
	FailedRecipients []string          `json:"failedRecipients,omitempty"`
}

// ListView is a list as seen by clients: draws carry no pairs.
type ListView struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	OwnerID      string               `json:"ownerId,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	Version      int64                `json:"version"`
	Participants []models.Participant `json:"participants"`
	Draws        []DrawSummary        `json:"draws"`
}

func toListView(l *models.List) *ListView {
	v := &ListView{
		ID:           l.ID,
		Name:         l.Name,
		OwnerID:      l.OwnerID,
		CreatedAt:    l.CreatedAt,
		Version:      l.Version,
		Participants: l.Participants,
		Draws:        make([]DrawSummary, 0, len(l.Draws)),
	}
	for _, d := range l.Draws {
		v.Draws = append(v.Draws, DrawSummary{
			ID:               d.ID,
			CreatedAt:        d.CreatedAt,
			CompletedAt:      d.CompletedAt,
			Status:           d.Status,
			PairsCount:       len(d.Pairs),
			FailedRecipients: d.FailedRecipients,
		})
	}
	return v
}

type ListsResponse struct {
	Lists []*ListView `json:"lists"`
}

type ArchiveURLResponse struct {
	URL string `json:"url"`
}

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}
