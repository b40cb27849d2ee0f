package http

import (
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/dmitrijs2005/secretsanta/internal/server/services"
)

type loginRequest struct {
	Email string `json:"email"`
}

type loginResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Token       string    `json:"token"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
	ListIDs     []string  `json:"listIds"`
}

type createListRequest struct {
	Name      string `json:"name"`
	UserToken string `json:"userToken"`
}

type createListResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type participantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type participantsResponse struct {
	Participants []models.Participant `json:"participants"`
	Version      int64                `json:"version,omitempty"`
}

// drawSummary is a draw without its pairs; pairings are only ever
// revealed to each giver by e-mail.
type drawSummary struct {
	ID               string            `json:"id"`
	CreatedAt        time.Time         `json:"createdAt"`
	CompletedAt      *time.Time        `json:"completedAt,omitempty"`
	Status           models.DrawStatus `json:"status"`
	PairsCount       int               `json:"pairsCount"`
	FailedRecipients []string          `json:"failedRecipients,omitempty"`
}

type listResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	OwnerID      string               `json:"ownerId,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	Version      int64                `json:"version"`
	Participants []models.Participant `json:"participants"`
	Draws        []drawSummary        `json:"draws"`
}

func toListResponse(l *models.List) listResponse {
	resp := listResponse{
		ID:           l.ID,
		Name:         l.Name,
		OwnerID:      l.OwnerID,
		CreatedAt:    l.CreatedAt,
		Version:      l.Version,
		Participants: l.Participants,
		Draws:        make([]drawSummary, 0, len(l.Draws)),
	}
	if resp.Participants == nil {
		resp.Participants = []models.Participant{}
	}
	for _, d := range l.Draws {
		resp.Draws = append(resp.Draws, drawSummary{
			ID:               d.ID,
			CreatedAt:        d.CreatedAt,
			CompletedAt:      d.CompletedAt,
			Status:           d.Status,
			PairsCount:       len(d.Pairs),
			FailedRecipients: d.FailedRecipients,
		})
	}
	return resp
}

type drawResponse struct {
	DrawID     string            `json:"drawId"`
	PairsCount int               `json:"pairsCount"`
	Timestamp  time.Time         `json:"timestamp"`
	Status     models.DrawStatus `json:"status"`
}

func toDrawResponse(r *services.DrawResult) drawResponse {
	return drawResponse{
		DrawID:     r.DrawID,
		PairsCount: r.PairsCount,
		Timestamp:  r.Timestamp,
		Status:     r.Status,
	}
}

type archiveResponse struct {
	URL string `json:"url"`
}
