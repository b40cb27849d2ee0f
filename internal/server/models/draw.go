package models

import "time"

// DrawStatus is the lifecycle state of a DrawRecord.
type DrawStatus string

const (
	// DrawPending is written before any notification goes out.
	DrawPending DrawStatus = "pending"
	// DrawConfirmed means every giver was notified.
	DrawConfirmed DrawStatus = "confirmed"
	// DrawPartial means at least one notification failed; FailedRecipients lists them.
	DrawPartial DrawStatus = "partial"
)

// Pair assigns a giver to a receiver. Names are denormalized so that the
// record stays readable after participants are removed from the list.
type Pair struct {
	GiverID       string `json:"giverId"`
	GiverName     string `json:"giverName"`
	GiverEmail    string `json:"giverEmail"`
	ReceiverID    string `json:"receiverId"`
	ReceiverName  string `json:"receiverName"`
	ReceiverEmail string `json:"receiverEmail"`
}

// DrawRecord is the outcome of one draw. Pairs never change once written;
// only Status, CompletedAt and the failure lists move forward.
// FailedGivers holds the giver ids of FailedRecipients, in the same order;
// resends select on it since e-mails need not be unique within a list.
type DrawRecord struct {
	ID               string     `json:"id"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	Status           DrawStatus `json:"status"`
	Pairs            []Pair     `json:"pairs"`
	FailedRecipients []string   `json:"failedRecipients,omitempty"`
	FailedGivers     []string   `json:"failedGivers,omitempty"`
}

func (d DrawRecord) Clone() DrawRecord {
	c := d
	c.Pairs = append([]Pair(nil), d.Pairs...)
	c.FailedRecipients = append([]string(nil), d.FailedRecipients...)
	c.FailedGivers = append([]string(nil), d.FailedGivers...)
	if d.CompletedAt != nil {
		at := *d.CompletedAt
		c.CompletedAt = &at
	}
	return c
}
