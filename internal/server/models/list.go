// Package models defines the server-side data model of gift-exchange lists.
package models

import "time"

// Participant is a member of a list. ID is assigned on insertion and stays
// stable while positions shift; Email is not required to be unique unless the
// registry policy says so.
type Participant struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	AddedAt time.Time `json:"addedAt"`
}

// List is a named collection of participants together with its draw history.
//
// Version is the optimistic-concurrency stamp maintained by the repositories:
// every successful write increments it, and writes carrying a stale version
// are rejected.
type List struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	OwnerID      string        `json:"ownerId,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	Version      int64         `json:"version"`
	Participants []Participant `json:"participants"`
	Draws        []DrawRecord  `json:"draws"`
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (l *List) Clone() *List {
	if l == nil {
		return nil
	}
	c := *l
	c.Participants = append([]Participant(nil), l.Participants...)
	c.Draws = make([]DrawRecord, len(l.Draws))
	for i := range l.Draws {
		c.Draws[i] = l.Draws[i].Clone()
	}
	return &c
}

// FindDraw returns the index of the draw with the given id or -1.
func (l *List) FindDraw(id string) int {
	for i := range l.Draws {
		if l.Draws[i].ID == id {
			return i
		}
	}
	return -1
}
