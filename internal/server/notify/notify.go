// Package notify delivers draw results to participants.
//
// A Sender delivers one message; a Dispatcher delivers a batch and reports a
// per-item outcome. The draw orchestrator only sees the Dispatcher.
package notify

import "context"

// Message is a single e-mail addressed to one giver.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Outcome is the delivery result for the message at the same index.
type Outcome struct {
	To  string
	Err error
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Dispatcher delivers a batch of messages and never drops an outcome.
type Dispatcher interface {
	SendBatch(ctx context.Context, msgs []Message) []Outcome
}

// Failed returns the recipients whose delivery failed, in batch order.
func Failed(outcomes []Outcome) []string {
	var failed []string
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o.To)
		}
	}
	return failed
}
