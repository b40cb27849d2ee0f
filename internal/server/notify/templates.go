package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/dmitrijs2005/secretsanta/internal/server/models"
)

const Subject = "🎁 Your Secret Santa has been drawn!"

var htmlBody = template.Must(template.New("draw").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #2c3e50;">Hi {{.GiverName}}! 🎉</h1>
  <p style="font-size: 16px; line-height: 1.5;">The Secret Santa draw for <strong>{{.ListName}}</strong> is done.</p>
  <div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p style="font-size: 18px; margin: 0;">You are giving a gift to: <strong style="color: #e74c3c;">{{.ReceiverName}}</strong></p>
    {{- if .SuggestedValue}}
    <p style="color: #27ae60;">Suggested value: {{.SuggestedValue}}</p>
    {{- end}}
  </div>
  <p style="color: #7f8c8d; font-size: 14px;">Keep it a secret! 🤫</p>
</div>`))

type templateData struct {
	ListName       string
	GiverName      string
	ReceiverName   string
	SuggestedValue string
}

// Templates renders the draw notification for one pair.
type Templates struct {
	SuggestedValue string
}

// Render builds the message telling pair's giver who they drew.
func (t Templates) Render(listName string, pair models.Pair) (Message, error) {
	data := templateData{
		ListName:       listName,
		GiverName:      pair.GiverName,
		ReceiverName:   pair.ReceiverName,
		SuggestedValue: t.SuggestedValue,
	}

	var buf bytes.Buffer
	if err := htmlBody.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render draw e-mail: %w", err)
	}

	text := fmt.Sprintf("Hi %s! The Secret Santa draw for %s is done. You are giving a gift to: %s.",
		pair.GiverName, listName, pair.ReceiverName)
	if t.SuggestedValue != "" {
		text += " Suggested value: " + t.SuggestedValue + "."
	}

	return Message{
		To:      pair.GiverEmail,
		ToName:  pair.GiverName,
		Subject: Subject,
		HTML:    buf.String(),
		Text:    text,
	}, nil
}

// RenderAll renders one message per pair, preserving order.
func (t Templates) RenderAll(listName string, pairs []models.Pair) ([]Message, error) {
	msgs := make([]Message, 0, len(pairs))
	for _, p := range pairs {
		m, err := t.Render(listName, p)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
