package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSendgridClient struct {
	got  *mail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeSendgridClient) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.got = m
	return f.resp, f.err
}

func TestSendGridSender_Send(t *testing.T) {
	tests := []struct {
		name    string
		resp    *rest.Response
		err     error
		wantErr string
	}{
		{name: "accepted", resp: &rest.Response{StatusCode: 202}},
		{name: "rejected", resp: &rest.Response{StatusCode: 401, Body: "bad key"}, wantErr: "unexpected status 401"},
		{name: "transport error", err: errors.New("dial tcp"), wantErr: "dial tcp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeSendgridClient{resp: tt.resp, err: tt.err}
			s := &SendGridSender{client: fc, fromAddr: "santa@example.com", fromName: "Santa"}

			err := s.Send(context.Background(), Message{
				To: "alice@example.com", ToName: "Alice", Subject: Subject, HTML: "<p>hi</p>", Text: "hi",
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			require.NotNil(t, fc.got)
			assert.Equal(t, "santa@example.com", fc.got.From.Address)
			assert.Equal(t, Subject, fc.got.Subject)
			require.Len(t, fc.got.Personalizations, 1)
			assert.Equal(t, "alice@example.com", fc.got.Personalizations[0].To[0].Address)
		})
	}
}
