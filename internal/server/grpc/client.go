package grpc

import (
	"context"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls the SecretSanta service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// WithToken attaches the access token to outgoing calls made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, fullMethod(method), in, out, grpc.CallContentSubtype(codecName))
}

func (c *Client) Login(ctx context.Context, email string) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.invoke(ctx, methodLogin, &LoginRequest{Email: email}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateList(ctx context.Context, name string) (*ListView, error) {
	out := new(ListView)
	if err := c.invoke(ctx, methodCreateList, &CreateListRequest{Name: name}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetList(ctx context.Context, listID string) (*ListView, error) {
	out := new(ListView)
	if err := c.invoke(ctx, methodGetList, &ListRef{ListID: listID}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddParticipant(ctx context.Context, listID, name, email string) (*ParticipantsResponse, error) {
	out := new(ParticipantsResponse)
	in := &AddParticipantRequest{ListID: listID, Name: name, Email: email}
	if err := c.invoke(ctx, methodAddParticipant, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RemoveParticipant(ctx context.Context, in *RemoveParticipantRequest) (*ParticipantsResponse, error) {
	out := new(ParticipantsResponse)
	if err := c.invoke(ctx, methodRemoveParticipant, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Draw(ctx context.Context, listID string) (*DrawResponse, error) {
	out := new(DrawResponse)
	if err := c.invoke(ctx, methodDraw, &ListRef{ListID: listID}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResendFailed(ctx context.Context, listID, drawID string) (*DrawResponse, error) {
	out := new(DrawResponse)
	if err := c.invoke(ctx, methodResendFailed, &DrawRef{ListID: listID, DrawID: drawID}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteList(ctx context.Context, listID string) error {
	return c.invoke(ctx, methodDeleteList, &ListRef{ListID: listID}, new(Empty))
}

func (c *Client) ListsForUser(ctx context.Context) (*ListsResponse, error) {
	out := new(ListsResponse)
	if err := c.invoke(ctx, methodListsForUser, &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ArchiveURL(ctx context.Context, listID, drawID string) (string, error) {
	out := new(ArchiveURLResponse)
	if err := c.invoke(ctx, methodArchiveURL, &DrawRef{ListID: listID, DrawID: drawID}, out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) Ping(ctx context.Context) (string, error) {
	out := new(PingResponse)
	if err := c.invoke(ctx, methodPing, &Empty{}, out); err != nil {
		return "", err
	}
	return out.Status, nil
}
