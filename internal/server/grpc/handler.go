package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/dmitrijs2005/secretsanta/internal/server/services"
)

func (s *GRPCServer) fail(ctx context.Context, method string, err error) error {
	st := toStatus(err)
	s.logger.Warn(ctx, "request failed", "method", method, "error", err)
	return st
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	res, err := s.users.Login(ctx, req.Email)
	if err != nil {
		return nil, s.fail(ctx, methodLogin, err)
	}

	return &LoginResponse{
		UserID:  res.User.ID,
		Email:   res.User.Email,
		Token:   res.Token,
		ListIDs: res.User.ListIDs,
	}, nil
}

func (s *GRPCServer) CreateList(ctx context.Context, req *CreateListRequest) (*ListView, error) {
	l, err := s.lists.CreateList(ctx, req.Name, tokenFromContext(ctx))
	if err != nil {
		return nil, s.fail(ctx, methodCreateList, err)
	}
	return toListView(l), nil
}

func (s *GRPCServer) GetList(ctx context.Context, req *ListRef) (*ListView, error) {
	l, err := s.lists.GetList(ctx, req.ListID)
	if err != nil {
		return nil, s.fail(ctx, methodGetList, err)
	}
	return toListView(l), nil
}

func (s *GRPCServer) AddParticipant(ctx context.Context, req *AddParticipantRequest) (*ParticipantsResponse, error) {
	ps, err := s.lists.AddParticipant(ctx, req.ListID, req.Name, req.Email)
	if err != nil {
		return nil, s.fail(ctx, methodAddParticipant, err)
	}
	return &ParticipantsResponse{Participants: ps}, nil
}

func (s *GRPCServer) RemoveParticipant(ctx context.Context, req *RemoveParticipantRequest) (*ParticipantsResponse, error) {
	var (
		ps  []models.Participant
		err error
	)
	if req.ParticipantID != "" {
		ps, err = s.lists.RemoveParticipantByID(ctx, req.ListID, req.ParticipantID)
	} else {
		ps, err = s.lists.RemoveParticipant(ctx, req.ListID, req.Index, req.ExpectedVersion)
	}
	if err != nil {
		return nil, s.fail(ctx, methodRemoveParticipant, err)
	}
	return &ParticipantsResponse{Participants: ps}, nil
}

// drawResult keeps partial draws out of the error channel so the caller
// learns the draw id it needs for ResendFailed.
func (s *GRPCServer) drawResult(ctx context.Context, method string, res *services.DrawResult, err error) (*DrawResponse, error) {
	if err != nil {
		if res != nil && errors.Is(err, common.ErrNotificationFailed) {
			s.logger.Warn(ctx, "draw notified partially", "list_id", res.ListID, "draw_id", res.DrawID, "failed", len(res.Failed))
			return toDrawResponse(res), nil
		}
		return nil, s.fail(ctx, method, err)
	}
	return toDrawResponse(res), nil
}

func (s *GRPCServer) Draw(ctx context.Context, req *ListRef) (*DrawResponse, error) {
	res, err := s.draws.Draw(ctx, req.ListID)
	return s.drawResult(ctx, methodDraw, res, err)
}

func (s *GRPCServer) ResendFailed(ctx context.Context, req *DrawRef) (*DrawResponse, error) {
	res, err := s.draws.ResendFailed(ctx, req.ListID, req.DrawID)
	return s.drawResult(ctx, methodResendFailed, res, err)
}

func (s *GRPCServer) DeleteList(ctx context.Context, req *ListRef) (*Empty, error) {
	if err := s.lists.DeleteList(ctx, req.ListID, tokenFromContext(ctx)); err != nil {
		return nil, s.fail(ctx, methodDeleteList, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) ListsForUser(ctx context.Context, _ *Empty) (*ListsResponse, error) {
	ls, err := s.lists.ListsForUser(ctx, tokenFromContext(ctx))
	if err != nil {
		return nil, s.fail(ctx, methodListsForUser, err)
	}

	resp := &ListsResponse{Lists: make([]*ListView, 0, len(ls))}
	for _, l := range ls {
		resp.Lists = append(resp.Lists, toListView(l))
	}
	return resp, nil
}

func (s *GRPCServer) ArchiveURL(ctx context.Context, req *DrawRef) (*ArchiveURLResponse, error) {
	url, err := s.draws.ArchiveURL(ctx, req.ListID, req.DrawID, tokenFromContext(ctx))
	if err != nil {
		return nil, s.fail(ctx, methodArchiveURL, err)
	}
	return &ArchiveURLResponse{URL: url}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *Empty) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}
