package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "secretsanta.SecretSanta"

const (
	methodLogin             = "Login"
	methodCreateList        = "CreateList"
	methodGetList           = "GetList"
	methodAddParticipant    = "AddParticipant"
	methodRemoveParticipant = "RemoveParticipant"
	methodDraw              = "Draw"
	methodResendFailed      = "ResendFailed"
	methodDeleteList        = "DeleteList"
	methodListsForUser      = "ListsForUser"
	methodArchiveURL        = "ArchiveURL"
	methodPing              = "Ping"
)

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

// SecretSantaServer is the server API of the SecretSanta service.
type SecretSantaServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	CreateList(context.Context, *CreateListRequest) (*ListView, error)
	GetList(context.Context, *ListRef) (*ListView, error)
	AddParticipant(context.Context, *AddParticipantRequest) (*ParticipantsResponse, error)
	RemoveParticipant(context.Context, *RemoveParticipantRequest) (*ParticipantsResponse, error)
	Draw(context.Context, *ListRef) (*DrawResponse, error)
	ResendFailed(context.Context, *DrawRef) (*DrawResponse, error)
	DeleteList(context.Context, *ListRef) (*Empty, error)
	ListsForUser(context.Context, *Empty) (*ListsResponse, error)
	ArchiveURL(context.Context, *DrawRef) (*ArchiveURLResponse, error)
	Ping(context.Context, *Empty) (*PingResponse, error)
}

// unary adapts a typed server method to a grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(SecretSantaServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SecretSantaServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SecretSantaServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var SecretSantaServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SecretSantaServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(methodLogin, SecretSantaServer.Login),
		unary(methodCreateList, SecretSantaServer.CreateList),
		unary(methodGetList, SecretSantaServer.GetList),
		unary(methodAddParticipant, SecretSantaServer.AddParticipant),
		unary(methodRemoveParticipant, SecretSantaServer.RemoveParticipant),
		unary(methodDraw, SecretSantaServer.Draw),
		unary(methodResendFailed, SecretSantaServer.ResendFailed),
		unary(methodDeleteList, SecretSantaServer.DeleteList),
		unary(methodListsForUser, SecretSantaServer.ListsForUser),
		unary(methodArchiveURL, SecretSantaServer.ArchiveURL),
		unary(methodPing, SecretSantaServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "secretsanta.proto",
}
