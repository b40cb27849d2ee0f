// Package grpc exposes the Secret Santa services over gRPC with a JSON codec.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/secretsanta/internal/clock"
	"github.com/dmitrijs2005/secretsanta/internal/logging"
	"github.com/dmitrijs2005/secretsanta/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address   string
	users     *services.UserService
	lists     *services.ListService
	draws     *services.DrawService
	logger    logging.Logger
	clock     clock.Clock
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us *services.UserService, ls *services.ListService,
	ds *services.DrawService, clk clock.Clock, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		lists:     ls,
		draws:     ds,
		clock:     clk,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv.RegisterService(&SecretSantaServiceDesc, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
