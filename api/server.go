// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/ava-labs/quorumnode/client"
	"github.com/ava-labs/quorumnode/utils/logging"
)

const (
	baseURL               = "/ext"
	quorumEndpoint        = baseURL + "/quorum"
	serverShutdownTimeout = 10 * time.Second
)

// Server owns the HTTP listener exposing client.Client over JSON-RPC.
type Server struct {
	log logging.Logger

	listenHost string
	listenPort uint16

	handler http.Handler
	srv     *http.Server
}

// NewServer builds a Server ready to Dispatch. allowedOrigins configures
// the CORS middleware; an empty slice allows none.
func NewServer(c *client.Client, log logging.Logger, host string, port uint16, allowedOrigins []string) (*Server, error) {
	rpcServer := rpc.NewServer()
	codec := json2.NewCodec()
	rpcServer.RegisterCodec(codec, "application/json")
	rpcServer.RegisterCodec(codec, "application/json;charset=UTF-8")
	if err := rpcServer.RegisterService(NewService(c, log), "quorum"); err != nil {
		return nil, fmt.Errorf("registering quorum service: %w", err)
	}

	router := mux.NewRouter()
	router.Handle(quorumEndpoint, rpcServer)

	corsOpts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}
	if len(allowedOrigins) == 0 {
		// rs/cors treats an empty AllowedOrigins as "all origins".
		corsOpts.AllowOriginFunc = func(string) bool { return false }
	}
	corsHandler := cors.New(corsOpts).Handler(router)

	return &Server{
		log:        log,
		listenHost: host,
		listenPort: port,
		handler:    gziphandler.GzipHandler(corsHandler),
	}, nil
}

// Dispatch starts serving until Shutdown is called or the listener fails.
func (s *Server) Dispatch() error {
	addr := fmt.Sprintf("%s:%d", s.listenHost, s.listenPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.log.Info("HTTP API server listening", zap.String("addr", addr))
	s.srv = &http.Server{Handler: s.handler}
	return s.srv.Serve(listener)
}

// Shutdown gracefully stops the server, waiting up to
// serverShutdownTimeout for in-flight requests to complete.
func (s *Server) Shutdown() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
