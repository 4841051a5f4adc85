// Package server exposes the engine over HTTP: the direct tool-call contract
// plus session message and project endpoints. Business-logic failures return
// 200 with success:false; 500 is reserved for uncaught panics.
package server

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/reelforge/reelforge/logging"
	"github.com/reelforge/reelforge/orchestrator"
	"github.com/reelforge/reelforge/session"
	"github.com/reelforge/reelforge/tool"
)

// Server wires the orchestrator, dispatcher and session store behind echo.
type Server struct {
	Echo       *echo.Echo
	Orch       *orchestrator.Orchestrator
	Dispatcher *tool.Dispatcher
	Sessions   session.Store
	Logger     logging.Logger
}

// New creates the HTTP server and registers its routes.
func New(orch *orchestrator.Orchestrator, dispatcher *tool.Dispatcher, sessions session.Store, logger logging.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	s := &Server{
		Echo:       e,
		Orch:       orch,
		Dispatcher: dispatcher,
		Sessions:   sessions,
		Logger:     logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.Echo.Group("/v1")
	v1.POST("/tools/execute", s.handleExecuteTool)
	v1.POST("/sessions/:id/messages", s.handlePostMessage)
	v1.GET("/sessions/:id/project", s.handleGetProject)
}

// Start begins serving on addr.
func (s *Server) Start(addr string) error {
	s.Logger.Info("server.start", "addr", addr)
	return s.Echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server.shutdown")
	return s.Echo.Shutdown(ctx)
}
