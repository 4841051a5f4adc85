package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reelforge/reelforge/project"
)

// executeToolRequest is the direct tool-call wire contract.
type executeToolRequest struct {
	ToolName     string           `json:"toolName"`
	Args         json.RawMessage  `json:"args,omitempty"`
	ProjectState *project.Project `json:"projectState"`
}

// handleExecuteTool runs one tool call against the supplied project snapshot
// and returns the wire result. A failed tool still answers 200; the success
// flag carries the outcome.
func (s *Server) handleExecuteTool(c echo.Context) error {
	var req executeToolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if req.ToolName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "toolName is required")
	}
	p := req.ProjectState
	if p == nil {
		p = project.New()
	}

	res := s.Dispatcher.Execute(c.Request().Context(), req.ToolName, req.Args, p)
	return c.JSON(http.StatusOK, res.Wire())
}

type postMessageRequest struct {
	Message     string               `json:"message"`
	Attachments []project.Attachment `json:"attachments,omitempty"`
}

type postMessageResponse struct {
	FinalText  string           `json:"finalText,omitempty"`
	Pending    any              `json:"pending,omitempty"`
	Iterations int              `json:"iterations"`
	CapReached bool             `json:"capReached,omitempty"`
	Phase      string           `json:"phase"`
	Project    *project.Project `json:"project"`
}

// handlePostMessage runs one orchestrator turn for the session and persists
// the updated history and project.
func (s *Server) handlePostMessage(c echo.Context) error {
	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if req.Message == "" && len(req.Attachments) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "message or attachments required")
	}

	sess, err := s.Sessions.Get(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session store unavailable")
	}
	if sess.Pending != nil && len(req.Attachments) > 0 {
		// Uploads arrived; the pending request is satisfied.
		sess.Pending = nil
	}

	result, err := s.Orch.RunTurn(c.Request().Context(), req.Message, req.Attachments, sess.History, sess.Project)
	if err != nil {
		s.Logger.Error("server.turn.failed", "session_id", sess.ID, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "conversation provider failed")
	}

	sess.History = result.History
	sess.Pending = result.Pending
	sess.UpdatedAt = time.Now().UTC()
	if err := s.Sessions.Save(sess); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed saving session")
	}

	return c.JSON(http.StatusOK, postMessageResponse{
		FinalText:  result.FinalText,
		Pending:    result.Pending,
		Iterations: result.Iterations,
		CapReached: result.CapReached,
		Phase:      string(result.Phase),
		Project:    sess.Project,
	})
}

// handleGetProject returns the session's current project aggregate.
func (s *Server) handleGetProject(c echo.Context) error {
	sess, err := s.Sessions.Get(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session store unavailable")
	}
	return c.JSON(http.StatusOK, sess.Project)
}
