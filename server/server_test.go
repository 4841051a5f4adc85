package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelforge/reelforge/asset"
	"github.com/reelforge/reelforge/fanout"
	"github.com/reelforge/reelforge/logging"
	"github.com/reelforge/reelforge/orchestrator"
	"github.com/reelforge/reelforge/provider"
	"github.com/reelforge/reelforge/session"
	"github.com/reelforge/reelforge/tool"
)

func newTestServer(t *testing.T, chat *provider.MockConversational) *Server {
	t.Helper()
	gen := provider.NewMockGenerator()
	store := asset.NewInMemoryStore()
	dispatcher := tool.NewDispatcher(tool.Env{
		Images: gen,
		Video:  gen,
		Voice:  gen,
		Script: gen,
		Assets: store,
		Batch:  fanout.NewRunner(2, logging.NoOpLogger{}),
		Logger: logging.NoOpLogger{},
	})
	orch := orchestrator.New(chat, dispatcher, store, func(o *orchestrator.Options) {
		o.Logger = logging.NoOpLogger{}
	})
	return New(orch, dispatcher, session.NewInMemoryStore(), logging.NoOpLogger{})
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleExecuteTool_Success(t *testing.T) {
	s := newTestServer(t, provider.NewMockConversational())

	rec := doJSON(t, s, http.MethodPost, "/v1/tools/execute",
		`{"toolName":"save-overview","args":{"overview":"a launch video"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, true, res["success"])
	updates := res["stateUpdates"].(map[string]any)
	assert.Equal(t, "set-overview", updates["type"])
}

func TestHandleExecuteTool_BusinessFailureIsStill200(t *testing.T) {
	s := newTestServer(t, provider.NewMockConversational())

	rec := doJSON(t, s, http.MethodPost, "/v1/tools/execute",
		`{"toolName":"generate-script","args":{}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, false, res["success"])
	assert.Contains(t, res["error"], "overview")
}

func TestHandleExecuteTool_MissingToolName(t *testing.T) {
	s := newTestServer(t, provider.NewMockConversational())

	rec := doJSON(t, s, http.MethodPost, "/v1/tools/execute", `{"args":{}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePostMessage_RunsTurnAndPersists(t *testing.T) {
	chat := provider.NewMockConversational()
	chat.EnqueueToolCall(tool.SaveOverview, `{"overview":"a launch video"}`)
	chat.EnqueueText("Saved your overview.")
	s := newTestServer(t, chat)

	rec := doJSON(t, s, http.MethodPost, "/v1/sessions/sess-1/messages",
		`{"message":"here is my idea"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Saved your overview.", res["finalText"])
	assert.Equal(t, "done", res["phase"])

	sess, err := s.Sessions.Get("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "a launch video", sess.Project.Overview)
	assert.NotEmpty(t, sess.History)
}

func TestHandlePostMessage_EmptyBodyRejected(t *testing.T) {
	s := newTestServer(t, provider.NewMockConversational())

	rec := doJSON(t, s, http.MethodPost, "/v1/sessions/sess-1/messages", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePostMessage_PendingUploadSurfaced(t *testing.T) {
	chat := provider.NewMockConversational()
	chat.EnqueueToolCall(tool.RequestUpload, `{"purpose":"reference photos"}`)
	s := newTestServer(t, chat)

	rec := doJSON(t, s, http.MethodPost, "/v1/sessions/sess-1/messages",
		`{"message":"add Ada"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "awaiting-upload", res["phase"])
	pending := res["pending"].(map[string]any)
	assert.Equal(t, "reference photos", pending["purpose"])

	sess, err := s.Sessions.Get("sess-1")
	require.NoError(t, err)
	require.NotNil(t, sess.Pending)
}

func TestHandleGetProject(t *testing.T) {
	s := newTestServer(t, provider.NewMockConversational())

	sess, err := s.Sessions.Get("sess-1")
	require.NoError(t, err)
	sess.Project.Overview = "a launch video"
	require.NoError(t, s.Sessions.Save(sess))

	rec := doJSON(t, s, http.MethodGet, "/v1/sessions/sess-1/project", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var p map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "a launch video", p["overview"])
	assert.Equal(t, "overview", p["stage"])
}
