package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parley-im/parley/internal/chat"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, *chat.Model) {
	t.Helper()
	model := chat.NewModel(zap.NewNop())
	return New("127.0.0.1:0", model, nil, zap.NewNop()), model
}

func TestInfoEndpoint(t *testing.T) {
	s, model := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/info", nil)
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp InfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, model.Info().Version.String(), resp.Version)
	require.False(t, resp.StartTime.IsZero())
}

func TestStatsEndpoint(t *testing.T) {
	s, model := newTestServer(t)

	ada := model.NewUser("ada")
	require.NotNil(t, ada)
	require.NotNil(t, model.NewConversation("general", ada.ID))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Users)
	require.Equal(t, 1, resp.Conversations)
	require.Equal(t, 0, resp.Messages)
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
