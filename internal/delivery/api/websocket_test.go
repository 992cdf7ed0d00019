package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsFrame struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId"`
	Data      map[string]any `json:"data"`
	Error     string         `json:"error"`
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + sessionID + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocketChat(t *testing.T) {
	ai := &stubAI{answer: "Niacinamide calms redness."}
	srv := httptest.NewServer(setupRouter(t, ai))
	defer srv.Close()

	session := createSessionOn(t, srv)
	conn := dial(t, srv, session)

	var hello wsFrame
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello.Type)
	assert.Equal(t, session, hello.SessionID)
	assert.Len(t, hello.Data["messages"], 1)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "text", "text": "what does niacinamide do?"}))
	var reply wsFrame
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "reply", reply.Type)
	assistant := reply.Data["assistantMessage"].(map[string]any)
	assert.Equal(t, "Niacinamide calms redness.", assistant["text"])
	assert.Equal(t, "answered", reply.Data["outcome"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "text", "text": "  "}))
	var bad wsFrame
	require.NoError(t, conn.ReadJSON(&bad))
	assert.Equal(t, "error", bad.Type)
	assert.NotEmpty(t, bad.Error)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "audio"}))
	require.NoError(t, conn.ReadJSON(&bad))
	assert.Contains(t, bad.Error, "unsupported message type")

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv := httptest.NewServer(setupRouter(t, &stubAI{}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func createSessionOn(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session sessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	srv.Client().CloseIdleConnections()
	return session.ID
}
