package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/olsonja88/ICS499-Bears/internal/auth"
	"github.com/olsonja88/ICS499-Bears/internal/chat"
	"github.com/olsonja88/ICS499-Bears/internal/metrics"
	"github.com/olsonja88/ICS499-Bears/internal/mutation"
	"github.com/olsonja88/ICS499-Bears/internal/server"
	"github.com/olsonja88/ICS499-Bears/internal/store"
)

const testSecret = "test-secret"

const tangoReply = "Adding it now.\n```sql\n" +
	"INSERT OR IGNORE INTO categories (name) VALUES ('Ballroom');\n" +
	"INSERT OR IGNORE INTO countries (name, code) VALUES ('Argentina', 'AR');\n" +
	"INSERT INTO dances (title, category_id, country_id) VALUES ('Tango', " +
	"(SELECT id FROM categories WHERE name='Ballroom'), " +
	"(SELECT id FROM countries WHERE name='Argentina'));\n" +
	"```"

type fixedCompleter struct {
	reply string
}

func (c fixedCompleter) Complete(context.Context, []llms.MessageContent) (string, error) {
	return c.reply, nil
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-1",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestServer(t *testing.T, reply string, strict bool) (*server.Server, *store.Store) {
	t.Helper()

	st, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sessions := chat.NewSessionStore(16, time.Hour, 40, nil)
	collector := metrics.NewCollector()
	service := chat.NewService(
		fixedCompleter{reply: reply},
		mutation.NewExecutor(st, nil),
		sessions,
		collector,
		5*time.Second,
		nil,
	)

	return server.New(":0", service, sessions, auth.NewInspector(testSecret), collector, strict, nil), st
}

func doAsk(t *testing.T, srv *server.Server, body map[string]any, token string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, "ok", false)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAskWithoutCredential(t *testing.T) {
	srv, _ := newTestServer(t, "Tango is a partner dance.", false)

	rec := doAsk(t, srv, map[string]any{"userMessage": "What is tango?"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reply       string      `json:"reply"`
		SessionID   string      `json:"sessionId"`
		ChatHistory []chat.Turn `json:"chatHistory"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Tango is a partner dance.", resp.Reply)
	assert.NotEmpty(t, resp.SessionID)
	assert.Len(t, resp.ChatHistory, 2)
}

func TestAskAdminExecutesMutations(t *testing.T) {
	srv, st := newTestServer(t, tangoReply, false)

	rec := doAsk(t, srv, map[string]any{"userMessage": "Add the Tango."}, signToken(t, "admin"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reply   string `json:"reply"`
		Changes []struct {
			Kind   string `json:"kind"`
			Status string `json:"status"`
		} `json:"changes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Changes, 3)
	for _, ch := range resp.Changes {
		assert.Equal(t, "executed", ch.Status)
	}
	assert.Contains(t, resp.Reply, "Database changes:")

	_, err := st.DanceIDByTitle(context.Background(), "Tango")
	assert.NoError(t, err)
}

func TestAskViewerSQLRefused(t *testing.T) {
	srv, st := newTestServer(t, tangoReply, false)

	rec := doAsk(t, srv, map[string]any{"userMessage": "Add the Tango."}, signToken(t, "viewer"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, chat.RefusalMutation, resp.Reply)

	count, err := st.CountRows(context.Background(), "dances")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAskInvalidCredentialFailsOpen(t *testing.T) {
	srv, st := newTestServer(t, tangoReply, false)

	rec := doAsk(t, srv, map[string]any{"userMessage": "Add the Tango."}, "not-a-token")
	require.Equal(t, http.StatusOK, rec.Code)

	count, err := st.CountRows(context.Background(), "dances")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAskInvalidCredentialStrict(t *testing.T) {
	srv, _ := newTestServer(t, "ok", true)

	rec := doAsk(t, srv, map[string]any{"userMessage": "hi"}, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAskMissingCredentialStrictStillViewer(t *testing.T) {
	srv, _ := newTestServer(t, "ok", true)

	rec := doAsk(t, srv, map[string]any{"userMessage": "hi"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAskCredentialInBody(t *testing.T) {
	srv, st := newTestServer(t, tangoReply, false)

	rec := doAsk(t, srv, map[string]any{
		"userMessage": "Add the Tango.",
		"credential":  signToken(t, "admin"),
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	count, err := st.CountRows(context.Background(), "dances")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAskMissingMessage(t *testing.T) {
	srv, _ := newTestServer(t, "ok", false)

	rec := doAsk(t, srv, map[string]any{"chatHistory": []chat.Turn{}}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskInlineHistory(t *testing.T) {
	srv, _ := newTestServer(t, "ok", false)

	rec := doAsk(t, srv, map[string]any{
		"userMessage": "next",
		"chatHistory": []chat.Turn{
			{Speaker: chat.SpeakerUser, Text: "earlier"},
			{Speaker: chat.SpeakerAssistant, Text: "reply"},
		},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ChatHistory []chat.Turn `json:"chatHistory"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.ChatHistory, 4)
}

func TestResetHistory(t *testing.T) {
	srv, _ := newTestServer(t, "ok", false)

	rec := doAsk(t, srv, map[string]any{"userMessage": "hi", "sessionId": "s1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/ask/history?sessionId=s1", nil)
	del := httptest.NewRecorder()
	srv.Handler().ServeHTTP(del, req)

	require.Equal(t, http.StatusOK, del.Code)
	assert.Contains(t, del.Body.String(), chat.Greeting)

	rec = doAsk(t, srv, map[string]any{"userMessage": "again", "sessionId": "s1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ChatHistory []chat.Turn `json:"chatHistory"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.ChatHistory, 2)
}

func TestResetHistoryMissingSession(t *testing.T) {
	srv, _ := newTestServer(t, "ok", false)

	req := httptest.NewRequest(http.MethodDelete, "/api/ask/history", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	srv, _ := newTestServer(t, tangoReply, false)

	rec := doAsk(t, srv, map[string]any{"userMessage": "Add the Tango."}, signToken(t, "admin"))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	stats := httptest.NewRecorder()
	srv.Handler().ServeHTTP(stats, req)

	require.Equal(t, http.StatusOK, stats.Code)

	var snap struct {
		Statements struct {
			Executed int64 `json:"executed"`
		} `json:"statements"`
	}
	require.NoError(t, json.Unmarshal(stats.Body.Bytes(), &snap))
	assert.EqualValues(t, 3, snap.Statements.Executed)
}
