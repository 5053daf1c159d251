package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/agents/assistant"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/facade/sandbox"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/tool"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	sb, err := sandbox.New(sandbox.WithClock(clock), sandbox.WithLocation(time.UTC))
	require.NoError(t, err)
	reg, err := tool.NewCatalog(sb.Facades())
	require.NoError(t, err)
	d := tool.NewDispatcher(reg, tool.WithClock(clock), tool.WithLocation(time.UTC))

	svc, err := assistant.New(statex.NewMemoryStore(), d, nil, assistant.Config{DispatchTimeout: time.Second}, assistant.WithClock(clock))
	require.NoError(t, err)
	return NewRouter(svc, "airline-assistant-test")
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndTools(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	w = do(t, r, http.MethodGet, "/v1/tools", "")
	require.Equal(t, http.StatusOK, w.Code)
	tools := decode(t, w)["tools"].([]any)
	assert.Len(t, tools, len(tool.AllNames))
	first := tools[0].(map[string]any)
	assert.Equal(t, string(tool.AllNames[0]), first["name"])
	assert.NotEmpty(t, first["uiHint"])

	w = do(t, r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestToolCallFlow(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	w := do(t, r, http.MethodPut, "/v1/sessions/web-1/context", `{"userId":"user-1001","userOriginAirport":"RUH"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "RUH", decode(t, w)["context"].(map[string]any)["userOriginAirport"])

	w = do(t, r, http.MethodPost, "/v1/sessions/web-1/tools/search_flights", `{"destination":"JED","date":"2025-06-12"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	env := body["envelopes"].([]any)[0].(map[string]any)
	assert.Equal(t, "flight_list", env["uiType"])
	assert.Equal(t, "en", env["detectedLanguage"])
	assert.NotEmpty(t, body["context"].(map[string]any)["lastSearchId"])

	w = do(t, r, http.MethodPost, "/v1/sessions/web-1/tools/unknown_tool_xyz", "")
	require.Equal(t, http.StatusOK, w.Code)
	env = decode(t, w)["envelopes"].([]any)[0].(map[string]any)
	assert.Equal(t, true, env["isError"])
	assert.Equal(t, "Unknown tool: unknown_tool_xyz", env["text"])
	assert.Nil(t, env["uiType"])

	w = do(t, r, http.MethodGet, "/v1/sessions/web-1/context", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["context"].(map[string]any)["lastSearchId"])

	w = do(t, r, http.MethodDelete, "/v1/sessions/web-1/context", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/v1/sessions/web-1/context", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["context"].(map[string]any)["lastSearchId"])
}

func TestMessageWithoutPlanner(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/v1/sessions/web-2/messages", `{"text":"hello"}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "planner_unavailable", decode(t, w)["error"])

	w = do(t, r, http.MethodPost, "/v1/sessions/web-2/messages", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}
