package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rickchristie/chefbot/agents/ask"
	"github.com/rickchristie/chefbot/agents/manual"
	"github.com/rickchristie/chefbot/agents/staged"
	"github.com/rickchristie/chefbot/internal/tt"
	"github.com/rickchristie/chefbot/telemetry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	h := NewRouter(Services{}, zerolog.Nop())

	rec, body := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestListTools(t *testing.T) {
	h := NewRouter(Services{}, zerolog.Nop())

	rec, body := do(t, h, http.MethodGet, "/api/v1/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"check_fridge", "get_recipe", "check_dietary_info", "menu_db", "calculate"}, names)
}

func TestAsk(t *testing.T) {
	model := tt.NewMockModel().AddResponse("Une soupe de potimarron.")
	h := NewRouter(Services{Ask: ask.NewAgent(model)}, zerolog.Nop())

	rec, body := do(t, h, http.MethodPost, "/api/v1/ask", `{"question": "Que cuisiner ?", "season": "automne", "temperature": 0.2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Une soupe de potimarron.", body["answer"])
	assert.InDelta(t, 0.2, model.CapturedOptions[0].Temperature, 1e-9)
	assert.Contains(t, tt.MessageText(model.CapturedMessages[0][0]), "automne")
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name     string
		svc      func() Services
		body     string
		wantCode int
	}{
		{
			name:     "not configured",
			svc:      func() Services { return Services{} },
			body:     `{"question": "q"}`,
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "invalid json",
			svc:      func() Services { return Services{Ask: ask.NewAgent(tt.NewMockModel())} },
			body:     `{"question":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "empty question",
			svc:      func() Services { return Services{Ask: ask.NewAgent(tt.NewMockModel())} },
			body:     `{"question": "  "}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "model failure",
			svc: func() Services {
				return Services{Ask: ask.NewAgent(tt.NewMockModel().AddError(errors.New("rate limited")))}
			},
			body:     `{"question": "q"}`,
			wantCode: http.StatusBadGateway,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRouter(tc.svc(), zerolog.Nop())
			rec, body := do(t, h, http.MethodPost, "/api/v1/ask", tc.body)
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestManual(t *testing.T) {
	model := tt.NewMockModel().
		AddToolCalls("", tt.ToolCall("c1", "check_fridge", `{}`)).
		AddResponse("Une omelette.")
	h := NewRouter(Services{Manual: manual.NewAgent(model, nil)}, zerolog.Nop())

	rec, body := do(t, h, http.MethodPost, "/api/v1/manual", `{"question": "Que faire avec mon frigo ?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Une omelette.", body["answer"])
	assert.Equal(t, string(manual.StateDone), body["state"])
	assert.EqualValues(t, 2, body["iterations"])
	calls, ok := body["tool_calls"].([]any)
	require.True(t, ok)
	require.Len(t, calls, 1)
	call := calls[0].(map[string]any)
	assert.Equal(t, "check_fridge", call["name"])
	assert.Contains(t, call["content"], "tomates")
	assert.NotContains(t, call, "error")
}

func TestManual_Exhausted(t *testing.T) {
	model := tt.NewMockModel().
		AddToolCalls("", tt.ToolCall("c1", "check_fridge", `{}`))
	h := NewRouter(Services{Manual: manual.NewAgent(model, nil)}, zerolog.Nop())

	rec, body := do(t, h, http.MethodPost, "/api/v1/manual", `{"question": "q", "max_iterations": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(manual.StateExhausted), body["state"])
	assert.Equal(t, manual.FallbackAnswer, body["answer"])
}

func TestMenu(t *testing.T) {
	model := tt.NewMockModel().
		AddResponse(`[{"step":1,"title":"Choisir","instruction":"Choisis les plats"}]`).
		AddResponse("Lentilles et soupe.").
		AddResponse("```json\n" + `{"week_menu": {"lundi": {"dejeuner": "lentilles"}}}` + "\n```")
	h := NewRouter(Services{Pipelines: map[string]*staged.Pipeline{
		staged.WeeklyMenu.Name: staged.NewPipeline(model),
	}}, zerolog.Nop())

	rec, body := do(t, h, http.MethodPost, "/api/v1/menu", `{"constraints": "végétarien"}`)
	require.Equal(t, http.StatusOK, rec.Code, body)

	assert.Equal(t, staged.WeeklyMenu.Name, body["format"])
	menu, ok := body["menu"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, menu, "week_menu")
	assert.Len(t, body["plan"], 1)
	assert.Len(t, body["results"], 1)
}

func TestMenu_SynthesisFailureReturnsFallback(t *testing.T) {
	model := tt.NewMockModel().
		AddResponse(`[{"step":1,"title":"A","instruction":"B"}]`).
		AddResponse("ok").
		AddResponse("Lundi: soupe").
		AddResponse("Mardi: salade")
	h := NewRouter(Services{Pipelines: map[string]*staged.Pipeline{
		staged.WeeklyMenu.Name: staged.NewPipeline(model),
	}}, zerolog.Nop())

	rec, body := do(t, h, http.MethodPost, "/api/v1/menu", `{"constraints": "c"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	assert.Contains(t, body["error"], "synthese")
	fallback, ok := body["fallback"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Mardi: salade", fallback["menu_text"])
}

func TestMenu_Errors(t *testing.T) {
	h := NewRouter(Services{Pipelines: map[string]*staged.Pipeline{
		staged.WeeklyMenu.Name: staged.NewPipeline(tt.NewMockModel()),
	}}, zerolog.Nop())

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "empty constraints", body: `{"constraints": ""}`, wantCode: http.StatusBadRequest},
		{name: "unknown format", body: `{"constraints": "c", "format": "brunch"}`, wantCode: http.StatusBadRequest},
		{name: "format not configured", body: `{"constraints": "c", "format": "event"}`, wantCode: http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(t, h, http.MethodPost, "/api/v1/menu", tc.body)
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestCrew_NotConfigured(t *testing.T) {
	h := NewRouter(Services{}, zerolog.Nop())

	rec, _ := do(t, h, http.MethodPost, "/api/v1/crew", `{"query": "q"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewRouter(Services{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStats(t *testing.T) {
	stats := telemetry.NewStats()
	model := tt.NewMockModel().
		AddToolCalls("", tt.ToolCall("c1", "check_fridge", `{}`)).
		AddResponse("Une omelette.")
	agent := manual.NewAgent(model, nil).WithSink(stats)
	h := NewRouter(Services{Manual: agent, Stats: stats}, zerolog.Nop())

	rec, _ := do(t, h, http.MethodPost, "/api/v1/manual", `{"question": "q"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, h, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	counters, ok := body["counters"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, counters[telemetry.KeyToolCallsFor+"check_fridge"])
	assert.EqualValues(t, 1, counters[telemetry.KeyTraces])
}

func TestStats_NotCollected(t *testing.T) {
	h := NewRouter(Services{}, zerolog.Nop())

	rec, _ := do(t, h, http.MethodGet, "/api/v1/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
