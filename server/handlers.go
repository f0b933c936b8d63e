package server

import (
	"net/http"
	"strings"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/agents/manual"
	"github.com/rickchristie/chefbot/agents/staged"
)

// -----------------------------------------------------------------------------
// Tools
// -----------------------------------------------------------------------------

type toolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func (h *handler) listTools(w http.ResponseWriter, r *http.Request) {
	tools := h.svc.Tools.Tools()
	out := make([]toolInfo, len(tools))
	for i, t := range tools {
		out[i] = toolInfo{Name: t.Name(), Description: t.Description(), Parameters: t.ParameterSchema()}
	}
	respondJSON(w, http.StatusOK, map[string]any{"tools": out})
}

// -----------------------------------------------------------------------------
// Ask
// -----------------------------------------------------------------------------

type askRequest struct {
	Question    string   `json:"question"`
	Season      string   `json:"season"`
	Temperature *float64 `json:"temperature"`
}

func (h *handler) ask(w http.ResponseWriter, r *http.Request) {
	if h.svc.Ask == nil {
		respondError(w, http.StatusServiceUnavailable, "ask agent is not configured")
		return
	}
	var req askRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(w, http.StatusBadRequest, "Request must include a non-empty 'question' field")
		return
	}
	temperature := -1.0
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	answer, err := h.svc.Ask.Ask(r.Context(), req.Question, chefbot.Season(req.Season), temperature)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// -----------------------------------------------------------------------------
// Manual tool loop
// -----------------------------------------------------------------------------

type manualRequest struct {
	Question      string `json:"question"`
	MaxIterations int    `json:"max_iterations"`
}

type toolCallInfo struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Content   string         `json:"content"`
	Error     string         `json:"error,omitempty"`
}

type loopResponse struct {
	Answer     string         `json:"answer"`
	State      manual.State   `json:"state"`
	Iterations int            `json:"iterations"`
	ToolCalls  []toolCallInfo `json:"tool_calls"`
}

func newLoopResponse(res *manual.Result) loopResponse {
	out := loopResponse{
		Answer:     res.Answer,
		State:      res.State,
		Iterations: res.Iterations,
		ToolCalls:  make([]toolCallInfo, len(res.ToolCalls)),
	}
	for i, tc := range res.ToolCalls {
		info := toolCallInfo{Name: tc.Name, Arguments: tc.Arguments, Content: tc.Content}
		if tc.Err != nil {
			info.Error = tc.Err.Error()
		}
		out.ToolCalls[i] = info
	}
	return out
}

func (h *handler) manual(w http.ResponseWriter, r *http.Request) {
	if h.svc.Manual == nil {
		respondError(w, http.StatusServiceUnavailable, "tool agent is not configured")
		return
	}
	var req manualRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(w, http.StatusBadRequest, "Request must include a non-empty 'question' field")
		return
	}

	res, err := h.svc.Manual.RunDetailed(r.Context(), req.Question, manual.MaxIterations(req.MaxIterations))
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, newLoopResponse(res))
}

// -----------------------------------------------------------------------------
// Menu pipeline
// -----------------------------------------------------------------------------

type menuRequest struct {
	Constraints string `json:"constraints"`
	Format      string `json:"format"`
}

type menuResponse struct {
	Format  string                   `json:"format"`
	Menu    staged.Menu              `json:"menu"`
	Plan    []staged.PlanStep        `json:"plan,omitempty"`
	Results []staged.ExecutionResult `json:"results,omitempty"`
}

func (h *handler) menu(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Constraints) == "" {
		respondError(w, http.StatusBadRequest, "Request must include a non-empty 'constraints' field")
		return
	}

	format := staged.WeeklyMenu
	if req.Format != "" {
		f, ok := staged.FormatByName(req.Format)
		if !ok {
			respondError(w, http.StatusBadRequest, "Unknown menu format: "+req.Format)
			return
		}
		format = f
	}
	pipeline, ok := h.svc.Pipelines[format.Name]
	if !ok || pipeline == nil {
		respondError(w, http.StatusServiceUnavailable, "menu format is not configured: "+format.Name)
		return
	}

	run, err := pipeline.GenerateDetailed(r.Context(), req.Constraints)
	if err != nil {
		body := map[string]any{"error": err.Error(), "format": format.Name}
		if fallback, ok := staged.FallbackMenu(err); ok {
			body["fallback"] = fallback
		}
		respondJSON(w, http.StatusBadGateway, body)
		return
	}
	respondJSON(w, http.StatusOK, menuResponse{
		Format:  format.Name,
		Menu:    run.Menu,
		Plan:    run.Plan,
		Results: run.Results,
	})
}

// -----------------------------------------------------------------------------
// Crew
// -----------------------------------------------------------------------------

type crewRequest struct {
	Query string `json:"query"`
}

func (h *handler) crew(w http.ResponseWriter, r *http.Request) {
	if h.svc.Crew == nil {
		respondError(w, http.StatusServiceUnavailable, "crew is not configured")
		return
	}
	var req crewRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "Request must include a non-empty 'query' field")
		return
	}

	res, err := h.svc.Crew.RunDetailed(r.Context(), req.Query)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, newLoopResponse(res))
}

// -----------------------------------------------------------------------------
// Stats
// -----------------------------------------------------------------------------

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	if h.svc.Stats == nil {
		respondError(w, http.StatusServiceUnavailable, "stats are not collected")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"counters":     h.svc.Stats.Counters(),
		"total_tokens": h.svc.Stats.TotalTokens(),
	})
}
