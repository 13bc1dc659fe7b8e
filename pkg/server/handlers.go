package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zen-systems/helmsman/pkg/adapter"
	"github.com/zen-systems/helmsman/pkg/config"
)

type routeRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

type chatMessage struct {
	Content  string         `json:"content"`
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	Usage    *adapter.Usage `json:"usage,omitempty"`
	Cost     *config.Cost   `json:"cost,omitempty"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRouteRequest(w, r)
	if !ok {
		return
	}

	decision, err := s.router.Route(req.Prompt, req.Model)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.record(r.Context(), req.Prompt, decision)

	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRouteRequest(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, s.router.Classify(req.Prompt))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRouteRequest(w, r)
	if !ok {
		return
	}
	if s.registry == nil {
		writeError(w, http.StatusServiceUnavailable, "no providers configured")
		return
	}

	decision, err := s.router.Route(req.Prompt, req.Model)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.record(r.Context(), req.Prompt, decision)

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, flusher, "decision", decision)

	ad, err := s.registry.ForModel(decision.Model)
	if err != nil {
		writeEvent(w, flusher, "error", map[string]string{"error": err.Error()})
		writeEvent(w, flusher, "done", struct{}{})
		return
	}

	resp, err := ad.Generate(r.Context(), decision.Model, req.Prompt)
	if err != nil {
		writeEvent(w, flusher, "error", map[string]string{"error": err.Error()})
		writeEvent(w, flusher, "done", struct{}{})
		return
	}

	msg := chatMessage{
		Content:  resp.Content,
		Provider: resp.Provider,
		Model:    resp.Model,
		Usage:    resp.Usage,
	}
	if resp.Usage != nil && s.pricing != nil {
		if cost, ok := s.pricing.Estimate(resp.Provider, resp.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens); ok {
			msg.Cost = &cost
		}
	}
	writeEvent(w, flusher, "message", msg)
	writeEvent(w, flusher, "done", struct{}{})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeRouteRequest parses the shared {prompt, model?} body. It writes the
// error response itself and reports success via the second return.
func decodeRouteRequest(w http.ResponseWriter, r *http.Request) (routeRequest, bool) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
