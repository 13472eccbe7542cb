package gateway

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// StatusResponse is the JSON body returned by GET /api/v1/status.
type StatusResponse struct {
	Service  string         `json:"service"`
	Uptime   int64          `json:"uptime_seconds"`
	Sessions SessionStatus  `json:"sessions"`
	Provider ProviderStatus `json:"provider"`
	Agents   AgentsStatus   `json:"agents"`
}

// SessionStatus holds connection counts.
type SessionStatus struct {
	Active int64 `json:"active"`
	Total  int64 `json:"total"`
}

// ProviderStatus identifies the active LLM selection.
type ProviderStatus struct {
	Name  string `json:"name"`
	Model string `json:"model"`
}

// AgentsStatus holds roster sizes.
type AgentsStatus struct {
	Builtin int `json:"builtin"`
	Custom  int `json:"custom"`
}

// Metrics tracks gateway counters for the status and metrics endpoints.
type Metrics struct {
	SessionsActive  atomic.Int64
	SessionsTotal   atomic.Int64
	AudioChunks     atomic.Int64
	ControlRequests atomic.Int64
	InsightsTotal   atomic.Int64
	MessagesSent    atomic.Int64
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	provider, model := s.control.models.ActiveProvider()
	resp := StatusResponse{
		Service: "meetingmind",
		Uptime:  int64(time.Since(s.startTime).Seconds()),
		Sessions: SessionStatus{
			Active: s.metrics.SessionsActive.Load(),
			Total:  s.metrics.SessionsTotal.Load(),
		},
		Provider: ProviderStatus{Name: provider, Model: model},
		Agents: AgentsStatus{
			Builtin: len(s.control.agents.Builtins()),
			Custom:  len(s.control.agents.Customs()),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
