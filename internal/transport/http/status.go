package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// isoMillis matches JavaScript's Date.toISOString output.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type statusResponse struct {
	Agent     string `json:"agent"`
	AIEngine  string `json:"ai_engine"`
	Status    string `json:"status"`
	Telegram  string `json:"telegram"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// handleStatus reports static labels; none of them is a live health check.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	body, err := json.MarshalIndent(statusResponse{
		Agent:     s.agentName,
		AIEngine:  "Kimi K2.5",
		Status:    "active",
		Telegram:  "connected",
		Database:  "connected",
		Timestamp: s.now().UTC().Format(isoMillis),
	}, "", "  ")
	if err != nil {
		slog.Error("status: marshal", "err", err)
		writeText(w, http.StatusInternalServerError, "Error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
