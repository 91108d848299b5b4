// Package http serves the webhook, status, admin and live-chat endpoints.
package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"corporate-agent/internal/domain"
)

const (
	defaultBanner         = "Corporate AI Agent - Kimi K2.5"
	defaultAgentName      = "Corporate AI - Genii"
	defaultMaxMessageSize = 64 * 1024
)

// Replier produces a reply for one inbound text.
type Replier interface {
	Reply(ctx context.Context, text, senderName string) string
}

// Relay processes one webhook message end to end.
type Relay interface {
	Handle(ctx context.Context, msg domain.IncomingMessage) error
}

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	AgentName        string
	Banner           string
	WSMaxMessageSize int64
}

// Server routes requests by exact path.
type Server struct {
	replies        Replier
	relay          Relay
	agentName      string
	banner         string
	maxMessageSize int64
	upgrader       websocket.Upgrader
	now            func() time.Time
}

// NewServer creates a Server.
func NewServer(replies Replier, relay Relay, opts Options) (*Server, error) {
	if replies == nil {
		return nil, errors.New("http: replier must not be nil")
	}
	if relay == nil {
		return nil, errors.New("http: relay must not be nil")
	}
	s := &Server{
		replies:        replies,
		relay:          relay,
		agentName:      strings.TrimSpace(opts.AgentName),
		banner:         strings.TrimSpace(opts.Banner),
		maxMessageSize: opts.WSMaxMessageSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		now: time.Now,
	}
	if s.agentName == "" {
		s.agentName = defaultAgentName
	}
	if s.banner == "" {
		s.banner = defaultBanner
	}
	if s.maxMessageSize <= 0 {
		s.maxMessageSize = defaultMaxMessageSize
	}
	return s, nil
}

// Routes returns the request router. Routes accept every method; anything
// that is not an exact route match gets the identification banner.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(instrument)
	r.Use(chimw.Recoverer)

	r.HandleFunc("/telegram", s.handleWebhook)
	r.HandleFunc("/admin", s.handleAdmin)
	r.HandleFunc("/status", s.handleStatus)
	r.HandleFunc("/ws", s.handleLiveChat)

	r.NotFound(s.handleDefault)
	r.MethodNotAllowed(s.handleDefault)
	return r
}

func (s *Server) handleDefault(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, s.banner)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
