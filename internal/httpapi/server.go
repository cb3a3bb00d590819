package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/kamuma03/Intel-agent/internal/config"
	"github.com/kamuma03/Intel-agent/internal/observability"
)

// Orchestrator is the surface the transport needs from the agent core.
type Orchestrator interface {
	Respond(ctx context.Context, userID, message string) (string, error)
	SaveMemory(ctx context.Context, userID, key, value string) error
	Memories(ctx context.Context, userID string) (map[string]string, error)
}

type Server struct {
	cfg          config.Config
	orchestrator Orchestrator
	metrics      *observability.Metrics
	upgrader     websocket.Upgrader
}

func New(cfg config.Config, orchestrator Orchestrator, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		metrics:      metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same origin
				// unless explicitly opened up. Non-browser clients omit Origin
				// and are allowed.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/respond", s.handleRespond)
	r.Post("/v1/memories", s.handleSaveMemory)
	r.Get("/v1/memories/{userID}", s.handleListMemories)
	r.Get("/v1/chat/ws", s.handleChatWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type respondRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type respondResponse struct {
	UserID string `json:"user_id"`
	Reply  string `json:"reply"`
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}
	if len(req.Message) > s.cfg.MaxInputChars {
		respondError(w, http.StatusRequestEntityTooLarge, "message_too_long", "message exceeds configured limit")
		return
	}

	reply, err := s.orchestrator.Respond(r.Context(), req.UserID, req.Message)
	if err != nil {
		respondError(w, http.StatusBadGateway, "generation_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, respondResponse{UserID: req.UserID, Reply: reply})
}

type saveMemoryRequest struct {
	UserID string `json:"user_id"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func (s *Server) handleSaveMemory(w http.ResponseWriter, r *http.Request) {
	var req saveMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Key = strings.TrimSpace(req.Key)
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return
	}
	if req.Key == "" {
		respondError(w, http.StatusBadRequest, "missing_key", "key is required")
		return
	}

	if err := s.orchestrator.SaveMemory(r.Context(), req.UserID, req.Key, req.Value); err != nil {
		respondError(w, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id": req.UserID,
		"key":     req.Key,
		"saved":   true,
	})
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "user id path segment is required")
		return
	}

	facts, err := s.orchestrator.Memories(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if facts == nil {
		facts = map[string]string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":  userID,
		"memories": facts,
	})
}

type wsClientMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Key     string `json:"key,omitempty"`
	Value   string `json:"value,omitempty"`
}

type wsServerMessage struct {
	Type   string `json:"type"`
	Reply  string `json:"reply,omitempty"`
	Key    string `json:"key,omitempty"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// handleChatWS runs a line-oriented chat session over a websocket. Each
// inbound message is handled to completion before the next is read, so a
// single connection never interleaves its own turns.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "query parameter user_id is required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		if msgType != websocket.TextMessage {
			continue
		}

		var msg wsClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.writeWS(conn, wsServerMessage{Type: "error", Code: "invalid_client_message", Detail: err.Error()})
			continue
		}

		switch msg.Type {
		case "message":
			if strings.TrimSpace(msg.Message) == "" {
				s.writeWS(conn, wsServerMessage{Type: "error", Code: "missing_message", Detail: "message is required"})
				continue
			}
			if len(msg.Message) > s.cfg.MaxInputChars {
				s.writeWS(conn, wsServerMessage{Type: "error", Code: "message_too_long", Detail: "message exceeds configured limit"})
				continue
			}
			reply, err := s.orchestrator.Respond(r.Context(), userID, msg.Message)
			if err != nil {
				s.writeWS(conn, wsServerMessage{Type: "error", Code: "generation_failed", Detail: err.Error()})
				continue
			}
			s.writeWS(conn, wsServerMessage{Type: "reply", Reply: reply})
		case "save":
			key := strings.TrimSpace(msg.Key)
			if key == "" {
				s.writeWS(conn, wsServerMessage{Type: "error", Code: "missing_key", Detail: "key is required"})
				continue
			}
			if err := s.orchestrator.SaveMemory(r.Context(), userID, key, msg.Value); err != nil {
				s.writeWS(conn, wsServerMessage{Type: "error", Code: "save_failed", Detail: err.Error()})
				continue
			}
			s.writeWS(conn, wsServerMessage{Type: "saved", Key: key})
		default:
			s.writeWS(conn, wsServerMessage{Type: "error", Code: "unknown_type", Detail: "expected type message or save"})
		}
	}
}

func (s *Server) writeWS(conn *websocket.Conn, msg wsServerMessage) {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_ = conn.WriteJSON(msg)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
