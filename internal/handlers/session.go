package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/session"
)

// sessionKeepAlive is how often an idle event stream sends a comment line.
const sessionKeepAlive = 25 * time.Second

// SessionView is the JSON shape of the current session.
type SessionView struct {
	Authenticated bool             `json:"authenticated"`
	User          *session.Session `json:"user"`
}

func viewOf(s *session.Session) SessionView {
	return SessionView{Authenticated: s != nil, User: s}
}

// SessionHandler exposes the session state as JSON and as an event stream.
type SessionHandler struct {
	logger   *common.Logger
	sessions *session.Manager
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(logger *common.Logger, sessions *session.Manager) *SessionHandler {
	return &SessionHandler{logger: logger, sessions: sessions}
}

// HandleSession serves GET /api/session.
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if !h.sessions.IsAuthenticated(r.Context()) {
		WriteJSON(w, http.StatusOK, viewOf(nil))
		return
	}
	WriteJSON(w, http.StatusOK, viewOf(h.sessions.Current()))
}

// HandleEvents serves GET /api/session/events as Server-Sent Events. The
// current session is sent first, then every change. A slow client only
// receives the latest state.
func (h *SessionHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// The stream outlives the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	updates := make(chan *session.Session, 1)
	unsubscribe := h.sessions.Subscribe(func(s *session.Session) {
		// Keep only the newest value so the publisher never blocks.
		select {
		case <-updates:
		default:
		}
		updates <- s
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(sessionKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case s := <-updates:
			payload, err := json.Marshal(viewOf(s))
			if err != nil {
				h.logger.Error().Str("error", err.Error()).Msg("failed to encode session event")
				return
			}
			if _, err := fmt.Fprintf(w, "event: session\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
