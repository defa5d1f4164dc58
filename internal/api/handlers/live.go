package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sheljulian96-lab/ManaForge/internal/deck"
	"github.com/sheljulian96-lab/ManaForge/internal/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced at the router level.
		return true
	},
}

// LiveHandler upgrades connections into voice sessions.
type LiveHandler struct {
	dial          live.Dialer
	forger        live.Forger
	defaultFormat deck.Format
	log           *zap.Logger
}

// NewLiveHandler creates a new live-session handler.
func NewLiveHandler(dial live.Dialer, forger live.Forger, defaultFormat deck.Format, log *zap.Logger) *LiveHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LiveHandler{dial: dial, forger: forger, defaultFormat: defaultFormat, log: log}
}

// Serve handles GET /live: one WebSocket connection, one voice session.
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	format := h.defaultFormat
	if raw := deck.Format(r.URL.Query().Get("format")); raw.Valid() {
		format = raw
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := live.NewSession(conn, h.dial, h.forger, format, h.log)
	session.Run(r.Context())
}
