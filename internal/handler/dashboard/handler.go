package dashboard

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/psychai/companion/internal/handler/view"
	"github.com/psychai/companion/internal/service/companion"
	"github.com/psychai/companion/pkg/utils"
)

const writeWait = 5 * time.Second

// Handler exposes the clinician data as JSON and as a live websocket feed.
type Handler struct {
	companion *companion.Service
	gate      view.AccessGate
	interval  time.Duration
	upgrader  websocket.Upgrader
}

// New builds the dashboard API. interval paces the live feed.
func New(companionSvc *companion.Service, gate view.AccessGate, interval time.Duration) *Handler {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Handler{
		companion: companionSvc,
		gate:      gate,
		interval:  interval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes mounts the dashboard routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleSnapshot)
	r.Get("/dashboard/live", h.handleLive)
}

type outgoingMessage struct {
	Type      string             `json:"type"`
	Data      companion.Snapshot `json:"data"`
	Timestamp int64              `json:"timestamp"`
}

func (h *Handler) authorized(w http.ResponseWriter, r *http.Request) bool {
	if h.gate == nil || !h.gate.Permit(r.URL.Query().Get(view.KeyParam)) {
		utils.RespondError(w, http.StatusUnauthorized, "clinical access key required")
		return false
	}
	return true
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.companion.Snapshot(r.Context()))
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[dashboard] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[dashboard] live feed opened remote=%s", r.RemoteAddr)

	// Clients only listen; the read loop exists to notice the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		message := outgoingMessage{
			Type:      "snapshot",
			Data:      h.companion.Snapshot(ctx),
			Timestamp: time.Now().UnixMilli(),
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(message); err != nil {
			log.Printf("[dashboard] live feed write failed: %v", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-closed:
			log.Printf("[dashboard] live feed closed remote=%s", r.RemoteAddr)
			return
		case <-ticker.C:
		}
	}
}
