// Package realtime exposes the notification hub over websocket, server-sent
// events and a REST broadcast endpoint.
package realtime

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	modelauth "github.com/symptomsync/healthai/backend/internal/model/auth"
	"github.com/symptomsync/healthai/backend/internal/service/realtime"
	"github.com/symptomsync/healthai/backend/pkg/utils"
)

const (
	defaultPingInterval = 54 * time.Second
	defaultReadTimeout  = 60 * time.Second
	defaultHeartbeat    = 25 * time.Second
)

// Handler serves the realtime routes of the signed-in user.
type Handler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader

	pingInterval time.Duration
	readTimeout  time.Duration
	heartbeat    time.Duration
}

// New creates a realtime handler on hub.
func New(hub *realtime.Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pingInterval: defaultPingInterval,
		readTimeout:  defaultReadTimeout,
		heartbeat:    defaultHeartbeat,
	}
}

// RegisterRoutes mounts the realtime routes. They expect a session principal
// in the request context.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
	r.Get("/stream", h.handleStream)
	r.Post("/broadcast", h.handleBroadcast)
}

func (h *Handler) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	principal, ok := modelauth.PrincipalFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var payload struct {
		Event    string `json:"event"`
		Message  string `json:"message"`
		SenderID string `json:"senderId"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	delivered, err := h.hub.Broadcast(principal.User.ID, payload.SenderID, payload.Event, payload.Message)
	if err != nil {
		if errors.Is(err, realtime.ErrMessageRequired) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, map[string]any{
		"channel":   realtime.ChannelName(principal.User.ID),
		"delivered": delivered,
	})
}

// handleStream is the server-sent events transport for clients that cannot
// hold a websocket.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	principal, ok := modelauth.PrincipalFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub, err := h.hub.Subscribe(principal.User.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer sub.Close()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	utils.SendSSEEvent(w, flusher, "connected", map[string]string{
		"channel":        realtime.ChannelName(principal.User.ID),
		"subscriptionId": sub.ID,
	})

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-sub.C():
			if !ok {
				return
			}
			utils.SendSSEEvent(w, flusher, n.Event, n)
		case <-ticker.C:
			utils.SendSSEComment(w, flusher, "heartbeat")
		}
	}
}
