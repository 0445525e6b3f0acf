package ws

import (
	"context"
	"log/slog"
	"net/http"

	"game-relay/contract"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var validate = validator.New()

// createRoomRequest is the only inbound payload with a fixed shape. The
// request envelope is validated; the name itself still goes through the
// domain's reserved-name check downstream.
type createRoomRequest struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"type"`
}

// Handler upgrades HTTP requests and runs one Client per connection.
type Handler struct {
	log        *slog.Logger
	controller contract.IController
	upgrader   websocket.Upgrader
	bufferSize int
	limits     Limits
}

func NewHandler(log *slog.Logger, controller contract.IController, bufferSize int, limits Limits) *Handler {
	return &Handler{
		log:        log,
		controller: controller,
		limits:     limits.withDefaults(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is the deployment's concern, not the relay's.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bufferSize: bufferSize,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := newClient(uuid.NewString(), conn, h.bufferSize, h.limits, h.log)

	// Registers the session and sends the current room table to the
	// newcomer before any other traffic.
	h.controller.Connect(ctx, client.id, client)

	go client.writePump(ctx)
	client.readPump(ctx, h.controller)
}
