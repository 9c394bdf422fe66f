package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/gallery/internal/auth"
	"github.com/templui/gallery/internal/service"
)

const defaultHeartbeat = 25 * time.Second

// EventsHandler streams the request's gate transitions as server-sent
// events. An open gallery page uses it to notice a sign-out made elsewhere.
// Streams end when ctx is done so server shutdown is not held up.
type EventsHandler struct {
	ctx         context.Context
	authService *service.AuthService
	heartbeat   time.Duration
}

func NewEventsHandler(ctx context.Context, authService *service.AuthService) *EventsHandler {
	return &EventsHandler{
		ctx:         ctx,
		authService: authService,
		heartbeat:   defaultHeartbeat,
	}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	gate, err := newGate(r, h.authService)
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer gate.Close()

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	send := func(state auth.State) error {
		_, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", state)
		if err != nil {
			return err
		}
		return rc.Flush()
	}

	state := gate.State()
	if send(state) != nil || state == auth.Unauthenticated {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.ctx.Done():
			return
		case state, ok := <-gate.Changes():
			if !ok {
				return
			}
			err := send(state)
			if err != nil || state == auth.Unauthenticated {
				return
			}
		case <-ticker.C:
			_, err := fmt.Fprint(w, ": heartbeat\n\n")
			if err == nil {
				err = rc.Flush()
			}
			if err != nil {
				return
			}
		}
	}
}
