// Package handler exposes the hub and the storage collaborators over HTTP:
// the /ws upgrade plus a few REST endpoints clients use to catch up.
package handler

import (
	"net/http"
	"strings"

	"heartline/backend/internal/auth"
	"heartline/backend/internal/chathub"
	"heartline/backend/internal/storage"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Handler holds the hub and everything an HTTP request needs to reach it.
type Handler struct {
	Hub      *chathub.Hub
	Storage  storage.Storage
	Verifier auth.Verifier
	Upgrader websocket.Upgrader

	// Per-connection inbound event budget.
	EventRate  rate.Limit
	EventBurst int
}

func NewHandler(hub *chathub.Hub, s storage.Storage, v auth.Verifier, origins []string, eventRate float64, eventBurst int) *Handler {
	return &Handler{
		Hub:      hub,
		Storage:  s,
		Verifier: v,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		EventRate:  rate.Limit(eventRate),
		EventBurst: eventBurst,
	}
}

// originChecker allows requests without an Origin header (native clients)
// and browser requests from the listed origins. "*" allows everything.
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[strings.TrimRight(origin, "/")]
		return ok
	}
}
