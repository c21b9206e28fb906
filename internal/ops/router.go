// Package ops serves the operator HTTP endpoints.
package ops

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mindroll/internal/middleware"
	"github.com/mcoot/mindroll/internal/model"
)

// RoomLister lists live rooms
type RoomLister interface {
	ListRooms() []model.RoomSummary
}

// RouterConfig holds configuration for the ops router
type RouterConfig struct {
	Logger *slog.Logger
	Rooms  RoomLister
}

// NewRouter creates the ops router
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/rooms", roomsHandler(cfg.Rooms)).Methods(http.MethodGet)

	// subrouters report a method mismatch as 404, so known paths catch the rest
	api.HandleFunc("/health", methodNotAllowedHandler)
	api.HandleFunc("/rooms", methodNotAllowedHandler)

	return r
}

func methodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func roomsHandler(rooms RoomLister) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		summaries := rooms.ListRooms()
		if summaries == nil {
			summaries = []model.RoomSummary{}
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
