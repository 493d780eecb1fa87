// Package fleet exposes the HTTP surface of the dispatch engine: task
// intake, fleet and robot state reads, notification management, and the
// live websocket stream consumed by the dashboard.
package fleet

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	corefleet "github.com/hospigo/fleetd/core/fleet"
	"github.com/hospigo/fleetd/core/model"
	"github.com/hospigo/fleetd/core/notify"
	"github.com/hospigo/fleetd/core/sim"
	"github.com/hospigo/fleetd/infra/logger"
)

// Server routes dashboard requests to the engine and the registry.
type Server struct {
	router *chi.Mux
	engine *sim.Engine
	reg    *corefleet.Registry
	notes  *notify.Log
	hub    *Hub
	log    logger.Logger
}

// NewServer builds the router around the given engine, registry and
// notification log. The hub may be nil when the websocket stream is not
// needed, as in tests.
func NewServer(engine *sim.Engine, reg *corefleet.Registry, notes *notify.Log, hub *Hub, log logger.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		engine: engine,
		reg:    reg,
		notes:  notes,
		hub:    hub,
		log:    log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/tasks", s.handleCreateTask)
		r.Get("/tasks", s.handleListRobots)
		r.Get("/robots/{id}", s.handleGetRobot)
		r.Get("/fleet/stats", s.handleFleetStats)

		r.Get("/notifications", s.handleListNotifications)
		r.Post("/notifications/{id}/read", s.handleMarkNotificationRead)
		r.Delete("/notifications", s.handleClearNotifications)

		r.Get("/ws", s.handleWS)
	})
}

// Handler returns the underlying router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req model.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	task, robot, err := s.engine.Assign(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"task":  task,
		"robot": robot,
	})
}

func (s *Server) handleListRobots(w http.ResponseWriter, r *http.Request) {
	// The dashboard polls GET /api/tasks?all_robots=true for the fleet view.
	if r.URL.Query().Get("all_robots") != "true" {
		s.writeError(w, http.StatusBadRequest, "all_robots=true is required")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"robots": s.reg.Snapshot(),
	})
}

func (s *Server) handleGetRobot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	robot, err := s.reg.Get(id)
	if err != nil {
		if errors.Is(err, corefleet.ErrRobotNotFound) {
			s.writeError(w, http.StatusNotFound, "robot not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, robot)
}

func (s *Server) handleFleetStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, corefleet.ComputeStats(s.reg.Snapshot()))
}

func (s *Server) handleListNotifications(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": s.notes.List(),
	})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.notes.MarkRead(id) {
		s.writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, _ *http.Request) {
	s.notes.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		s.writeError(w, http.StatusServiceUnavailable, "stream unavailable")
		return
	}
	serveWS(s.hub, w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
