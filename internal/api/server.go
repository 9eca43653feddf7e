package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
)

// Server provides the read-only HTTP API over the trip state, plus metrics
// and health endpoints. All mutation happens through the bot commands.
type Server struct {
	store  *store.Store
	logger *logrus.Logger
	mux    *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(st *store.Store, logger *logrus.Logger) *Server {
	s := &Server{store: st, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/trip", s.handleGetTrip)
	s.mux.HandleFunc("GET /api/items", s.handleGetItems)
	s.mux.HandleFunc("GET /api/items/{id}", s.handleGetItem)
	s.mux.HandleFunc("GET /api/members", s.handleGetMembers)
	s.mux.HandleFunc("GET /api/budget", s.handleGetBudget)
	s.mux.HandleFunc("GET /api/snapshot", s.handleGetSnapshot)
	s.mux.HandleFunc("GET /api/sync", s.handleGetSync)

	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// pathID extracts the {id} path value and converts it to int.
func pathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, fmt.Errorf("missing id in path")
	}
	return strconv.Atoi(raw)
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, ok := s.store.Trip()
	if !ok {
		s.respondError(w, http.StatusNotFound, "no trip created yet")
		return
	}
	s.respondJSON(w, http.StatusOK, trip)
}

// handleGetItems lists items, optionally filtered with ?type=venue|document|flight
func (s *Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	var items []models.Item
	switch models.ItemType(r.URL.Query().Get("type")) {
	case models.ItemTypeVenue:
		for _, v := range s.store.Venues() {
			items = append(items, v)
		}
	case models.ItemTypeDocument:
		for _, d := range s.store.Documents() {
			items = append(items, d)
		}
	case models.ItemTypeFlight:
		for _, f := range s.store.Flights() {
			items = append(items, f)
		}
	case "":
		items = s.store.Items()
	default:
		s.respondError(w, http.StatusBadRequest, "type must be one of venue, document, flight")
		return
	}

	raws, err := models.EncodeItems(items)
	if err != nil {
		s.logger.WithError(err).Error("failed to encode items")
		s.respondError(w, http.StatusInternalServerError, "failed to encode items")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"items": raws,
		"count": len(raws),
	})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	it := s.store.ItemByID(id)
	if it == nil {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("item %d not found", id))
		return
	}

	raw, err := models.EncodeItem(it)
	if err != nil {
		s.logger.WithError(err).Error("failed to encode item")
		s.respondError(w, http.StatusInternalServerError, "failed to encode item")
		return
	}
	s.respondJSON(w, http.StatusOK, raw)
}

func (s *Server) handleGetMembers(w http.ResponseWriter, r *http.Request) {
	members := s.store.Members()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"members": members,
		"count":   len(members),
	})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	trip, _ := s.store.Trip()
	s.respondJSON(w, http.StatusOK, models.BudgetSummary{
		TotalBudget: trip.TotalBudget,
		TotalSpent:  s.store.TotalSpent(),
		Entries:     s.store.Ledger(),
	})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleGetSync(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.SyncConfig())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
