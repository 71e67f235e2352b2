// Package api exposes the classification and spatial analysis operations
// over HTTP for map frontends.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/chiri-lab/atlas-cli/internal/model"
	"github.com/chiri-lab/atlas-cli/internal/spatial"
	"github.com/chiri-lab/atlas-cli/internal/store"
)

// Classifier produces a colored feature set for one period and indicator.
// The serve command plugs the CLI classification pipeline in here.
type Classifier func(year, month, field string) (any, error)

// Server holds the request handlers and their dependencies.
type Server struct {
	store    store.Store
	points   []model.ProjectPoint
	rules    []spatial.UsageRule
	classify Classifier
}

// NewServer builds a Server over a store, the loaded project points, the
// usage taxonomy, and a classifier.
func NewServer(s store.Store, points []model.ProjectPoint, rules []spatial.UsageRule, classify Classifier) *Server {
	return &Server{store: s, points: points, rules: rules, classify: classify}
}

// Router assembles the chi route tree.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/classify", s.handleClassify)
	r.Post("/analyze", s.handleAnalyze)

	r.Route("/areas", func(r chi.Router) {
		r.Get("/", s.handleListAreas)
		r.Post("/", s.handleSaveArea)
		r.Get("/{id}", s.handleGetArea)
		r.Delete("/{id}", s.handleDeleteArea)
		r.Post("/{id}/analyze", s.handleAnalyzeArea)
		r.Get("/{id}/analyses", s.handleListAnalyses)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year := q.Get("year")
	month := q.Get("month")
	field := q.Get("field")
	if year == "" || month == "" {
		writeError(w, http.StatusBadRequest, "year and month are required")
		return
	}
	if field == "" {
		field = "building_count"
	}

	result, err := s.classify(year, month, field)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type analyzeRequest struct {
	Polygon model.Polygon `json:"polygon"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Polygon.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := spatial.Aggregate(s.points, req.Polygon, s.rules)
	writeJSON(w, http.StatusOK, result)
}

type saveAreaRequest struct {
	Name    string        `json:"name"`
	Polygon model.Polygon `json:"polygon"`
}

func (s *Server) handleSaveArea(w http.ResponseWriter, r *http.Request) {
	var req saveAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := req.Polygon.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	area, err := s.store.SaveArea(r.Context(), req.Name, req.Polygon)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, area)
}

func (s *Server) handleListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.store.ListAreas(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}

func (s *Server) handleGetArea(w http.ResponseWriter, r *http.Request) {
	area, err := s.store.GetArea(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, area)
}

func (s *Server) handleDeleteArea(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteArea(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAnalyzeArea aggregates the loaded points over a saved area's polygon
// and persists the outcome as a snapshot.
func (s *Server) handleAnalyzeArea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	area, err := s.store.GetArea(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	result := spatial.Aggregate(s.points, area.Polygon, s.rules)
	snapshotID, err := s.store.SaveAnalysis(r.Context(), id, result)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, store.AnalysisSnapshot{
		ID:     snapshotID,
		AreaID: id,
		Result: result,
	})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.store.ListAnalyses(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// requestLogger logs one line per request with the wrapped status code.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps a missing area to 404, everything else to 500.
func writeStoreError(w http.ResponseWriter, err error) {
	var notFound *store.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, notFound.Error())
		return
	}
	zap.L().Error("api: request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
