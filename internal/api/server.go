package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"route-planning-report/internal/db"
	"route-planning-report/internal/models"
	"route-planning-report/internal/parser"
	"route-planning-report/internal/report"
)

// Server represents the API server
type Server struct {
	db          *db.Database
	router      *mux.Router
	depotMarker string
}

// NewServer creates a new API server
func NewServer(database *db.Database, depotMarker string) *Server {
	s := &Server{
		db:          database,
		router:      mux.NewRouter(),
		depotMarker: depotMarker,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Report runs
	s.router.HandleFunc("/api/v1/runs", s.handleListRuns).Methods("GET")
	s.router.HandleFunc("/api/v1/reports", s.handleBuildReport).Methods("POST")

	// Route summaries
	s.router.HandleFunc("/api/v1/routes", s.handleQueryRoutes).Methods("GET")
	s.router.HandleFunc("/api/v1/routes/{location}/{route_id:[0-9]+}", s.handleGetRoute).Methods("GET")

	// Stats endpoint
	s.router.HandleFunc("/api/v1/stats", s.handleStats).Methods("GET")

	// Add middleware
	s.router.Use(loggingMiddleware)
	s.router.Use(jsonMiddleware)
}

// Router returns the configured router
func (s *Server) Router() *mux.Router {
	return s.router
}

// Middleware
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Response helpers
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *meta       `json:"meta,omitempty"`
}

type meta struct {
	Total   int   `json:"total,omitempty"`
	Limit   int   `json:"limit,omitempty"`
	Offset  int   `json:"offset,omitempty"`
	RunID   int64 `json:"run_id,omitempty"`
	QueryMs int64 `json:"query_ms,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message})
}

func respondWithMeta(w http.ResponseWriter, data interface{}, m *meta) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data, Meta: m})
}

// reportRequest carries planning rows keyed by export column name
type reportRequest struct {
	DepotMarker string `json:"depot_marker"`
	Persist     bool   `json:"persist"`
	Sources     []struct {
		Name string                   `json:"name"`
		Rows []map[string]interface{} `json:"rows"`
	} `json:"sources"`
}

type reportResponse struct {
	*report.Result
	RunID int64 `json:"run_id,omitempty"`
}

// Handlers
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	runs, err := s.db.ListRuns(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, runs)
}

func (s *Server) handleBuildReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	batches := make([]models.SourceBatch, 0, len(req.Sources))
	for _, src := range req.Sources {
		records, err := parser.DecodeRows(src.Name, parser.Stringify(src.Rows))
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		batches = append(batches, models.SourceBatch{Name: src.Name, Records: records})
	}

	marker := req.DepotMarker
	if marker == "" {
		marker = s.depotMarker
	}

	res, err := report.Build(batches, report.Options{DepotMarker: marker})
	if err != nil {
		var malformed *models.MalformedInputError
		if errors.As(err, &malformed) || errors.Is(err, models.ErrNoSources) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := reportResponse{Result: res}
	if req.Persist {
		run := &models.ReportRun{Sources: res.Sources, RecordCount: res.RecordCount}
		if err := s.db.InsertRun(run, res.Summaries); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.RunID = run.ID
	}

	status := http.StatusOK
	if req.Persist {
		status = http.StatusCreated
	}
	respondJSON(w, status, resp)
}

func (s *Server) handleQueryRoutes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := models.SummaryQuery{
		Location: r.URL.Query().Get("location"),
		Driver:   r.URL.Query().Get("driver"),
		Limit:    100, // default
	}

	if v := r.URL.Query().Get("run"); v != "" {
		q.RunID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		q.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		q.Offset, _ = strconv.Atoi(v)
	}

	results, err := s.db.QuerySummaries(q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []models.RouteSummary{}
	}

	queryMs := time.Since(start).Milliseconds()
	respondWithMeta(w, results, &meta{
		Total:   len(results),
		Limit:   q.Limit,
		Offset:  q.Offset,
		RunID:   q.RunID,
		QueryMs: queryMs,
	})
}

func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	routeID, err := strconv.ParseInt(vars["route_id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid route id")
		return
	}
	// route ids start at 1; zero would match every route of the location
	if routeID < 1 {
		respondError(w, http.StatusNotFound, "route not found")
		return
	}

	q := models.SummaryQuery{Location: vars["location"], RouteID: routeID}
	if v := r.URL.Query().Get("run"); v != "" {
		q.RunID, _ = strconv.ParseInt(v, 10, 64)
	}

	results, err := s.db.QuerySummaries(q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(results) == 0 {
		respondError(w, http.StatusNotFound, "route not found")
		return
	}

	respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
