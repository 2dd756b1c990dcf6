// Package server exposes the scoring and benchmarking engine over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/riskbench/internal/benchmark"
	"github.com/sells-group/riskbench/internal/config"
	"github.com/sells-group/riskbench/internal/model"
	"github.com/sells-group/riskbench/internal/service"
)

// Server routes HTTP requests to the service layer.
type Server struct {
	router *chi.Mux
	svc    *service.Service
}

// New builds the router with CORS, recovery, and rate limiting applied
// to every route.
func New(svc *service.Service, cfg config.ServerConfig) *Server {
	s := &Server{
		router: chi.NewRouter(),
		svc:    svc,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	s.router.Use(rateLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst))

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/benchmark", s.handleBenchmark)
		r.Post("/benchmark/compare", s.handleCompare)
		r.Route("/businesses/{id}", func(r chi.Router) {
			r.Get("/diagnosis", s.handleDiagnosis)
			r.Get("/history", s.handleHistory)
			r.Get("/trend", s.handleTrend)
		})
	})

	return s
}

// Handler returns the assembled router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// rateLimit applies one shared token bucket across all clients. The API
// fronts a single dashboard, not the public internet.
func rateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	industry := r.URL.Query().Get("industry")
	if industry == "" {
		writeError(w, http.StatusBadRequest, "industry is required")
		return
	}

	cohort, err := s.svc.Benchmark(r.Context(), industry)
	if err != nil {
		serverError(w, "benchmark lookup", err)
		return
	}
	writeJSON(w, http.StatusOK, cohort)
}

// OverallScore is a pointer so a client can submit a literal zero;
// omitting the field selects the latest stored diagnosis instead.
type compareRequest struct {
	BusinessID   string   `json:"business_id"`
	Industry     string   `json:"industry"`
	OverallScore *float64 `json:"overall_score"`
	Revenue      float64  `json:"revenue"`
	Expenses     float64  `json:"expenses"`
	Customers    float64  `json:"customers"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BusinessID == "" {
		writeError(w, http.StatusBadRequest, "business_id is required")
		return
	}

	business := model.DiagnosisResult{BusinessID: req.BusinessID}
	if req.OverallScore != nil {
		business.OverallScore = *req.OverallScore
	} else {
		latest, err := s.svc.Diagnose(r.Context(), req.BusinessID)
		if err != nil {
			serverError(w, "diagnosis lookup", err)
			return
		}
		if latest != nil {
			business = *latest
		}
	}

	payload, err := s.svc.Compare(r.Context(), benchmark.CompareInput{
		Business:  business,
		Industry:  req.Industry,
		Revenue:   req.Revenue,
		Expenses:  req.Expenses,
		Customers: req.Customers,
	})
	if err != nil {
		serverError(w, "comparison", err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleDiagnosis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	latest, err := s.svc.Diagnose(r.Context(), id)
	if err != nil {
		serverError(w, "diagnosis lookup", err)
		return
	}
	if latest == nil {
		writeError(w, http.StatusNotFound, "no diagnosis for business")
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := queryInt(r, "limit", 0)

	history, err := s.svc.History(r.Context(), id, limit)
	if err != nil {
		serverError(w, "history lookup", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

type trendResponse struct {
	Sufficient bool    `json:"sufficient"`
	Label      string  `json:"label,omitempty"`
	Delta      float64 `json:"delta"`
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	window := queryInt(r, "window", 0)

	trend, ok, err := s.svc.Trend(r.Context(), id, window)
	if err != nil {
		serverError(w, "trend analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, trendResponse{
		Sufficient: ok,
		Label:      string(trend.Label),
		Delta:      trend.Delta,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func serverError(w http.ResponseWriter, action string, err error) {
	zap.L().Error("server: "+action+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
