// Package api provides the HTTP API for evaluating constants and catalogs.
// GET endpoints are public. POST endpoints require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/apery/internal/catalog"
	"github.com/talgya/apery/internal/constants"
	"github.com/talgya/apery/internal/formula"
	"github.com/talgya/apery/internal/numerr"
	"github.com/talgya/apery/internal/persistence"
	"github.com/talgya/apery/internal/precision"
)

// maxEvaluators bounds the per-precision evaluator cache.
const maxEvaluators = 8

// Server serves constant values, catalog evaluations and run history.
type Server struct {
	DB          *persistence.DB // nil disables run history
	Catalog     catalog.Catalog
	Digits      int // default precision
	MaxDigits   int // ceiling for ?digits=
	Workers     int
	Port        int
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string

	// Evaluate limits catalog evaluations per client per hour. Nil means
	// no limit.
	Evaluate *RateLimiter

	started time.Time

	evalMu sync.Mutex
	evals  map[int]*formula.Evaluator
}

// Handler builds the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	limit := func(h http.HandlerFunc) http.HandlerFunc {
		if s.Evaluate == nil {
			return h
		}
		return RateLimitMiddleware(s.Evaluate, h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/constant/{kind}", limit(s.handleConstant))
	mux.HandleFunc("GET /api/v1/constant/{kind}/{n}", limit(s.handleConstant))
	mux.HandleFunc("GET /api/v1/catalog", limit(s.handleCatalog))
	mux.HandleFunc("GET /api/v1/runs", s.handleRuns)
	mux.HandleFunc("GET /api/v1/runs/{id}", s.handleRunDetail)

	mux.HandleFunc("POST /api/v1/runs", s.adminOnly(limit(s.handleCreateRun)))

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving the HTTP API in a goroutine and returns the server so
// the caller can shut it down.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "history", s.DB != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no APERY_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// evaluator returns a shared evaluator for the requested precision so that
// constants are computed once per digit count.
func (s *Server) evaluator(r *http.Request) (*formula.Evaluator, error) {
	digits := s.Digits
	if d := r.URL.Query().Get("digits"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			return nil, numerr.InvalidArgument("digits", "not an integer: %q", d)
		}
		digits = n
	}
	if digits > s.MaxDigits {
		return nil, numerr.InvalidArgument("digits", "at most %d digits are served, got %d", s.MaxDigits, digits)
	}
	ctx, err := precision.New(digits)
	if err != nil {
		return nil, err
	}

	s.evalMu.Lock()
	defer s.evalMu.Unlock()
	if e, ok := s.evals[digits]; ok {
		return e, nil
	}
	if s.evals == nil || len(s.evals) >= maxEvaluators {
		s.evals = make(map[int]*formula.Evaluator)
	}
	e := formula.NewEvaluator(constants.NewProvider(ctx))
	s.evals[digits] = e
	return e, nil
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch numerr.KindOf(err) {
	case numerr.KindInvalidArgument:
		return http.StatusBadRequest
	case numerr.KindDomain, numerr.KindComputation:
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":            "apery",
		"digits":          s.Digits,
		"max_digits":      s.MaxDigits,
		"catalog_entries": len(s.Catalog),
		"uptime_seconds":  int64(time.Since(s.started).Seconds()),
		"history":         s.DB != nil,
	}
	if s.DB != nil {
		if last, err := s.DB.GetMeta("last_run"); err == nil {
			status["last_run"] = last
		}
	}
	writeJSON(w, status)
}

type constantJSON struct {
	Kind   string `json:"kind"`
	Param  int    `json:"param,omitempty"`
	Symbol string `json:"symbol"`
	Digits int    `json:"digits"`
	Value  string `json:"value"`
}

func (s *Server) handleConstant(w http.ResponseWriter, r *http.Request) {
	kind, err := constants.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, err)
		return
	}
	param := 0
	if n := r.PathValue("n"); n != "" {
		param, err = strconv.Atoi(n)
		if err != nil {
			writeError(w, numerr.InvalidArgument("constant", "parameter is not an integer: %q", n))
			return
		}
	} else if kind == constants.ZETA {
		writeError(w, numerr.InvalidArgument("constant", "zeta needs an argument, e.g. /constant/zeta/3"))
		return
	}

	eval, err := s.evaluator(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := eval.Provider().Get(kind, param)
	if err != nil {
		writeError(w, err)
		return
	}
	if kind != constants.ZETA {
		param = 0
	}
	pc := eval.Context()
	writeJSON(w, constantJSON{
		Kind:   kind.String(),
		Param:  param,
		Symbol: kind.Symbol(param),
		Digits: pc.Digits(),
		Value:  pc.Text(v, 0),
	})
}

type outcomeJSON struct {
	Name            string `json:"name"`
	Title           string `json:"title,omitempty"`
	Formula         string `json:"formula"`
	Value           string `json:"value,omitempty"`
	Reference       string `json:"reference,omitempty"`
	Tolerance       string `json:"tolerance,omitempty"`
	RelativeError   string `json:"relative_error,omitempty"`
	PercentAccuracy string `json:"percent_accuracy,omitempty"`
	Sigmas          string `json:"sigmas,omitempty"`
	Within          *bool  `json:"within,omitempty"`
	Verdict         string `json:"verdict,omitempty"`
	Error           string `json:"error,omitempty"`
	ErrorKind       string `json:"error_kind,omitempty"`
}

func toJSON(pc *precision.Context, o catalog.Outcome) outcomeJSON {
	out := outcomeJSON{
		Name:      o.Entry.Name,
		Title:     o.Entry.Title,
		Formula:   o.Entry.Formula.String(),
		Reference: o.Entry.Reference,
		Tolerance: o.Entry.Tolerance,
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
		if k := numerr.KindOf(o.Err); k != 0 {
			out.ErrorKind = k.String()
		}
		return out
	}
	out.Value = pc.Text(o.Value, 0)
	if res := o.Result; res != nil {
		within := res.WithinThreshold
		out.Within = &within
		out.RelativeError = res.RelativeError.Text('e', 6)
		out.PercentAccuracy = res.PercentAccuracy.Text('f', 9)
		out.Verdict = string(res.Verdict)
	}
	if o.Sigmas != nil {
		out.Sigmas = o.Sigmas.Text('f', 3)
	}
	return out
}

type catalogJSON struct {
	Digits   int           `json:"digits"`
	Outcomes []outcomeJSON `json:"outcomes"`
	Run      string        `json:"run,omitempty"`
}

func (s *Server) evaluate(r *http.Request) (*precision.Context, []catalog.Outcome, error) {
	eval, err := s.evaluator(r)
	if err != nil {
		return nil, nil, err
	}
	outs, err := catalog.NewRunner(eval, s.Workers).Run(r.Context(), s.Catalog)
	if err != nil {
		return nil, nil, err
	}
	return eval.Context(), outs, nil
}

func render(pc *precision.Context, outs []catalog.Outcome) catalogJSON {
	resp := catalogJSON{Digits: pc.Digits(), Outcomes: make([]outcomeJSON, len(outs))}
	for i, o := range outs {
		resp.Outcomes[i] = toJSON(pc, o)
	}
	return resp
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	pc, outs, err := s.evaluate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, render(pc, outs))
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	pc, outs, err := s.evaluate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	run, err := s.DB.SaveRun(pc.Digits(), "api", outs)
	if err != nil {
		slog.Error("run save failed", "error", err)
		http.Error(w, "run save failed", http.StatusInternalServerError)
		return
	}
	if err := s.DB.SaveMeta("last_run", run.ID.String()); err != nil {
		slog.Warn("last run not recorded", "error", err)
	}

	resp := render(pc, outs)
	resp.Run = run.ID.String()
	w.Header().Set("Location", "/api/v1/runs/"+run.ID.String())
	writeJSONStatus(w, http.StatusCreated, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	runs, err := s.DB.RecentRuns(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []persistence.Run{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}
	run, err := s.DB.GetRun(id)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := s.DB.RunOutcomes(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"run": run, "outcomes": rows})
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

// writeJSONStatus sets headers before the status line, which freezes them.
func writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
