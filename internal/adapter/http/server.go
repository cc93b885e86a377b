package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flight-delay-dashboard/internal/dashboard"
	"github.com/couchcryptid/flight-delay-dashboard/internal/dataset"
	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
	"github.com/couchcryptid/flight-delay-dashboard/internal/report"
)

const (
	maxRequestBody = 1 << 20
	xlsxType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Dashboard serves filter options and overviews, and gates /readyz.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Options(ctx context.Context) (dataset.Options, error)
	Overview(ctx context.Context, sel domain.FilterSelection) (dashboard.Overview, error)
}

// Predictor runs a single prediction request.
type Predictor interface {
	Predict(ctx context.Context, req domain.PredictionRequest) (domain.PredictionOutcome, error)
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dash       Dashboard
	predictor  Predictor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, dash Dashboard, predictor Predictor, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dash:      dash,
		predictor: predictor,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(dash))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/options", s.handleOptions)
	mux.HandleFunc("GET /api/v1/overview", s.handleOverview)
	mux.HandleFunc("GET /api/v1/overview.xlsx", s.handleOverviewReport)
	mux.HandleFunc("POST /api/v1/predict", s.handlePredict)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.dash.Options(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, opts)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, ok := s.overview(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, ov)
}

func (s *Server) handleOverviewReport(w http.ResponseWriter, r *http.Request) {
	ov, ok := s.overview(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteOverview(&buf, ov); err != nil {
		s.writeError(w, fmt.Errorf("%w: render report: %w", domain.ErrInternal, err))
		return
	}

	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", `attachment; filename="flight-delay-overview.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("write report", "error", err)
	}
}

// overview parses the selection and computes the overview, writing an
// error response when either step fails.
func (s *Server) overview(w http.ResponseWriter, r *http.Request) (dashboard.Overview, bool) {
	opts, err := s.dash.Options(r.Context())
	if err != nil {
		s.writeError(w, err)
		return dashboard.Overview{}, false
	}

	sel, err := parseSelection(r.URL.Query(), opts)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return dashboard.Overview{}, false
	}

	ov, err := s.dash.Overview(r.Context(), sel)
	if err != nil {
		s.writeError(w, err)
		return dashboard.Overview{}, false
	}
	return ov, true
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req domain.PredictionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return
	}

	out, err := s.predictor.Predict(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

// parseSelection reads the airline, origin, dest and day query parameters.
// An absent key selects every value in opts. A present key selects the listed
// values, given as repeated keys or comma-separated, so "?origin=" selects
// nothing.
func parseSelection(q url.Values, opts dataset.Options) (domain.FilterSelection, error) {
	sel := opts.Selection()

	if vals, ok := q["airline"]; ok {
		sel.Airlines = splitValues(vals)
	}
	if vals, ok := q["origin"]; ok {
		sel.Origins = splitValues(vals)
	}
	if vals, ok := q["dest"]; ok {
		sel.Dests = splitValues(vals)
	}
	if vals, ok := q["day"]; ok {
		days := []int{}
		for _, v := range splitValues(vals) {
			d, err := strconv.Atoi(v)
			if err != nil {
				return domain.FilterSelection{}, fmt.Errorf("invalid day %q: must be an integer", v)
			}
			days = append(days, d)
		}
		sel.Days = days
	}
	return sel, nil
}

func splitValues(vals []string) []string {
	out := []string{}
	for _, v := range vals {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type errorBody struct {
	Error  string               `json:"error"`
	Fields []*domain.FieldError `json:"fields,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{
			Error:  domain.ErrInvalidRequest.Error(),
			Fields: domain.FieldErrors(err),
		})
	case errors.Is(err, domain.ErrModelInference):
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrDataSource):
		s.logger.Error("data source unavailable", "error", err)
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorBody{Error: domain.ErrDataSource.Error()})
	default:
		s.logger.Error("request failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
