package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/parking-schedule-service/internal/domain"
	"github.com/couchcryptid/parking-schedule-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SpotFinder answers spot queries.
type SpotFinder interface {
	FindSpot(ctx context.Context, c domain.Coordinate) (domain.ParkingQueryResult, error)
	FindSpotByAddress(ctx context.Context, address string) (domain.ParkingQueryResult, error)
}

// Server exposes the spot query API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	spots      SpotFinder
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /v1/spot, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, spots SpotFinder, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		spots:  spots,
		logger: logger,
	}

	mux.HandleFunc("GET /v1/spot", s.handleSpot)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

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

// handleSpot answers ?lat=..&lon=.. or ?address=.. with the nearest location.
func (s *Server) handleSpot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		result domain.ParkingQueryResult
		err    error
	)
	if address := strings.TrimSpace(q.Get("address")); address != "" {
		result, err = s.spots.FindSpotByAddress(r.Context(), address)
	} else {
		c, perr := parseCoordinate(q.Get("lat"), q.Get("lon"))
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr)
			return
		}
		result, err = s.spots.FindSpot(r.Context(), c)
	}

	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("spot query failed", "error", err)
		}
		writeError(w, status, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

var errMissingCoordinate = errors.New("lat and lon query parameters are required unless address is given")

func parseCoordinate(latStr, lonStr string) (domain.Coordinate, error) {
	if latStr == "" || lonStr == "" {
		return domain.Coordinate{}, errMissingCoordinate
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Coordinate{}, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.Coordinate{}, errors.New("lon must be a number")
	}
	return domain.Coordinate{Lat: lat, Lon: lon}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAddressNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrGeocodingDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, pipeline.ErrNoSnapshot):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
