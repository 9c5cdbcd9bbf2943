// Package server exposes the UPS carrier operations over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/upsbridge/pkg/shipper"
	"github.com/tournevent/upsbridge/pkg/shipper/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Carrier is the set of UPS operations the server exposes.
type Carrier interface {
	Rates(ctx context.Context, origin, destination shipper.Location, packages []shipper.Package, opts ups.Options) (*ups.RateResult, error)
	TransitTime(ctx context.Context, originPostal, destinationPostal string, opts ups.Options) (ups.TransitTimes, error)
	Track(ctx context.Context, trackingNumber string, opts ups.Options) (*shipper.TrackingDetail, error)
	TrackMany(ctx context.Context, trackingNumbers []string, opts ups.Options) ([]*shipper.TrackingDetail, []error)
	ConfirmShipment(ctx context.Context, origin, destination shipper.Location, packages []shipper.Package, opts ups.Options) (*ups.ShipConfirmResult, error)
	AcceptShipment(ctx context.Context, digest string, opts ups.Options) (*ups.ShipAcceptResult, error)
	VoidShipment(ctx context.Context, shipmentID string, trackingNumbers []string, opts ups.Options) (*ups.VoidResult, error)
	ValidateAddress(ctx context.Context, addr shipper.Location, opts ups.Options) ([]ups.AddressCandidate, error)
	ValidateStreetAddress(ctx context.Context, addr shipper.Location, opts ups.Options) ([]ups.StreetCandidate, error)
}

// Server is the HTTP server for the UPS bridge.
type Server struct {
	port     int
	carrier  Carrier
	logger   *otelzap.Logger
	gatherer prometheus.Gatherer
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance. gatherer backs /metrics.
func New(cfg Config, carrier Carrier, logger *otelzap.Logger, gatherer prometheus.Gatherer) *Server {
	return &Server{
		port:     cfg.Port,
		carrier:  carrier,
		logger:   logger,
		gatherer: gatherer,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /v1/rates", s.handleRates)
	mux.HandleFunc("POST /v1/transit-time", s.handleTransitTime)
	mux.HandleFunc("POST /v1/tracking", s.handleTracking)
	mux.HandleFunc("POST /v1/shipments/confirm", s.handleConfirm)
	mux.HandleFunc("POST /v1/shipments/accept", s.handleAccept)
	mux.HandleFunc("POST /v1/shipments/void", s.handleVoid)
	mux.HandleFunc("POST /v1/addresses/validate", s.handleValidateAddress)
	mux.HandleFunc("POST /v1/addresses/validate-street", s.handleValidateStreet)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	var req shipmentRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.carrier.Rates(r.Context(), req.Origin, req.Destination, req.Packages, req.Options.upsOptions())
	s.respond(w, r, result, err)
}

func (s *Server) handleTransitTime(w http.ResponseWriter, r *http.Request) {
	var req transitTimeRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.carrier.TransitTime(r.Context(), req.OriginPostalCode, req.DestinationPostalCode, req.Options.upsOptions())
	s.respond(w, r, result, err)
}

func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	var req trackingRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.TrackingNumbers) == 0 {
		result, err := s.carrier.Track(r.Context(), req.TrackingNumber, req.Options.upsOptions())
		s.respond(w, r, result, err)
		return
	}

	details, errs := s.carrier.TrackMany(r.Context(), req.TrackingNumbers, req.Options.upsOptions())
	results := make([]trackingResult, len(details))
	for i, detail := range details {
		results[i] = trackingResult{TrackingNumber: req.TrackingNumbers[i], Detail: detail}
		if errs[i] != nil {
			body := errorBody(errs[i])
			results[i].Error = &body
		}
	}
	s.respond(w, r, results, nil)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req shipmentRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.carrier.ConfirmShipment(r.Context(), req.Origin, req.Destination, req.Packages, req.Options.upsOptions())
	s.respond(w, r, result, err)
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.carrier.AcceptShipment(r.Context(), req.Digest, req.Options.upsOptions())
	s.respond(w, r, result, err)
}

func (s *Server) handleVoid(w http.ResponseWriter, r *http.Request) {
	var req voidRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.carrier.VoidShipment(r.Context(), req.ShipmentID, req.TrackingNumbers, req.Options.upsOptions())
	s.respond(w, r, result, err)
}

func (s *Server) handleValidateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.carrier.ValidateAddress(r.Context(), req.Address, req.Options.upsOptions())
	s.respond(w, r, result, err)
}

func (s *Server) handleValidateStreet(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.carrier.ValidateStreetAddress(r.Context(), req.Address, req.Options.upsOptions())
	s.respond(w, r, result, err)
}

// decode reads the JSON body into v, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: apiError{
			Kind:    "invalid_request",
			Message: "invalid JSON: " + err.Error(),
		}})
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, result any, err error) {
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Ctx(r.Context()).Error("UPS call failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		writeJSON(w, status, errorResponse{Error: errorBody(err)})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
