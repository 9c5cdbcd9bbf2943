// Package ups provides integration with the UPS XML shipping API.
package ups

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/upsbridge/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const carrierName = "ups"

// Base URLs of the UPS XML endpoints.
const (
	TestURL = "https://wwwcie.ups.com"
	LiveURL = "https://onlinetools.ups.com"
)

// Operation names, used for spans, metrics and errors.
const (
	opRates             = "rates"
	opTransitTime       = "transit_time"
	opTracking          = "tracking"
	opShipConfirm       = "ship_confirm"
	opShipAccept        = "ship_accept"
	opVoid              = "void"
	opAddressValidation = "address_validation"
	opStreetValidation  = "street_validation"
)

var resources = map[string]string{
	opRates:             "ups.app/xml/Rate",
	opTransitTime:       "ups.app/xml/TimeInTransit",
	opTracking:          "ups.app/xml/Track",
	opShipConfirm:       "ups.app/xml/ShipConfirm",
	opShipAccept:        "ups.app/xml/ShipAccept",
	opVoid:              "ups.app/xml/Void",
	opAddressValidation: "ups.app/xml/AV",
	opStreetValidation:  "ups.app/xml/XAV",
}

// Config holds UPS configuration.
type Config struct {
	// Options apply to every call unless the call overrides them.
	Options Options
	UseMock bool
	Timeout time.Duration

	// TestURL and LiveURL override the UPS endpoints, e.g. for a proxy.
	TestURL string
	LiveURL string

	// TrackConcurrency bounds TrackMany. Defaults to 4.
	TrackConcurrency int
}

// MetricsRecorder receives one observation per carrier call.
type MetricsRecorder interface {
	RecordRequest(operation, carrier, status string, duration float64)
	RecordError(carrier, errorType string)
}

// Client is the UPS shipper client. It is safe for concurrent use.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
	metrics   MetricsRecorder
	now       func() time.Time
}

var _ shipper.Shipper = (*Client)(nil)

// New creates a new UPS client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			Timeout: cfg.Timeout,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new UPS client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = otel.Tracer("github.com/tournevent/upsbridge/pkg/shipper/ups")
	}
	if cfg.TestURL == "" {
		cfg.TestURL = TestURL
	}
	if cfg.LiveURL == "" {
		cfg.LiveURL = LiveURL
	}
	if cfg.TrackConcurrency <= 0 {
		cfg.TrackConcurrency = 4
	}
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
		now:       time.Now,
	}
}

// WithMetrics returns a copy of the client that reports to m.
func (c *Client) WithMetrics(m MetricsRecorder) *Client {
	cp := *c
	cp.metrics = m
	return &cp
}

// WithClock returns a copy of the client that reads the time from now.
func (c *Client) WithClock(now func() time.Time) *Client {
	cp := *c
	cp.now = now
	return &cp
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// GetQuote returns shop rates using the client's configured options.
func (c *Client) GetQuote(ctx context.Context, req *shipper.QuoteRequest) (*shipper.QuoteResponse, error) {
	result, err := c.Rates(ctx, req.Origin, req.Destination, req.Packages, Options{})
	if err != nil {
		return nil, err
	}
	return &shipper.QuoteResponse{Message: result.Message, Rates: result.Rates}, nil
}

// GetTracking returns the tracking history of a shipment.
func (c *Client) GetTracking(ctx context.Context, req *shipper.TrackingRequest) (*shipper.TrackingDetail, error) {
	return c.Track(ctx, req.TrackingNumber, Options{})
}

// Rates shops every service UPS offers between origin and destination.
func (c *Client) Rates(ctx context.Context, origin, destination shipper.Location, packages []shipper.Package, opts Options) (*RateResult, error) {
	o := c.resolve(opts)
	origin, destination = NormalizeLocation(origin), NormalizeLocation(destination)
	now := c.now()

	return execute(ctx, c, opRates, o,
		[]zap.Field{
			zap.String("origin_postal", origin.PostalCode),
			zap.String("destination_postal", destination.PostalCode),
			zap.Int("package_count", len(packages)),
		},
		func() (string, error) { return buildRateRequest(origin, destination, packages, o) },
		func(body []byte) (*RateResult, error) { return decodeRateResponse(body, origin, packages, now) },
	)
}

// TransitTime estimates business days in transit per service between two
// US postal codes.
func (c *Client) TransitTime(ctx context.Context, originPostal, destinationPostal string, opts Options) (TransitTimes, error) {
	o := c.resolve(opts)

	return execute(ctx, c, opTransitTime, o,
		[]zap.Field{
			zap.String("origin_postal", originPostal),
			zap.String("destination_postal", destinationPostal),
		},
		func() (string, error) {
			pickup, err := o.pickupDate(c.now())
			if err != nil {
				return "", err
			}
			return buildTransitTimeRequest(originPostal, destinationPostal, pickup)
		},
		decodeTransitTimeResponse,
	)
}

// Track returns the tracking history of a shipment.
func (c *Client) Track(ctx context.Context, trackingNumber string, opts Options) (*shipper.TrackingDetail, error) {
	o := c.resolve(opts)

	return execute(ctx, c, opTracking, o,
		[]zap.Field{zap.String("tracking_number", trackingNumber)},
		func() (string, error) {
			if strings.TrimSpace(trackingNumber) == "" {
				return "", fmt.Errorf("%w: tracking number is required", shipper.ErrInvalidRequest)
			}
			return buildTrackingRequest(trackingNumber)
		},
		decodeTrackingResponse,
	)
}

// TrackMany tracks several shipments concurrently. The result slices are
// parallel to trackingNumbers; a failed lookup leaves a nil detail and a
// non-nil error at its index.
func (c *Client) TrackMany(ctx context.Context, trackingNumbers []string, opts Options) ([]*shipper.TrackingDetail, []error) {
	details := make([]*shipper.TrackingDetail, len(trackingNumbers))
	errs := make([]error, len(trackingNumbers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.TrackConcurrency)

	for i, number := range trackingNumbers {
		g.Go(func() error {
			detail, err := c.Track(ctx, number, opts)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", number, err)
				return nil // one bad number does not cancel the others
			}
			details[i] = detail
			return nil
		})
	}

	_ = g.Wait()
	return details, errs
}

// ConfirmShipment asks UPS to validate a shipment and returns the digest
// AcceptShipment needs to purchase it.
func (c *Client) ConfirmShipment(ctx context.Context, origin, destination shipper.Location, packages []shipper.Package, opts Options) (*ShipConfirmResult, error) {
	o := c.resolve(opts)
	origin, destination = NormalizeLocation(origin), NormalizeLocation(destination)

	return execute(ctx, c, opShipConfirm, o,
		[]zap.Field{
			zap.String("origin_postal", origin.PostalCode),
			zap.String("destination_postal", destination.PostalCode),
			zap.String("service", o.service),
			zap.Int("package_count", len(packages)),
		},
		func() (string, error) { return buildShipConfirmRequest(origin, destination, packages, o) },
		decodeShipConfirmResponse,
	)
}

// AcceptShipment purchases a confirmed shipment and returns its labels.
func (c *Client) AcceptShipment(ctx context.Context, digest string, opts Options) (*ShipAcceptResult, error) {
	o := c.resolve(opts)

	return execute(ctx, c, opShipAccept, o,
		nil,
		func() (string, error) {
			if strings.TrimSpace(digest) == "" {
				return "", fmt.Errorf("%w: shipment digest is required", shipper.ErrInvalidRequest)
			}
			return buildShipAcceptRequest(digest)
		},
		decodeShipAcceptResponse,
	)
}

// VoidShipment cancels a shipment, or only the listed packages of it.
func (c *Client) VoidShipment(ctx context.Context, shipmentID string, trackingNumbers []string, opts Options) (*VoidResult, error) {
	o := c.resolve(opts)

	return execute(ctx, c, opVoid, o,
		[]zap.Field{
			zap.String("shipment_id", shipmentID),
			zap.Int("package_count", len(trackingNumbers)),
		},
		func() (string, error) {
			if strings.TrimSpace(shipmentID) == "" {
				return "", fmt.Errorf("%w: shipment identification number is required", shipper.ErrInvalidRequest)
			}
			return buildVoidRequest(shipmentID, trackingNumbers)
		},
		decodeVoidResponse,
	)
}

// ValidateAddress checks a city, state and postal code combination.
func (c *Client) ValidateAddress(ctx context.Context, addr shipper.Location, opts Options) ([]AddressCandidate, error) {
	o := c.resolve(opts)

	return execute(ctx, c, opAddressValidation, o,
		[]zap.Field{
			zap.String("city", addr.City),
			zap.String("postal_code", addr.PostalCode),
		},
		func() (string, error) { return buildAddressValidationRequest(addr) },
		decodeAddressValidationResponse,
	)
}

// ValidateStreetAddress checks a street address and returns UPS candidates.
func (c *Client) ValidateStreetAddress(ctx context.Context, addr shipper.Location, opts Options) ([]StreetCandidate, error) {
	o := c.resolve(opts)

	return execute(ctx, c, opStreetValidation, o,
		[]zap.Field{
			zap.String("city", addr.City),
			zap.String("postal_code", addr.PostalCode),
		},
		func() (string, error) { return buildStreetValidationRequest(addr) },
		decodeStreetValidationResponse,
	)
}

func (c *Client) resolve(call Options) effectiveOptions {
	o := resolveOptions(defaultOptions, c.config.Options, call)
	if o.shipper != nil {
		normalized := NormalizeLocation(*o.shipper)
		o.shipper = &normalized
	}
	return o
}

func (c *Client) endpoint(op string, test bool) string {
	base := c.config.LiveURL
	if test {
		base = c.config.TestURL
	}
	return strings.TrimSuffix(base, "/") + "/" + resources[op]
}

// execute runs one request/response cycle: build the operation fragment,
// prefix the access fragment, commit, decode.
func execute[T any](
	ctx context.Context,
	c *Client,
	op string,
	o effectiveOptions,
	fields []zap.Field,
	build func() (string, error),
	decode func([]byte) (T, error),
) (T, error) {
	var zero T
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, "ups."+op, trace.WithAttributes(
		attribute.String("carrier", carrierName),
		attribute.String("ups.operation", op),
		attribute.String("ups.request_id", requestID),
		attribute.Bool("ups.test", o.test),
	))
	defer span.End()

	log := c.logger.Ctx(ctx)
	log.Info("UPS request",
		append([]zap.Field{zap.String("operation", op), zap.String("request_id", requestID)}, fields...)...)

	start := time.Now()
	result, err := func() (T, error) {
		access, err := buildAccessRequest(o)
		if err != nil {
			return zero, err
		}
		request, err := build()
		if err != nil {
			return zero, err
		}
		body, err := c.apiClient.Commit(ctx, c.endpoint(op, o.test), []byte(access+request))
		if err != nil {
			return zero, err
		}
		return decode(body)
	}()
	elapsed := time.Since(start).Seconds()

	if err != nil {
		kind := errorKind(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		log.Error("UPS request failed",
			zap.String("operation", op),
			zap.String("request_id", requestID),
			zap.String("error_type", kind),
			zap.Error(err),
		)
		if c.metrics != nil {
			c.metrics.RecordRequest(op, carrierName, "error", elapsed)
			c.metrics.RecordError(carrierName, kind)
		}
		return zero, err
	}

	if c.metrics != nil {
		c.metrics.RecordRequest(op, carrierName, "success", elapsed)
	}
	return result, nil
}

// errorKind names the class of err for logs and metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, shipper.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, shipper.ErrTransport):
		return "transport"
	case errors.Is(err, shipper.ErrCarrierRejected):
		return "rejected"
	case errors.Is(err, shipper.ErrMalformedResponse):
		return "malformed_response"
	default:
		return "unknown"
	}
}
