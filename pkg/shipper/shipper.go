// Package shipper provides carrier-agnostic shipping entities and the
// interface a carrier adapter implements.
package shipper

import (
	"context"
)

// Shipper defines the interface that a shipping carrier adapter implements.
type Shipper interface {
	// Name returns the carrier identifier (e.g., "ups").
	Name() string

	// GetQuote returns shipping rate quotes for a shipment.
	GetQuote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error)

	// GetTracking returns the tracking history of a shipment.
	GetTracking(ctx context.Context, req *TrackingRequest) (*TrackingDetail, error)
}
