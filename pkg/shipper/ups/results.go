package ups

import (
	"github.com/shopspring/decimal"
	"github.com/tournevent/upsbridge/pkg/shipper"
)

// RateResult is a decoded rate shopping response.
type RateResult struct {
	Message string                 `json:"message,omitempty"`
	Rates   []shipper.RateEstimate `json:"rates"`
}

// TransitTimes maps a service code to its business days in transit.
type TransitTimes map[string]int

// ShipConfirmResult carries the digest to pass to ShipAccept.
type ShipConfirmResult struct {
	Digest string `json:"digest"`
}

// ShipAcceptResult is a purchased shipment.
type ShipAcceptResult struct {
	Success         bool          `json:"success"`
	ShipmentID      string        `json:"shipment_id"`
	Charges         shipper.Money `json:"charges"`
	TrackingNumbers []string      `json:"tracking_numbers"`
	// Labels are base64 encoded GIF images, one per package.
	Labels []string `json:"labels"`
}

// PackageVoidResult is the outcome of voiding one package.
type PackageVoidResult struct {
	TrackingNumber        string `json:"tracking_number"`
	StatusCode            string `json:"status_code"`
	StatusCodeDescription string `json:"status_code_description"`
}

// VoidResult is a decoded void response.
type VoidResult struct {
	StatusTypeCode            string              `json:"status_type_code"`
	StatusTypeDescription     string              `json:"status_type_description"`
	ResponseStatusCode        string              `json:"response_status_code"`
	ResponseStatusDescription string              `json:"response_status_description"`
	Warning                   *ErrorDetail        `json:"warning,omitempty"`
	StatusCode                string              `json:"status_code"`
	StatusCodeDescription     string              `json:"status_code_description"`
	PackageResults            []PackageVoidResult `json:"package_results"`
}

// AddressCandidate is one city-level match returned by address validation.
type AddressCandidate struct {
	Rank           int             `json:"rank"`
	Quality        decimal.Decimal `json:"quality"`
	City           string          `json:"city"`
	State          string          `json:"state"`
	PostalCodeLow  string          `json:"postal_code_low"`
	PostalCodeHigh string          `json:"postal_code_high"`
}

// StreetCandidate is one street-level match returned by address validation.
type StreetCandidate struct {
	AddressLines       []string `json:"address_lines"`
	Region             string   `json:"region"`
	City               string   `json:"city"`
	State              string   `json:"state"`
	PostalCode         string   `json:"postal_code"`
	PostalCodeExtended string   `json:"postal_code_extended"`
	CountryCode        string   `json:"country_code"`
}
