package shipper

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeightUnit represents weight measurement unit.
type WeightUnit string

const (
	WeightKG WeightUnit = "kg"
	WeightLB WeightUnit = "lb"
)

// DimensionUnit represents dimension measurement unit.
type DimensionUnit string

const (
	DimensionCM DimensionUnit = "cm"
	DimensionIN DimensionUnit = "in"
)

const (
	centimetresPerInch = 2.54
	kilogramsPerPound  = 0.45359237
)

// Location represents a shipping party: who they are and where they are.
type Location struct {
	Name          string `json:"name,omitempty"`
	AttentionName string `json:"attention_name,omitempty"`
	Company       string `json:"company,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Fax           string `json:"fax,omitempty"`
	Email         string `json:"email,omitempty"`
	Line1         string `json:"line1,omitempty"`
	Line2         string `json:"line2,omitempty"`
	Line3         string `json:"line3,omitempty"`
	City          string `json:"city,omitempty"`
	ProvinceCode  string `json:"province_code,omitempty"` // e.g., "ON", "NY", "PR"
	PostalCode    string `json:"postal_code,omitempty"`
	CountryCode   string `json:"country_code,omitempty"` // ISO 3166-1 alpha-2, e.g., "CA", "US"
	Commercial    bool   `json:"commercial,omitempty"`
}

// Reference is a shipper-supplied reference printed on a package label.
type Reference struct {
	Code    string `json:"code"`
	Value   string `json:"value"`
	BarCode bool   `json:"barcode,omitempty"`
}

// Package represents a package to be shipped. Units default to cm and kg.
type Package struct {
	Length        float64       `json:"length"`
	Width         float64       `json:"width"`
	Height        float64       `json:"height"`
	DimensionUnit DimensionUnit `json:"dimension_unit,omitempty"`
	Weight        float64       `json:"weight"`
	WeightUnit    WeightUnit    `json:"weight_unit,omitempty"`

	// PackageType is the carrier packaging code used when shipping.
	PackageType          string      `json:"package_type,omitempty"`
	Description          string      `json:"description,omitempty"`
	DeliveryConfirmation string      `json:"delivery_confirmation,omitempty"`
	References           []Reference `json:"references,omitempty"`
}

// Centimetres returns length, width and height in centimetres.
func (p Package) Centimetres() (length, width, height float64) {
	if p.DimensionUnit == DimensionIN {
		return p.Length * centimetresPerInch, p.Width * centimetresPerInch, p.Height * centimetresPerInch
	}
	return p.Length, p.Width, p.Height
}

// Inches returns length, width and height in inches.
func (p Package) Inches() (length, width, height float64) {
	if p.DimensionUnit == DimensionIN {
		return p.Length, p.Width, p.Height
	}
	return p.Length / centimetresPerInch, p.Width / centimetresPerInch, p.Height / centimetresPerInch
}

// Kilograms returns the package weight in kilograms.
func (p Package) Kilograms() float64 {
	if p.WeightUnit == WeightLB {
		return p.Weight * kilogramsPerPound
	}
	return p.Weight
}

// Pounds returns the package weight in pounds.
func (p Package) Pounds() float64 {
	if p.WeightUnit == WeightLB {
		return p.Weight
	}
	return p.Weight / kilogramsPerPound
}

// Money represents a monetary amount.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// RateEstimate represents one priced service returned by a carrier.
type RateEstimate struct {
	Carrier      string     `json:"carrier"`
	ServiceCode  string     `json:"service_code"`
	ServiceName  string     `json:"service_name,omitempty"`
	TotalPrice   Money      `json:"total_price"`
	Packages     []Package  `json:"packages,omitempty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
}

// Activity represents a tracking event.
type Activity struct {
	StatusCode        string    `json:"status_code"`
	StatusDescription string    `json:"status_description"`
	Timestamp         time.Time `json:"timestamp"`
	Location          string    `json:"location,omitempty"`
}

// TrackingDetail is the decoded tracking history of one shipment.
type TrackingDetail struct {
	TrackingNumber    string     `json:"tracking_number"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	Activities        []Activity `json:"activities"`
}

// ============================================================================
// Request/Response Types
// ============================================================================

// QuoteRequest is the request for getting shipping quotes.
type QuoteRequest struct {
	Origin      Location
	Destination Location
	Packages    []Package
}

// QuoteResponse is the response from getting shipping quotes.
type QuoteResponse struct {
	Message string
	Rates   []RateEstimate
}

// TrackingRequest is the request for tracking a shipment.
type TrackingRequest struct {
	TrackingNumber string
}
