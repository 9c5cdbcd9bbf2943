package server

import (
	"errors"
	"net/http"

	"github.com/tournevent/upsbridge/pkg/shipper"
	"github.com/tournevent/upsbridge/pkg/shipper/ups"
)

// requestOptions are the per-call options a client may set. Credentials and
// accounts only come from the service configuration.
type requestOptions struct {
	PickupType             string            `json:"pickup_type,omitempty"`
	CustomerClassification string            `json:"customer_classification,omitempty"`
	Saturday               *bool             `json:"saturday,omitempty"`
	DeliveryConfirmation   string            `json:"delivery_confirmation,omitempty"`
	ReturnServiceCode      string            `json:"return_service_code,omitempty"`
	Service                string            `json:"service,omitempty"`
	Nonvalidate            *bool             `json:"nonvalidate,omitempty"`
	Shipper                *shipper.Location `json:"shipper,omitempty"`
	PickupCutoff           string            `json:"pickup_cutoff,omitempty"`
	PickupDaysPostpone     *int              `json:"pickup_days_postpone,omitempty"`
}

func (o requestOptions) upsOptions() ups.Options {
	return ups.Options{
		PickupType:             ups.PickupType(o.PickupType),
		CustomerClassification: ups.CustomerClassification(o.CustomerClassification),
		Saturday:               o.Saturday,
		DeliveryConfirmation:   o.DeliveryConfirmation,
		ReturnServiceCode:      o.ReturnServiceCode,
		Service:                o.Service,
		Nonvalidate:            o.Nonvalidate,
		Shipper:                o.Shipper,
		PickupCutoff:           o.PickupCutoff,
		PickupDaysPostpone:     o.PickupDaysPostpone,
	}
}

type shipmentRequest struct {
	Origin      shipper.Location  `json:"origin"`
	Destination shipper.Location  `json:"destination"`
	Packages    []shipper.Package `json:"packages"`
	Options     requestOptions    `json:"options"`
}

type transitTimeRequest struct {
	OriginPostalCode      string         `json:"origin_postal_code"`
	DestinationPostalCode string         `json:"destination_postal_code"`
	Options               requestOptions `json:"options"`
}

type trackingRequest struct {
	TrackingNumber  string         `json:"tracking_number,omitempty"`
	TrackingNumbers []string       `json:"tracking_numbers,omitempty"`
	Options         requestOptions `json:"options"`
}

type trackingResult struct {
	TrackingNumber string                  `json:"tracking_number"`
	Detail         *shipper.TrackingDetail `json:"detail,omitempty"`
	Error          *apiError               `json:"error,omitempty"`
}

type acceptRequest struct {
	Digest  string         `json:"digest"`
	Options requestOptions `json:"options"`
}

type voidRequest struct {
	ShipmentID      string         `json:"shipment_id"`
	TrackingNumbers []string       `json:"tracking_numbers,omitempty"`
	Options         requestOptions `json:"options"`
}

type addressRequest struct {
	Address shipper.Location `json:"address"`
	Options requestOptions   `json:"options"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Kind      string           `json:"kind"`
	Message   string           `json:"message"`
	Status    string           `json:"status,omitempty"`
	Retryable bool             `json:"retryable,omitempty"`
	Carrier   *ups.ErrorDetail `json:"carrier,omitempty"`
}

func errorBody(err error) apiError {
	body := apiError{Kind: "internal", Message: err.Error(), Retryable: shipper.IsRetryable(err)}

	var respErr *ups.ResponseError
	switch {
	case errors.As(err, &respErr):
		body.Kind = "rejected"
		body.Message = respErr.Message()
		body.Status = respErr.Status
		body.Carrier = &respErr.ErrorDetail
	case errors.Is(err, shipper.ErrInvalidRequest):
		body.Kind = "invalid_request"
	case errors.Is(err, shipper.ErrTransport):
		body.Kind = "transport"
	case errors.Is(err, shipper.ErrMalformedResponse):
		body.Kind = "malformed_response"
	}
	return body
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shipper.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, shipper.ErrCarrierRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shipper.ErrTransport), errors.Is(err, shipper.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
