package ups

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/tournevent/upsbridge/pkg/shipper"
)

// ErrorDetail is the Response/Error block UPS attaches to failures and,
// occasionally, to successful responses as a warning.
type ErrorDetail struct {
	Severity              string `json:"severity,omitempty"`
	Code                  string `json:"code,omitempty"`
	Description           string `json:"description,omitempty"`
	MinimumRetrySeconds   string `json:"minimum_retry_seconds,omitempty"`
	LocationElementName   string `json:"location_element_name,omitempty"`
	LocationAttributeName string `json:"location_attribute_name,omitempty"`
	Digest                string `json:"digest,omitempty"`
}

func (d ErrorDetail) empty() bool {
	return d == ErrorDetail{}
}

// ResponseError is returned when UPS answers with a non-success status.
type ResponseError struct {
	Operation string `json:"operation"`
	Status    string `json:"status,omitempty"`
	ErrorDetail
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s failed (%s): %s", carrierName, e.Operation, e.Code, e.Message())
	}
	return fmt.Sprintf("%s %s failed: %s", carrierName, e.Operation, e.Message())
}

// Message is the error description, falling back to the status description.
func (e *ResponseError) Message() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Status
}

// Unwrap lets errors.Is match shipper.ErrCarrierRejected.
func (e *ResponseError) Unwrap() error {
	return shipper.ErrCarrierRejected
}

func readErrorDetail(root *etree.Element) ErrorDetail {
	return ErrorDetail{
		Severity:              findText(root, "./Response/Error/ErrorSeverity"),
		Code:                  findText(root, "./Response/Error/ErrorCode"),
		Description:           findText(root, "./Response/Error/ErrorDescription"),
		MinimumRetrySeconds:   findText(root, "./Response/Error/MinimumRetrySeconds"),
		LocationElementName:   findText(root, "./Response/Error/ErrorLocation/ErrorLocationElementName"),
		LocationAttributeName: findText(root, "./Response/Error/ErrorLocation/ErrorLocationAttributeName"),
		Digest:                findText(root, "./Response/Error/ErrorDigest"),
	}
}

func newResponseError(operation string, root *etree.Element) *ResponseError {
	return &ResponseError{
		Operation:   operation,
		Status:      findText(root, "./Response/ResponseStatusDescription"),
		ErrorDetail: readErrorDetail(root),
	}
}

// transportError wraps a failed commit in the carrier error type.
func transportError(code, message string, statusCode int, retryable bool, cause error) *shipper.ShipperError {
	return shipper.NewShipperError(carrierName, code, message).
		WithKind(shipper.ErrTransport).
		WithStatusCode(statusCode).
		WithRetryable(retryable).
		WithCause(cause)
}
