package ups

import (
	"fmt"

	"github.com/tournevent/upsbridge/pkg/shipper"
)

// PickupType is how the shipper hands packages to UPS.
type PickupType string

const (
	PickupDaily                PickupType = "daily_pickup"
	PickupCustomerCounter      PickupType = "customer_counter"
	PickupOneTime              PickupType = "one_time_pickup"
	PickupOnCallAir            PickupType = "on_call_air"
	PickupSuggestedRetailRates PickupType = "suggested_retail_rates"
	PickupLetterCenter         PickupType = "letter_center"
	PickupAirServiceCenter     PickupType = "air_service_center"
)

var pickupCodes = map[PickupType]string{
	PickupDaily:                "01",
	PickupCustomerCounter:      "03",
	PickupOneTime:              "06",
	PickupOnCallAir:            "07",
	PickupSuggestedRetailRates: "11",
	PickupLetterCenter:         "19",
	PickupAirServiceCenter:     "20",
}

// CustomerClassification selects the rate table UPS prices against.
type CustomerClassification string

const (
	ClassificationWholesale  CustomerClassification = "wholesale"
	ClassificationOccasional CustomerClassification = "occasional"
	ClassificationRetail     CustomerClassification = "retail"
)

var classificationCodes = map[CustomerClassification]string{
	ClassificationWholesale:  "01",
	ClassificationOccasional: "03",
	ClassificationRetail:     "04",
}

// PickupCode returns the UPS code for a pickup type.
func PickupCode(p PickupType) (string, error) {
	code, ok := pickupCodes[p]
	if !ok {
		return "", fmt.Errorf("%w: unknown pickup type %q", shipper.ErrInvalidRequest, p)
	}
	return code, nil
}

// ClassificationCode returns the UPS code for a customer classification.
func ClassificationCode(c CustomerClassification) (string, error) {
	code, ok := classificationCodes[c]
	if !ok {
		return "", fmt.Errorf("%w: unknown customer classification %q", shipper.ErrInvalidRequest, c)
	}
	return code, nil
}

// DefaultClassification is the classification implied by a pickup type.
// It is total: unrecognized pickup types map to occasional.
func DefaultClassification(p PickupType) CustomerClassification {
	switch p {
	case PickupDaily:
		return ClassificationWholesale
	case PickupCustomerCounter:
		return ClassificationRetail
	default:
		return ClassificationOccasional
	}
}
