package ups

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/tournevent/upsbridge/pkg/shipper"
)

const (
	upsDateLayout     = "20060102"
	upsDateTimeLayout = "20060102150405"
)

// decodeEnvelope parses body and applies the success predicate shared by
// every operation. Field extraction only happens on the returned root.
func decodeEnvelope(operation string, body []byte) (*etree.Element, error) {
	root, err := parseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	status := root.FindElement("./Response/ResponseStatusCode")
	if status == nil {
		return nil, fmt.Errorf("%s: %w: missing Response/ResponseStatusCode", operation, shipper.ErrMalformedResponse)
	}
	if textOf(status) != "1" {
		return nil, newResponseError(operation, root)
	}
	return root, nil
}

// responseMessage is the error description, else the status description.
func responseMessage(root *etree.Element) string {
	if msg := findText(root, "./Response/Error/ErrorDescription"); msg != "" {
		return msg
	}
	return findText(root, "./Response/ResponseStatusDescription")
}

func decodeRateResponse(body []byte, origin shipper.Location, packages []shipper.Package, now time.Time) (*RateResult, error) {
	root, err := decodeEnvelope(opRates, body)
	if err != nil {
		return nil, err
	}

	result := &RateResult{Message: responseMessage(root)}
	for _, rated := range root.FindElements("./RatedShipment") {
		code, err := requireText(rated, "./Service/Code")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opRates, err)
		}
		value, err := requireText(rated, "./TotalCharges/MonetaryValue")
		if err != nil {
			return nil, fmt.Errorf("%s: service %s: %w", opRates, code, err)
		}
		currency, err := requireText(rated, "./TotalCharges/CurrencyCode")
		if err != nil {
			return nil, fmt.Errorf("%s: service %s: %w", opRates, code, err)
		}

		days, err := optionalInt(findText(rated, "./GuaranteedDaysToDelivery"))
		if err != nil {
			return nil, fmt.Errorf("%s: GuaranteedDaysToDelivery: %w", opRates, err)
		}
		amount, err := optionalDecimal(value)
		if err != nil {
			return nil, fmt.Errorf("%s: TotalCharges: %w", opRates, err)
		}

		name, _ := ServiceName(origin.CountryCode, code)
		result.Rates = append(result.Rates, shipper.RateEstimate{
			Carrier:     carrierName,
			ServiceCode: code,
			ServiceName: name,
			TotalPrice: shipper.Money{
				Amount:   amount,
				Currency: currency,
			},
			Packages:     packages,
			DeliveryDate: deliveryDate(now, days),
		})
	}
	return result, nil
}

// deliveryDate is the calendar date days from now, or nil when UPS does
// not guarantee one.
func deliveryDate(now time.Time, days int) *time.Time {
	if days < 1 {
		return nil
	}
	d := now.AddDate(0, 0, days)
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return &d
}

func decodeTransitTimeResponse(body []byte) (TransitTimes, error) {
	root, err := decodeEnvelope(opTransitTime, body)
	if err != nil {
		return nil, err
	}

	times := TransitTimes{}
	for _, summary := range root.FindElements(".//ServiceSummary") {
		code := findText(summary, "./Service/Code")
		days, err := optionalInt(findText(summary, "./EstimatedArrival/BusinessTransitDays"))
		if err != nil {
			return nil, fmt.Errorf("%s: service %s: %w", opTransitTime, code, err)
		}
		times[code] = days
	}
	return times, nil
}

func decodeTrackingResponse(body []byte) (*shipper.TrackingDetail, error) {
	root, err := decodeEnvelope(opTracking, body)
	if err != nil {
		return nil, err
	}

	number, err := requireText(root, "./Shipment/Package/TrackingNumber")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opTracking, err)
	}
	detail := &shipper.TrackingDetail{TrackingNumber: number, Activities: []shipper.Activity{}}

	estimated := findText(root, "./Shipment/ScheduledDeliveryDate")
	if estimated == "" {
		estimated = findText(root, "./Shipment/Package/RescheduledDeliveryDate")
	}
	if estimated != "" {
		d, err := time.Parse(upsDateLayout, estimated)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: delivery date %q", opTracking, shipper.ErrMalformedResponse, estimated)
		}
		detail.EstimatedDelivery = &d
	}

	for _, activity := range root.FindElements("./Shipment/Package/Activity") {
		ts, err := activityTimestamp(findText(activity, "./Date"), findText(activity, "./Time"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opTracking, err)
		}
		detail.Activities = append(detail.Activities, shipper.Activity{
			StatusCode:        findText(activity, "./Status/StatusCode"),
			StatusDescription: findText(activity, "./Status/StatusType/Description"),
			Timestamp:         ts,
			Location: findText(activity, "./ActivityLocation/Address/City") + " " +
				findText(activity, "./ActivityLocation/Address/StateProvinceCode") + " " +
				findText(activity, "./ActivityLocation/Address/CountryCode"),
		})
	}
	return detail, nil
}

// activityTimestamp combines a YYYYMMDD date and an HHMMSS time in UTC.
func activityTimestamp(date, clock string) (time.Time, error) {
	for len(clock) < 6 {
		clock += "0"
	}
	ts, err := time.ParseInLocation(upsDateTimeLayout, date+clock[:6], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: activity time %q %q", shipper.ErrMalformedResponse, date, clock)
	}
	return ts, nil
}

func decodeShipConfirmResponse(body []byte) (*ShipConfirmResult, error) {
	root, err := decodeEnvelope(opShipConfirm, body)
	if err != nil {
		return nil, err
	}
	digest, err := requireText(root, ".//ShipmentDigest")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opShipConfirm, err)
	}
	return &ShipConfirmResult{Digest: digest}, nil
}

func decodeShipAcceptResponse(body []byte) (*ShipAcceptResult, error) {
	root, err := decodeEnvelope(opShipAccept, body)
	if err != nil {
		return nil, err
	}

	shipmentID, err := requireText(root, "./ShipmentResults/ShipmentIdentificationNumber")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opShipAccept, err)
	}
	amount, err := optionalDecimal(findText(root, "./ShipmentResults/*/TotalCharges/MonetaryValue"))
	if err != nil {
		return nil, fmt.Errorf("%s: TotalCharges: %w", opShipAccept, err)
	}

	return &ShipAcceptResult{
		Success:    true,
		ShipmentID: shipmentID,
		Charges: shipper.Money{
			Amount:   amount,
			Currency: findText(root, "./ShipmentResults/*/TotalCharges/CurrencyCode"),
		},
		TrackingNumbers: findTexts(root, "./ShipmentResults/*/TrackingNumber"),
		Labels:          findTexts(root, "./ShipmentResults/*/LabelImage/GraphicImage"),
	}, nil
}

func decodeVoidResponse(body []byte) (*VoidResult, error) {
	root, err := decodeEnvelope(opVoid, body)
	if err != nil {
		return nil, err
	}

	result := &VoidResult{
		StatusTypeCode:            findText(root, "./Status/StatusType/Code"),
		StatusTypeDescription:     findText(root, "./Status/StatusType/Description"),
		ResponseStatusCode:        findText(root, "./Response/ResponseStatusCode"),
		ResponseStatusDescription: findText(root, "./Response/ResponseStatusDescription"),
		StatusCode:                findText(root, "./Status/StatusCode/Code"),
		StatusCodeDescription:     findText(root, "./Status/StatusCode/Description"),
		PackageResults:            []PackageVoidResult{},
	}
	if detail := readErrorDetail(root); !detail.empty() {
		result.Warning = &detail
	}
	for _, pkg := range root.FindElements("./PackageLevelResults") {
		result.PackageResults = append(result.PackageResults, PackageVoidResult{
			TrackingNumber:        findText(pkg, "./TrackingNumber"),
			StatusCode:            findText(pkg, "./StatusCode/Code"),
			StatusCodeDescription: findText(pkg, "./StatusCode/Description"),
		})
	}
	return result, nil
}

func decodeAddressValidationResponse(body []byte) ([]AddressCandidate, error) {
	root, err := decodeEnvelope(opAddressValidation, body)
	if err != nil {
		return nil, err
	}

	candidates := []AddressCandidate{}
	for _, match := range root.FindElements("./AddressValidationResult") {
		rank, err := optionalInt(findText(match, "./Rank"))
		if err != nil {
			return nil, fmt.Errorf("%s: Rank: %w", opAddressValidation, err)
		}
		quality, err := optionalDecimal(findText(match, "./Quality"))
		if err != nil {
			return nil, fmt.Errorf("%s: Quality: %w", opAddressValidation, err)
		}
		candidates = append(candidates, AddressCandidate{
			Rank:           rank,
			Quality:        quality,
			City:           findText(match, "./Address/City"),
			State:          findText(match, "./Address/StateProvinceCode"),
			PostalCodeLow:  findText(match, "./PostalCodeLowEnd"),
			PostalCodeHigh: findText(match, "./PostalCodeHighEnd"),
		})
	}
	return candidates, nil
}

func decodeStreetValidationResponse(body []byte) ([]StreetCandidate, error) {
	root, err := decodeEnvelope(opStreetValidation, body)
	if err != nil {
		return nil, err
	}

	candidates := []StreetCandidate{}
	for _, match := range root.FindElements("./AddressKeyFormat") {
		candidates = append(candidates, StreetCandidate{
			AddressLines:       findTexts(match, "./AddressLine"),
			Region:             findText(match, "./Region"),
			City:               findText(match, "./PoliticalDivision2"),
			State:              findText(match, "./PoliticalDivision1"),
			PostalCode:         findText(match, "./PostcodePrimaryLow"),
			PostalCodeExtended: findText(match, "./PostcodeExtendedLow"),
			CountryCode:        findText(match, "./CountryCode"),
		})
	}
	return candidates, nil
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", shipper.ErrMalformedResponse, s)
	}
	return n, nil
}

func optionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", shipper.ErrMalformedResponse, s)
	}
	return d, nil
}
