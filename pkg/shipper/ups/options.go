package ups

import (
	"fmt"
	"strings"
	"time"

	"github.com/tournevent/upsbridge/pkg/shipper"
)

// Options tunes a UPS call. The zero value of a field means "not set":
// call-level options override the client's, which override the defaults.
type Options struct {
	Key      string
	Login    string
	Password string

	OriginAccount      string
	DestinationAccount string

	PickupType             PickupType
	CustomerClassification CustomerClassification

	Saturday             *bool
	DeliveryConfirmation string
	ReturnServiceCode    string
	Service              string
	Nonvalidate          *bool

	// Shipper is the party paying for and appearing as shipper on the
	// shipment when it differs from the physical origin.
	Shipper *shipper.Location

	// PickupCutoff is the local time of day after which a pickup moves to
	// the following day, e.g. "3pm", "3:30pm" or "15:30".
	PickupCutoff       string
	PickupDaysPostpone *int

	Test *bool
}

// defaultOptions are applied beneath every client and call.
var defaultOptions = Options{
	PickupType:   PickupDaily,
	PickupCutoff: "3pm",
}

// merge returns o with every field set in over replacing its own.
func (o Options) merge(over Options) Options {
	setString(&o.Key, over.Key)
	setString(&o.Login, over.Login)
	setString(&o.Password, over.Password)
	setString(&o.OriginAccount, over.OriginAccount)
	setString(&o.DestinationAccount, over.DestinationAccount)
	setString(&o.DeliveryConfirmation, over.DeliveryConfirmation)
	setString(&o.ReturnServiceCode, over.ReturnServiceCode)
	setString(&o.Service, over.Service)
	setString(&o.PickupCutoff, over.PickupCutoff)
	if over.PickupType != "" {
		o.PickupType = over.PickupType
	}
	if over.CustomerClassification != "" {
		o.CustomerClassification = over.CustomerClassification
	}
	if over.Saturday != nil {
		o.Saturday = over.Saturday
	}
	if over.Nonvalidate != nil {
		o.Nonvalidate = over.Nonvalidate
	}
	if over.Shipper != nil {
		o.Shipper = over.Shipper
	}
	if over.PickupDaysPostpone != nil {
		o.PickupDaysPostpone = over.PickupDaysPostpone
	}
	if over.Test != nil {
		o.Test = over.Test
	}
	return o
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// effectiveOptions is the fully resolved, read-only option set of one call.
type effectiveOptions struct {
	key, login, password string

	originAccount      string
	destinationAccount string

	pickupType     PickupType
	classification CustomerClassification

	saturday             bool
	deliveryConfirmation string
	returnServiceCode    string
	service              string
	nonvalidate          bool
	shipper              *shipper.Location

	pickupCutoff       string
	pickupDaysPostpone int

	test bool
}

// resolveOptions layers defaults, client options and call options.
func resolveOptions(defaults, client, call Options) effectiveOptions {
	o := defaults.merge(client).merge(call)

	eff := effectiveOptions{
		key:                  o.Key,
		login:                o.Login,
		password:             o.Password,
		originAccount:        o.OriginAccount,
		destinationAccount:   o.DestinationAccount,
		pickupType:           o.PickupType,
		classification:       o.CustomerClassification,
		deliveryConfirmation: o.DeliveryConfirmation,
		returnServiceCode:    o.ReturnServiceCode,
		service:              o.Service,
		pickupCutoff:         o.PickupCutoff,
		saturday:             o.Saturday != nil && *o.Saturday,
		nonvalidate:          o.Nonvalidate != nil && *o.Nonvalidate,
		test:                 o.Test != nil && *o.Test,
	}
	if o.PickupDaysPostpone != nil {
		eff.pickupDaysPostpone = *o.PickupDaysPostpone
	}
	if eff.classification == "" {
		eff.classification = DefaultClassification(eff.pickupType)
	}
	if o.Shipper != nil {
		s := *o.Shipper
		eff.shipper = &s
	}
	return eff
}

// rateCodes resolves the pickup and classification codes of a rate request.
func (o effectiveOptions) rateCodes() (pickup, classification string, err error) {
	if pickup, err = PickupCode(o.pickupType); err != nil {
		return "", "", err
	}
	if classification, err = ClassificationCode(o.classification); err != nil {
		return "", "", err
	}
	return pickup, classification, nil
}

var cutoffLayouts = []string{"3pm", "3:04pm", "15:04", "15"}

// pickupDate is the next day UPS can collect a package given now.
func (o effectiveOptions) pickupDate(now time.Time) (time.Time, error) {
	cutoff, err := parseCutoff(o.pickupCutoff)
	if err != nil {
		return time.Time{}, err
	}
	cutoffToday := time.Date(now.Year(), now.Month(), now.Day(),
		cutoff.Hour(), cutoff.Minute(), 0, 0, now.Location())

	days := 1
	if now.After(cutoffToday) {
		days = 2
	}
	return now.AddDate(0, 0, days+o.pickupDaysPostpone), nil
}

func parseCutoff(s string) (time.Time, error) {
	v := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for _, layout := range cutoffLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable pickup cutoff %q", shipper.ErrInvalidRequest, s)
}
