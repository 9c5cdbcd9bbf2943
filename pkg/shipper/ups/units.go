package ups

import (
	"github.com/shopspring/decimal"
	"github.com/tournevent/upsbridge/pkg/shipper"
)

// minimumMeasure is the smallest length or weight UPS accepts.
var minimumMeasure = decimal.RequireFromString("0.1")

// unitSystem is the measurement dialect a shipment is described in.
type unitSystem struct {
	Name          string
	DimensionCode string
	WeightCode    string
	dimensions    func(shipper.Package) (float64, float64, float64)
	weight        func(shipper.Package) float64
}

var (
	imperialUnits = unitSystem{
		Name:          "imperial",
		DimensionCode: "IN",
		WeightCode:    "LBS",
		dimensions:    shipper.Package.Inches,
		weight:        shipper.Package.Pounds,
	}
	metricUnits = unitSystem{
		Name:          "metric",
		DimensionCode: "CM",
		WeightCode:    "KGS",
		dimensions:    shipper.Package.Centimetres,
		weight:        shipper.Package.Kilograms,
	}
)

// unitPolicies is evaluated in order; the first matching policy wins.
var unitPolicies = []struct {
	applies func(country string) bool
	system  unitSystem
}{
	{applies: countryIn("US", "LR", "MM"), system: imperialUnits},
	{applies: func(string) bool { return true }, system: metricUnits},
}

// unitSystemFor selects the unit system from the shipment origin country.
func unitSystemFor(origin shipper.Location) unitSystem {
	for _, p := range unitPolicies {
		if p.applies(origin.CountryCode) {
			return p.system
		}
	}
	return metricUnits
}

// measures returns the serialized length, width, height and weight of pkg.
func (u unitSystem) measures(pkg shipper.Package) (length, width, height, weight string) {
	l, w, h := u.dimensions(pkg)
	return SerializeMeasure(l), SerializeMeasure(w), SerializeMeasure(h), SerializeMeasure(u.weight(pkg))
}

// SerializeMeasure rounds v half away from zero to three decimal places and
// clamps the result to at least 0.1.
func SerializeMeasure(v float64) string {
	d := decimal.NewFromFloat(v).Round(3)
	if d.LessThan(minimumMeasure) {
		d = minimumMeasure
	}
	return d.String()
}

func countryIn(codes ...string) func(string) bool {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return func(country string) bool {
		_, ok := set[country]
		return ok
	}
}
