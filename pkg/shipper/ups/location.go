package ups

import (
	"github.com/tournevent/upsbridge/pkg/shipper"
)

// territoriesAsCountries are US territories UPS addresses as countries.
var territoriesAsCountries = countryIn("AS", "FM", "GU", "MH", "MP", "PW", "PR", "VI")

// NormalizeLocation rewrites a US location whose province is a territory
// into a location in that territory's own country. It is idempotent.
func NormalizeLocation(loc shipper.Location) shipper.Location {
	if loc.CountryCode != "US" || !territoriesAsCountries(loc.ProvinceCode) {
		return loc
	}
	out := loc
	out.CountryCode = loc.ProvinceCode
	out.ProvinceCode = ""
	return out
}
