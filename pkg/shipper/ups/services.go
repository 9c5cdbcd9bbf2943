package ups

// Service tables keyed by UPS service code.
var (
	defaultServices = map[string]string{
		"01": "UPS Next Day Air",
		"02": "UPS Second Day Air",
		"03": "UPS Ground",
		"07": "UPS Worldwide Express",
		"08": "UPS Worldwide Expedited",
		"11": "UPS Standard",
		"12": "UPS Three-Day Select",
		"13": "UPS Next Day Air Saver",
		"14": "UPS Next Day Air Early A.M.",
		"54": "UPS Worldwide Express Plus",
		"59": "UPS Second Day Air A.M.",
		"65": "UPS Saver",
		"82": "UPS Today Standard",
		"83": "UPS Today Dedicated Courier",
		"84": "UPS Today Intercity",
		"85": "UPS Today Express",
		"86": "UPS Today Express Saver",
	}

	canadaServices = map[string]string{
		"01": "UPS Express",
		"02": "UPS Expedited",
		"14": "UPS Express Early A.M.",
	}

	mexicoServices = map[string]string{
		"07": "UPS Express",
		"08": "UPS Expedited",
		"54": "UPS Express Plus",
	}

	euServices = map[string]string{
		"07": "UPS Express",
		"08": "UPS Expedited",
	}

	otherNonUSServices = map[string]string{
		"07": "UPS Express",
	}
)

var isEUCountry = countryIn(
	"GB", "AT", "BE", "BG", "CY", "CZ", "DK", "EE", "FI", "FR", "DE", "GR", "HU", "IE",
	"IT", "LV", "LT", "LU", "MT", "NL", "PL", "PT", "RO", "SK", "SI", "ES", "SE",
)

// servicePolicies is evaluated in order. The first policy that applies to
// the origin and knows the code names the service. The other non-US table
// is consulted for every origin, US included, before the default table.
var servicePolicies = []struct {
	applies  func(origin string) bool
	services map[string]string
}{
	{applies: countryIn("CA"), services: canadaServices},
	{applies: countryIn("MX"), services: mexicoServices},
	{applies: isEUCountry, services: euServices},
	{applies: anyOrigin, services: otherNonUSServices},
	{applies: anyOrigin, services: defaultServices},
}

func anyOrigin(string) bool { return true }

// ServiceName returns the marketing name of a service code as seen from an
// origin country.
func ServiceName(originCountry, code string) (string, bool) {
	for _, p := range servicePolicies {
		if !p.applies(originCountry) {
			continue
		}
		if name, ok := p.services[code]; ok {
			return name, true
		}
	}
	return "", false
}
