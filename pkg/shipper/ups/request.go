package ups

import (
	"time"

	"github.com/beevik/etree"
	"github.com/tournevent/upsbridge/pkg/shipper"
)

// Location node roles inside a Shipment.
const (
	roleShipper  = "Shipper"
	roleShipTo   = "ShipTo"
	roleShipFrom = "ShipFrom"
)

const (
	customerPackaging  = "02"
	trackShipmentType  = "01"
	transitXpciVersion = "1.0002"
	pickupDateLayout   = "20060102"
)

func buildAccessRequest(o effectiveOptions) (string, error) {
	doc, root := newRequestDocument("AccessRequest")
	addText(root, "AccessLicenseNumber", o.key)
	addText(root, "UserId", o.login)
	addText(root, "Password", o.password)
	return fragment(doc)
}

// addRequest appends the Request header every operation starts with.
func addRequest(parent *etree.Element, action, option string) *etree.Element {
	req := parent.CreateElement("Request")
	addText(req, "RequestAction", action)
	if option != "" {
		addText(req, "RequestOption", option)
	}
	return req
}

func buildRateRequest(origin, destination shipper.Location, packages []shipper.Package, o effectiveOptions) (string, error) {
	pickupCode, classificationCode, err := o.rateCodes()
	if err != nil {
		return "", err
	}

	doc, root := newRequestDocument("RatingServiceSelectionRequest")
	addRequest(root, "Rate", "Shop")
	addCode(root, "PickupType", pickupCode)
	addCode(root, "CustomerClassification", classificationCode)

	shipment := root.CreateElement("Shipment")
	addParties(shipment, origin, destination, o)

	units := unitSystemFor(origin)
	for _, pkg := range packages {
		el := shipment.CreateElement("Package")
		addCode(el, "PackagingType", customerPackaging)
		addMeasures(el, units, pkg)
		addPackageServiceOptions(el, pkg)
	}
	return fragment(doc)
}

func buildTransitTimeRequest(originPostal, destinationPostal string, pickup time.Time) (string, error) {
	doc, root := newRequestDocument("TimeInTransitRequest")
	req := addRequest(root, "TimeInTransit", "")
	ref := req.CreateElement("TransactionReference")
	addText(ref, "XpciVersion", transitXpciVersion)

	addText(root, "TotalPackagesInShipment", "1")
	weight := root.CreateElement("ShipmentWeight")
	addCode(weight, "UnitOfMeasurement", "LBS")
	addText(weight, "Weight", "5")
	addText(root, "PickupDate", pickup.Format(pickupDateLayout))

	addTransitPoint(root, "TransitFrom", originPostal)
	addTransitPoint(root, "TransitTo", destinationPostal)
	return fragment(doc)
}

func addTransitPoint(parent *etree.Element, tag, postal string) {
	format := parent.CreateElement(tag).CreateElement("AddressArtifactFormat")
	addText(format, "CountryCode", "US")
	addText(format, "PostcodePrimaryLow", postal)
}

func buildTrackingRequest(trackingNumber string) (string, error) {
	doc, root := newRequestDocument("TrackRequest")
	req := root.CreateElement("Request")
	req.CreateElement("TransactionReference")
	addText(req, "RequestAction", "Track")
	addText(root, "TrackingNumber", trackingNumber)
	addCode(root, "ShipmentType", trackShipmentType)
	return fragment(doc)
}

func buildShipConfirmRequest(origin, destination shipper.Location, packages []shipper.Package, o effectiveOptions) (string, error) {
	option := "validate"
	if o.nonvalidate {
		option = "nonvalidate"
	}

	doc, root := newRequestDocument("ShipmentConfirmRequest")
	addRequest(root, "ShipConfirm", option)

	shipment := root.CreateElement("Shipment")
	addParties(shipment, origin, destination, o)

	billShipper := shipment.CreateElement("PaymentInformation").CreateElement("Prepaid").CreateElement("BillShipper")
	addText(billShipper, "AccountNumber", o.originAccount)

	if o.returnServiceCode != "" {
		addCode(shipment, "ReturnService", o.returnServiceCode)
	}
	addCode(shipment, "Service", o.service)

	serviceOptions := shipment.CreateElement("ShipmentServiceOptions")
	if o.saturday {
		serviceOptions.CreateElement("SaturdayDelivery")
	}
	if o.deliveryConfirmation != "" {
		addText(serviceOptions.CreateElement("DeliveryConfirmation"), "DCISType", o.deliveryConfirmation)
	}

	units := unitSystemFor(origin)
	for _, pkg := range packages {
		el := shipment.CreateElement("Package")
		packaging := pkg.PackageType
		if packaging == "" {
			packaging = customerPackaging
		}
		addCode(el, "PackagingType", packaging)
		addMeasures(el, units, pkg)
		addOptional(el, "Description", pkg.Description)
		addPackageServiceOptions(el, pkg)
		for _, ref := range pkg.References {
			refEl := el.CreateElement("ReferenceNumber")
			addText(refEl, "Code", ref.Code)
			addText(refEl, "Value", ref.Value)
			if ref.BarCode {
				refEl.CreateElement("BarCodeIndicator")
			}
		}
	}

	label := root.CreateElement("LabelSpecification")
	addCode(label, "LabelPrintMethod", "GIF")
	addCode(label, "LabelImageFormat", "PNG")
	return fragment(doc)
}

func buildShipAcceptRequest(digest string) (string, error) {
	doc, root := newRequestDocument("ShipmentAcceptRequest")
	addRequest(root, "ShipAccept", "")
	addText(root, "ShipmentDigest", digest)
	return fragment(doc)
}

func buildVoidRequest(shipmentID string, trackingNumbers []string) (string, error) {
	doc, root := newRequestDocument("VoidShipmentRequest")
	addRequest(root, "Void", "")
	expanded := root.CreateElement("ExpandedVoidShipment")
	addText(expanded, "ShipmentIdentificationNumber", shipmentID)
	for _, n := range trackingNumbers {
		addText(expanded, "TrackingNumber", n)
	}
	return fragment(doc)
}

func buildAddressValidationRequest(addr shipper.Location) (string, error) {
	doc, root := newRequestDocument("AddressValidationRequest")
	addRequest(root, "AV", "")
	el := root.CreateElement("Address")
	addText(el, "City", addr.City)
	addText(el, "StateProvinceCode", addr.ProvinceCode)
	addText(el, "CountryCode", addr.CountryCode)
	addText(el, "PostalCode", addr.PostalCode)
	return fragment(doc)
}

func buildStreetValidationRequest(addr shipper.Location) (string, error) {
	doc, root := newRequestDocument("AddressValidationRequest")
	addRequest(root, "XAV", "")
	el := root.CreateElement("AddressKeyFormat")
	addText(el, "AddressLine", addr.Line1)
	addText(el, "PoliticalDivision2", addr.City)
	addText(el, "PoliticalDivision1", addr.ProvinceCode)
	addText(el, "PostcodePrimaryLow", addr.PostalCode)
	addText(el, "CountryCode", addr.CountryCode)
	return fragment(doc)
}

// addParties writes the Shipper, ShipTo and optional ShipFrom nodes. A
// distinct shipper takes the Shipper role and the origin becomes ShipFrom.
func addParties(shipment *etree.Element, origin, destination shipper.Location, o effectiveOptions) {
	shipperLoc := origin
	if o.shipper != nil {
		shipperLoc = *o.shipper
	}
	addLocation(shipment, roleShipper, shipperLoc, o)
	addLocation(shipment, roleShipTo, destination, o)
	if o.shipper != nil && *o.shipper != origin {
		addLocation(shipment, roleShipFrom, origin, o)
	}
}

func addLocation(parent *etree.Element, role string, loc shipper.Location, o effectiveOptions) {
	el := parent.CreateElement(role)
	addOptional(el, "Name", loc.Name)
	addOptional(el, "AttentionName", loc.AttentionName)
	addOptional(el, "CompanyName", loc.Company)
	addOptional(el, "PhoneNumber", digitsOnly(loc.Phone))
	addOptional(el, "FaxNumber", digitsOnly(loc.Fax))

	switch {
	case role == roleShipper && o.originAccount != "":
		addText(el, "ShipperNumber", o.originAccount)
	case role == roleShipTo && o.destinationAccount != "":
		addText(el, "ShipperAssignedIdentificationNumber", o.destinationAccount)
	}

	addr := el.CreateElement("Address")
	addOptional(addr, "AddressLine1", loc.Line1)
	addOptional(addr, "AddressLine2", loc.Line2)
	addOptional(addr, "AddressLine3", loc.Line3)
	addOptional(addr, "City", loc.City)
	addOptional(addr, "StateProvinceCode", loc.ProvinceCode)
	addOptional(addr, "PostalCode", loc.PostalCode)
	addOptional(addr, "CountryCode", loc.CountryCode)
	if !loc.Commercial {
		addr.CreateElement("ResidentialAddress")
	}
}

func addMeasures(pkgEl *etree.Element, units unitSystem, pkg shipper.Package) {
	length, width, height, weight := units.measures(pkg)

	dims := pkgEl.CreateElement("Dimensions")
	addCode(dims, "UnitOfMeasurement", units.DimensionCode)
	addText(dims, "Length", length)
	addText(dims, "Width", width)
	addText(dims, "Height", height)

	w := pkgEl.CreateElement("PackageWeight")
	addCode(w, "UnitOfMeasurement", units.WeightCode)
	addText(w, "Weight", weight)
}

func addPackageServiceOptions(pkgEl *etree.Element, pkg shipper.Package) {
	opts := pkgEl.CreateElement("PackageServiceOptions")
	if pkg.DeliveryConfirmation != "" {
		addText(opts.CreateElement("DeliveryConfirmation"), "DCISType", pkg.DeliveryConfirmation)
	}
}

func digitsOnly(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
