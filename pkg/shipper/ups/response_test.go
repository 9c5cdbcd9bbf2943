package ups_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upsbridge/pkg/shipper"
	"github.com/tournevent/upsbridge/pkg/shipper/ups"
)

func failureResponse(root string) string {
	return `<?xml version="1.0"?><` + root + `>
  <Response>
    <ResponseStatusCode>0</ResponseStatusCode>
    <ResponseStatusDescription>Failure</ResponseStatusDescription>
    <Error>
      <ErrorSeverity>Hard</ErrorSeverity>
      <ErrorCode>120802</ErrorCode>
      <ErrorDescription>Address Validation Error on ShipTo address</ErrorDescription>
      <MinimumRetrySeconds>30</MinimumRetrySeconds>
      <ErrorLocation>
        <ErrorLocationElementName>ShipTo</ErrorLocationElementName>
        <ErrorLocationAttributeName>PostalCode</ErrorLocationAttributeName>
      </ErrorLocation>
      <ErrorDigest>digest-1</ErrorDigest>
    </Error>
  </Response>
</` + root + `>`
}

// clientReturning builds a client whose transport answers every resource with body.
func clientReturning(body string) *ups.Client {
	mockAPI := ups.NewMockAPIClient()
	for _, resource := range []string{"Rate", "TimeInTransit", "Track", "ShipConfirm", "ShipAccept", "Void", "AV", "XAV"} {
		mockAPI.Responses[resource] = body
	}
	return newTestClient(mockAPI, credentials())
}

// operations runs every carrier operation once against client.
func operations(client *ups.Client) map[string]error {
	ctx := context.Background()
	pkgs := []shipper.Package{imperialPackage()}
	results := map[string]error{}

	_, results["rates"] = client.Rates(ctx, usOrigin(), usDestination(), pkgs, ups.Options{})
	_, results["transit_time"] = client.TransitTime(ctx, "30301", "07101", ups.Options{})
	_, results["tracking"] = client.Track(ctx, "1Z1", ups.Options{})
	_, results["ship_confirm"] = client.ConfirmShipment(ctx, usOrigin(), usDestination(), pkgs, ups.Options{Service: "03"})
	_, results["ship_accept"] = client.AcceptShipment(ctx, "digest", ups.Options{})
	_, results["void"] = client.VoidShipment(ctx, "1Z1", nil, ups.Options{})
	_, results["address_validation"] = client.ValidateAddress(ctx, shipper.Location{City: "Timonium"}, ups.Options{})
	_, results["street_validation"] = client.ValidateStreetAddress(ctx, shipper.Location{City: "Aliso Viejo"}, ups.Options{})
	return results
}

func TestResponse_FailureStatusRejectsEveryOperation(t *testing.T) {
	// Only the Response block is present: any success-path extraction of a
	// required node would surface as a malformed response instead.
	client := clientReturning(failureResponse("AnyResponse"))

	for op, err := range operations(client) {
		t.Run(op, func(t *testing.T) {
			require.Error(t, err)
			assert.True(t, errors.Is(err, shipper.ErrCarrierRejected))
			assert.False(t, errors.Is(err, shipper.ErrMalformedResponse))

			var respErr *ups.ResponseError
			require.True(t, errors.As(err, &respErr))
			assert.Equal(t, op, respErr.Operation)
			assert.Equal(t, "Failure", respErr.Status)
			assert.Equal(t, "Hard", respErr.Severity)
			assert.Equal(t, "120802", respErr.Code)
			assert.Equal(t, "Address Validation Error on ShipTo address", respErr.Message())
			assert.Equal(t, "30", respErr.MinimumRetrySeconds)
			assert.Equal(t, "ShipTo", respErr.LocationElementName)
			assert.Equal(t, "PostalCode", respErr.LocationAttributeName)
			assert.Equal(t, "digest-1", respErr.Digest)
		})
	}
}

func TestResponse_FailureMessageFallsBackToStatus(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><TrackResponse><Response>` +
		`<ResponseStatusCode>0</ResponseStatusCode><ResponseStatusDescription>Failure</ResponseStatusDescription>` +
		`</Response></TrackResponse>`)

	_, err := client.Track(context.Background(), "1Z1", ups.Options{})

	var respErr *ups.ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, "Failure", respErr.Message())
	assert.Equal(t, "ups tracking failed: Failure", respErr.Error())
}

func TestResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not xml", "<html><body>Bad Gateway"},
		{"empty", ""},
		{"missing status", `<?xml version="1.0"?><TrackResponse><Response/></TrackResponse>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for op, err := range operations(clientReturning(tt.body)) {
				assert.True(t, errors.Is(err, shipper.ErrMalformedResponse), "%s: %v", op, err)
				assert.False(t, errors.Is(err, shipper.ErrCarrierRejected), op)
			}
		})
	}
}

func TestResponse_MissingRequiredNodes(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><AnyResponse><Response>` +
		`<ResponseStatusCode>1</ResponseStatusCode></Response></AnyResponse>`)

	results := operations(client)

	for _, op := range []string{"tracking", "ship_confirm", "ship_accept"} {
		assert.True(t, errors.Is(results[op], shipper.ErrMalformedResponse), op)
	}
	for _, op := range []string{"rates", "transit_time", "void", "address_validation", "street_validation"} {
		assert.NoError(t, results[op], op)
	}
}

func TestResponse_Rate(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?>
<RatingServiceSelectionResponse>
  <Response><ResponseStatusCode>1</ResponseStatusCode><ResponseStatusDescription>Success</ResponseStatusDescription></Response>
  <RatedShipment>
    <Service><Code>03</Code></Service>
    <GuaranteedDaysToDelivery>2</GuaranteedDaysToDelivery>
    <TotalCharges><CurrencyCode>USD</CurrencyCode><MonetaryValue>12.50</MonetaryValue></TotalCharges>
  </RatedShipment>
</RatingServiceSelectionResponse>`)
	pkgs := []shipper.Package{imperialPackage()}

	result, err := client.Rates(context.Background(), usOrigin(), usDestination(), pkgs, ups.Options{})

	require.NoError(t, err)
	require.Len(t, result.Rates, 1)
	rate := result.Rates[0]
	assert.Equal(t, "03", rate.ServiceCode)
	assert.Equal(t, "UPS Ground", rate.ServiceName)
	assert.True(t, rate.TotalPrice.Amount.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "12.5", rate.TotalPrice.Amount.String())
	assert.Equal(t, "USD", rate.TotalPrice.Currency)
	assert.Equal(t, pkgs, rate.Packages)
	require.NotNil(t, rate.DeliveryDate)
	assert.Equal(t, time.Date(2023, 1, 17, 0, 0, 0, 0, time.UTC), *rate.DeliveryDate)
}

func TestResponse_RateServiceNameUsesOrigin(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><RatingServiceSelectionResponse>
<Response><ResponseStatusCode>1</ResponseStatusCode></Response>
<RatedShipment><Service><Code>01</Code></Service><TotalCharges><CurrencyCode>CAD</CurrencyCode><MonetaryValue>40.00</MonetaryValue></TotalCharges></RatedShipment>
</RatingServiceSelectionResponse>`)
	origin := shipper.Location{City: "Toronto", ProvinceCode: "ON", PostalCode: "M5V1A1", CountryCode: "CA"}

	result, err := client.Rates(context.Background(), origin, usDestination(), []shipper.Package{imperialPackage()}, ups.Options{})

	require.NoError(t, err)
	require.Len(t, result.Rates, 1)
	assert.Equal(t, "UPS Express", result.Rates[0].ServiceName)
	assert.Nil(t, result.Rates[0].DeliveryDate)
}

func TestResponse_RateRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		rated string
	}{
		{"no service", `<TotalCharges><CurrencyCode>USD</CurrencyCode><MonetaryValue>12.50</MonetaryValue></TotalCharges>`},
		{"empty service code", `<Service><Code></Code></Service><TotalCharges><CurrencyCode>USD</CurrencyCode><MonetaryValue>12.50</MonetaryValue></TotalCharges>`},
		{"no charges", `<Service><Code>03</Code></Service><GuaranteedDaysToDelivery>2</GuaranteedDaysToDelivery>`},
		{"no amount", `<Service><Code>03</Code></Service><TotalCharges><CurrencyCode>USD</CurrencyCode></TotalCharges>`},
		{"no currency", `<Service><Code>03</Code></Service><TotalCharges><MonetaryValue>12.50</MonetaryValue></TotalCharges>`},
		{"days only", `<GuaranteedDaysToDelivery>2</GuaranteedDaysToDelivery>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := clientReturning(`<?xml version="1.0"?><RatingServiceSelectionResponse>
<Response><ResponseStatusCode>1</ResponseStatusCode></Response>
<RatedShipment>` + tt.rated + `</RatedShipment>
</RatingServiceSelectionResponse>`)

			result, err := client.Rates(context.Background(), usOrigin(), usDestination(), []shipper.Package{imperialPackage()}, ups.Options{})

			assert.Nil(t, result)
			assert.True(t, errors.Is(err, shipper.ErrMalformedResponse), "%v", err)
			assert.False(t, errors.Is(err, shipper.ErrCarrierRejected))
		})
	}
}

func TestResponse_VoidPackageStatusIsCodeOnly(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><VoidShipmentResponse>
<Response><ResponseStatusCode>1</ResponseStatusCode></Response>
<Status><StatusType><Code>1</Code></StatusType><StatusCode><Code>1</Code></StatusCode></Status>
<PackageLevelResults>
  <TrackingNumber>1ZPKG1</TrackingNumber>
  <StatusCode><Code>1</Code><Description>Voided</Description></StatusCode>
</PackageLevelResults>
</VoidShipmentResponse>`)

	result, err := client.VoidShipment(context.Background(), "1ZSHIP", []string{"1ZPKG1"}, ups.Options{})

	require.NoError(t, err)
	require.Len(t, result.PackageResults, 1)
	assert.Equal(t, "1ZPKG1", result.PackageResults[0].TrackingNumber)
	assert.Equal(t, "1", result.PackageResults[0].StatusCode)
	assert.Equal(t, "Voided", result.PackageResults[0].StatusCodeDescription)
}

func TestResponse_RateBadNumber(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><RatingServiceSelectionResponse>
<Response><ResponseStatusCode>1</ResponseStatusCode></Response>
<RatedShipment><Service><Code>03</Code></Service><TotalCharges><CurrencyCode>USD</CurrencyCode><MonetaryValue>twelve</MonetaryValue></TotalCharges></RatedShipment>
</RatingServiceSelectionResponse>`)

	_, err := client.Rates(context.Background(), usOrigin(), usDestination(), []shipper.Package{imperialPackage()}, ups.Options{})

	assert.True(t, errors.Is(err, shipper.ErrMalformedResponse))
}

func TestResponse_TransitTime(t *testing.T) {
	client := newTestClient(ups.NewMockAPIClient(), credentials())

	times, err := client.TransitTime(context.Background(), "30301", "07101", ups.Options{})

	require.NoError(t, err)
	assert.Equal(t, ups.TransitTimes{"GND": 4, "2DA": 2, "1DA": 1}, times)
}

func TestResponse_Tracking(t *testing.T) {
	client := newTestClient(ups.NewMockAPIClient(), credentials())

	detail, err := client.Track(context.Background(), "1Z12345E0291980793", ups.Options{})

	require.NoError(t, err)
	assert.Equal(t, "1Z12345E0291980793", detail.TrackingNumber)
	require.NotNil(t, detail.EstimatedDelivery)
	assert.Equal(t, time.Date(2023, 1, 18, 0, 0, 0, 0, time.UTC), *detail.EstimatedDelivery)

	require.Len(t, detail.Activities, 2)
	pickup := detail.Activities[1]
	assert.Equal(t, "PU", pickup.StatusCode)
	assert.Equal(t, "PICKUP SCAN", pickup.StatusDescription)
	assert.Equal(t, time.Date(2023, 1, 15, 9, 30, 45, 0, time.UTC), pickup.Timestamp)
	assert.Equal(t, "ATLANTA GA US", pickup.Location)
}

func TestResponse_TrackingRescheduledDate(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><TrackResponse>
<Response><ResponseStatusCode>1</ResponseStatusCode></Response>
<Shipment><Package>
  <TrackingNumber>1Z9</TrackingNumber>
  <RescheduledDeliveryDate>20230120</RescheduledDeliveryDate>
  <Activity><Status><StatusType><Description>EXCEPTION</Description></StatusType><StatusCode><Code>X</Code></StatusCode></Status>
    <Date>20230119</Date><Time>0715</Time></Activity>
</Package></Shipment></TrackResponse>`)

	detail, err := client.Track(context.Background(), "1Z9", ups.Options{})

	require.NoError(t, err)
	require.NotNil(t, detail.EstimatedDelivery)
	assert.Equal(t, time.Date(2023, 1, 20, 0, 0, 0, 0, time.UTC), *detail.EstimatedDelivery)
	require.Len(t, detail.Activities, 1)
	assert.Equal(t, time.Date(2023, 1, 19, 7, 15, 0, 0, time.UTC), detail.Activities[0].Timestamp)
	assert.Equal(t, "  ", detail.Activities[0].Location)
}

func TestResponse_TrackingBadDate(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><TrackResponse>
<Response><ResponseStatusCode>1</ResponseStatusCode></Response>
<Shipment><Package><TrackingNumber>1Z9</TrackingNumber>
  <Activity><Date>2023-01-19</Date><Time>071500</Time></Activity>
</Package></Shipment></TrackResponse>`)

	_, err := client.Track(context.Background(), "1Z9", ups.Options{})

	assert.True(t, errors.Is(err, shipper.ErrMalformedResponse))
}

func TestResponse_ShipConfirm(t *testing.T) {
	client := newTestClient(ups.NewMockAPIClient(), credentials())

	result, err := client.ConfirmShipment(context.Background(), usOrigin(), usDestination(),
		[]shipper.Package{imperialPackage()}, ups.Options{Service: "03"})

	require.NoError(t, err)
	assert.Equal(t, "rO0ABXNyACpjb20udXBzLmVjaXMuY29yZS5zaGlwbWVudHMuU2hpcG1lbnREaWdlc3Q", result.Digest)
}

func TestResponse_ShipAccept(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><ShipmentAcceptResponse>
<Response><ResponseStatusCode>1</ResponseStatusCode></Response>
<ShipmentResults>
  <ShipmentCharges><TotalCharges><CurrencyCode>USD</CurrencyCode><MonetaryValue>25.10</MonetaryValue></TotalCharges></ShipmentCharges>
  <ShipmentIdentificationNumber>1ZSHIP</ShipmentIdentificationNumber>
  <PackageResults><TrackingNumber>1ZPKG1</TrackingNumber><LabelImage><GraphicImage>R0lGAAA=</GraphicImage></LabelImage></PackageResults>
  <PackageResults><TrackingNumber>1ZPKG2</TrackingNumber><LabelImage><GraphicImage>R0lGBBB=</GraphicImage></LabelImage></PackageResults>
</ShipmentResults></ShipmentAcceptResponse>`)

	result, err := client.AcceptShipment(context.Background(), "digest", ups.Options{})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "1ZSHIP", result.ShipmentID)
	assert.Equal(t, "25.1", result.Charges.Amount.String())
	assert.Equal(t, "USD", result.Charges.Currency)
	assert.Equal(t, []string{"1ZPKG1", "1ZPKG2"}, result.TrackingNumbers)
	assert.Equal(t, []string{"R0lGAAA=", "R0lGBBB="}, result.Labels)
}

func TestResponse_Void(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><VoidShipmentResponse>
<Response><ResponseStatusCode>1</ResponseStatusCode><ResponseStatusDescription>Success</ResponseStatusDescription></Response>
<Status>
  <StatusType><Code>1</Code><Description>Partial</Description></StatusType>
  <StatusCode><Code>2</Code><Description>Partially Voided</Description></StatusCode>
</Status>
<PackageLevelResults><TrackingNumber>1ZPKG1</TrackingNumber><StatusCode><Code>1</Code><Description>Voided</Description></StatusCode></PackageLevelResults>
<PackageLevelResults><TrackingNumber>1ZPKG2</TrackingNumber><StatusCode><Code>0</Code><Description>Already delivered</Description></StatusCode></PackageLevelResults>
</VoidShipmentResponse>`)

	result, err := client.VoidShipment(context.Background(), "1ZSHIP", []string{"1ZPKG1", "1ZPKG2"}, ups.Options{})

	require.NoError(t, err)
	assert.Equal(t, "1", result.StatusTypeCode)
	assert.Equal(t, "Partial", result.StatusTypeDescription)
	assert.Equal(t, "1", result.ResponseStatusCode)
	assert.Equal(t, "Success", result.ResponseStatusDescription)
	assert.Equal(t, "2", result.StatusCode)
	assert.Equal(t, "Partially Voided", result.StatusCodeDescription)
	assert.Nil(t, result.Warning)
	assert.Equal(t, []ups.PackageVoidResult{
		{TrackingNumber: "1ZPKG1", StatusCode: "1", StatusCodeDescription: "Voided"},
		{TrackingNumber: "1ZPKG2", StatusCode: "0", StatusCodeDescription: "Already delivered"},
	}, result.PackageResults)
}

func TestResponse_VoidWarning(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><VoidShipmentResponse>
<Response><ResponseStatusCode>1</ResponseStatusCode>
  <Error><ErrorSeverity>Warning</ErrorSeverity><ErrorCode>190101</ErrorCode><ErrorDescription>Void period expired soon</ErrorDescription></Error>
</Response>
<Status><StatusType><Code>1</Code></StatusType><StatusCode><Code>1</Code></StatusCode></Status>
</VoidShipmentResponse>`)

	result, err := client.VoidShipment(context.Background(), "1ZSHIP", nil, ups.Options{})

	require.NoError(t, err)
	require.NotNil(t, result.Warning)
	assert.Equal(t, "Warning", result.Warning.Severity)
	assert.Equal(t, "190101", result.Warning.Code)
	assert.Empty(t, result.PackageResults)
}

func TestResponse_AddressValidationKeepsEveryCandidate(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><AddressValidationResponse>
<Response><ResponseStatusCode>1</ResponseStatusCode></Response>
<AddressValidationResult><Rank>1</Rank><Quality>0.9875</Quality>
  <Address><City>TIMONIUM</City><StateProvinceCode>MD</StateProvinceCode></Address>
  <PostalCodeLowEnd>21093</PostalCodeLowEnd><PostalCodeHighEnd>21094</PostalCodeHighEnd></AddressValidationResult>
<AddressValidationResult><Rank>2</Rank><Quality>0.5</Quality>
  <Address><City>LUTHERVILLE TIMONIUM</City><StateProvinceCode>MD</StateProvinceCode></Address>
  <PostalCodeLowEnd>21093</PostalCodeLowEnd><PostalCodeHighEnd>21093</PostalCodeHighEnd></AddressValidationResult>
</AddressValidationResponse>`)

	candidates, err := client.ValidateAddress(context.Background(), shipper.Location{City: "Timonium", ProvinceCode: "MD"}, ups.Options{})

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, 1, candidates[0].Rank)
	assert.Equal(t, "0.9875", candidates[0].Quality.String())
	assert.Equal(t, "TIMONIUM", candidates[0].City)
	assert.Equal(t, "MD", candidates[0].State)
	assert.Equal(t, "21093", candidates[0].PostalCodeLow)
	assert.Equal(t, "21094", candidates[0].PostalCodeHigh)
	assert.Equal(t, 2, candidates[1].Rank)
	assert.Equal(t, "LUTHERVILLE TIMONIUM", candidates[1].City)
}

func TestResponse_StreetValidation(t *testing.T) {
	client := clientReturning(`<?xml version="1.0"?><AddressValidationResponse>
<Response><ResponseStatusCode>1</ResponseStatusCode></Response>
<AddressKeyFormat>
  <AddressLine>26601 ALISO CREEK RD</AddressLine>
  <AddressLine>STE D</AddressLine>
  <Region>ALISO VIEJO CA 92656-2834</Region>
  <PoliticalDivision2>ALISO VIEJO</PoliticalDivision2>
  <PoliticalDivision1>CA</PoliticalDivision1>
  <PostcodePrimaryLow>92656</PostcodePrimaryLow>
  <PostcodeExtendedLow>2834</PostcodeExtendedLow>
  <CountryCode>US</CountryCode>
</AddressKeyFormat>
<AddressKeyFormat><AddressLine>26601 ALISO CREEK RD</AddressLine><PoliticalDivision2>ALISO VIEJO</PoliticalDivision2></AddressKeyFormat>
</AddressValidationResponse>`)

	candidates, err := client.ValidateStreetAddress(context.Background(), shipper.Location{Line1: "26601 Aliso Creek Rd"}, ups.Options{})

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, ups.StreetCandidate{
		AddressLines:       []string{"26601 ALISO CREEK RD", "STE D"},
		Region:             "ALISO VIEJO CA 92656-2834",
		City:               "ALISO VIEJO",
		State:              "CA",
		PostalCode:         "92656",
		PostalCodeExtended: "2834",
		CountryCode:        "US",
	}, candidates[0])
	assert.Equal(t, []string{"26601 ALISO CREEK RD"}, candidates[1].AddressLines)
}
