package ups

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tournevent/upsbridge/pkg/shipper"
)

// CommittedRequest is a request seen by MockAPIClient.
type CommittedRequest struct {
	URL  string
	Body string
}

// Resource returns the UPS resource name the request was posted to.
func (r CommittedRequest) Resource() string {
	return r.URL[strings.LastIndex(r.URL, "/")+1:]
}

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	// Responses overrides the canned body for a resource such as "Rate".
	Responses map[string]string

	OnCommit func(ctx context.Context, url string, body []byte) ([]byte, error)

	mu       sync.Mutex
	requests []CommittedRequest
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{Responses: map[string]string{}}
}

// Commit records the request and returns a canned response.
func (m *MockAPIClient) Commit(ctx context.Context, url string, body []byte) ([]byte, error) {
	req := CommittedRequest{URL: url, Body: string(body)}
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.SimulateLatency > 0 {
		select {
		case <-time.After(m.SimulateLatency):
		case <-ctx.Done():
			return nil, transportError("TRANSPORT", "request failed", 0, false, ctx.Err())
		}
	}

	if m.SimulateErrors {
		return nil, transportError("MOCK_ERROR", "Simulated API error",
			http.StatusServiceUnavailable, true, shipper.ErrServiceUnavailable)
	}

	if m.OnCommit != nil {
		return m.OnCommit(ctx, url, body)
	}

	resource := req.Resource()
	if resp, ok := m.Responses[resource]; ok {
		return []byte(resp), nil
	}
	if resp, ok := mockResponses[resource]; ok {
		return []byte(resp), nil
	}
	return nil, transportError("HTTP_404", fmt.Sprintf("no mock response for %s", resource),
		http.StatusNotFound, false, nil)
}

// Requests returns a copy of every request committed so far.
func (m *MockAPIClient) Requests() []CommittedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CommittedRequest(nil), m.requests...)
}

// LastRequest returns the most recent committed request.
func (m *MockAPIClient) LastRequest() (CommittedRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return CommittedRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}

// mockResponses are successful UPS answers keyed by resource name.
var mockResponses = map[string]string{
	"Rate": `<?xml version="1.0"?>
<RatingServiceSelectionResponse>
  <Response><ResponseStatusCode>1</ResponseStatusCode><ResponseStatusDescription>Success</ResponseStatusDescription></Response>
  <RatedShipment>
    <Service><Code>03</Code></Service>
    <TotalCharges><CurrencyCode>USD</CurrencyCode><MonetaryValue>12.50</MonetaryValue></TotalCharges>
    <GuaranteedDaysToDelivery></GuaranteedDaysToDelivery>
  </RatedShipment>
  <RatedShipment>
    <Service><Code>02</Code></Service>
    <TotalCharges><CurrencyCode>USD</CurrencyCode><MonetaryValue>31.75</MonetaryValue></TotalCharges>
    <GuaranteedDaysToDelivery>2</GuaranteedDaysToDelivery>
  </RatedShipment>
  <RatedShipment>
    <Service><Code>01</Code></Service>
    <TotalCharges><CurrencyCode>USD</CurrencyCode><MonetaryValue>58.20</MonetaryValue></TotalCharges>
    <GuaranteedDaysToDelivery>1</GuaranteedDaysToDelivery>
  </RatedShipment>
</RatingServiceSelectionResponse>`,

	"TimeInTransit": `<?xml version="1.0"?>
<TimeInTransitResponse>
  <Response><ResponseStatusCode>1</ResponseStatusCode><ResponseStatusDescription>Success</ResponseStatusDescription></Response>
  <TransitResponse>
    <ServiceSummary><Service><Code>GND</Code></Service><EstimatedArrival><BusinessTransitDays>4</BusinessTransitDays></EstimatedArrival></ServiceSummary>
    <ServiceSummary><Service><Code>2DA</Code></Service><EstimatedArrival><BusinessTransitDays>2</BusinessTransitDays></EstimatedArrival></ServiceSummary>
    <ServiceSummary><Service><Code>1DA</Code></Service><EstimatedArrival><BusinessTransitDays>1</BusinessTransitDays></EstimatedArrival></ServiceSummary>
  </TransitResponse>
</TimeInTransitResponse>`,

	"Track": `<?xml version="1.0"?>
<TrackResponse>
  <Response><ResponseStatusCode>1</ResponseStatusCode><ResponseStatusDescription>Success</ResponseStatusDescription></Response>
  <Shipment>
    <ScheduledDeliveryDate>20230118</ScheduledDeliveryDate>
    <Package>
      <TrackingNumber>1Z12345E0291980793</TrackingNumber>
      <Activity>
        <ActivityLocation><Address><City>NEWARK</City><StateProvinceCode>NJ</StateProvinceCode><CountryCode>US</CountryCode></Address></ActivityLocation>
        <Status><StatusType><Code>I</Code><Description>DEPARTURE SCAN</Description></StatusType><StatusCode><Code>DP</Code></StatusCode></Status>
        <Date>20230116</Date>
        <Time>041500</Time>
      </Activity>
      <Activity>
        <ActivityLocation><Address><City>ATLANTA</City><StateProvinceCode>GA</StateProvinceCode><CountryCode>US</CountryCode></Address></ActivityLocation>
        <Status><StatusType><Code>P</Code><Description>PICKUP SCAN</Description></StatusType><StatusCode><Code>PU</Code></StatusCode></Status>
        <Date>20230115</Date>
        <Time>093045</Time>
      </Activity>
    </Package>
  </Shipment>
</TrackResponse>`,

	"ShipConfirm": `<?xml version="1.0"?>
<ShipmentConfirmResponse>
  <Response><ResponseStatusCode>1</ResponseStatusCode><ResponseStatusDescription>Success</ResponseStatusDescription></Response>
  <ShipmentCharges><TotalCharges><CurrencyCode>USD</CurrencyCode><MonetaryValue>12.50</MonetaryValue></TotalCharges></ShipmentCharges>
  <ShipmentIdentificationNumber>1Z12345E0291980793</ShipmentIdentificationNumber>
  <ShipmentDigest>rO0ABXNyACpjb20udXBzLmVjaXMuY29yZS5zaGlwbWVudHMuU2hpcG1lbnREaWdlc3Q</ShipmentDigest>
</ShipmentConfirmResponse>`,

	"ShipAccept": `<?xml version="1.0"?>
<ShipmentAcceptResponse>
  <Response><ResponseStatusCode>1</ResponseStatusCode><ResponseStatusDescription>Success</ResponseStatusDescription></Response>
  <ShipmentResults>
    <ShipmentCharges><TotalCharges><CurrencyCode>USD</CurrencyCode><MonetaryValue>12.50</MonetaryValue></TotalCharges></ShipmentCharges>
    <ShipmentIdentificationNumber>1Z12345E0291980793</ShipmentIdentificationNumber>
    <PackageResults>
      <TrackingNumber>1Z12345E0291980793</TrackingNumber>
      <LabelImage><LabelImageFormat><Code>GIF</Code></LabelImageFormat><GraphicImage>R0lGODlhAQABAAAAACw=</GraphicImage></LabelImage>
    </PackageResults>
  </ShipmentResults>
</ShipmentAcceptResponse>`,

	"Void": `<?xml version="1.0"?>
<VoidShipmentResponse>
  <Response><ResponseStatusCode>1</ResponseStatusCode><ResponseStatusDescription>Success</ResponseStatusDescription></Response>
  <Status>
    <StatusType><Code>1</Code><Description>Success</Description></StatusType>
    <StatusCode><Code>1</Code><Description>Success</Description></StatusCode>
  </Status>
</VoidShipmentResponse>`,

	"AV": `<?xml version="1.0"?>
<AddressValidationResponse>
  <Response><ResponseStatusCode>1</ResponseStatusCode><ResponseStatusDescription>Success</ResponseStatusDescription></Response>
  <AddressValidationResult>
    <Rank>1</Rank>
    <Quality>1.0</Quality>
    <Address><City>TIMONIUM</City><StateProvinceCode>MD</StateProvinceCode></Address>
    <PostalCodeLowEnd>21093</PostalCodeLowEnd>
    <PostalCodeHighEnd>21094</PostalCodeHighEnd>
  </AddressValidationResult>
</AddressValidationResponse>`,

	"XAV": `<?xml version="1.0"?>
<AddressValidationResponse>
  <Response><ResponseStatusCode>1</ResponseStatusCode><ResponseStatusDescription>Success</ResponseStatusDescription></Response>
  <ValidAddressIndicator/>
  <AddressKeyFormat>
    <AddressClassification><Code>1</Code><Description>Commercial</Description></AddressClassification>
    <AddressLine>26601 ALISO CREEK RD</AddressLine>
    <Region>ALISO VIEJO CA 92656-2834</Region>
    <PoliticalDivision2>ALISO VIEJO</PoliticalDivision2>
    <PoliticalDivision1>CA</PoliticalDivision1>
    <PostcodePrimaryLow>92656</PostcodePrimaryLow>
    <PostcodeExtendedLow>2834</PostcodeExtendedLow>
    <CountryCode>US</CountryCode>
  </AddressKeyFormat>
</AddressValidationResponse>`,
}
