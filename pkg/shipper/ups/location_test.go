package ups_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tournevent/upsbridge/pkg/shipper"
	"github.com/tournevent/upsbridge/pkg/shipper/ups"
)

func TestNormalizeLocation_Territory(t *testing.T) {
	loc := shipper.Location{
		Name:          "Receiver",
		AttentionName: "Dock 4",
		Phone:         "787-555-0100",
		Fax:           "787-555-0101",
		Line1:         "1 Calle Sol",
		Line2:         "Suite 2",
		Line3:         "Bldg C",
		City:          "San Juan",
		ProvinceCode:  "PR",
		PostalCode:    "00901",
		CountryCode:   "US",
		Commercial:    true,
	}

	got := ups.NormalizeLocation(loc)

	assert.Equal(t, "PR", got.CountryCode)
	assert.Empty(t, got.ProvinceCode)
	assert.Equal(t, loc.Name, got.Name)
	assert.Equal(t, loc.AttentionName, got.AttentionName)
	assert.Equal(t, loc.Phone, got.Phone)
	assert.Equal(t, loc.Fax, got.Fax)
	assert.Equal(t, loc.Line1, got.Line1)
	assert.Equal(t, loc.Line2, got.Line2)
	assert.Equal(t, loc.Line3, got.Line3)
	assert.Equal(t, loc.City, got.City)
	assert.Equal(t, loc.PostalCode, got.PostalCode)
	assert.True(t, got.Commercial)
}

func TestNormalizeLocation_AllTerritories(t *testing.T) {
	for _, territory := range []string{"AS", "FM", "GU", "MH", "MP", "PW", "PR", "VI"} {
		got := ups.NormalizeLocation(shipper.Location{CountryCode: "US", ProvinceCode: territory})
		assert.Equal(t, territory, got.CountryCode)
		assert.Empty(t, got.ProvinceCode)
	}
}

func TestNormalizeLocation_Unchanged(t *testing.T) {
	tests := []struct {
		name string
		loc  shipper.Location
	}{
		{"us state", shipper.Location{CountryCode: "US", ProvinceCode: "NY", City: "New York"}},
		{"territory code outside US", shipper.Location{CountryCode: "CA", ProvinceCode: "PR"}},
		{"already a country", shipper.Location{CountryCode: "GU", City: "Hagatna"}},
		{"empty", shipper.Location{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.loc, ups.NormalizeLocation(tt.loc))
		})
	}
}

func TestNormalizeLocation_Idempotent(t *testing.T) {
	locations := []shipper.Location{
		{CountryCode: "US", ProvinceCode: "PR", City: "San Juan"},
		{CountryCode: "US", ProvinceCode: "VI"},
		{CountryCode: "US", ProvinceCode: "CA"},
		{CountryCode: "FR"},
		{},
	}

	for _, loc := range locations {
		once := ups.NormalizeLocation(loc)
		assert.Equal(t, once, ups.NormalizeLocation(once))
	}
}
