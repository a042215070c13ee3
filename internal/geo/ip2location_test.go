package geo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ip2location/ip2location-go/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evyataryagoni/voterlocation/internal/models"
)

func TestIP2LocationProvider_MissingDatabase(t *testing.T) {
	t.Parallel()

	p := NewIP2LocationProvider(filepath.Join(t.TempDir(), "IP2LOCATION-LITE-DB11.BIN"))
	defer p.Close()

	_, err := p.Lookup(context.Background(), "69.181.21.132")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestIP2LocationProvider_InvalidIP(t *testing.T) {
	t.Parallel()

	p := NewIP2LocationProvider("IP2LOCATION-LITE-DB11.BIN")

	_, err := p.Lookup(context.Background(), "999.1.1.1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, p.db)
	assert.Equal(t, TypeIP2Location, p.Name())
}

func TestIP2LocationProvider_LookupAfterClose(t *testing.T) {
	t.Parallel()

	p := NewIP2LocationProvider(filepath.Join(t.TempDir(), "IP2LOCATION-LITE-DB11.BIN"))
	require.NoError(t, p.Close())

	_, err := p.Lookup(context.Background(), "69.181.21.132")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestIP2LLocation(t *testing.T) {
	t.Parallel()

	loc, err := ip2lLocation("69.181.21.132", ip2location.IP2Locationrecord{
		City:    "San Francisco",
		Region:  "California",
		Zipcode: "94108",
	})
	require.NoError(t, err)
	assert.Equal(t, &models.LocationRecord{
		IP:         "69.181.21.132",
		City:       "San Francisco",
		State:      "CA",
		PostalCode: "94108",
	}, loc)
}

func TestIP2LLocation_NoCity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  ip2location.IP2Locationrecord
	}{
		{"dash placeholder", ip2location.IP2Locationrecord{City: "-", Region: "-", Zipcode: "-"}},
		{"invalid address", ip2location.IP2Locationrecord{City: ip2lInvalid, Region: ip2lInvalid}},
		{"country level data file", ip2location.IP2Locationrecord{City: ip2lNotSupported, Region: ip2lNotSupported}},
		{"empty", ip2location.IP2Locationrecord{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ip2lLocation("0.2.1.1", tt.rec)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Nil(t, loc)
		})
	}
}

func TestIP2LLocation_MissingZip(t *testing.T) {
	t.Parallel()

	loc, err := ip2lLocation("8.8.8.8", ip2location.IP2Locationrecord{
		City:    "Mountain View",
		Region:  "California",
		Zipcode: ip2lNotSupported,
	})
	require.NoError(t, err)
	assert.Equal(t, "CA", loc.State)
	assert.Empty(t, loc.PostalCode)
}

func TestIP2LValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, out string
	}{
		{"San Francisco", "San Francisco"},
		{"  94108 ", "94108"},
		{"-", ""},
		{"", ""},
		{ip2lInvalid, ""},
		{ip2lNotSupported, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.out, ip2lValue(tt.in), "input %q", tt.in)
	}
}

func TestStateAbbreviation(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"California":            "CA",
		"new york":              "NY",
		" District of Columbia": "DC",
		"Puerto Rico":           "PR",
		"CA":                    "CA",
		"Ontario":               "Ontario",
		"":                      "",
	}

	for in, out := range tests {
		assert.Equal(t, out, StateAbbreviation(in), "input %q", in)
	}
}
