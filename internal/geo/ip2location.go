package geo

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/evyataryagoni/voterlocation/internal/models"
	"github.com/ip2location/ip2location-go/v9"
)

// Field values ip2location-go returns instead of data.
const (
	ip2lMissing      = "-"
	ip2lInvalid      = "Invalid IP address."
	ip2lNotSupported = "This parameter is unavailable for selected data file. Please upgrade the data file."
)

// IP2LocationProvider reads an IP2Location BIN database
// (DB3 or higher for city, DB9 or higher for ZIP codes).
//
// This site or product includes IP2Location LITE data available from
// <a href="https://lite.ip2location.com">https://lite.ip2location.com</a>.
type IP2LocationProvider struct {
	path string

	mu      sync.RWMutex
	opened  bool
	closed  bool
	db      *ip2location.DB
	openErr error
}

// NewIP2LocationProvider returns a provider for the BIN file at path.
// Like the MaxMind provider, the file is opened on first use.
func NewIP2LocationProvider(path string) *IP2LocationProvider {
	return &IP2LocationProvider{path: path}
}

func (p *IP2LocationProvider) open() error {
	p.mu.RLock()
	opened, closed, openErr := p.opened, p.closed, p.openErr
	p.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if opened {
		return openErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if !p.opened {
		p.db, p.openErr = ip2location.OpenDB(p.path)
		p.opened = true
	}
	return p.openErr
}

// Lookup implements Provider.
func (p *IP2LocationProvider) Lookup(_ context.Context, ip string) (*models.LocationRecord, error) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return nil, fmt.Errorf("%w: %q is not an IP address", ErrNotFound, ip)
	}

	if err := p.open(); err != nil {
		return nil, fmt.Errorf("failed to open IP2Location database %s: %w", p.path, err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	results, err := p.db.Get_all(addr.String())
	if err != nil {
		return nil, fmt.Errorf("IP2Location lookup failed: %w", err)
	}

	return ip2lLocation(ip, results)
}

// ip2lLocation converts a Get_all record. A record without a city is
// reported as not found.
func ip2lLocation(ip string, rec ip2location.IP2Locationrecord) (*models.LocationRecord, error) {
	city := ip2lValue(rec.City)
	if city == "" {
		return nil, ErrNotFound
	}

	return &models.LocationRecord{
		IP:         ip,
		City:       city,
		State:      StateAbbreviation(ip2lValue(rec.Region)),
		PostalCode: ip2lValue(rec.Zipcode),
	}, nil
}

// ip2lValue blanks out the placeholder strings the library uses for
// missing or unsupported fields.
func ip2lValue(v string) string {
	switch strings.TrimSpace(v) {
	case ip2lMissing, ip2lInvalid, ip2lNotSupported:
		return ""
	}
	return strings.TrimSpace(v)
}

// Name implements Provider.
func (p *IP2LocationProvider) Name() string {
	return TypeIP2Location
}

// Close implements Provider. It waits for in-flight lookups.
func (p *IP2LocationProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.db != nil {
		p.db.Close()
		p.db = nil
	}
	return nil
}
