package geo

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/evyataryagoni/voterlocation/internal/models"
	"github.com/oschwald/maxminddb-golang"
)

// cityRecord is the subset of a GeoIP2/GeoLite2 City record we decode.
type cityRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Subdivisions []struct {
		IsoCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"subdivisions"`
	Postal struct {
		Code string `maxminddb:"code"`
	} `maxminddb:"postal"`
}

// MaxMindProvider reads a GeoLite2/GeoIP2 City .mmdb database.
//
// The database is opened on the first lookup and shared read-only by all
// requests afterwards. A failed open is remembered: every later lookup
// returns the same error until the process is restarted with a valid file.
// After Close every lookup fails with ErrClosed.
type MaxMindProvider struct {
	path string

	// mu guards the fields below; lookups hold it for reading so Close
	// cannot unmap the database under them.
	mu      sync.RWMutex
	opened  bool
	closed  bool
	reader  *maxminddb.Reader
	openErr error
}

// NewMaxMindProvider returns a provider for the database at path.
// The file is not touched until the first Lookup.
func NewMaxMindProvider(path string) *MaxMindProvider {
	return &MaxMindProvider{path: path}
}

func (p *MaxMindProvider) open() error {
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
		p.reader, p.openErr = maxminddb.Open(p.path)
		p.opened = true
	}
	return p.openErr
}

// Lookup implements Provider.
func (p *MaxMindProvider) Lookup(_ context.Context, ip string) (*models.LocationRecord, error) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return nil, fmt.Errorf("%w: %q is not an IP address", ErrNotFound, ip)
	}

	if err := p.open(); err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database %s: %w", p.path, err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	var rec cityRecord
	_, ok, err := p.reader.LookupNetwork(addr, &rec)
	if err != nil {
		return nil, fmt.Errorf("GeoIP lookup failed: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	return rec.toLocation(ip), nil
}

// toLocation flattens a City record. The first subdivision is the state
// for US addresses.
func (r cityRecord) toLocation(ip string) *models.LocationRecord {
	loc := &models.LocationRecord{
		IP:         ip,
		City:       r.City.Names["en"],
		PostalCode: r.Postal.Code,
	}
	if len(r.Subdivisions) > 0 {
		loc.State = r.Subdivisions[0].IsoCode
		if loc.State == "" {
			loc.State = r.Subdivisions[0].Names["en"]
		}
	}
	return loc
}

// Name implements Provider.
func (p *MaxMindProvider) Name() string {
	return TypeMaxMind
}

// Close implements Provider. It waits for in-flight lookups.
func (p *MaxMindProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.reader == nil {
		return nil
	}
	err := p.reader.Close()
	p.reader = nil
	return err
}
