// Package geo maps IP addresses to the city, state and postal code a voter is
// most likely located in.
//
// Several backends are supported: MaxMind and IP2Location binary databases,
// a CSV table, MySQL and Redis. All of them satisfy Provider so the service
// layer and tests never depend on a concrete database.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evyataryagoni/voterlocation/internal/models"
)

// ErrNotFound is returned by every provider when no record matches the IP.
var ErrNotFound = errors.New("no location found for IP address")

// ErrClosed is returned by lookups on a provider that has been closed.
var ErrClosed = errors.New("geo provider is closed")

// Provider looks up the location of a single IP address.
type Provider interface {
	// Lookup returns the location record for ip, or an error wrapping
	// ErrNotFound when the provider has no matching record.
	Lookup(ctx context.Context, ip string) (*models.LocationRecord, error)

	// Name identifies the backend in logs and metrics.
	Name() string

	// Close releases database handles and connections.
	Close() error
}

// Provider type names accepted by NewProvider.
const (
	TypeMaxMind     = "maxmind"
	TypeIP2Location = "ip2location"
	TypeCSV         = "csv"
	TypeMySQL       = "mysql"
	TypeRedis       = "redis"
)

// ProviderConfig holds everything needed to build any of the providers.
// Only the fields of the selected Type are used.
type ProviderConfig struct {
	Type string

	MaxMindPath     string
	IP2LocationPath string
	CSVPath         string
	MySQLDSN        string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewProvider creates the provider selected by cfg.Type. An empty type
// selects the MaxMind database.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case TypeMaxMind, "":
		return NewMaxMindProvider(cfg.MaxMindPath), nil

	case TypeIP2Location:
		return NewIP2LocationProvider(cfg.IP2LocationPath), nil

	case TypeCSV:
		p, err := NewCSVProvider(cfg.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV provider: %w", err)
		}
		return p, nil

	case TypeMySQL:
		p, err := NewMySQLProvider(cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create MySQL provider: %w", err)
		}
		return p, nil

	case TypeRedis:
		p, err := NewRedisProvider(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis provider: %w", err)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown geo provider type: %s (supported: 'maxmind', 'ip2location', 'csv', 'mysql', 'redis')", cfg.Type)
	}
}
