package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/evyataryagoni/voterlocation/internal/geo"
	"github.com/evyataryagoni/voterlocation/internal/logger"
	"github.com/evyataryagoni/voterlocation/internal/metrics"
	"github.com/evyataryagoni/voterlocation/internal/models"
	"github.com/go-playground/validator/v10"
)

// VoterLocationService resolves a voter's location from request addressing data
//
// Responsibilities:
//   - Choose the effective IP (parameter > X-Forwarded-For > peer address)
//   - Validate its format
//   - Query the geolocation provider
//   - Format the display string
type VoterLocationService struct {
	provider  geo.Provider
	validator *validator.Validate
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewVoterLocationService creates the service.
// Metrics and logger are optional and may be nil.
func NewVoterLocationService(provider geo.Provider, m *metrics.Metrics, log *logger.Logger) *VoterLocationService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &VoterLocationService{
		provider:  provider,
		validator: validator.New(),
		metrics:   m,
		logger:    log.WithComponent("VoterLocationService"),
	}
}

// ResolveLocation performs a single synchronous lookup for req.
//
// Missing, malformed and unknown addresses are reported in the result, not as
// errors. The error return is reserved for provider failures (database
// unreadable, connection lost).
func (s *VoterLocationService) ResolveLocation(ctx context.Context, req LocationRequest) (LocationResult, error) {
	ip := EffectiveIP(req)
	if ip == "" {
		s.logger.Debug().Msg("No IP address in request")
		s.count(metrics.ResultMissingIP)
		return missingIP(), nil
	}

	log := s.logger.WithIP(ip)

	if err := s.validator.Var(ip, "ip"); err != nil {
		log.Warn().Msg("Invalid IP address format")
		s.count(metrics.ResultUnresolved)
		return unresolved(ip), nil
	}

	// Key-matched providers (csv, redis, mysql) store the canonical text form,
	// so "2001:4860:4860:0:0:0:0:8888" must be looked up as "2001:4860:4860::8888".
	// Failure messages keep the address as the client sent it.
	lookupIP := net.ParseIP(ip).String()

	start := time.Now()
	record, err := s.provider.Lookup(ctx, lookupIP)
	if s.metrics != nil {
		s.metrics.ProviderLookupDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, geo.ErrNotFound) {
			log.Debug().Msg("No matching location")
			s.count(metrics.ResultUnresolved)
			return unresolved(ip), nil
		}

		log.Error().Err(err).Str("provider", s.provider.Name()).Msg("Provider error during location lookup")
		s.count(metrics.ResultError)
		if s.metrics != nil {
			s.metrics.ProviderErrorsTotal.WithLabelValues(s.provider.Name()).Inc()
		}
		return LocationResult{}, fmt.Errorf("location lookup for %s failed: %w", ip, err)
	}

	if record == nil || strings.TrimSpace(record.City) == "" {
		// country-level records have nothing to display
		log.Debug().Msg("Location record has no city")
		s.count(metrics.ResultUnresolved)
		return unresolved(ip), nil
	}

	display := FormatLocation(record)
	log.Info().Str("voter_location", display).Msg("Voter location resolved")
	s.count(metrics.ResultSuccess)

	return succeeded(ip, display), nil
}

// FormatLocation renders a record as "City, ST ZIP".
// Missing state or postal code parts are left out rather than leaving gaps.
func FormatLocation(record *models.LocationRecord) string {
	city := strings.TrimSpace(record.City)
	rest := strings.TrimSpace(strings.TrimSpace(record.State) + " " + strings.TrimSpace(record.PostalCode))
	if rest == "" {
		return city
	}
	return city + ", " + rest
}

func (s *VoterLocationService) count(result string) {
	if s.metrics != nil {
		s.metrics.VoterLocationLookups.WithLabelValues(result).Inc()
	}
}

// Close releases the provider
func (s *VoterLocationService) Close() error {
	return s.provider.Close()
}
