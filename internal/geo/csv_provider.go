package geo

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/evyataryagoni/voterlocation/internal/models"
)

// CSVProvider serves lookups from a CSV file loaded fully into memory.
// Handy for development and for seeding the Redis provider.
type CSVProvider struct {
	// data maps an IP address to its location record
	data map[string]*models.LocationRecord
}

// NewCSVProvider reads a CSV file with a header row.
//
// CSV Format: ip,city,state,postal_code
// Example: 69.181.21.132,San Francisco,CA,94108
//
// Rows that do not have exactly four columns are skipped.
func NewCSVProvider(filePath string) (*CSVProvider, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Row length is checked below so a bad row doesn't abort the load
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	p := &CSVProvider{
		data: make(map[string]*models.LocationRecord, len(records)-1),
	}

	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) != 4 {
			continue
		}

		ip := strings.TrimSpace(record[0])
		p.data[ip] = &models.LocationRecord{
			IP:         ip,
			City:       strings.TrimSpace(record[1]),
			State:      strings.TrimSpace(record[2]),
			PostalCode: strings.TrimSpace(record[3]),
		}
	}

	return p, nil
}

// Lookup implements Provider.
func (p *CSVProvider) Lookup(_ context.Context, ip string) (*models.LocationRecord, error) {
	location, exists := p.data[ip]
	if !exists {
		return nil, ErrNotFound
	}
	return location, nil
}

// Len returns the number of loaded records.
func (p *CSVProvider) Len() int {
	return len(p.data)
}

// Name implements Provider.
func (p *CSVProvider) Name() string {
	return TypeCSV
}

// Close implements Provider. Everything lives in memory, nothing to release.
func (p *CSVProvider) Close() error {
	return nil
}
