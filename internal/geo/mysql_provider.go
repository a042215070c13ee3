package geo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evyataryagoni/voterlocation/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// VoterIPLocationModel is the GORM model for the voter_ip_locations table
type VoterIPLocationModel struct {
	IP         string `gorm:"column:ip;primaryKey"`
	City       string `gorm:"column:city"`
	State      string `gorm:"column:state"`
	PostalCode string `gorm:"column:postal_code"`
}

// TableName overrides GORM's pluralised default
func (VoterIPLocationModel) TableName() string {
	return "voter_ip_locations"
}

// MySQLProvider looks locations up in MySQL through GORM
type MySQLProvider struct {
	db *gorm.DB
}

// NewMySQLProvider connects to MySQL.
//
// DSN format: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLProvider(dsn string) (*MySQLProvider, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	return &MySQLProvider{db: db}, nil
}

// Lookup implements Provider.
// Query: SELECT * FROM voter_ip_locations WHERE ip = ? ORDER BY ip LIMIT 1
func (p *MySQLProvider) Lookup(ctx context.Context, ip string) (*models.LocationRecord, error) {
	var row VoterIPLocationModel

	err := p.db.WithContext(ctx).Where("ip = ?", ip).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return &models.LocationRecord{
		IP:         row.IP,
		City:       row.City,
		State:      row.State,
		PostalCode: row.PostalCode,
	}, nil
}

// Name implements Provider.
func (p *MySQLProvider) Name() string {
	return TypeMySQL
}

// Close closes the underlying connection pool
func (p *MySQLProvider) Close() error {
	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
