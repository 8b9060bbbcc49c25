package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tb0hdan/shodan-mcp/pkg/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type SQLiteStorage struct {
	db *gorm.DB
}

type Config struct {
	DatabasePath string
	Debug        bool
}

func NewSQLiteStorage(cfg Config) (*SQLiteStorage, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	database, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := database.AutoMigrate(&models.Lookup{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteStorage{db: database}, nil
}

func (s *SQLiteStorage) SaveLookup(ctx context.Context, lookup *models.Lookup) error {
	if lookup.RequestID == "" {
		lookup.RequestID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(lookup).Error
}

func (s *SQLiteStorage) GetLookup(ctx context.Context, id uint) (*models.Lookup, error) {
	var lookup models.Lookup
	if err := s.db.WithContext(ctx).First(&lookup, id).Error; err != nil {
		return nil, err
	}
	return &lookup, nil
}

// ListLookups returns one page, newest first, and the total matching the filter.
func (s *SQLiteStorage) ListLookups(ctx context.Context, filter models.LookupFilter) ([]models.Lookup, int64, error) {
	var lookups []models.Lookup
	var total int64

	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Lookup{})
		if filter.Tool != "" {
			query = query.Where("tool = ?", filter.Tool)
		}
		if filter.FailedOnly {
			query = query.Where("success = ?", false)
		}
		return query
	}

	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := filtered().Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	err := query.Find(&lookups).Error
	return lookups, total, err
}

func (s *SQLiteStorage) DeleteLookup(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Lookup{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteAllLookups(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&models.Lookup{}).Error
}

// PruneLookups permanently removes records created before olderThan.
func (s *SQLiteStorage) PruneLookups(ctx context.Context, olderThan time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Unscoped().Where("created_at < ?", olderThan).Delete(&models.Lookup{})
	return result.RowsAffected, result.Error
}

func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
