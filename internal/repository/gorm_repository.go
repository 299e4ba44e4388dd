package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-plate-inspector/pkg/models"
)

// GormDetectionRepository stores detection history in PostgreSQL
type GormDetectionRepository struct {
	db *gorm.DB
}

// NewGormDetectionRepository connects to dsn and migrates the history table
func NewGormDetectionRepository(dsn string) (*GormDetectionRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return NewGormDetectionRepositoryFromDB(db)
}

// NewGormDetectionRepositoryFromDB wraps an open connection
func NewGormDetectionRepositoryFromDB(db *gorm.DB) (*GormDetectionRepository, error) {
	if err := db.AutoMigrate(&models.DetectionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate detection history: %w", err)
	}
	return &GormDetectionRepository{db: db}, nil
}

// Save inserts or updates record
func (r *GormDetectionRepository) Save(ctx context.Context, record *models.DetectionRecord) error {
	prepareRecord(record)
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to save detection %s: %w", record.ID, err)
	}
	return nil
}

// Get retrieves a record by ID
func (r *GormDetectionRepository) Get(ctx context.Context, id string) (*models.DetectionRecord, error) {
	var rec models.DetectionRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDetectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load detection %s: %w", id, err)
	}
	return &rec, nil
}

// List returns the newest records first
func (r *GormDetectionRepository) List(ctx context.Context, limit int) ([]*models.DetectionRecord, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []*models.DetectionRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}
	return recs, nil
}

// Close closes the underlying connection pool
func (r *GormDetectionRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
