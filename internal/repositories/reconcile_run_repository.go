package repositories

import (
	"context"

	"github.com/anonto42/blogspace/backend/internal/models"
	"gorm.io/gorm"
)

// ReconcileRunRepository stores reconciliation audit records
type ReconcileRunRepository interface {
	CreateRun(ctx context.Context, run *models.ReconcileRun) error
	LatestRuns(ctx context.Context, limit int) ([]models.ReconcileRun, error)
}

// PostgresReconcileRunRepository implements ReconcileRunRepository for PostgreSQL
type PostgresReconcileRunRepository struct {
	db *gorm.DB
}

// NewPostgresReconcileRunRepository creates a new PostgresReconcileRunRepository
func NewPostgresReconcileRunRepository(db *gorm.DB) *PostgresReconcileRunRepository {
	return &PostgresReconcileRunRepository{db: db}
}

// Migrate creates or updates the audit table
func (r *PostgresReconcileRunRepository) Migrate() error {
	return r.db.AutoMigrate(&models.ReconcileRun{})
}

// CreateRun inserts an audit record
func (r *PostgresReconcileRunRepository) CreateRun(ctx context.Context, run *models.ReconcileRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// LatestRuns returns the most recent audit records first
func (r *PostgresReconcileRunRepository) LatestRuns(ctx context.Context, limit int) ([]models.ReconcileRun, error) {
	var runs []models.ReconcileRun
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
