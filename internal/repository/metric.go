package repository

import (
	"context"
	"errors"

	"microblog/internal/models"

	"gorm.io/gorm"
)

const importBatchSize = 100

// MetricRepository defines persistence operations for the metric registry.
type MetricRepository interface {
	List(ctx context.Context) ([]*models.Metric, error)
	GetByID(ctx context.Context, id uint) (*models.Metric, error)
	Create(ctx context.Context, metric *models.Metric) error
	Update(ctx context.Context, metric *models.Metric) error
	Delete(ctx context.Context, id uint) error
	// CreateBatch inserts all metrics in one transaction: either every row is written or none is.
	CreateBatch(ctx context.Context, metrics []*models.Metric) error
}

type metricRepository struct {
	db *gorm.DB
}

// NewMetricRepository creates a new metric repository
func NewMetricRepository(db *gorm.DB) MetricRepository {
	return &metricRepository{db: db}
}

func (r *metricRepository) List(ctx context.Context) ([]*models.Metric, error) {
	metrics := []*models.Metric{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&metrics).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return metrics, nil
}

func (r *metricRepository) GetByID(ctx context.Context, id uint) (*models.Metric, error) {
	var metric models.Metric
	if err := r.db.WithContext(ctx).First(&metric, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Metric", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &metric, nil
}

func (r *metricRepository) Create(ctx context.Context, metric *models.Metric) error {
	if err := r.db.WithContext(ctx).Create(metric).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Update overwrites every editable column of the stored record. ID, creator and creation time are kept.
func (r *metricRepository) Update(ctx context.Context, metric *models.Metric) error {
	res := r.db.WithContext(ctx).
		Model(&models.Metric{ID: metric.ID}).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(metric)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Metric", metric.ID)
	}
	return nil
}

func (r *metricRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Metric{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Metric", id)
	}
	return nil
}

func (r *metricRepository) CreateBatch(ctx context.Context, metrics []*models.Metric) error {
	if len(metrics) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(metrics, importBatchSize).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
