package run

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uiverify/uiverify/logger"
	"gorm.io/gorm"
)

// MySQLAssetStore implements the AssetStore interface using GORM.
type MySQLAssetStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLAssetStore creates a new GORM-backed asset store.
func NewMySQLAssetStore(db *gorm.DB, log logger.Logger) *MySQLAssetStore {
	return &MySQLAssetStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new asset in the database.
func (s *MySQLAssetStore) Create(ctx context.Context, asset *Asset) error {
	if err := asset.Validate(); err != nil {
		return err
	}

	if asset.UploadedAt.IsZero() {
		asset.UploadedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		s.logger.Error(ctx, "failed to create asset", map[string]interface{}{
			"error":  err.Error(),
			"run_id": asset.RunID.String(),
		})
		return err
	}

	s.logger.Info(ctx, "asset created", map[string]interface{}{
		"asset_id":  asset.ID.String(),
		"run_id":    asset.RunID.String(),
		"file_name": asset.FileName,
	})

	return nil
}

// GetByID retrieves an asset by its ID.
func (s *MySQLAssetStore) GetByID(ctx context.Context, id uuid.UUID) (*Asset, error) {
	var asset Asset
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&asset).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		s.logger.Error(ctx, "failed to get asset by ID", map[string]interface{}{
			"error":    err.Error(),
			"asset_id": id.String(),
		})
		return nil, err
	}

	return &asset, nil
}

// ListByRun retrieves all assets for a specific run, in capture order.
func (s *MySQLAssetStore) ListByRun(ctx context.Context, runID uuid.UUID) ([]*Asset, error) {
	var assets []*Asset
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("step_index ASC").
		Find(&assets).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list assets by run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": runID.String(),
		})
		return nil, err
	}

	return assets, nil
}

// Delete deletes an asset by ID.
func (s *MySQLAssetStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&Asset{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete asset", map[string]interface{}{
			"error":    result.Error.Error(),
			"asset_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAssetNotFound
	}

	return nil
}
