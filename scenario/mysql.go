package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uiverify/uiverify/logger"
	"gorm.io/gorm"
)

// MySQLStore implements the Store interface using GORM.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new GORM-backed scenario store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new scenario in the database. Versions chain on
// (target_id, name): any earlier version of the same scenario stops
// being latest and the new row takes version max+1.
func (s *MySQLStore) Create(ctx context.Context, sc *Scenario) error {
	sc.IsLatest = true

	if err := ValidateStrict(sc, DefaultValidationLimits()); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		maxVersion, err := s.demoteChain(ctx, tx, sc.TargetID, sc.Name)
		if err != nil {
			return err
		}
		sc.Version = maxVersion + 1

		return tx.WithContext(ctx).Create(sc).Error
	})

	if err != nil {
		s.logger.Error(ctx, "failed to create scenario", map[string]interface{}{
			"error":     err.Error(),
			"target_id": sc.TargetID.String(),
			"name":      sc.Name,
		})
		return err
	}

	s.logger.Info(ctx, "scenario created", map[string]interface{}{
		"scenario_id": sc.ID.String(),
		"name":        sc.Name,
		"version":     sc.Version,
	})

	return nil
}

// demoteChain marks every version of (targetID, name) as no longer
// latest and returns the highest version number in the chain.
func (s *MySQLStore) demoteChain(ctx context.Context, tx *gorm.DB, targetID uuid.UUID, name string) (uint, error) {
	if err := tx.WithContext(ctx).
		Model(&Scenario{}).
		Where("target_id = ? AND name = ?", targetID, name).
		Update("is_latest", false).Error; err != nil {
		return 0, fmt.Errorf("failed to update is_latest flags: %w", err)
	}

	var maxVersion uint
	err := tx.WithContext(ctx).
		Model(&Scenario{}).
		Where("target_id = ? AND name = ?", targetID, name).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max version: %w", err)
	}

	return maxVersion, nil
}

// GetByID retrieves a scenario by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*Scenario, error) {
	var sc Scenario
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sc).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScenarioNotFound
		}
		s.logger.Error(ctx, "failed to get scenario by ID", map[string]interface{}{
			"error":       err.Error(),
			"scenario_id": id.String(),
		})
		return nil, err
	}

	return &sc, nil
}

// GetByName retrieves the latest scenario with the given name for a target.
func (s *MySQLStore) GetByName(ctx context.Context, targetID uuid.UUID, name string) (*Scenario, error) {
	var sc Scenario
	err := s.db.WithContext(ctx).
		Where("target_id = ? AND name = ? AND is_latest = ?", targetID, name, true).
		Order("version DESC").
		First(&sc).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScenarioNotFound
		}
		s.logger.Error(ctx, "failed to get scenario by name", map[string]interface{}{
			"error":     err.Error(),
			"target_id": targetID.String(),
			"name":      name,
		})
		return nil, err
	}

	return &sc, nil
}

// Update updates a scenario with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	sc, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(sc); err != nil {
			return err
		}
	}

	if err := ValidateStrict(sc, DefaultValidationLimits()); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Save(sc).Error; err != nil {
		s.logger.Error(ctx, "failed to update scenario", map[string]interface{}{
			"error":       err.Error(),
			"scenario_id": id.String(),
		})
		return err
	}

	s.logger.Info(ctx, "scenario updated", map[string]interface{}{
		"scenario_id": id.String(),
	})

	return nil
}

// ReplaceSteps creates a new version of the scenario with the given
// steps. The new row copies the name and description, takes version
// max+1 in its chain, and becomes the latest; earlier versions are
// kept immutable.
func (s *MySQLStore) ReplaceSteps(ctx context.Context, id uuid.UUID, steps Steps) (*Scenario, error) {
	var newVersion *Scenario

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original Scenario
		if err := tx.WithContext(ctx).Where("id = ?", id).First(&original).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScenarioNotFound
			}
			return err
		}

		maxVersion, err := s.demoteChain(ctx, tx, original.TargetID, original.Name)
		if err != nil {
			return err
		}

		newVersion = &Scenario{
			TargetID:    original.TargetID,
			Name:        original.Name,
			Description: original.Description,
			Steps:       steps,
			Version:     maxVersion + 1,
			IsLatest:    true,
		}
		if err := ValidateStrict(newVersion, DefaultValidationLimits()); err != nil {
			return err
		}

		return tx.WithContext(ctx).Create(newVersion).Error
	})

	if err != nil {
		if errors.Is(err, ErrScenarioNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "failed to replace scenario steps", map[string]interface{}{
			"error":       err.Error(),
			"scenario_id": id.String(),
		})
		return nil, err
	}

	s.logger.Info(ctx, "scenario version created", map[string]interface{}{
		"scenario_id": newVersion.ID.String(),
		"name":        newVersion.Name,
		"version":     newVersion.Version,
	})

	return newVersion, nil
}

// Delete removes a scenario.
func (s *MySQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&Scenario{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete scenario", map[string]interface{}{
			"error":       result.Error.Error(),
			"scenario_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrScenarioNotFound
	}

	s.logger.Info(ctx, "scenario deleted", map[string]interface{}{
		"scenario_id": id.String(),
	})

	return nil
}

// ListByTarget retrieves a paginated list of latest scenarios for a target.
func (s *MySQLStore) ListByTarget(ctx context.Context, targetID uuid.UUID, limit, offset int) ([]*Scenario, error) {
	var scenarios []*Scenario
	err := s.db.WithContext(ctx).
		Where("target_id = ? AND is_latest = ?", targetID, true).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&scenarios).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list scenarios by target", map[string]interface{}{
			"error":     err.Error(),
			"target_id": targetID.String(),
			"limit":     limit,
			"offset":    offset,
		})
		return nil, err
	}

	return scenarios, nil
}
