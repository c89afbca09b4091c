package run

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrAssetNotFound is returned when an asset is not found.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrInvalidAssetType is returned when asset type is invalid.
	ErrInvalidAssetType = errors.New("invalid asset type")

	// ErrInvalidRunID is returned when run_id is not set.
	ErrInvalidRunID = errors.New("run_id is required")

	// ErrInvalidAssetPath is returned when asset_path is empty.
	ErrInvalidAssetPath = errors.New("asset_path is required")

	// ErrInvalidFileName is returned when file_name is empty.
	ErrInvalidFileName = errors.New("file_name is required")
)

// AssetType represents the type of asset.
type AssetType string

const (
	AssetTypeScreenshot AssetType = "screenshot"
	AssetTypeLog        AssetType = "log"
)

// IsValid checks if the asset type is valid.
func (at AssetType) IsValid() bool {
	switch at {
	case AssetTypeScreenshot, AssetTypeLog:
		return true
	default:
		return false
	}
}

// Asset is an artifact captured during a verification run, stored in
// blob storage and indexed here.
type Asset struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	RunID      uuid.UUID `json:"run_id" gorm:"type:char(36);not null;index:idx_assets_run_id"`
	AssetType  AssetType `json:"asset_type" gorm:"type:varchar(20);not null"`
	AssetPath  string    `json:"asset_path" gorm:"type:varchar(512);not null"`
	FileName   string    `json:"file_name" gorm:"type:varchar(255);not null"`
	FileSize   int64     `json:"file_size" gorm:"not null"`
	MimeType   string    `json:"mime_type,omitempty" gorm:"type:varchar(128)"`
	StepIndex  int       `json:"step_index"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// BeforeCreate hook to generate UUID before creating a new asset
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Validate checks if the asset has valid required fields.
func (a *Asset) Validate() error {
	if a.RunID == uuid.Nil {
		return ErrInvalidRunID
	}
	if !a.AssetType.IsValid() {
		return ErrInvalidAssetType
	}
	if a.AssetPath == "" {
		return ErrInvalidAssetPath
	}
	if a.FileName == "" {
		return ErrInvalidFileName
	}
	return nil
}
