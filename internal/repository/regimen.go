package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/closeout"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
)

// ArvRegimenRepository implements closeout.RegimenCatalog over gorm.
type ArvRegimenRepository struct {
	db *gorm.DB
}

// NewArvRegimenRepository creates a new ArvRegimenRepository.
func NewArvRegimenRepository(db *gorm.DB) *ArvRegimenRepository {
	return &ArvRegimenRepository{db: db}
}

// Create persists a new regimen record.
func (r *ArvRegimenRepository) Create(ctx context.Context, regimen *models.ArvRegimen) (*models.ArvRegimen, error) {
	if err := r.db.WithContext(ctx).Create(regimen).Error; err != nil {
		return nil, err
	}
	return regimen, nil
}

// GetByID fetches a regimen by id.
func (r *ArvRegimenRepository) GetByID(ctx context.Context, id string) (*models.ArvRegimen, error) {
	var regimen models.ArvRegimen
	if err := r.db.WithContext(ctx).First(&regimen, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &closeout.NotFoundError{Kind: "regimen", ID: id}
		}
		return nil, err
	}
	return &regimen, nil
}

// List returns all catalog regimens, newest first.
func (r *ArvRegimenRepository) List(ctx context.Context) ([]models.ArvRegimen, error) {
	var regimens []models.ArvRegimen
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&regimens).Error; err != nil {
		return nil, err
	}
	return regimens, nil
}
