package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/closeout"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
)

// ResultRepository implements closeout.ResultStore over gorm.
type ResultRepository struct {
	db *gorm.DB
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create persists a new clinical result.
func (r *ResultRepository) Create(ctx context.Context, result *models.Result) (*models.Result, error) {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// AppendNotes appends to the notes field of an existing result. Edits after
// creation are restricted to this field; nothing else is touched.
func (r *ResultRepository) AppendNotes(ctx context.Context, id string, notes string) (*models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).First(&result, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &closeout.NotFoundError{Kind: "result", ID: id}
		}
		return nil, err
	}

	notes = strings.TrimSpace(notes)
	if notes == "" {
		return &result, nil
	}
	if result.Notes != "" {
		result.Notes += "\n" + notes
	} else {
		result.Notes = notes
	}
	if err := r.db.WithContext(ctx).Model(&result).Update("notes", result.Notes).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// FindByBookingID returns the result for a booking, or (nil, nil) when none
// exists yet.
func (r *ResultRepository) FindByBookingID(ctx context.Context, bookingID string) (*models.Result, error) {
	var result models.Result
	err := r.db.WithContext(ctx).First(&result, "booking_id = ?", bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByPatientID returns the results of all bookings of one patient,
// newest first, with the regimen preloaded.
func (r *ResultRepository) ListByPatientID(ctx context.Context, patientID string) ([]models.Result, error) {
	var results []models.Result
	err := r.db.WithContext(ctx).
		Preload("ArvRegimen").
		Joins("JOIN bookings ON bookings.id = results.booking_id").
		Where("bookings.patient_id = ?", patientID).
		Order("results.created_at desc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
