package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/closeout"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
)

// BookingRepository implements closeout.BookingStore over gorm.
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// SetStatus applies a lifecycle status to a booking.
func (r *BookingRepository) SetStatus(ctx context.Context, bookingID string, status models.BookingStatus) error {
	tx := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return &closeout.NotFoundError{Kind: "booking", ID: bookingID}
	}
	return nil
}
