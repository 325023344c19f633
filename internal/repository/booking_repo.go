package repository

import (
	"errors"

	"gigmatch/internal/models"

	"gorm.io/gorm"
)

// ErrBookingStale reports that a conditional update matched zero rows: a
// concurrent transition committed after the caller loaded the booking.
var ErrBookingStale = errors.New("booking modified concurrently")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListForUser(userID uint, limit, offset int) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Where("performer_id = ? OR venue_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// UpdateIfStatus persists every field of b provided the stored row still
// carries the expected status. A load-then-save that lost a race against
// another transition updates zero rows and returns ErrBookingStale instead
// of overwriting the committed state.
func (r *BookingRepository) UpdateIfStatus(b *models.Booking, expected string) error {
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", b.ID, expected).
		Select("*").Omit("id", "created_at", "Performer", "Venue").
		Updates(b)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBookingStale
	}
	return nil
}
