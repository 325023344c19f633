package repository

import (
	"time"

	"gigmatch/internal/domain"
	"gigmatch/internal/models"

	"gorm.io/gorm"
)

type GigRepository struct {
	db *gorm.DB
}

func NewGigRepository(db *gorm.DB) *GigRepository {
	return &GigRepository{db: db}
}

func (r *GigRepository) Create(g *models.Gig) error {
	return r.db.Create(g).Error
}

func (r *GigRepository) GetByID(id uint) (*models.Gig, error) {
	var g models.Gig
	if err := r.db.First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GigRepository) ListOpen(limit, offset int) ([]models.Gig, error) {
	var list []models.Gig
	err := r.db.Where("status = ?", domain.GigStatusOpen).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *GigRepository) ListByVenue(venueID uint, limit, offset int) ([]models.Gig, error) {
	var list []models.Gig
	err := r.db.Where("venue_id = ?", venueID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// Applications

func (r *GigRepository) CreateApplication(a *models.Application) error {
	return r.db.Create(a).Error
}

func (r *GigRepository) GetApplicationByID(id uint) (*models.Application, error) {
	var a models.Application
	if err := r.db.Preload("Gig").First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GigRepository) ListApplicationsByGig(gigID uint, limit, offset int) ([]models.Application, error) {
	var list []models.Application
	err := r.db.Where("gig_id = ?", gigID).
		Preload("Applicant").
		Order("applied_at ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *GigRepository) ListApplicationsByApplicant(applicantID uint, limit, offset int) ([]models.Application, error) {
	var list []models.Application
	err := r.db.Where("applicant_id = ?", applicantID).
		Preload("Gig").
		Order("applied_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// WithdrawApplication flips a pending application to WITHDRAWN and clears its
// live flag, freeing the (gig, applicant) uniqueness slot for a re-apply.
// Returns false when the application was not pending.
func (r *GigRepository) WithdrawApplication(id uint) (bool, error) {
	res := r.db.Model(&models.Application{}).
		Where("id = ? AND status = ?", id, domain.ApplicationStatusPending).
		Updates(map[string]interface{}{
			"status":     domain.ApplicationStatusWithdrawn,
			"live":       nil,
			"updated_at": time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// RejectApplication flips a pending application to REJECTED. Returns false
// when it was not pending.
func (r *GigRepository) RejectApplication(id uint) (bool, error) {
	res := r.db.Model(&models.Application{}).
		Where("id = ? AND status = ?", id, domain.ApplicationStatusPending).
		Updates(map[string]interface{}{
			"status":     domain.ApplicationStatusRejected,
			"updated_at": time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}
