package repository

import (
	"errors"
	"time"

	"gigmatch/internal/domain"
	"gigmatch/internal/models"

	"gorm.io/gorm"
)

// ErrMatchNotActive reports that a conditional status flip found the match
// no longer ACTIVE.
var ErrMatchNotActive = errors.New("match is not active")

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(id uint) (*models.Match, error) {
	var m models.Match
	if err := r.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByPair looks up a match by its role-ordered pair key. The handle is a
// parameter so callers inside a transaction read on that transaction.
func (r *MatchRepository) GetByPair(db *gorm.DB, performerID, venueID uint) (*models.Match, error) {
	var m models.Match
	err := db.Where("performer_id = ? AND venue_id = ?", performerID, venueID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepository) ListForUser(userID uint, limit, offset int) ([]models.Match, error) {
	var list []models.Match
	err := r.db.Where("performer_id = ? OR venue_id = ?", userID, userID).
		Order("last_activity_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// MarkConverted flips the match to CONVERTED_TO_BOOKING inside tx. The
// status predicate makes the flip first-committer-wins: of two racing
// conversions that both read ACTIVE, the loser updates zero rows and gets
// ErrMatchNotActive.
func (r *MatchRepository) MarkConverted(tx *gorm.DB, matchID uint) error {
	res := tx.Model(&models.Match{}).
		Where("id = ? AND status = ?", matchID, domain.MatchStatusActive).
		Updates(map[string]interface{}{
			"status":           domain.MatchStatusConverted,
			"last_activity_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMatchNotActive
	}
	return nil
}
