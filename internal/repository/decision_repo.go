package repository

import (
	"time"

	"gigmatch/internal/domain"
	"gigmatch/internal/models"

	"gorm.io/gorm"
)

// DecisionRepository is the durable ledger of directional swipe decisions.
// Pair uniqueness is enforced by the storage-layer index, never by a prior
// existence check, so concurrent duplicates resolve to first-committer-wins.
type DecisionRepository struct {
	db *gorm.DB
}

func NewDecisionRepository(db *gorm.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

func (r *DecisionRepository) Create(d *models.Decision) error {
	return r.db.Create(d).Error
}

func (r *DecisionRepository) GetByID(id uint) (*models.Decision, error) {
	var d models.Decision
	if err := r.db.First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DecisionRepository) GetByActorAndTarget(actorID, targetID uint) (*models.Decision, error) {
	var d models.Decision
	err := r.db.Where("actor_id = ? AND target_id = ?", actorID, targetID).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindReciprocal returns the target's still-pending positive decision about
// the actor, or nil when none exists. The lookup is by the reversed pair key;
// which party swiped first is irrelevant.
func (r *DecisionRepository) FindReciprocal(actorID, targetID uint) (*models.Decision, error) {
	var d models.Decision
	err := r.db.Where(
		"actor_id = ? AND target_id = ? AND direction IN ? AND outcome = ?",
		targetID, actorID,
		[]string{domain.DirectionLike, domain.DirectionSuperlike},
		domain.OutcomeLiked,
	).First(&d).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// Delete removes a decision outright. Hard delete: the pair must be free to
// decide again after an undo.
func (r *DecisionRepository) Delete(id uint) error {
	return r.db.Unscoped().Delete(&models.Decision{}, id).Error
}

func (r *DecisionRepository) SetOutcome(ids []uint, outcome string) error {
	return r.db.Model(&models.Decision{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"outcome": outcome, "updated_at": time.Now()}).Error
}

// DecidedTargetIDs returns every target the actor has already decided on,
// for exclusion from the discovery feed.
func (r *DecisionRepository) DecidedTargetIDs(actorID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Decision{}).
		Where("actor_id = ?", actorID).
		Pluck("target_id", &ids).Error
	return ids, err
}

func (r *DecisionRepository) ListByActor(actorID uint, limit, offset int) ([]models.Decision, error) {
	var list []models.Decision
	err := r.db.Where("actor_id = ?", actorID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
