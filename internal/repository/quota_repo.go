package repository

import (
	"time"

	"gigmatch/internal/models"

	"gorm.io/gorm"
)

// QuotaRepository maintains the per-(actor, UTC day) swipe counters. The
// increment is an atomic conditional UPDATE against the counter row, so
// concurrent requests from the same actor can never both squeeze past the
// limit; there is no read-then-write anywhere in this path.
type QuotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// Day formats t as the quota accounting day (UTC).
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// NextReset returns the next midnight UTC after t, when daily quotas refill.
func NextReset(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

// IncrementDecisions bumps the actor's decision counter for day if it is
// below limit. Returns false (no mutation) when the quota is exhausted.
func (r *QuotaRepository) IncrementDecisions(actorID uint, day string, limit int) (bool, error) {
	return r.increment(actorID, day, "decisions", limit)
}

// IncrementUndos bumps the actor's undo counter for day if below limit.
func (r *QuotaRepository) IncrementUndos(actorID uint, day string, limit int) (bool, error) {
	return r.increment(actorID, day, "undos", limit)
}

func (r *QuotaRepository) increment(actorID uint, day, column string, limit int) (bool, error) {
	// Fast path: conditional increment on an existing row.
	ok, err := r.tryUpdate(actorID, day, column, limit)
	if err != nil || ok {
		return ok, err
	}

	// No row was touched: either the counter row is missing or the limit is
	// reached. Distinguish by attempting the insert; a duplicate-key failure
	// means another request created the row meanwhile, so retry the update.
	q := models.SwipeQuota{ActorID: actorID, Day: day}
	switch column {
	case "decisions":
		q.Decisions = 1
	case "undos":
		q.Undos = 1
	}
	if limit < 1 {
		return false, nil
	}
	err = r.db.Create(&q).Error
	if err == nil {
		return true, nil
	}
	if !IsDuplicateKey(err) {
		return false, err
	}
	return r.tryUpdate(actorID, day, column, limit)
}

func (r *QuotaRepository) tryUpdate(actorID uint, day, column string, limit int) (bool, error) {
	res := r.db.Model(&models.SwipeQuota{}).
		Where("actor_id = ? AND day = ? AND "+column+" < ?", actorID, day, limit).
		Updates(map[string]interface{}{
			column:       gorm.Expr(column + " + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Get returns the counter row for (actor, day), or a zero row when absent.
func (r *QuotaRepository) Get(actorID uint, day string) (*models.SwipeQuota, error) {
	var q models.SwipeQuota
	err := r.db.Where("actor_id = ? AND day = ?", actorID, day).First(&q).Error
	if err != nil {
		if IsNotFound(err) {
			return &models.SwipeQuota{ActorID: actorID, Day: day}, nil
		}
		return nil, err
	}
	return &q, nil
}
