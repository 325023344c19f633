package models

import (
	"time"

	"gigmatch/internal/domain"
)

// Decision is one directional swipe by an actor about a target. The composite
// unique index enforces at most one row per (actor, target) pair; a duplicate
// insert fails at the storage layer and surfaces as Conflict.
//
// Decisions deliberately have no soft-delete column: undo removes the row
// outright so the pair can decide again later without tripping the index.
type Decision struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ActorID    uint   `gorm:"not null;uniqueIndex:idx_decisions_actor_target;index" json:"actor_id"`
	ActorRole  string `gorm:"size:20;not null" json:"actor_role"`
	TargetID   uint   `gorm:"not null;uniqueIndex:idx_decisions_actor_target;index" json:"target_id"`
	TargetRole string `gorm:"size:20;not null" json:"target_role"`
	Direction  string `gorm:"size:20;not null" json:"direction"`      // LIKE, PASS, SUPERLIKE
	Outcome    string `gorm:"size:20;not null;index" json:"outcome"`  // NO_MATCH, LIKED, MATCHED, EXPIRED
	GigID      *uint  `gorm:"index" json:"gig_id,omitempty"`          // originating opportunity, if any

	// UndoExpiresAt bounds the undo window; compared against wall clock at
	// call time, no background timer involved.
	UndoExpiresAt time.Time `json:"undo_expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPositive reports whether the decision can participate in a match.
func (d *Decision) IsPositive() bool {
	return d.Direction == domain.DirectionLike || d.Direction == domain.DirectionSuperlike
}

func (d *Decision) UndoWindowOpen(now time.Time) bool {
	return now.Before(d.UndoExpiresAt)
}

// SwipeQuota is the per-(actor, UTC day) counter row backing the rate limiter.
// Counters advance via conditional increments, never read-then-write.
type SwipeQuota struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   uint      `gorm:"not null;uniqueIndex:idx_quotas_actor_day" json:"actor_id"`
	Day       string    `gorm:"size:10;not null;uniqueIndex:idx_quotas_actor_day" json:"day"` // YYYY-MM-DD (UTC)
	Decisions int       `gorm:"not null;default:0" json:"decisions"`
	Undos     int       `gorm:"not null;default:0" json:"undos"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SwipeQuota) TableName() string { return "swipe_quotas" }
