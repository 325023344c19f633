package models

import (
	"time"

	"gorm.io/gorm"
)

// Match is the materialized mutual interest between one performer and one
// venue. The pair is inherently ordered by role, so the composite unique
// index on (performer_id, venue_id) is the exactly-once guard for creation
// under concurrent opposing swipes.
type Match struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	PerformerID uint   `gorm:"not null;uniqueIndex:idx_matches_pair;index" json:"performer_id"`
	VenueID     uint   `gorm:"not null;uniqueIndex:idx_matches_pair;index" json:"venue_id"`
	Status      string `gorm:"size:30;not null;index" json:"status"` // ACTIVE, ARCHIVED, BLOCKED, CONVERTED_TO_BOOKING

	PerformerUnread int       `gorm:"default:0" json:"performer_unread"`
	VenueUnread     int       `gorm:"default:0" json:"venue_unread"`
	LastActivityAt  time.Time `json:"last_activity_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Performer User `gorm:"foreignKey:PerformerID" json:"-"`
	Venue     User `gorm:"foreignKey:VenueID" json:"-"`
}

func (m *Match) HasParty(userID uint) bool {
	return m.PerformerID == userID || m.VenueID == userID
}

// OtherParty returns the counterparty's user id, or 0 when userID is not a
// party to the match.
func (m *Match) OtherParty(userID uint) uint {
	switch userID {
	case m.PerformerID:
		return m.VenueID
	case m.VenueID:
		return m.PerformerID
	}
	return 0
}
