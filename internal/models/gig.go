package models

import (
	"time"

	"gigmatch/internal/domain"

	"gorm.io/gorm"
)

// Gig is an opportunity posted by a venue. It owns its Applications and
// closes to new ones once the booked roster reaches RequiredPerformers.
type Gig struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	VenueID     uint   `gorm:"not null;index" json:"venue_id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Genres      string `gorm:"size:512" json:"genres"` // comma-separated
	City        string `gorm:"size:128" json:"city"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	BudgetCents    int64     `gorm:"not null" json:"budget_cents"`
	Currency       string    `gorm:"size:3;default:'USD'" json:"currency"`
	DepositPercent int       `gorm:"default:25" json:"deposit_percent"`
	EventDate      time.Time `gorm:"index" json:"event_date"`

	RequiredPerformers int    `gorm:"default:1" json:"required_performers"`
	BookedPerformers   int    `gorm:"default:0" json:"booked_performers"`
	Status             string `gorm:"size:20;not null;index" json:"status"` // OPEN, CLOSED, CANCELLED

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Venue        User          `gorm:"foreignKey:VenueID" json:"-"`
	Applications []Application `gorm:"foreignKey:GigID" json:"applications,omitempty"`
}

func (g *Gig) IsOpen() bool { return g.Status == domain.GigStatusOpen }

// DepositCents returns the deposit slice of an agreed amount using the gig's
// configured percentage.
func (g *Gig) DepositCents(agreedCents int64) int64 {
	return agreedCents * int64(g.DepositPercent) / 100
}

// Application is a performer's request to play a specific gig.
//
// Uniqueness: at most one live (non-withdrawn) application per
// (gig, applicant). Live is a *bool that participates in the unique index and
// is nulled out on withdrawal; NULLs never collide, so a withdrawn
// application frees the slot while rejected/accepted ones keep holding it.
type Application struct {
	ID          uint  `gorm:"primaryKey" json:"id"`
	GigID       uint  `gorm:"not null;uniqueIndex:idx_applications_gig_applicant;index" json:"gig_id"`
	ApplicantID uint  `gorm:"not null;uniqueIndex:idx_applications_gig_applicant;index" json:"applicant_id"`
	Live        *bool `gorm:"uniqueIndex:idx_applications_gig_applicant" json:"-"`

	ProposedRateCents int64     `json:"proposed_rate_cents"`
	Message           string    `gorm:"type:text" json:"message"`
	Status            string    `gorm:"size:20;not null;index" json:"status"` // PENDING, ACCEPTED, REJECTED, WITHDRAWN
	AppliedAt         time.Time `json:"applied_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Gig       Gig  `gorm:"foreignKey:GigID" json:"-"`
	Applicant User `gorm:"foreignKey:ApplicantID" json:"-"`
}

func (a *Application) IsPending() bool { return a.Status == domain.ApplicationStatusPending }
