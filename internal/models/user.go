package models

import (
	"strings"
	"time"

	"gigmatch/internal/domain"

	"gorm.io/gorm"
)

// User is a performer or venue account. Profile attributes double as the
// defaulting source for discovery filters and as scoring inputs.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Role         string     `gorm:"size:20;not null;index" json:"role"` // PERFORMER | VENUE
	DisplayName  string     `gorm:"size:128" json:"display_name"`
	Bio          string     `gorm:"type:text" json:"bio"`
	City         string     `gorm:"size:128" json:"city"`
	AvatarURL    string     `gorm:"size:512" json:"avatar_url"`

	// Home coordinates; nil until the user shares a location. Discovery
	// skips geospatial filtering entirely when these are unset.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	SearchRadiusKm float64 `gorm:"default:50" json:"search_radius_km"`
	Genres         string  `gorm:"size:512" json:"genres"` // comma-separated, e.g. "rock,jazz"
	PriceMinCents  int64   `json:"price_min_cents"`
	PriceMaxCents  int64   `json:"price_max_cents"`
	Rating         float64 `gorm:"default:0" json:"rating"` // 0..5 aggregate review score

	Visible       bool   `gorm:"default:true" json:"visible"`
	SetupComplete bool   `gorm:"default:false" json:"setup_complete"`
	AcceptingGigs bool   `gorm:"default:true" json:"accepting_gigs"`
	FCMToken      string `gorm:"size:512" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsPerformer() bool { return u.Role == domain.RolePerformer }
func (u *User) IsVenue() bool     { return u.Role == domain.RoleVenue }

// Discoverable reports whether the user may appear as a swipe target.
func (u *User) Discoverable() bool {
	return u.Visible && u.SetupComplete && u.AcceptingGigs
}

func (u *User) HasCoordinates() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// GenreList splits the stored CSV, dropping empty entries.
func (u *User) GenreList() []string {
	return SplitCSV(u.Genres)
}

// SplitCSV splits a comma-separated attribute column into trimmed values.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
