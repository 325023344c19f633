package repository

import (
	"time"

	"gigmatch/internal/domain"
	"gigmatch/internal/models"
	"gigmatch/pkg/location"

	"gorm.io/gorm"
)

// scanCap bounds how many rows a single feed request pulls out of storage
// before scoring; beyond this the feed is paginated anyway.
const scanCap = 500

// CandidateFilters are the effective discovery filters after profile
// defaulting. Nil members mean "not constrained".
type CandidateFilters struct {
	Genres    []string
	Latitude  *float64
	Longitude *float64
	RadiusKm  float64
	BudgetMin *int64
	BudgetMax *int64
	DateFrom  *time.Time
	DateTo    *time.Time
}

// Candidate is one eligible, not-yet-decided target with the geospatial and
// opportunity context the scorer needs.
type Candidate struct {
	User       models.User
	DistanceKm float64 // -1 when either side lacks coordinates
	LatestGig  *models.Gig
}

// CandidateRepository retrieves the discovery candidate set: opposite-role,
// visible, setup-complete, accepting targets, minus everyone the actor has
// already decided on.
//
// Radius filtering runs as a SQL bounding-box prefilter plus an exact
// haversine pass in the application; the returned total count is computed
// from the same haversine-filtered set, so count and fetch can never
// diverge on the geospatial predicate.
type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// FindCandidates returns the filtered candidate set (up to scanCap) and its
// total size. Callers score, sort, and paginate.
func (r *CandidateRepository) FindCandidates(actor *models.User, f CandidateFilters, excludeIDs []uint) ([]Candidate, int, error) {
	query := r.db.Model(&models.User{}).
		Where("role = ?", domain.OppositeRole(actor.Role)).
		Where("visible = ? AND setup_complete = ? AND accepting_gigs = ?", true, true, true).
		Where("id != ?", actor.ID)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	if f.BudgetMax != nil {
		query = query.Where("(price_min_cents <= ? OR price_min_cents = 0)", *f.BudgetMax)
	}
	if f.BudgetMin != nil {
		query = query.Where("(price_max_cents >= ? OR price_max_cents = 0)", *f.BudgetMin)
	}

	geo := f.Latitude != nil && f.Longitude != nil && f.RadiusKm > 0
	if geo {
		// Coordinate-less targets stay in the feed (unknown distance) so a
		// sparse area never yields an empty page.
		delta := location.BoundingDelta(f.RadiusKm)
		query = query.Where(
			"(latitude IS NULL OR (latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?))",
			*f.Latitude-delta, *f.Latitude+delta,
			*f.Longitude-delta, *f.Longitude+delta,
		)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Limit(scanCap).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	candidates := make([]Candidate, 0, len(users))
	for _, u := range users {
		// Genre intersection runs in the same pass as the exact radius
		// check so the total count and the fetched set share one
		// predicate form.
		if len(f.Genres) > 0 && !genresIntersect(f.Genres, u.GenreList()) {
			continue
		}
		dist := -1.0
		if geo && u.HasCoordinates() {
			dist = location.HaversineKm(*f.Latitude, *f.Longitude, *u.Latitude, *u.Longitude)
			if dist > f.RadiusKm {
				continue
			}
		}
		candidates = append(candidates, Candidate{User: u, DistanceKm: dist})
	}

	if err := r.attachLatestGigs(candidates, f); err != nil {
		return nil, 0, err
	}
	return candidates, len(candidates), nil
}

func genresIntersect(want, have []string) bool {
	if len(have) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, g := range have {
		set[g] = struct{}{}
	}
	for _, g := range want {
		if _, ok := set[g]; ok {
			return true
		}
	}
	return false
}

// attachLatestGigs loads, for venue candidates, the most recent open gig
// inside the requested date window. The gig feeds the scorer's recency bonus
// and budget context.
func (r *CandidateRepository) attachLatestGigs(candidates []Candidate, f CandidateFilters) error {
	byVenue := make(map[uint]int, len(candidates))
	ids := make([]uint, 0, len(candidates))
	for i := range candidates {
		if candidates[i].User.IsVenue() {
			byVenue[candidates[i].User.ID] = i
			ids = append(ids, candidates[i].User.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	query := r.db.Where("venue_id IN ? AND status = ?", ids, domain.GigStatusOpen)
	if f.DateFrom != nil {
		query = query.Where("event_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		query = query.Where("event_date <= ?", *f.DateTo)
	}

	var gigs []models.Gig
	if err := query.Order("created_at DESC").Find(&gigs).Error; err != nil {
		return err
	}
	for i := range gigs {
		idx, ok := byVenue[gigs[i].VenueID]
		if !ok || candidates[idx].LatestGig != nil {
			continue // ordered newest-first; keep the first seen per venue
		}
		g := gigs[i]
		candidates[idx].LatestGig = &g
	}
	return nil
}
