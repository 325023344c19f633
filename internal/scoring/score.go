// Package scoring ranks discovery candidates. Score is a pure function of
// its input: no clock reads, no storage, identical inputs always yield the
// identical score.
package scoring

import (
	"sort"
	"time"
)

const (
	genreWeight      = 30.0
	distanceWeight   = 30.0
	priceFullBonus   = 20.0
	pricePartial     = 10.0
	priceStretch     = 1.5
	reputationWeight = 15.0
	recencyBonus     = 5.0
	recencyWindow    = 72 * time.Hour
	maxScore         = 100.0
)

// Input carries everything the scorer looks at. Now is passed in by the
// caller so the recency bonus stays deterministic.
type Input struct {
	ActorGenres  []string
	TargetGenres []string

	// DistanceKm < 0 means either side lacks coordinates; the distance
	// component then contributes nothing.
	DistanceKm        float64
	MaxTravelRadiusKm float64

	// Actor's budget band; zero max means unbounded/unknown.
	BudgetMinCents int64
	BudgetMaxCents int64
	// Target's asking rate (performer rate or gig budget).
	RateCents int64

	// Reputation on a 0–5 scale; values above 5 are read as 0–100.
	Reputation float64

	// OpportunityCreatedAt is the creation time of the target's most
	// recent open opportunity (or the profile itself); nil disables the
	// recency bonus.
	OpportunityCreatedAt *time.Time
	Now                  time.Time
}

// Score returns the weighted recommendation score in [0, 100].
func Score(in Input) float64 {
	s := genreComponent(in.ActorGenres, in.TargetGenres) +
		distanceComponent(in.DistanceKm, in.MaxTravelRadiusKm) +
		priceComponent(in.BudgetMinCents, in.BudgetMaxCents, in.RateCents) +
		reputationComponent(in.Reputation) +
		recencyComponent(in.OpportunityCreatedAt, in.Now)
	if s > maxScore {
		return maxScore
	}
	if s < 0 {
		return 0
	}
	return s
}

func genreComponent(actor, target []string) float64 {
	if len(actor) == 0 || len(target) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(target))
	for _, g := range target {
		set[g] = struct{}{}
	}
	overlap := 0
	for _, g := range actor {
		if _, ok := set[g]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(actor)) * genreWeight
}

func distanceComponent(distanceKm, maxRadiusKm float64) float64 {
	if distanceKm < 0 || maxRadiusKm <= 0 {
		return 0
	}
	d := distanceWeight - (distanceKm/maxRadiusKm)*distanceWeight
	if d < 0 {
		return 0
	}
	return d
}

func priceComponent(budgetMin, budgetMax, rate int64) float64 {
	if rate <= 0 || budgetMax <= 0 {
		return 0
	}
	if rate >= budgetMin && rate <= budgetMax {
		return priceFullBonus
	}
	if rate <= int64(float64(budgetMax)*priceStretch) {
		return pricePartial
	}
	return 0
}

func reputationComponent(rep float64) float64 {
	if rep <= 0 {
		return 0
	}
	scale := 5.0
	if rep > 5 {
		scale = 100.0
	}
	r := rep / scale * reputationWeight
	if r > reputationWeight {
		return reputationWeight
	}
	return r
}

func recencyComponent(createdAt *time.Time, now time.Time) float64 {
	if createdAt == nil {
		return 0
	}
	if now.Sub(*createdAt) <= recencyWindow {
		return recencyBonus
	}
	return 0
}

// Ranked pairs a score with the tie-break key.
type Ranked struct {
	Index     int
	Score     float64
	CreatedAt time.Time
}

// SortRanked orders by score descending, ties broken by creation time
// descending (newest first).
func SortRanked(rs []Ranked) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Score != rs[j].Score {
			return rs[i].Score > rs[j].Score
		}
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
}
