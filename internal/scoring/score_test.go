package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseInput(now time.Time) Input {
	return Input{
		ActorGenres:       []string{"rock", "jazz"},
		TargetGenres:      []string{"rock", "jazz"},
		DistanceKm:        0,
		MaxTravelRadiusKm: 50,
		BudgetMinCents:    50_000,
		BudgetMaxCents:    150_000,
		RateCents:         100_000,
		Reputation:        5,
		Now:               now,
	}
}

func TestScoreDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created := now.Add(-time.Hour)
	in := baseInput(now)
	in.OpportunityCreatedAt = &created

	first := Score(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(in))
	}
}

func TestScoreBounds(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created := now.Add(-time.Hour)

	perfect := baseInput(now)
	perfect.OpportunityCreatedAt = &created
	s := Score(perfect)
	assert.LessOrEqual(t, s, 100.0)
	assert.Equal(t, 100.0, s) // 30+30+20+15+5 caps at 100

	assert.Equal(t, 0.0, Score(Input{Now: now}))
}

func TestGenreComponent(t *testing.T) {
	now := time.Now()

	in := baseInput(now)
	in.TargetGenres = []string{"rock"} // half the actor's genres overlap
	full := Score(baseInput(now))
	half := Score(in)
	assert.InDelta(t, 15.0, full-half, 0.001)

	in.TargetGenres = nil
	assert.InDelta(t, 30.0, full-Score(in), 0.001)
}

func TestDistanceDecay(t *testing.T) {
	now := time.Now()

	near := baseInput(now)
	near.DistanceKm = 0
	mid := baseInput(now)
	mid.DistanceKm = 25
	edge := baseInput(now)
	edge.DistanceKm = 50
	unknown := baseInput(now)
	unknown.DistanceKm = -1

	assert.InDelta(t, 15.0, Score(near)-Score(mid), 0.001)
	assert.InDelta(t, 30.0, Score(near)-Score(edge), 0.001)
	// Unknown distance contributes nothing rather than being penalized to
	// the radius edge.
	assert.InDelta(t, 30.0, Score(near)-Score(unknown), 0.001)
}

func TestPriceComponent(t *testing.T) {
	now := time.Now()

	within := baseInput(now)
	stretch := baseInput(now)
	stretch.RateCents = 200_000 // inside 1.5x of the 150k max
	out := baseInput(now)
	out.RateCents = 300_000

	assert.InDelta(t, 10.0, Score(within)-Score(stretch), 0.001)
	assert.InDelta(t, 20.0, Score(within)-Score(out), 0.001)
}

func TestReputationScales(t *testing.T) {
	now := time.Now()

	five := baseInput(now)
	five.Reputation = 5
	hundred := baseInput(now)
	hundred.Reputation = 100

	// 5/5 and 100/100 are the same reputation on different scales.
	assert.Equal(t, Score(five), Score(hundred))

	half := baseInput(now)
	half.Reputation = 2.5
	assert.InDelta(t, 7.5, Score(five)-Score(half), 0.001)
}

func TestRecencyBonus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-71 * time.Hour)
	stale := now.Add(-73 * time.Hour)

	in := baseInput(now)
	in.OpportunityCreatedAt = &fresh
	withBonus := Score(in)
	in.OpportunityCreatedAt = &stale
	withoutBonus := Score(in)

	assert.InDelta(t, 5.0, withBonus-withoutBonus, 0.001)
}

func TestSortRankedTieBreak(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	rs := []Ranked{
		{Index: 0, Score: 50, CreatedAt: older},
		{Index: 1, Score: 80, CreatedAt: older},
		{Index: 2, Score: 50, CreatedAt: newer},
	}
	SortRanked(rs)

	assert.Equal(t, 1, rs[0].Index)
	// Equal scores: newest first.
	assert.Equal(t, 2, rs[1].Index)
	assert.Equal(t, 0, rs[2].Index)
}
