package service

import (
	"testing"

	"gigmatch/internal/apperr"
	"gigmatch/internal/domain"
	"gigmatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchFromReciprocalLikes(t *testing.T) {
	for _, firstMover := range []string{"performer", "venue"} {
		t.Run(firstMover+" swipes first", func(t *testing.T) {
			e := newEnv(t)
			performer := e.seedUser(t, domain.RolePerformer, "performer1")
			venue := e.seedUser(t, domain.RoleVenue, "venue1")

			a, b := performer, venue
			if firstMover == "venue" {
				a, b = venue, performer
			}

			res, err := e.decisionSvc.Record(a, b.ID, domain.DirectionLike, nil)
			require.NoError(t, err)
			assert.Nil(t, res.Match, "one-sided like must not match")
			assert.Equal(t, domain.OutcomeLiked, res.Decision.Outcome)

			res, err = e.decisionSvc.Record(b, a.ID, domain.DirectionLike, nil)
			require.NoError(t, err)
			require.NotNil(t, res.Match, "reciprocal like must match")
			assert.Equal(t, performer.ID, res.Match.PerformerID)
			assert.Equal(t, venue.ID, res.Match.VenueID)
			assert.Equal(t, domain.MatchStatusActive, res.Match.Status)

			// Both ledger rows flipped to MATCHED.
			var count int64
			e.db.Model(&models.Decision{}).Where("outcome = ?", domain.OutcomeMatched).Count(&count)
			assert.EqualValues(t, 2, count)
		})
	}
}

func TestPassNeverMatches(t *testing.T) {
	e := newEnv(t)
	performer := e.seedUser(t, domain.RolePerformer, "performer1")
	venue := e.seedUser(t, domain.RoleVenue, "venue1")

	_, err := e.decisionSvc.Record(venue, performer.ID, domain.DirectionLike, nil)
	require.NoError(t, err)

	res, err := e.decisionSvc.Record(performer, venue.ID, domain.DirectionPass, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Match)

	var count int64
	e.db.Model(&models.Match{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestSuperlikeCountsAsPositive(t *testing.T) {
	e := newEnv(t)
	performer := e.seedUser(t, domain.RolePerformer, "performer1")
	venue := e.seedUser(t, domain.RoleVenue, "venue1")

	_, err := e.decisionSvc.Record(performer, venue.ID, domain.DirectionSuperlike, nil)
	require.NoError(t, err)
	res, err := e.decisionSvc.Record(venue, performer.ID, domain.DirectionLike, nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Match)
}

func TestMatchMaterializeIdempotent(t *testing.T) {
	e := newEnv(t)
	performer := e.seedUser(t, domain.RolePerformer, "performer1")
	venue := e.seedUser(t, domain.RoleVenue, "venue1")

	_, err := e.decisionSvc.Record(performer, venue.ID, domain.DirectionLike, nil)
	require.NoError(t, err)
	res, err := e.decisionSvc.Record(venue, performer.ID, domain.DirectionLike, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Match)

	// The venue's decision is still reciprocal from the performer's point of
	// view once re-marked pending; re-running the hook must adopt the
	// existing match instead of inserting a second row.
	var mine models.Decision
	require.NoError(t, e.db.Where("actor_id = ?", performer.ID).First(&mine).Error)
	require.NoError(t, e.decisions.SetOutcome([]uint{res.Decision.ID}, domain.OutcomeLiked))

	m, err := e.matchSvc.OnPositiveDecision(&mine)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, res.Match.ID, m.ID)

	var count int64
	e.db.Model(&models.Match{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDuplicateDecisionConflicts(t *testing.T) {
	e := newEnv(t)
	performer := e.seedUser(t, domain.RolePerformer, "performer1")
	venue := e.seedUser(t, domain.RoleVenue, "venue1")

	_, err := e.decisionSvc.Record(performer, venue.ID, domain.DirectionLike, nil)
	require.NoError(t, err)

	_, err = e.decisionSvc.Record(performer, venue.ID, domain.DirectionPass, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestDecisionTargetEligibility(t *testing.T) {
	e := newEnv(t)
	performer := e.seedUser(t, domain.RolePerformer, "performer1")
	otherPerformer := e.seedUser(t, domain.RolePerformer, "performer2")
	hidden := e.seedUser(t, domain.RoleVenue, "hidden")
	hidden.Visible = false
	require.NoError(t, e.db.Save(hidden).Error)

	// Same role is never a valid target.
	_, err := e.decisionSvc.Record(performer, otherPerformer.ID, domain.DirectionLike, nil)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Neither is an invisible opposite-role profile.
	_, err = e.decisionSvc.Record(performer, hidden.ID, domain.DirectionLike, nil)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = e.decisionSvc.Record(performer, 99999, domain.DirectionLike, nil)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
