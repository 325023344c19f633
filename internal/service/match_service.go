package service

import (
	"log"
	"time"

	"gigmatch/internal/apperr"
	"gigmatch/internal/domain"
	"gigmatch/internal/models"
	"gigmatch/internal/repository"
	"gigmatch/internal/ws"

	"gorm.io/gorm"
)

// MatchService detects reciprocal positive decisions and materializes the
// Match exactly once. The exactly-once guarantee rests on the pair's unique
// index, not on a prior existence check: two racing reciprocity checks both
// attempt the insert and the loser adopts the winner's row.
type MatchService struct {
	db        *gorm.DB
	decisions *repository.DecisionRepository
	matches   *repository.MatchRepository
	userRepo  *repository.UserRepository
	notifier  *NotificationService
	hub       *ws.Hub
}

func NewMatchService(
	db *gorm.DB,
	decisions *repository.DecisionRepository,
	matches *repository.MatchRepository,
	userRepo *repository.UserRepository,
	notifier *NotificationService,
	hub *ws.Hub,
) *MatchService {
	return &MatchService{
		db:        db,
		decisions: decisions,
		matches:   matches,
		userRepo:  userRepo,
		notifier:  notifier,
		hub:       hub,
	}
}

// OnPositiveDecision runs after a positive decision has committed to the
// ledger. Returns the Match when reciprocity exists, nil otherwise. The
// transaction is retried once; persistent failure surfaces as Internal and
// the decision stays LIKED for later reconciliation.
func (s *MatchService) OnPositiveDecision(d *models.Decision) (*models.Match, error) {
	reciprocal, err := s.decisions.FindReciprocal(d.ActorID, d.TargetID)
	if err != nil {
		return nil, apperr.Internal("reciprocity lookup failed", err)
	}
	if reciprocal == nil {
		return nil, nil
	}

	performerID, venueID := d.ActorID, d.TargetID
	if d.ActorRole == domain.RoleVenue {
		performerID, venueID = d.TargetID, d.ActorID
	}

	match, err := s.materialize(performerID, venueID, d.ID, reciprocal.ID)
	if err != nil {
		// one retry before giving up
		match, err = s.materialize(performerID, venueID, d.ID, reciprocal.ID)
	}
	if err != nil {
		return nil, apperr.Internal("match creation failed", err)
	}

	s.announce(match)
	return match, nil
}

// materialize creates the Match and marks both decisions MATCHED in one
// transaction. Losing the insert race is success: the pre-existing match is
// adopted and the decision updates still apply, so concurrent double
// invocation is idempotent.
func (s *MatchService) materialize(performerID, venueID, decisionID, reciprocalID uint) (*models.Match, error) {
	var match *models.Match
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		m := &models.Match{
			PerformerID:    performerID,
			VenueID:        venueID,
			Status:         domain.MatchStatusActive,
			LastActivityAt: now,
		}
		if err := tx.Create(m).Error; err != nil {
			if !repository.IsDuplicateKey(err) {
				return err
			}
			existing, err := s.matches.GetByPair(tx, performerID, venueID)
			if err != nil {
				return err
			}
			m = existing
		}
		if err := tx.Model(&models.Decision{}).
			Where("id IN ?", []uint{decisionID, reciprocalID}).
			Updates(map[string]interface{}{"outcome": domain.OutcomeMatched, "updated_at": now}).Error; err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

// announce notifies both parties after the transaction has committed.
// Delivery failures are logged, never surfaced.
func (s *MatchService) announce(m *models.Match) {
	performer, perr := s.userRepo.GetByID(m.PerformerID)
	venue, verr := s.userRepo.GetByID(m.VenueID)
	if perr != nil || verr != nil {
		log.Printf("[match] party lookup for announce failed: %v %v", perr, verr)
		return
	}
	s.notifier.NotifyMatchCreated(m.PerformerID, m.ID, venue.DisplayName)
	s.notifier.NotifyMatchCreated(m.VenueID, m.ID, performer.DisplayName)
	if s.hub != nil {
		s.hub.PushToUser(m.PerformerID, ws.EventMatchCreated, m)
		s.hub.PushToUser(m.VenueID, ws.EventMatchCreated, m)
	}
}
