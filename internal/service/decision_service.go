package service

import (
	"time"

	"gigmatch/internal/apperr"
	"gigmatch/internal/domain"
	"gigmatch/internal/models"
	"gigmatch/internal/repository"
)

// DecisionService owns the swipe and undo operations against the ledger.
// Guard order on a swipe: quota, target eligibility, then the insert; the
// storage-layer unique index is the only duplicate guard.
type DecisionService struct {
	decisions  *repository.DecisionRepository
	userRepo   *repository.UserRepository
	limiter    *RateLimiter
	matches    *MatchService
	undoWindow time.Duration
	now        func() time.Time
}

func NewDecisionService(
	decisions *repository.DecisionRepository,
	userRepo *repository.UserRepository,
	limiter *RateLimiter,
	matches *MatchService,
	undoWindow time.Duration,
) *DecisionService {
	return &DecisionService{
		decisions:  decisions,
		userRepo:   userRepo,
		limiter:    limiter,
		matches:    matches,
		undoWindow: undoWindow,
		now:        time.Now,
	}
}

// RecordResult is the outcome of a swipe: the ledger row plus the Match when
// this swipe completed a reciprocal pair.
type RecordResult struct {
	Decision *models.Decision
	Match    *models.Match
}

// Record writes one directional decision. Fails Conflict when the pair has
// already been decided, NotFound when the target is missing or ineligible,
// ResourceExhausted when the daily quota is spent.
func (s *DecisionService) Record(actor *models.User, targetID uint, direction string, gigID *uint) (*RecordResult, error) {
	if err := s.limiter.AllowDecision(actor.ID, actor.Role); err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetByID(targetID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("target_not_found", "target does not exist")
		}
		return nil, apperr.Internal("target lookup failed", err)
	}
	if target.Role != domain.OppositeRole(actor.Role) || !target.Discoverable() {
		return nil, apperr.NotFound("target_not_eligible", "target is not available for decisions")
	}

	now := s.now()
	d := &models.Decision{
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		TargetID:      target.ID,
		TargetRole:    target.Role,
		Direction:     direction,
		Outcome:       domain.OutcomeNoMatch,
		GigID:         gigID,
		UndoExpiresAt: now.Add(s.undoWindow),
	}
	if d.IsPositive() {
		d.Outcome = domain.OutcomeLiked
	}
	if err := s.decisions.Create(d); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperr.Conflict("decision_exists", "a decision for this target already exists")
		}
		return nil, apperr.Internal("decision write failed", err)
	}

	res := &RecordResult{Decision: d}
	if d.IsPositive() {
		match, err := s.matches.OnPositiveDecision(d)
		if err != nil {
			// The decision stays LIKED; reconciliation picks the pair up
			// on the counterparty's next positive swipe.
			return nil, err
		}
		res.Match = match
	}
	return res, nil
}

// Undo removes the actor's own decision while the undo window is open and no
// match has formed. A reciprocal pending like is marked EXPIRED so it stops
// waiting silently for a match that can no longer happen.
func (s *DecisionService) Undo(actorID, decisionID uint) error {
	d, err := s.decisions.GetByID(decisionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound("decision_not_found", "decision does not exist")
		}
		return apperr.Internal("decision lookup failed", err)
	}
	if d.ActorID != actorID {
		return apperr.Forbidden("not_author", "only the author may undo a decision")
	}
	if d.Outcome == domain.OutcomeMatched {
		return apperr.InvalidState("already_matched", "a matched decision cannot be undone")
	}
	if !d.UndoWindowOpen(s.now()) {
		return apperr.InvalidState("undo_window_closed", "the undo window has passed")
	}

	if err := s.limiter.AllowUndo(actorID); err != nil {
		return err
	}

	if err := s.decisions.Delete(d.ID); err != nil {
		return apperr.Internal("decision delete failed", err)
	}
	reciprocal, err := s.decisions.FindReciprocal(d.ActorID, d.TargetID)
	if err != nil {
		return apperr.Internal("reciprocal lookup failed", err)
	}
	if reciprocal != nil {
		if err := s.decisions.SetOutcome([]uint{reciprocal.ID}, domain.OutcomeExpired); err != nil {
			return apperr.Internal("reciprocal expiry failed", err)
		}
	}
	return nil
}
