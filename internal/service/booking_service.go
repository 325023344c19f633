package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gigmatch/config"
	"gigmatch/internal/apperr"
	"gigmatch/internal/domain"
	"gigmatch/internal/models"
	"gigmatch/internal/repository"
	"gigmatch/internal/ws"
	"gigmatch/pkg/payment"

	"gorm.io/gorm"
)

// BookingService drives the gig-application → booking state machine.
//
// Authorization is checked before any guard; guards are checked before any
// mutation. Transitions that fail a guard leave the booking untouched. The
// two multi-document steps (application acceptance, match conversion) run in
// a single transaction; notifications fire strictly after commit.
type BookingService struct {
	db       *gorm.DB
	bookings *repository.BookingRepository
	gigs     *repository.GigRepository
	matches  *repository.MatchRepository
	userRepo *repository.UserRepository
	gateway  payment.Gateway
	payCfg   config.PaymentConfig
	notifier *NotificationService
	hub      *ws.Hub
	now      func() time.Time
}

func NewBookingService(
	db *gorm.DB,
	bookings *repository.BookingRepository,
	gigs *repository.GigRepository,
	matches *repository.MatchRepository,
	userRepo *repository.UserRepository,
	gateway payment.Gateway,
	payCfg config.PaymentConfig,
	notifier *NotificationService,
	hub *ws.Hub,
) *BookingService {
	return &BookingService{
		db:       db,
		bookings: bookings,
		gigs:     gigs,
		matches:  matches,
		userRepo: userRepo,
		gateway:  gateway,
		payCfg:   payCfg,
		notifier: notifier,
		hub:      hub,
		now:      time.Now,
	}
}

// AcceptRequest carries the venue's terms when accepting an application.
type AcceptRequest struct {
	AgreedAmountCents int64
	ScheduledAt       time.Time
}

// AcceptApplication promotes a pending application into a Booking. One
// transaction covers all writes: the application flips to ACCEPTED, the
// applicant joins the gig roster (closing the gig at headcount), and the
// Booking is created PENDING with the venue's confirmation pre-set — the
// accepting party implicitly confirms.
func (s *BookingService) AcceptApplication(venueUserID, applicationID uint, req AcceptRequest) (*models.Booking, error) {
	app, err := s.gigs.GetApplicationByID(applicationID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("application_not_found", "application does not exist")
		}
		return nil, apperr.Internal("application lookup failed", err)
	}
	gig := &app.Gig
	if gig.VenueID != venueUserID {
		return nil, apperr.Forbidden("not_gig_owner", "only the gig's venue may accept applications")
	}
	if !app.IsPending() {
		return nil, apperr.InvalidState("application_not_pending", "application is not pending")
	}

	agreed := req.AgreedAmountCents
	if agreed <= 0 {
		agreed = gig.BudgetCents
	}
	scheduled := req.ScheduledAt
	if scheduled.IsZero() {
		scheduled = gig.EventDate
	}

	var booking *models.Booking
	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := s.now()

		// Conditional update doubles as the concurrency guard: if a racing
		// accept got there first, zero rows change and the step fails
		// without partial writes.
		res := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", app.ID, domain.ApplicationStatusPending).
			Updates(map[string]interface{}{"status": domain.ApplicationStatusAccepted, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.InvalidState("application_not_pending", "application is not pending")
		}

		res = tx.Model(&models.Gig{}).
			Where("id = ? AND status = ?", gig.ID, domain.GigStatusOpen).
			Updates(map[string]interface{}{
				"booked_performers": gorm.Expr("booked_performers + 1"),
				"updated_at":        now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.InvalidState("gig_closed", "gig is no longer open")
		}

		// Close the gig once the roster meets the required headcount.
		if err := tx.Model(&models.Gig{}).
			Where("id = ? AND booked_performers >= required_performers", gig.ID).
			Update("status", domain.GigStatusClosed).Error; err != nil {
			return err
		}

		gigID := gig.ID
		appID := app.ID
		b := &models.Booking{
			PerformerID:        app.ApplicantID,
			VenueID:            gig.VenueID,
			GigID:              &gigID,
			ApplicationID:      &appID,
			ScheduledAt:        scheduled,
			AgreedAmountCents:  agreed,
			Currency:           gig.Currency,
			Status:             domain.BookingStatusPending,
			DepositAmountCents: gig.DepositCents(agreed),
			VenueConfirmedAt:   &now,
		}
		b.FinalAmountCents = b.RemainingCents()
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindUnknown {
			return nil, err
		}
		return nil, apperr.Internal("acceptance transaction failed", err)
	}

	if venue, verr := s.userRepo.GetByID(venueUserID); verr == nil {
		s.notifier.NotifyBookingCreated(booking.PerformerID, booking.ID, venue.DisplayName)
	}
	s.pushStatus(booking)
	return booking, nil
}

// CreateFromMatch converts an active Match into a PENDING booking with the
// initiating party's confirmation pre-set.
func (s *BookingService) CreateFromMatch(actorID, matchID uint, agreedAmountCents int64, currency string, scheduledAt time.Time) (*models.Booking, error) {
	m, err := s.matches.GetByID(matchID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("match_not_found", "match does not exist")
		}
		return nil, apperr.Internal("match lookup failed", err)
	}
	if !m.HasParty(actorID) {
		return nil, apperr.Forbidden("not_match_party", "actor is not part of this match")
	}
	if m.Status != domain.MatchStatusActive {
		return nil, apperr.InvalidState("match_not_active", "match cannot be converted")
	}
	if agreedAmountCents <= 0 {
		return nil, apperr.InvalidState("invalid_amount", "agreed amount must be positive")
	}
	if currency == "" {
		currency = "USD"
	}

	var booking *models.Booking
	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := s.now()

		// The conditional flip is the concurrency guard: of two racing
		// conversions only one finds the row still ACTIVE, so a match can
		// never back two bookings.
		if err := s.matches.MarkConverted(tx, m.ID); err != nil {
			if errors.Is(err, repository.ErrMatchNotActive) {
				return apperr.InvalidState("match_not_active", "match cannot be converted")
			}
			return err
		}

		mID := m.ID
		b := &models.Booking{
			PerformerID:        m.PerformerID,
			VenueID:            m.VenueID,
			MatchID:            &mID,
			ScheduledAt:        scheduledAt,
			AgreedAmountCents:  agreedAmountCents,
			Currency:           currency,
			Status:             domain.BookingStatusPending,
			DepositAmountCents: agreedAmountCents * 25 / 100,
		}
		b.FinalAmountCents = b.RemainingCents()
		if actorID == b.PerformerID {
			b.PerformerConfirmedAt = &now
		} else {
			b.VenueConfirmedAt = &now
		}
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindUnknown {
			return nil, err
		}
		return nil, apperr.Internal("match conversion failed", err)
	}

	s.hub.PushToUser(m.PerformerID, ws.EventMatchConverted, m.ID)
	s.hub.PushToUser(m.VenueID, ws.EventMatchConverted, m.ID)
	s.pushStatus(booking)
	return booking, nil
}

// load fetches the booking and verifies the actor is one of its parties.
// Authorization failures surface before any state guard is evaluated.
func (s *BookingService) load(bookingID, actorID uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(bookingID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("booking_not_found", "booking does not exist")
		}
		return nil, apperr.Internal("booking lookup failed", err)
	}
	if !b.HasParty(actorID) {
		return nil, apperr.Forbidden("not_booking_party", "actor is not a party to this booking")
	}
	return b, nil
}

// save persists b, requiring the stored status to still equal from. A racing
// transition that committed after load surfaces as Conflict so the client
// reloads instead of its stale write overwriting the committed state.
func (s *BookingService) save(b *models.Booking, from string) error {
	err := s.bookings.UpdateIfStatus(b, from)
	if errors.Is(err, repository.ErrBookingStale) {
		return apperr.Conflict("booking_modified", "booking changed concurrently, reload and retry")
	}
	if err != nil {
		return apperr.Internal("booking update failed", err)
	}
	return nil
}

// Confirm records the actor's confirmation. Re-confirming by the same party
// is a no-op; once both sides have confirmed the status becomes CONFIRMED.
func (s *BookingService) Confirm(actorID, bookingID uint) (*models.Booking, error) {
	b, err := s.load(bookingID, actorID)
	if err != nil {
		return nil, err
	}
	if b.IsTerminal() {
		return nil, apperr.InvalidState("booking_terminal", "booking is in a terminal state")
	}

	now := s.now()
	from := b.Status
	changed := false
	if actorID == b.PerformerID && b.PerformerConfirmedAt == nil {
		b.PerformerConfirmedAt = &now
		changed = true
	}
	if actorID == b.VenueID && b.VenueConfirmedAt == nil {
		b.VenueConfirmedAt = &now
		changed = true
	}
	if !changed {
		return b, nil
	}
	if b.BothConfirmed() && b.Status == domain.BookingStatusPending {
		b.Status = domain.BookingStatusConfirmed
	}
	if err := s.save(b, from); err != nil {
		return nil, err
	}
	if b.Status == domain.BookingStatusConfirmed {
		s.notifier.NotifyBookingConfirmed(b.PerformerID, b.ID)
		s.notifier.NotifyBookingConfirmed(b.VenueID, b.ID)
		s.pushStatus(b)
	}
	return b, nil
}

// CreateDepositIntent opens a payment intent for the deposit. Allowed only
// from CONFIRMED. The gateway call is bounded by the configured timeout and
// never retried: retrying a mutating gateway call risks a double charge.
func (s *BookingService) CreateDepositIntent(ctx context.Context, actorID, bookingID uint) (*models.Booking, *payment.Intent, error) {
	b, err := s.load(bookingID, actorID)
	if err != nil {
		return nil, nil, err
	}
	if b.Status != domain.BookingStatusConfirmed {
		return nil, nil, apperr.InvalidState("deposit_not_allowed", "deposit requires a confirmed booking")
	}
	intent, err := s.createIntent(ctx, b, b.DepositAmountCents, "deposit")
	if err != nil {
		return nil, nil, err
	}
	b.DepositIntentRef = intent.ID
	if err := s.save(b, domain.BookingStatusConfirmed); err != nil {
		return nil, nil, err
	}
	return b, intent, nil
}

// ConfirmDeposit marks the deposit paid after the gateway (or its webhook)
// reports success. The submitted reference must match the stored one —
// replay and cross-booking confusion are rejected as InvalidState.
func (s *BookingService) ConfirmDeposit(actorID, bookingID uint, intentRef string) (*models.Booking, error) {
	b, err := s.load(bookingID, actorID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusConfirmed {
		return nil, apperr.InvalidState("deposit_not_allowed", "deposit requires a confirmed booking")
	}
	if b.DepositIntentRef == "" || b.DepositIntentRef != intentRef {
		return nil, apperr.InvalidState("intent_mismatch", "payment reference does not match the recorded intent")
	}

	now := s.now()
	b.DepositPaid = true
	b.DepositPaidAt = &now
	b.Status = domain.BookingStatusDepositPaid
	if err := s.save(b, domain.BookingStatusConfirmed); err != nil {
		return nil, err
	}
	s.notifier.NotifyPaymentReceived(b.VenueID, b.ID, b.DepositAmountCents)
	s.pushStatus(b)
	return b, nil
}

// CreateFinalIntent opens a payment intent for the remaining amount.
// Allowed from DEPOSIT_PAID or directly from CONFIRMED (venue paying in one
// go); the remainder is agreed amount minus deposit either way.
func (s *BookingService) CreateFinalIntent(ctx context.Context, actorID, bookingID uint) (*models.Booking, *payment.Intent, error) {
	b, err := s.load(bookingID, actorID)
	if err != nil {
		return nil, nil, err
	}
	if b.Status != domain.BookingStatusDepositPaid && b.Status != domain.BookingStatusConfirmed {
		return nil, nil, apperr.InvalidState("final_not_allowed", "final payment requires a confirmed or deposit-paid booking")
	}
	intent, err := s.createIntent(ctx, b, b.RemainingCents(), "final")
	if err != nil {
		return nil, nil, err
	}
	from := b.Status
	b.FinalIntentRef = intent.ID
	b.FinalAmountCents = b.RemainingCents()
	if err := s.save(b, from); err != nil {
		return nil, nil, err
	}
	return b, intent, nil
}

func (s *BookingService) ConfirmFinal(actorID, bookingID uint, intentRef string) (*models.Booking, error) {
	b, err := s.load(bookingID, actorID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusDepositPaid && b.Status != domain.BookingStatusConfirmed {
		return nil, apperr.InvalidState("final_not_allowed", "final payment requires a confirmed or deposit-paid booking")
	}
	if b.FinalIntentRef == "" || b.FinalIntentRef != intentRef {
		return nil, apperr.InvalidState("intent_mismatch", "payment reference does not match the recorded intent")
	}

	now := s.now()
	from := b.Status
	b.FinalPaid = true
	b.FinalPaidAt = &now
	b.Status = domain.BookingStatusPaid
	if err := s.save(b, from); err != nil {
		return nil, err
	}
	s.notifier.NotifyPaymentReceived(b.VenueID, b.ID, b.FinalAmountCents)
	s.pushStatus(b)
	return b, nil
}

func (s *BookingService) createIntent(ctx context.Context, b *models.Booking, amountCents int64, phase string) (*payment.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.payCfg.IntentTimeout)
	defer cancel()
	intent, err := s.gateway.CreateIntent(ctx, amountCents, b.Currency, map[string]string{
		"booking_id": strconv.FormatUint(uint64(b.ID), 10),
		"phase":      phase,
	})
	if err != nil {
		return nil, apperr.Internal("payment gateway call failed", err)
	}
	return intent, nil
}

// Complete records the actor's completion flag. Allowed from DEPOSIT_PAID,
// PAID or IN_PROGRESS; once both parties have flagged completion the booking
// becomes COMPLETED and review prompts are dispatched.
func (s *BookingService) Complete(actorID, bookingID uint) (*models.Booking, error) {
	b, err := s.load(bookingID, actorID)
	if err != nil {
		return nil, err
	}
	// Completion is open from DEPOSIT_PAID onwards on the forward path;
	// CANCELLED and DISPUTED carry no rank and fall out.
	rank, ok := domain.BookingStatusRank[b.Status]
	if !ok || rank < domain.BookingStatusRank[domain.BookingStatusDepositPaid] ||
		b.Status == domain.BookingStatusCompleted {
		return nil, apperr.InvalidState("complete_not_allowed", "booking cannot be completed from its current state")
	}

	now := s.now()
	from := b.Status
	changed := false
	if actorID == b.PerformerID && b.PerformerCompletedAt == nil {
		b.PerformerCompletedAt = &now
		changed = true
	}
	if actorID == b.VenueID && b.VenueCompletedAt == nil {
		b.VenueCompletedAt = &now
		changed = true
	}
	if !changed {
		return b, nil
	}
	if b.BothCompleted() {
		b.Status = domain.BookingStatusCompleted
	}
	if err := s.save(b, from); err != nil {
		return nil, err
	}
	if b.Status == domain.BookingStatusCompleted {
		s.notifier.NotifyReviewPrompt(b.PerformerID, b.ID)
		s.notifier.NotifyReviewPrompt(b.VenueID, b.ID)
		s.pushStatus(b)
	}
	return b, nil
}

// Cancel moves the booking to CANCELLED from any non-terminal state. When a
// deposit was paid, the refund is flagged as owed; executing it belongs to
// the payment collaborator, never done inline.
func (s *BookingService) Cancel(actorID, bookingID uint, reason string) (*models.Booking, error) {
	b, err := s.load(bookingID, actorID)
	if err != nil {
		return nil, err
	}
	if b.IsTerminal() {
		return nil, apperr.InvalidState("booking_terminal", "booking is in a terminal state")
	}

	now := s.now()
	from := b.Status
	b.Status = domain.BookingStatusCancelled
	b.CancelledBy = &actorID
	b.CancelledAt = &now
	b.CancellationReason = reason
	if b.DepositPaid {
		b.RefundOwed = true
		b.RefundAmountCents = b.DepositAmountCents
		if b.FinalPaid {
			b.RefundAmountCents = b.AgreedAmountCents
		}
	}
	if err := s.save(b, from); err != nil {
		return nil, err
	}
	s.notifier.NotifyBookingCancelled(b.OtherParty(actorID), b.ID, reason)
	s.pushStatus(b)
	return b, nil
}

// SignContract records the actor's signature. The contract channel never
// gates payment or status transitions.
func (s *BookingService) SignContract(actorID, bookingID uint) (*models.Booking, error) {
	b, err := s.load(bookingID, actorID)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingStatusCancelled {
		return nil, apperr.InvalidState("booking_cancelled", "cancelled bookings cannot be signed")
	}

	now := s.now()
	if actorID == b.PerformerID && b.PerformerSignedAt == nil {
		b.PerformerSignedAt = &now
	}
	if actorID == b.VenueID && b.VenueSignedAt == nil {
		b.VenueSignedAt = &now
	}
	b.ContractSigned = b.BothSigned()
	if err := s.save(b, b.Status); err != nil {
		return nil, err
	}
	return b, nil
}

// AttachContract stores the uploaded contract's delivery URL.
func (s *BookingService) AttachContract(actorID, bookingID uint, url string) (*models.Booking, error) {
	b, err := s.load(bookingID, actorID)
	if err != nil {
		return nil, err
	}
	b.ContractURL = url
	if err := s.save(b, b.Status); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) pushStatus(b *models.Booking) {
	if s.hub == nil {
		return
	}
	data := map[string]interface{}{"booking_id": b.ID, "status": b.Status}
	s.hub.PushToUser(b.PerformerID, ws.EventBookingStatus, data)
	s.hub.PushToUser(b.VenueID, ws.EventBookingStatus, data)
}
