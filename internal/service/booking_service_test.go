package service

import (
	"context"
	"testing"
	"time"

	"gigmatch/internal/apperr"
	"gigmatch/internal/domain"
	"gigmatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptApplicationCreatesBooking(t *testing.T) {
	e := newEnv(t)
	venue := e.seedUser(t, domain.RoleVenue, "venue1")
	performer := e.seedUser(t, domain.RolePerformer, "performer1")
	gig := e.seedGig(t, venue.ID, 1)
	app := e.seedApplication(t, gig.ID, performer.ID)

	b, err := e.bookingSvc.AcceptApplication(venue.ID, app.ID, AcceptRequest{})
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusPending, b.Status)
	assert.Equal(t, performer.ID, b.PerformerID)
	assert.Equal(t, venue.ID, b.VenueID)
	assert.Equal(t, gig.BudgetCents, b.AgreedAmountCents, "agreed amount defaults to the gig budget")
	assert.EqualValues(t, 25_000, b.DepositAmountCents)
	assert.NotNil(t, b.VenueConfirmedAt, "accepting implies the venue's confirmation")
	assert.Nil(t, b.PerformerConfirmedAt)

	var a models.Application
	require.NoError(t, e.db.First(&a, app.ID).Error)
	assert.Equal(t, domain.ApplicationStatusAccepted, a.Status)

	// Roster hit the required headcount, so the gig closed.
	var g models.Gig
	require.NoError(t, e.db.First(&g, gig.ID).Error)
	assert.Equal(t, 1, g.BookedPerformers)
	assert.Equal(t, domain.GigStatusClosed, g.Status)
}

func TestAcceptApplicationKeepsGigOpenBelowHeadcount(t *testing.T) {
	e := newEnv(t)
	venue := e.seedUser(t, domain.RoleVenue, "venue1")
	p1 := e.seedUser(t, domain.RolePerformer, "performer1")
	gig := e.seedGig(t, venue.ID, 3)
	app := e.seedApplication(t, gig.ID, p1.ID)

	_, err := e.bookingSvc.AcceptApplication(venue.ID, app.ID, AcceptRequest{})
	require.NoError(t, err)

	var g models.Gig
	require.NoError(t, e.db.First(&g, gig.ID).Error)
	assert.Equal(t, domain.GigStatusOpen, g.Status)
}

func TestAcceptApplicationGuards(t *testing.T) {
	e := newEnv(t)
	venue := e.seedUser(t, domain.RoleVenue, "venue1")
	stranger := e.seedUser(t, domain.RoleVenue, "venue2")
	performer := e.seedUser(t, domain.RolePerformer, "performer1")
	gig := e.seedGig(t, venue.ID, 1)
	app := e.seedApplication(t, gig.ID, performer.ID)

	// Only the gig's venue may accept.
	_, err := e.bookingSvc.AcceptApplication(stranger.ID, app.ID, AcceptRequest{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// Accepting twice fails: the application is no longer pending.
	_, err = e.bookingSvc.AcceptApplication(venue.ID, app.ID, AcceptRequest{})
	require.NoError(t, err)
	_, err = e.bookingSvc.AcceptApplication(venue.ID, app.ID, AcceptRequest{})
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestCreateFromMatch(t *testing.T) {
	e := newEnv(t)
	performer := e.seedUser(t, domain.RolePerformer, "performer1")
	venue := e.seedUser(t, domain.RoleVenue, "venue1")
	m := &models.Match{PerformerID: performer.ID, VenueID: venue.ID, Status: domain.MatchStatusActive, LastActivityAt: time.Now()}
	require.NoError(t, e.db.Create(m).Error)

	when := time.Now().Add(10 * 24 * time.Hour)
	b, err := e.bookingSvc.CreateFromMatch(performer.ID, m.ID, 100_000, "USD", when)
	require.NoError(t, err)

	assert.EqualValues(t, 25_000, b.DepositAmountCents)
	assert.NotNil(t, b.PerformerConfirmedAt, "the initiator's confirmation is pre-set")
	assert.Nil(t, b.VenueConfirmedAt)
	require.NotNil(t, b.MatchID)
	assert.Equal(t, m.ID, *b.MatchID)

	var converted models.Match
	require.NoError(t, e.db.First(&converted, m.ID).Error)
	assert.Equal(t, domain.MatchStatusConverted, converted.Status)

	// A converted match cannot be converted again.
	_, err = e.bookingSvc.CreateFromMatch(venue.ID, m.ID, 100_000, "USD", when)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	var n int64
	require.NoError(t, e.db.Model(&models.Booking{}).Where("match_id = ?", m.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n, "a match backs at most one booking")
}

func TestCreateFromMatchRequiresParty(t *testing.T) {
	e := newEnv(t)
	performer := e.seedUser(t, domain.RolePerformer, "performer1")
	venue := e.seedUser(t, domain.RoleVenue, "venue1")
	outsider := e.seedUser(t, domain.RolePerformer, "performer2")
	m := &models.Match{PerformerID: performer.ID, VenueID: venue.ID, Status: domain.MatchStatusActive, LastActivityAt: time.Now()}
	require.NoError(t, e.db.Create(m).Error)

	_, err := e.bookingSvc.CreateFromMatch(outsider.ID, m.ID, 100_000, "USD", time.Now())
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

// acceptedBooking seeds a gig-backed booking in PENDING with the venue's
// confirmation already recorded.
func acceptedBooking(t *testing.T, e *env) (*models.Booking, *models.User, *models.User) {
	t.Helper()
	venue := e.seedUser(t, domain.RoleVenue, "venue1")
	performer := e.seedUser(t, domain.RolePerformer, "performer1")
	gig := e.seedGig(t, venue.ID, 1)
	app := e.seedApplication(t, gig.ID, performer.ID)
	b, err := e.bookingSvc.AcceptApplication(venue.ID, app.ID, AcceptRequest{})
	require.NoError(t, err)
	return b, performer, venue
}

func TestConfirmFlow(t *testing.T) {
	e := newEnv(t)
	b, performer, venue := acceptedBooking(t, e)

	// The venue re-confirming is a no-op, not an error.
	got, err := e.bookingSvc.Confirm(venue.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, got.Status)

	got, err = e.bookingSvc.Confirm(performer.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
	assert.True(t, got.BothConfirmed())

	// Idempotent after the transition too.
	got, err = e.bookingSvc.Confirm(performer.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
}

func TestBookingAccessControl(t *testing.T) {
	e := newEnv(t)
	b, _, _ := acceptedBooking(t, e)
	outsider := e.seedUser(t, domain.RolePerformer, "outsider")

	_, err := e.bookingSvc.Confirm(outsider.ID, b.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = e.bookingSvc.Confirm(outsider.ID, 99999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// TestFullPaymentLifecycle walks a 1000.00 booking through deposit (250.00)
// and final payment (750.00) to completion.
func TestFullPaymentLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b, performer, venue := acceptedBooking(t, e)
	require.EqualValues(t, 100_000, b.AgreedAmountCents)

	// Deposit before mutual confirmation is rejected.
	_, _, err := e.bookingSvc.CreateDepositIntent(ctx, venue.ID, b.ID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	_, err = e.bookingSvc.Confirm(performer.ID, b.ID)
	require.NoError(t, err)

	// Deposit: 25% of the agreed amount.
	got, intent, err := e.bookingSvc.CreateDepositIntent(ctx, venue.ID, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 25_000, got.DepositAmountCents)

	// Confirming with a foreign reference is rejected and changes nothing.
	_, err = e.bookingSvc.ConfirmDeposit(venue.ID, b.ID, "someone_elses_intent")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	got, err = e.bookingSvc.ConfirmDeposit(venue.ID, b.ID, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusDepositPaid, got.Status)
	assert.True(t, got.DepositPaid)

	// Replaying the deposit confirmation fails: the status moved on.
	_, err = e.bookingSvc.ConfirmDeposit(venue.ID, b.ID, intent.ID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// Final: the remaining 75%.
	got, final, err := e.bookingSvc.CreateFinalIntent(ctx, venue.ID, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 75_000, got.FinalAmountCents)
	assert.NotEqual(t, intent.ID, final.ID)

	got, err = e.bookingSvc.ConfirmFinal(venue.ID, b.ID, final.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPaid, got.Status)
	assert.True(t, got.FinalPaid)

	// Both parties flag completion.
	got, err = e.bookingSvc.Complete(performer.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPaid, got.Status, "one-sided completion does not finish the booking")

	got, err = e.bookingSvc.Complete(venue.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, got.Status)

	// Terminal: no further transitions.
	_, err = e.bookingSvc.Cancel(venue.ID, b.ID, "changed plans")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	_, err = e.bookingSvc.Confirm(venue.ID, b.ID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestCompleteRequiresDeposit(t *testing.T) {
	e := newEnv(t)
	b, performer, _ := acceptedBooking(t, e)

	_, err := e.bookingSvc.Complete(performer.ID, b.ID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestCancelBeforePaymentOwesNoRefund(t *testing.T) {
	e := newEnv(t)
	b, performer, _ := acceptedBooking(t, e)

	got, err := e.bookingSvc.Cancel(performer.ID, b.ID, "double booked")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, got.Status)
	assert.False(t, got.RefundOwed)
	assert.Equal(t, "double booked", got.CancellationReason)
	require.NotNil(t, got.CancelledBy)
	assert.Equal(t, performer.ID, *got.CancelledBy)
}

func TestCancelAfterDepositFlagsRefund(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b, performer, venue := acceptedBooking(t, e)

	_, err := e.bookingSvc.Confirm(performer.ID, b.ID)
	require.NoError(t, err)
	_, intent, err := e.bookingSvc.CreateDepositIntent(ctx, venue.ID, b.ID)
	require.NoError(t, err)
	_, err = e.bookingSvc.ConfirmDeposit(venue.ID, b.ID, intent.ID)
	require.NoError(t, err)

	got, err := e.bookingSvc.Cancel(venue.ID, b.ID, "venue flooded")
	require.NoError(t, err)
	assert.True(t, got.RefundOwed)
	assert.Equal(t, got.DepositAmountCents, got.RefundAmountCents)
}

func TestContractSigningNeverGatesStatus(t *testing.T) {
	e := newEnv(t)
	b, performer, venue := acceptedBooking(t, e)

	got, err := e.bookingSvc.SignContract(performer.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, got.ContractSigned)

	got, err = e.bookingSvc.SignContract(venue.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, got.ContractSigned)

	// Still PENDING: signatures are a side channel.
	assert.Equal(t, domain.BookingStatusPending, got.Status)
}
