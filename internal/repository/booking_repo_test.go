package repository

import (
	"testing"
	"time"

	"gigmatch/internal/domain"
	"gigmatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedBooking(t *testing.T, db *gorm.DB) *models.Booking {
	t.Helper()
	performer := seedUser(t, db, domain.RolePerformer, "performer1")
	venue := seedUser(t, db, domain.RoleVenue, "venue1")
	b := &models.Booking{
		PerformerID:        performer.ID,
		VenueID:            venue.ID,
		ScheduledAt:        time.Now().Add(7 * 24 * time.Hour),
		AgreedAmountCents:  100_000,
		Currency:           "USD",
		Status:             domain.BookingStatusConfirmed,
		DepositAmountCents: 25_000,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

// Two callers load the same CONFIRMED booking; a cancellation commits, then
// the other caller tries to persist its deposit transition. The stale write
// must fail instead of pulling the booking back out of CANCELLED.
func TestUpdateIfStatusRejectsStaleWriter(t *testing.T) {
	db := testDB(t)
	repo := NewBookingRepository(db)
	b := seedBooking(t, db)

	stale, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	cancelling, err := repo.GetByID(b.ID)
	require.NoError(t, err)

	now := time.Now()
	cancelling.Status = domain.BookingStatusCancelled
	cancelling.CancelledAt = &now
	cancelling.RefundOwed = true
	cancelling.RefundAmountCents = cancelling.DepositAmountCents
	require.NoError(t, repo.UpdateIfStatus(cancelling, domain.BookingStatusConfirmed))

	stale.Status = domain.BookingStatusDepositPaid
	stale.DepositPaid = true
	stale.DepositPaidAt = &now
	err = repo.UpdateIfStatus(stale, domain.BookingStatusConfirmed)
	assert.ErrorIs(t, err, ErrBookingStale)

	var stored models.Booking
	require.NoError(t, db.First(&stored, b.ID).Error)
	assert.Equal(t, domain.BookingStatusCancelled, stored.Status)
	assert.True(t, stored.RefundOwed, "the cancellation's refund flags survive the stale writer")
	assert.EqualValues(t, 25_000, stored.RefundAmountCents)
	assert.False(t, stored.DepositPaid)
}

func TestUpdateIfStatusPersistsMatchedTransition(t *testing.T) {
	db := testDB(t)
	repo := NewBookingRepository(db)
	b := seedBooking(t, db)

	now := time.Now()
	b.Status = domain.BookingStatusDepositPaid
	b.DepositPaid = true
	b.DepositPaidAt = &now
	require.NoError(t, repo.UpdateIfStatus(b, domain.BookingStatusConfirmed))

	var stored models.Booking
	require.NoError(t, db.First(&stored, b.ID).Error)
	assert.Equal(t, domain.BookingStatusDepositPaid, stored.Status)
	assert.True(t, stored.DepositPaid)
	require.NotNil(t, stored.DepositPaidAt)
}
