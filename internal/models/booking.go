package models

import (
	"time"

	"gigmatch/internal/domain"

	"gorm.io/gorm"
)

// Booking is the committed engagement between one performer and one venue,
// derived from an accepted Application or directly from a Match. Status is
// the authoritative source of truth for the payment phase; the nullable
// payment fields are bookkeeping, never inspected to infer phase.
type Booking struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	PerformerID uint `gorm:"not null;index" json:"performer_id"`
	VenueID     uint `gorm:"not null;index" json:"venue_id"`

	// Nullable back-references to the originating records.
	GigID         *uint `gorm:"index" json:"gig_id,omitempty"`
	ApplicationID *uint `gorm:"index" json:"application_id,omitempty"`
	MatchID       *uint `gorm:"index" json:"match_id,omitempty"`

	ScheduledAt       time.Time `json:"scheduled_at"`
	AgreedAmountCents int64     `gorm:"not null" json:"agreed_amount_cents"`
	Currency          string    `gorm:"size:3;default:'USD'" json:"currency"`
	Status            string    `gorm:"size:20;not null;index" json:"status"`

	// Deposit milestone.
	DepositAmountCents int64      `json:"deposit_amount_cents"`
	DepositPaid        bool       `gorm:"default:false" json:"deposit_paid"`
	DepositPaidAt      *time.Time `json:"deposit_paid_at"`
	DepositIntentRef   string     `gorm:"size:255" json:"-"` // opaque gateway reference

	// Final milestone.
	FinalAmountCents int64      `json:"final_amount_cents"`
	FinalPaid        bool       `gorm:"default:false" json:"final_paid"`
	FinalPaidAt      *time.Time `json:"final_paid_at"`
	FinalIntentRef   string     `gorm:"size:255" json:"-"`

	// Dual confirmation, one flag per party.
	PerformerConfirmedAt *time.Time `json:"performer_confirmed_at"`
	VenueConfirmedAt     *time.Time `json:"venue_confirmed_at"`

	// Dual completion.
	PerformerCompletedAt *time.Time `json:"performer_completed_at"`
	VenueCompletedAt     *time.Time `json:"venue_completed_at"`

	// Cancellation metadata.
	CancelledBy        *uint      `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason,omitempty"`
	RefundOwed         bool       `gorm:"default:false" json:"refund_owed"`
	RefundAmountCents  int64      `json:"refund_amount_cents"`

	// Contract side-channel; does not gate status transitions.
	ContractURL       string     `gorm:"size:512" json:"contract_url,omitempty"`
	ContractSigned    bool       `gorm:"default:false" json:"contract_signed"`
	PerformerSignedAt *time.Time `json:"performer_signed_at"`
	VenueSignedAt     *time.Time `json:"venue_signed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Performer User `gorm:"foreignKey:PerformerID" json:"-"`
	Venue     User `gorm:"foreignKey:VenueID" json:"-"`
}

func (b *Booking) HasParty(userID uint) bool {
	return b.PerformerID == userID || b.VenueID == userID
}

func (b *Booking) OtherParty(userID uint) uint {
	switch userID {
	case b.PerformerID:
		return b.VenueID
	case b.VenueID:
		return b.PerformerID
	}
	return 0
}

func (b *Booking) BothConfirmed() bool {
	return b.PerformerConfirmedAt != nil && b.VenueConfirmedAt != nil
}

func (b *Booking) BothCompleted() bool {
	return b.PerformerCompletedAt != nil && b.VenueCompletedAt != nil
}

func (b *Booking) BothSigned() bool {
	return b.PerformerSignedAt != nil && b.VenueSignedAt != nil
}

func (b *Booking) IsTerminal() bool {
	return domain.IsTerminalBookingStatus(b.Status)
}

// RemainingCents is the final-payment amount still owed.
func (b *Booking) RemainingCents() int64 {
	return b.AgreedAmountCents - b.DepositAmountCents
}
