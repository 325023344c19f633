package domain

const (
	RolePerformer = "PERFORMER"
	RoleVenue     = "VENUE"
)

// OppositeRole returns the role on the other side of the marketplace.
func OppositeRole(role string) string {
	if role == RolePerformer {
		return RoleVenue
	}
	return RolePerformer
}

const (
	DirectionLike      = "LIKE"
	DirectionPass      = "PASS"
	DirectionSuperlike = "SUPERLIKE"
)

// Decision outcomes.
const (
	OutcomeNoMatch = "NO_MATCH"
	OutcomeLiked   = "LIKED"
	OutcomeMatched = "MATCHED"
	OutcomeExpired = "EXPIRED"
)

const (
	MatchStatusActive    = "ACTIVE"
	MatchStatusArchived  = "ARCHIVED"
	MatchStatusBlocked   = "BLOCKED"
	MatchStatusConverted = "CONVERTED_TO_BOOKING"
)

const (
	GigStatusOpen      = "OPEN"
	GigStatusClosed    = "CLOSED"
	GigStatusCancelled = "CANCELLED"
)

const (
	ApplicationStatusPending   = "PENDING"
	ApplicationStatusAccepted  = "ACCEPTED"
	ApplicationStatusRejected  = "REJECTED"
	ApplicationStatusWithdrawn = "WITHDRAWN"
)

const (
	BookingStatusPending     = "PENDING"
	BookingStatusConfirmed   = "CONFIRMED"
	BookingStatusDepositPaid = "DEPOSIT_PAID"
	BookingStatusPaid        = "PAID"
	BookingStatusInProgress  = "IN_PROGRESS"
	BookingStatusCompleted   = "COMPLETED"
	BookingStatusCancelled   = "CANCELLED"
	BookingStatusDisputed    = "DISPUTED"
)

// BookingStatusRank orders the forward path of the booking lifecycle.
// CANCELLED and DISPUTED sit outside the rank; they are absorbing from any
// non-terminal status.
var BookingStatusRank = map[string]int{
	BookingStatusPending:     0,
	BookingStatusConfirmed:   1,
	BookingStatusDepositPaid: 2,
	BookingStatusPaid:        3,
	BookingStatusInProgress:  4,
	BookingStatusCompleted:   5,
}

func IsTerminalBookingStatus(status string) bool {
	switch status {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusDisputed:
		return true
	}
	return false
}

// Search radius options in km offered in the discovery UI.
var SearchRadiusKm = []float64{5, 10, 25, 50, 100}
