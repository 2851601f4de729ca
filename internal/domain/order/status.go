package order

import "github.com/hostly/ordercore/internal/domain/shared"

// Status represents the lifecycle status of an order
type Status string

const (
	StatusPending          Status = "pending"
	StatusConfirmed        Status = "confirmed"
	StatusConfirmedUnpaid  Status = "confirmed_unpaid"
	StatusPreparing        Status = "preparing"
	StatusReadyForDelivery Status = "ready_for_delivery"
	StatusDelivered        Status = "delivered"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusConfirmedUnpaid,
	StatusPreparing,
	StatusReadyForDelivery,
	StatusDelivered,
	StatusCompleted,
	StatusCancelled,
}

// transitions is the directed status graph. It is never mutated after init.
var transitions = map[Status][]Status{
	StatusPending:          {StatusConfirmed, StatusConfirmedUnpaid, StatusPreparing, StatusCancelled},
	StatusConfirmed:        {StatusPreparing, StatusCancelled},
	StatusConfirmedUnpaid:  {StatusPreparing, StatusCancelled},
	StatusPreparing:        {StatusReadyForDelivery, StatusCancelled},
	StatusReadyForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:        {StatusCompleted, StatusCancelled},
	StatusCompleted:        nil,
	StatusCancelled:        nil,
}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves the status
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks if target is an edge out of s
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable in one step
func (s Status) NextStatuses() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// ParseStatus converts a string to a Status
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", shared.NewDomainErrorf(shared.CodeInvalidInput, "unknown order status %q", s)
	}
	return st, nil
}

// PaymentMethod is how the guest settles the order
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCard       PaymentMethod = "card"
	PaymentRoomCharge PaymentMethod = "room_charge"
	PaymentMobile     PaymentMethod = "mobile"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentRoomCharge, PaymentMobile:
		return true
	}
	return false
}

// InitialStatus is the status a new order starts in. Cash orders skip straight
// to confirmed_unpaid.
func (m PaymentMethod) InitialStatus() Status {
	if m == PaymentCash {
		return StatusConfirmedUnpaid
	}
	return StatusPending
}
