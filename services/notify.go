package services

const (
	EventBookingCreated = "booking_created"
	EventBookingPaid    = "booking_paid"
	EventOrderUpdated   = "order_updated"
	EventRatingUpdated  = "rating_updated"
)

// Notifier pushes an event to every live connection of one user.
type Notifier interface {
	Notify(userID uint, event string, data interface{})
}

type nopNotifier struct{}

func (nopNotifier) Notify(uint, string, interface{}) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
