package event

import "time"

// ChangesTopic is the broker subject every change signal is published on.
const ChangesTopic = "roms.changes"

// Signal names. Viewers treat any of them as "re-fetch now".
const (
	OrdersUpdated    = "orders:updated"
	OrderItemUpdated = "order:itemUpdated"
	MenuUpdated      = "menu:updated"
	TablesUpdated    = "tables:updated"
	SettingsUpdated  = "settings:updated"
)

// Signal is an invalidation hint. It carries no state beyond what a viewer
// needs to decide what to re-fetch.
type Signal struct {
	Name       string    `json:"name"`
	OrderID    string    `json:"orderId,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewSignal(name string) Signal {
	return Signal{Name: name, OccurredAt: time.Now().UTC()}
}

func NewOrderItemSignal(orderID string) Signal {
	s := NewSignal(OrderItemUpdated)
	s.OrderID = orderID
	return s
}
