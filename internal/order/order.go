package order

import (
	"errors"
	"time"

	"github.com/appetiteclub/roms/pkg/enums/itemstatus"
	"github.com/appetiteclub/roms/pkg/enums/orderstatus"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const DefaultCustomerName = "Guest"

var (
	ErrOrderCompleted      = errors.New("order is completed")
	ErrItemIndexOutOfRange = errors.New("invalid item index")
	ErrItemRegression      = errors.New("item status cannot move backwards without override")
	ErrInvalidItemStatus   = errors.New("invalid item status")
	ErrEmptyBatch          = errors.New("batch has no items")
	ErrConcurrentUpdate    = errors.New("order was modified concurrently")
)

// Order is one table's running tab. Items are append-only and Total always
// equals the sum of price times quantity over every item.
type Order struct {
	ID                  uuid.UUID  `json:"id" bson:"_id"`
	TableNumber         int        `json:"table_number" bson:"table_number"`
	Items               []Item     `json:"items" bson:"items"`
	Total               float64    `json:"total" bson:"total"`
	Status              string     `json:"status" bson:"status"`
	Open                bool       `json:"-" bson:"open"`
	Timestamp           time.Time  `json:"timestamp" bson:"timestamp"`
	CustomerName        string     `json:"customer_name" bson:"customer_name"`
	CustomerPhone       string     `json:"customer_phone" bson:"customer_phone"`
	CompletedAt         *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	TaxRateAtCompletion *float64   `json:"tax_rate_at_completion,omitempty" bson:"tax_rate_at_completion,omitempty"`
	Version             int64      `json:"version" bson:"version"`
	CreatedAt           time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" bson:"updated_at"`
}

// Item is a snapshot of a menu item taken when it was ordered.
type Item struct {
	MenuItemID *uuid.UUID `json:"menu_item_id,omitempty" bson:"menu_item_id,omitempty"`
	Name       string     `json:"name" bson:"name"`
	Price      float64    `json:"price" bson:"price"`
	Quantity   int        `json:"quantity" bson:"quantity"`
	Status     string     `json:"status" bson:"status"`
}

func (i Item) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

func NewOrder(tableNumber int) *Order {
	return &Order{
		ID:           aqm.GenerateNewID(),
		TableNumber:  tableNumber,
		Items:        []Item{},
		Status:       orderstatus.Statuses.Pending.Code(),
		Open:         true,
		CustomerName: DefaultCustomerName,
	}
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = aqm.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Timestamp.IsZero() {
		o.Timestamp = now
	}
	if o.Version == 0 {
		o.Version = 1
	}
	o.Open = o.IsOpen()
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
	o.Open = o.IsOpen()
}

func (o *Order) IsOpen() bool {
	return o.Status != orderstatus.Statuses.Completed.Code()
}

// Subtotal recomputes the sum over all items without touching Total.
func (o *Order) Subtotal() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.LineTotal()
	}
	return sum
}

func (o *Order) recomputeTotal() {
	o.Total = o.Subtotal()
}

// AppendBatch adds a placement's items as pending work. An order that was
// ready for service goes back to preparing.
func (o *Order) AppendBatch(items []Item, at time.Time) error {
	if !o.IsOpen() {
		return ErrOrderCompleted
	}
	if len(items) == 0 {
		return ErrEmptyBatch
	}

	for _, item := range items {
		item.Status = itemstatus.Statuses.Pending.Code()
		o.Items = append(o.Items, item)
	}
	o.recomputeTotal()
	o.Timestamp = at

	if o.Status == orderstatus.Statuses.Ready.Code() || o.Status == orderstatus.Prepared {
		o.Status = orderstatus.Statuses.Preparing.Code()
	}
	o.Open = true
	return nil
}

// SetItemStatus updates the item at index. Backward moves need override.
// When every item is completed the order completes as well; the returned
// bool reports that.
func (o *Order) SetItemStatus(index int, status string, override bool, at time.Time) (bool, error) {
	if index < 0 || index >= len(o.Items) {
		return false, ErrItemIndexOutOfRange
	}
	if itemstatus.ByName(status) == nil {
		return false, ErrInvalidItemStatus
	}
	if !o.IsOpen() {
		return false, ErrOrderCompleted
	}

	current := o.Items[index].Status
	if !override && !itemstatus.IsForward(current, status) {
		return false, ErrItemRegression
	}

	o.Items[index].Status = status
	o.recomputeTotal()

	if o.AllItemsCompleted() {
		o.complete(at)
		return true, nil
	}
	return false, nil
}

func (o *Order) AllItemsCompleted() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if item.Status != itemstatus.Statuses.Completed.Code() {
			return false
		}
	}
	return true
}

// SnapshotTaxRate records the rate that was live when the order completed.
func (o *Order) SnapshotTaxRate(rate float64) {
	r := rate
	o.TaxRateAtCompletion = &r
}

func (o *Order) complete(at time.Time) {
	for i := range o.Items {
		o.Items[i].Status = itemstatus.Statuses.Completed.Code()
	}
	o.Status = orderstatus.Statuses.Completed.Code()
	o.Open = false
	t := at
	o.CompletedAt = &t
}
