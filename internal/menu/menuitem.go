package menu

import (
	"errors"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("menu item not found")

// MenuItem is a dish or drink offered to customers.
type MenuItem struct {
	ID          uuid.UUID `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Category    string    `json:"category" bson:"category"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty"`
	Available   bool      `json:"available" bson:"available"`
	Vegetarian  bool      `json:"vegetarian" bson:"vegetarian"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func NewMenuItem() *MenuItem {
	return &MenuItem{
		ID:        aqm.GenerateNewID(),
		Available: true,
	}
}

func (m *MenuItem) GetID() uuid.UUID {
	return m.ID
}

func (m *MenuItem) ResourceType() string {
	return "menu"
}

func (m *MenuItem) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = aqm.GenerateNewID()
	}
}

func (m *MenuItem) BeforeCreate() {
	m.EnsureID()
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
}

func (m *MenuItem) BeforeUpdate() {
	m.UpdatedAt = time.Now()
}

// Apply copies request fields onto the item. Availability defaults to true
// when the request leaves it out.
func (m *MenuItem) Apply(req MenuItemRequest) {
	m.Name = req.Name
	m.Description = req.Description
	m.Price = req.Price
	m.Category = normalizeCategory(req.Category)
	m.Image = req.Image
	m.Vegetarian = req.Vegetarian
	m.Available = true
	if req.Available != nil {
		m.Available = *req.Available
	}
}
