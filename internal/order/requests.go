package order

import "github.com/google/uuid"

type PlaceOrderRequest struct {
	TableNumber   int                `json:"table_number"`
	Items         []PlaceItemRequest `json:"items"`
	CustomerName  string             `json:"customer_name,omitempty"`
	CustomerPhone string             `json:"customer_phone,omitempty"`
}

// PlaceItemRequest references a menu item, or carries name and price
// directly for clients that snapshot the menu themselves.
type PlaceItemRequest struct {
	MenuItemID *uuid.UUID `json:"menu_item_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	Price      *float64   `json:"price,omitempty"`
	Quantity   int        `json:"quantity"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type ItemStatusUpdateRequest struct {
	Status   string `json:"status"`
	Override bool   `json:"override,omitempty"`
}
