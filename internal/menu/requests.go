package menu

type MenuItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
	Available   *bool   `json:"available,omitempty"`
	Vegetarian  bool    `json:"vegetarian"`
}
