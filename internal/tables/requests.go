package tables

type TableCreateRequest struct {
	Number   int    `json:"number"`
	Capacity int    `json:"capacity,omitempty"`
	Status   string `json:"status,omitempty"`
}

type TableUpdateRequest struct {
	Number   *int    `json:"number,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
	Status   *string `json:"status,omitempty"`
}
