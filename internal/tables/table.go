package tables

import (
	"errors"
	"time"

	"github.com/appetiteclub/roms/pkg/enums/tablestatus"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const DefaultCapacity = 2

var (
	ErrNotFound        = errors.New("table not found")
	ErrDuplicateNumber = errors.New("table number already exists")
)

type Table struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Number    int       `json:"number" bson:"number"`
	Capacity  int       `json:"capacity" bson:"capacity"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// View is a table as served over HTTP, carrying the status derived from
// open orders.
type View struct {
	*Table
	DisplayStatus string `json:"display_status"`
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func NewTable() *Table {
	return &Table{
		ID:       aqm.GenerateNewID(),
		Capacity: DefaultCapacity,
		Status:   tablestatus.Statuses.Available.Code(),
	}
}

func (t *Table) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = aqm.GenerateNewID()
	}
}

func (t *Table) BeforeCreate() {
	t.EnsureID()
	if t.Capacity <= 0 {
		t.Capacity = DefaultCapacity
	}
	if t.Status == "" {
		t.Status = tablestatus.Statuses.Available.Code()
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Table) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}

func (t *Table) Apply(req TableUpdateRequest) {
	if req.Number != nil {
		t.Number = *req.Number
	}
	if req.Capacity != nil {
		t.Capacity = *req.Capacity
	}
	if req.Status != nil {
		t.Status = tablestatus.ByName(*req.Status).Code()
	}
}
