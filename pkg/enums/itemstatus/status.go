package itemstatus

import (
	"strings"
)

type Status struct {
	Name string
	rank int
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	if s.Name == "" {
		return ""
	}
	return strings.ToUpper(s.Name[:1]) + s.Name[1:]
}

// Rank orders statuses along the item lifecycle.
func (s Status) Rank() int {
	return s.rank
}

type Enum struct {
	Pending   Status
	Prepared  Status
	Completed Status
}

var Statuses = Enum{
	Pending:   Status{Name: "pending", rank: 0},
	Prepared:  Status{Name: "prepared", rank: 1},
	Completed: Status{Name: "completed", rank: 2},
}

var All = []Status{
	Statuses.Pending,
	Statuses.Prepared,
	Statuses.Completed,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// IsForward reports whether moving from one status to another does not go
// backwards. Unknown names are never forward.
func IsForward(from, to string) bool {
	f, t := ByName(from), ByName(to)
	if f == nil || t == nil {
		return false
	}
	return t.rank >= f.rank
}
