package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/roms/pkg/enums/orderstatus"
)

var ErrInvalidStatus = errors.New("invalid order status")

// Policy selects how whole-order status changes are checked.
type Policy int

const (
	// Strict accepts only the successor from the transition table.
	Strict Policy = iota
	// Lenient accepts any known status except leaving completed.
	Lenient
)

func (p Policy) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}

// PolicyFromFlag maps the orders.status.lenient config value.
func PolicyFromFlag(lenient bool) Policy {
	if lenient {
		return Lenient
	}
	return Strict
}

var allowedTransitions = map[string][]string{
	orderstatus.Statuses.Pending.Code():   {orderstatus.Statuses.Confirmed.Code()},
	orderstatus.Statuses.Confirmed.Code(): {orderstatus.Statuses.Preparing.Code()},
	orderstatus.Statuses.Preparing.Code(): {orderstatus.Statuses.Ready.Code()},
	orderstatus.Statuses.Ready.Code():     {orderstatus.Statuses.Completed.Code()},
	orderstatus.Statuses.Completed.Code(): {},
}

// NextStatus returns the successor of current, if any.
func NextStatus(current string) (string, bool) {
	next := allowedTransitions[normalizeStatus(current)]
	if len(next) == 0 {
		return "", false
	}
	return next[0], true
}

// TransitionError describes a rejected whole-order status change.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

func validateStatusTransition(current, target string, policy Policy) error {
	if !orderstatus.IsValid(target) {
		return ErrInvalidStatus
	}

	from := normalizeStatus(current)
	if from == orderstatus.Statuses.Completed.Code() {
		return ErrOrderCompleted
	}

	if policy == Lenient {
		return nil
	}

	for _, allowed := range allowedTransitions[from] {
		if allowed == target {
			return nil
		}
	}
	return &TransitionError{From: current, To: target}
}

// TransitionTo moves the order to target under policy. Reaching completed
// completes every item so item and order state stay consistent.
func (o *Order) TransitionTo(target string, policy Policy, at time.Time) error {
	if err := validateStatusTransition(o.Status, target, policy); err != nil {
		return err
	}

	if target == orderstatus.Statuses.Completed.Code() {
		o.complete(at)
		return nil
	}

	o.Status = target
	return nil
}

func normalizeStatus(status string) string {
	if status == orderstatus.Prepared {
		return orderstatus.Statuses.Ready.Code()
	}
	return status
}
