package orders

import "github.com/ariefcatur/go-cafe-orders/internal/apperr"

type Status string

const (
	// StatusPending only shows up in imported data. Placement never assigns it.
	StatusPending    Status = "pending"
	StatusReceived   Status = "received"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusReceived: true},
	StatusReceived:   {StatusInProgress: true},
	StatusInProgress: {StatusCompleted: true},
	StatusCompleted:  {},
}

var nextOf = map[Status]Status{
	StatusPending:    StatusReceived,
	StatusReceived:   StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// ParseStatus accepts the three canonical values only.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsCanonical() {
		return "", apperr.Invalid("status_invalid", "invalid order status %q", s)
	}
	return st, nil
}

func (s Status) IsCanonical() bool {
	switch s {
	case StatusReceived, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Next returns the status a staff action moves s to.
func (s Status) Next() (Status, bool) {
	n, ok := nextOf[s]
	return n, ok
}

// CanAdvance reports whether from -> to is a single forward step. The store
// itself accepts any canonical overwrite; callers that want forward-only
// behaviour check this first.
func CanAdvance(from, to Status) bool {
	return validNext[from][to]
}
