package model

// Status is the workflow state of an order. The values are the tokens exchanged
// with clients, so no synonyms are accepted.
type Status string

// remember to add new statuses to statusTransitions
const (
	StatusSubmitted Status = "Diajukan"
	StatusInProcess Status = "Diproses"
	StatusShipped   Status = "Dikirim"
	StatusCompleted Status = "Selesai"
	StatusCancelled Status = "Dibatalkan"
)

var statusTransitions = map[Status][]Status{
	StatusSubmitted: {StatusInProcess, StatusCancelled},
	StatusInProcess: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusCompleted},
	StatusCompleted: nil,
	StatusCancelled: nil,
}

// ParseStatus converts a client token into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := statusTransitions[status]; !ok {
		return "", ErrUnknownStatus
	}
	return status, nil
}

// Statuses lists every status in workflow order.
func Statuses() []Status {
	return []Status{StatusSubmitted, StatusInProcess, StatusShipped, StatusCompleted, StatusCancelled}
}

// IsTerminal reports whether no further workflow change is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks whether target is a direct successor of s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range statusTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}
