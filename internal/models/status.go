package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// AllStatuses lists every defined booking status.
var AllStatuses = []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// legalTransitions maps a status to its allowed successors.
// pending -> confirmed -> completed, pending -> cancelled.
// completed and cancelled are terminal.
var legalTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted},
}

// IsValidStatus reports whether s is one of the defined statuses.
func IsValidStatus(s string) bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to string) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
