package requests

import "lifelink-backend/internal/models"

// transitions is the request lifecycle graph. Completed, cancelled and
// expired are terminal.
var transitions = map[string][]string{
	models.RequestDraft:     {models.RequestPending, models.RequestCancelled},
	models.RequestPending:   {models.RequestConfirmed, models.RequestCancelled, models.RequestExpired},
	models.RequestConfirmed: {models.RequestCompleted, models.RequestCancelled},
	models.RequestCompleted: {},
	models.RequestCancelled: {},
	models.RequestExpired:   {},
}

// CanTransition reports whether the edge from -> to is legal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
