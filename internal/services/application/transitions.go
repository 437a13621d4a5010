package application

import "quickloan/internal/models"

var transitions = map[string][]string{
	models.ApplicationPending: {
		models.ApplicationUnderReview,
		models.ApplicationMoreInfo,
		models.ApplicationApproved,
		models.ApplicationRejected,
	},
	models.ApplicationUnderReview: {
		models.ApplicationMoreInfo,
		models.ApplicationApproved,
		models.ApplicationRejected,
	},
	models.ApplicationMoreInfo: {
		models.ApplicationUnderReview,
		models.ApplicationApproved,
		models.ApplicationRejected,
	},
}

// CanTransition reports whether an application may move from one status to
// another. Approved and rejected are terminal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to string) error {
	if CanTransition(from, to) {
		return nil
	}
	return ErrInvalidTransition.WithMessage("Cannot change application status from %s to %s", from, to)
}
