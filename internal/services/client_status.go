package services

import (
	"time"

	"github.com/homevista/brokerage-backend/internal/models"
)

// Windows for the derived client status
const (
	ProspectWindowDays = 30 // viewing recency
	LeadWindowDays     = 90 // inquiry recency
)

// ClassifyClient derives a client's status from pre-fetched history facts.
// The precedence is fixed: a completed transaction makes the client active,
// else a viewing inside the prospect window makes them a prospect, else an
// inquiry inside the lead window makes them a lead, else they are inactive.
//
// The function is pure: it looks only at its arguments, so the same facts
// always classify the same way regardless of how they were fetched. The
// result is computed on every read and never stored.
func ClassifyClient(history models.ClientHistory, now time.Time) string {
	if history.HasCompletedTransaction {
		return models.ClientActive
	}

	if history.LastViewingAt.Valid {
		cutoff := now.AddDate(0, 0, -ProspectWindowDays)
		if !history.LastViewingAt.Time.Before(cutoff) {
			return models.ClientProspect
		}
	}

	if history.LastInquiryAt.Valid {
		cutoff := now.AddDate(0, 0, -LeadWindowDays)
		if !history.LastInquiryAt.Time.Before(cutoff) {
			return models.ClientLead
		}
	}

	return models.ClientInactive
}
