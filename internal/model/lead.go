package model

import "time"

// Lead records an email captured by the landing page, optionally together
// with the visitor's self-served diagnostic answers.
type Lead struct {
	ID             uint64    // leads.id
	Email          string    // leads.email
	Name           string    // leads.name
	DiagnosticData string    // leads.diagnostic_data (JSON from the landing quiz)
	CreatedAt      time.Time // leads.created_at
}
