// Package queue defines message payloads exchanged over the message broker.
package queue

// LeadCapturedEvent is published when a landing-page signup is stored.
// It carries enough for downstream consumers to log or feed a CRM without
// touching the primary database.
type LeadCapturedEvent struct {
	LeadID         uint64 `json:"lead_id"`
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	DiagnosticData string `json:"diagnostic_data,omitempty"`
	CapturedAt     string `json:"captured_at"`
}
