package model

import "time"

// OTPVerification is a short-lived one-time code sent out of band to prove
// phone ownership.  Only a bcrypt hash of the code is stored.  A code is
// acceptable while it is unexpired, unverified and has fewer than the
// maximum number of failed attempts.
//
// Fields:
//  ID         – primary key identifier.
//  Phone      – target phone in normalized form.
//  CodeHash   – bcrypt hash of the 6-digit code.
//  Purpose    – why the code was issued (currently always "login").
//  ExpiresAt  – five minutes after creation.
//  Attempts   – failed verification counter.
//  VerifiedAt – set exactly once on success; verified codes are never reused.
//  CreatedAt  – creation timestamp, drives the 60-second request cadence.
type OTPVerification struct {
	ID         uint64     // otp_verifications.id
	Phone      string     // otp_verifications.phone
	CodeHash   string     // otp_verifications.code_hash
	Purpose    string     // otp_verifications.purpose
	ExpiresAt  time.Time  // otp_verifications.expires_at
	Attempts   int        // otp_verifications.attempts
	VerifiedAt *time.Time // otp_verifications.verified_at (nullable)
	CreatedAt  time.Time  // otp_verifications.created_at
}
