package model

import "time"

// User is an identity record created on the first successful OTP
// verification for a phone number.  Phones are stored normalized to
// international-dialing form and are unique.
//
// Fields:
//  ID            – primary key identifier.
//  Phone         – normalized phone number (+<digits>), unique.
//  PhoneVerified – whether the phone passed OTP verification.
//  DisplayName   – optional name chosen by the user.
//  CoupleID      – optional group linking exactly two users.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type User struct {
	ID            uint64    // users.id
	Phone         string    // users.phone
	PhoneVerified bool      // users.phone_verified
	DisplayName   *string   // users.display_name (nullable)
	CoupleID      *uint64   // users.couple_id (nullable)
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}

// Session is an opaque bearer credential bound to a user.  A session is
// valid iff the current time is before ExpiresAt; there is no signed state,
// so validity is always decided against this table.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owning user.
//  Token      – 64-char random hex, unique.
//  ExpiresAt  – hard expiry; expired rows are simply ignored.
//  CreatedAt  – creation timestamp.
//  LastUsedAt – touched on each authenticated request (best effort).
type Session struct {
	ID         uint64    // sessions.id
	UserID     uint64    // sessions.user_id
	Token      string    // sessions.token
	ExpiresAt  time.Time // sessions.expires_at
	CreatedAt  time.Time // sessions.created_at
	LastUsedAt time.Time // sessions.last_used_at
}
