// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user may not read or
// write a conversation they do not belong to, while
// ErrInvalidCoupleState signals that a couple-typed conversation was
// requested by a user who is not linked to a partner.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// conversation they are neither the owner of nor a participant in.
// Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidCoupleState is returned when creating a couple-typed
// conversation for a user without a couple id. Handlers should translate
// this into an HTTP 400 response.
var ErrInvalidCoupleState = errors.New("invalid couple state")

// ErrPhoneExists is returned when inserting a user whose phone number is
// already registered.
var ErrPhoneExists = errors.New("phone already exists")
