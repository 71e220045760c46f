// Package repository defines the persistence contract of the booking engine
// and its two implementations: MySQLStore for production and MemoryStore
// for tests and local development.  The sentinel errors below allow higher
// layers to distinguish between failure scenarios without depending on a
// particular driver.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist or is
// owned by a different organization.  Callers translate it into the
// matching *_not_found domain error.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a conditional write loses: the room version
// moved between read and write, or a booking with the same id or hold id
// already exists.  Nothing is written when it is returned.
var ErrConflict = errors.New("conflict")
