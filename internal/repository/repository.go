// Package repository contains the store contracts, one per service.
// Implementations live in subpackages (postgres) and contain no business logic.
package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the given id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)
