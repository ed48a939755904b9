package repository

import "errors"

var (
	// ErrNotFound is returned when a record is not found by ID
	ErrNotFound = errors.New("record not found")

	// ErrInvalidID is returned when an ID is not a version 7 UUID
	ErrInvalidID = errors.New("invalid record ID format")
)
