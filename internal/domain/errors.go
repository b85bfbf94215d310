package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNoCapacity   = errors.New("no capacity")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)
