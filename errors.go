package onyesha

import "errors"

var (
	// Configuration errors.
	ErrInvalidConfig = errors.New("onyesha: invalid configuration")

	// State errors.
	ErrInvalidKey       = errors.New("onyesha: invalid state key")
	ErrCorruptRecord    = errors.New("onyesha: corrupt state record")
	ErrRetriesExhausted = errors.New("onyesha: retries exhausted")

	// Action errors.
	ErrActionNotFound      = errors.New("onyesha: action not found")
	ErrActionExists        = errors.New("onyesha: action already registered")
	ErrInvalidActionConfig = errors.New("onyesha: invalid action configuration")

	// Schedule errors.
	ErrScheduleExists   = errors.New("onyesha: schedule entry already exists")
	ErrScheduleNotFound = errors.New("onyesha: schedule entry not found")
	ErrScheduleLocked   = errors.New("onyesha: schedule entry locked by another scheduler")

	// Upstream errors.
	ErrUnauthorized = errors.New("onyesha: upstream rejected credentials")
	ErrUpstream     = errors.New("onyesha: upstream request failed")
)
