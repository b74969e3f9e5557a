package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	ErrDuplicateSlot = errors.New("appointment slot already exists for doctor")

	// ErrSlotTaken reports that the conditional reserve update matched no
	// open slot: the appointment is gone or already reserved.
	ErrSlotTaken = errors.New("appointment slot is not open")
)
