package scheduling

import "errors"

var (
	// ErrSlotNotFound is returned when a slot id does not resolve.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrInvalidStateTransition is returned when booking a slot that is not
	// available. The slot is left untouched.
	ErrInvalidStateTransition = errors.New("slot is not available for booking")

	// ErrNotBooked is returned when booking details are requested for a slot
	// that has not been booked.
	ErrNotBooked = errors.New("slot is not booked")
)
