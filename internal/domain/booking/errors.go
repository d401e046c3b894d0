package booking

import "errors"

var (
	ErrBadRequest        = errors.New("bad request")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSlotTaken         = errors.New("time slot already booked")
	ErrInvalidTransition = errors.New("invalid status transition")
)

func IsErrBadRequest(err error) bool        { return errors.Is(err, ErrBadRequest) }
func IsErrNotFound(err error) bool          { return errors.Is(err, ErrNotFound) }
func IsErrUnauthorized(err error) bool      { return errors.Is(err, ErrUnauthorized) }
func IsErrSlotTaken(err error) bool         { return errors.Is(err, ErrSlotTaken) }
func IsErrInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }
