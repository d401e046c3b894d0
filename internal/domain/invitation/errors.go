package invitation

import "errors"

var (
	ErrBadRequest        = errors.New("bad request")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrDuplicate         = errors.New("invitation already sent")
	ErrInvalidTransition = errors.New("invitation already resolved")
)

func IsErrBadRequest(err error) bool        { return errors.Is(err, ErrBadRequest) }
func IsErrNotFound(err error) bool          { return errors.Is(err, ErrNotFound) }
func IsErrUnauthorized(err error) bool      { return errors.Is(err, ErrUnauthorized) }
func IsErrDuplicate(err error) bool         { return errors.Is(err, ErrDuplicate) }
func IsErrInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }
