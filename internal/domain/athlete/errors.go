package athlete

import "errors"

var (
	ErrBadRequest      = errors.New("bad request")
	ErrNotFound        = errors.New("not found")
	ErrIndexOutOfRange = errors.New("media index out of range")
)

func IsErrBadRequest(err error) bool      { return errors.Is(err, ErrBadRequest) }
func IsErrNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsErrIndexOutOfRange(err error) bool { return errors.Is(err, ErrIndexOutOfRange) }
