package auth

import "errors"

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")

	// Identity provider failures, one sentinel per user-facing case.
	ErrEmailInUse          = errors.New("email already in use")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrOperationNotAllowed = errors.New("operation not allowed")
	ErrWeakPassword        = errors.New("weak password")
	ErrUserDisabled        = errors.New("user disabled")
	ErrUserNotFound        = errors.New("user not found")
	ErrWrongPassword       = errors.New("wrong password")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrNetwork             = errors.New("network failure")
	ErrProvider            = errors.New("identity provider error")
)

func IsErrBadRequest(err error) bool { return errors.Is(err, ErrBadRequest) }
func IsErrNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }

// UserMessage renders an auth error as the message shown to end users.
// Unmapped errors collapse to a generic retry message.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmailInUse):
		return "This email is already in use"
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email address"
	case errors.Is(err, ErrOperationNotAllowed):
		return "Operation not allowed"
	case errors.Is(err, ErrWeakPassword):
		return "Password is too weak. Use at least 6 characters"
	case errors.Is(err, ErrUserDisabled):
		return "This account has been disabled"
	case errors.Is(err, ErrUserNotFound):
		return "User not found"
	case errors.Is(err, ErrWrongPassword):
		return "Incorrect password"
	case errors.Is(err, ErrInvalidCredential):
		return "Invalid credentials"
	case errors.Is(err, ErrTooManyRequests):
		return "Too many attempts. Try again later"
	case errors.Is(err, ErrNetwork):
		return "Connection error. Check your internet"
	default:
		return "Something went wrong. Try again"
	}
}
