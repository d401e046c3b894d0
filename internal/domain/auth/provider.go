package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// Credentials are the tokens minted by a successful password check.
type Credentials struct {
	UID          string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// IdentityProvider is the port to the identity backend.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyPassword(ctx context.Context, email, password string) (*Credentials, error)
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
	DeleteUser(ctx context.Context, uid string) error
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, plain, html string) error
}

// FirebaseProvider implements IdentityProvider with the Admin SDK plus
// the Identity Toolkit REST surface for password verification, which
// the Admin SDK does not expose.
type FirebaseProvider struct {
	auth    *fbauth.Client
	toolkit *identitytoolkit.RelyingpartyService
}

func NewFirebaseProvider(ctx context.Context, authClient *fbauth.Client, webAPIKey string) (*FirebaseProvider, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(webAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to init identity toolkit: %w", err)
	}
	return &FirebaseProvider{auth: authClient, toolkit: svc.Relyingparty}, nil
}

func (p *FirebaseProvider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	rec, err := p.auth.CreateUser(ctx, params)
	if err != nil {
		return "", mapAdminError(err)
	}
	return rec.UID, nil
}

func (p *FirebaseProvider) VerifyPassword(ctx context.Context, email, password string) (*Credentials, error) {
	resp, err := p.toolkit.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapToolkitError(err)
	}

	return &Credentials{
		UID:          resp.LocalId,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    time.Duration(resp.ExpiresIn) * time.Second,
	}, nil
}

func (p *FirebaseProvider) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	update := (&fbauth.UserToUpdate{}).DisplayName(displayName)
	if _, err := p.auth.UpdateUser(ctx, uid, update); err != nil {
		return mapAdminError(err)
	}
	return nil
}

func (p *FirebaseProvider) DeleteUser(ctx context.Context, uid string) error {
	if err := p.auth.DeleteUser(ctx, uid); err != nil {
		return mapAdminError(err)
	}
	return nil
}

func (p *FirebaseProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := p.auth.PasswordResetLink(ctx, email)
	if err != nil {
		return "", mapAdminError(err)
	}
	return link, nil
}

func mapAdminError(err error) error {
	switch {
	case fbauth.IsEmailAlreadyExists(err):
		return fmt.Errorf("%w: %v", ErrEmailInUse, err)
	case fbauth.IsUserNotFound(err):
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	default:
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
}

// mapToolkitError translates Identity Toolkit REST error codes. Codes
// sometimes arrive suffixed ("WEAK_PASSWORD : ..."), so match on prefix.
func mapToolkitError(err error) error {
	gerr, ok := err.(*googleapi.Error)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	code := gerr.Message
	if i := strings.IndexByte(code, ' '); i > 0 {
		code = code[:i]
	}

	switch code {
	case "EMAIL_NOT_FOUND":
		return fmt.Errorf("%w: %s", ErrUserNotFound, gerr.Message)
	case "INVALID_PASSWORD":
		return fmt.Errorf("%w: %s", ErrWrongPassword, gerr.Message)
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_CREDENTIAL":
		return fmt.Errorf("%w: %s", ErrInvalidCredential, gerr.Message)
	case "INVALID_EMAIL":
		return fmt.Errorf("%w: %s", ErrInvalidEmail, gerr.Message)
	case "USER_DISABLED":
		return fmt.Errorf("%w: %s", ErrUserDisabled, gerr.Message)
	case "OPERATION_NOT_ALLOWED", "PASSWORD_LOGIN_DISABLED":
		return fmt.Errorf("%w: %s", ErrOperationNotAllowed, gerr.Message)
	case "WEAK_PASSWORD":
		return fmt.Errorf("%w: %s", ErrWeakPassword, gerr.Message)
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return fmt.Errorf("%w: %s", ErrTooManyRequests, gerr.Message)
	default:
		return fmt.Errorf("%w: %s", ErrProvider, gerr.Message)
	}
}

// SendgridMailer delivers mail through SendGrid.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendgridMailer(apiKey, fromEmail string) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Nahio", fromEmail),
	}
}

func (m *SendgridMailer) Send(ctx context.Context, toEmail, toName, subject, plain, html string) error {
	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, toEmail), plain, html)

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected email: status %d", resp.StatusCode)
	}
	return nil
}
