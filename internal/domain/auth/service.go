package auth

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nahio/backend/internal/schema"
)

// Repo is the store port for accounts and role profiles.
type Repo interface {
	CreateAccount(ctx context.Context, acc Account, profile map[string]interface{}) error
	GetAccount(ctx context.Context, uid string) (*Account, error)
	GetProfile(ctx context.Context, role schema.Role, uid string) (map[string]interface{}, error)
	MergeProfile(ctx context.Context, role schema.Role, uid string, patch map[string]interface{}) error
	DeleteAccount(ctx context.Context, role schema.Role, uid string) error
}

type Service struct {
	repo     Repo
	provider IdentityProvider
	mailer   Mailer
	now      func() time.Time

	mu     sync.Mutex
	subs   map[int]func(*Account)
	nextID int
}

func NewService(repo Repo, provider IdentityProvider) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		now:      func() time.Time { return time.Now().UTC() },
		subs:     map[int]func(*Account){},
	}
}

// SetMailer wires transactional email; nil skips delivery.
func (s *Service) SetMailer(m Mailer) {
	s.mailer = m
}

// OnAuthStateChange registers a callback fired with the account on
// sign-in and nil on sign-out. The returned func unsubscribes.
func (s *Service) OnAuthStateChange(fn func(*Account)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) emit(acc *Account) {
	s.mu.Lock()
	fns := make([]func(*Account), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(acc)
	}
}

// Register creates the identity, the users doc and the role profile.
// The identity is rolled back if the document writes fail.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*UserData, error) {
	in.Trim()
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidEmail)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: use at least 6 characters", ErrWeakPassword)
	}
	if !schema.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrBadRequest, in.Role)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	if in.Role == schema.RoleInstitution && in.TaxID == "" {
		return nil, fmt.Errorf("%w: taxId is required for institutions", ErrBadRequest)
	}

	uid, err := s.provider.CreateUser(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	acc := Account{
		UID:       uid,
		Email:     in.Email,
		Role:      in.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	profile := s.buildProfile(in)
	if err := s.repo.CreateAccount(ctx, acc, profile); err != nil {
		if derr := s.provider.DeleteUser(ctx, uid); derr != nil {
			log.Printf("warn: failed to roll back identity %s: %v", uid, derr)
		}
		return nil, err
	}

	s.emit(&acc)
	return &UserData{Account: acc, Profile: profile}, nil
}

func (s *Service) buildProfile(in RegisterInput) map[string]interface{} {
	if in.Role != schema.RoleInstitution {
		return schema.NewProfile(in.Role, in.Name, in.Phone)
	}

	profile := schema.NewInstitutionProfile(in.Name, in.TaxID, in.Phone)
	if in.Address != nil {
		profile["address"] = map[string]interface{}{
			"cep":        in.Address.CEP,
			"street":     in.Address.Street,
			"number":     in.Address.Number,
			"complement": in.Address.Complement,
			"district":   in.Address.District,
			"city":       in.Address.City,
			"state":      in.Address.State,
		}
	}
	return profile
}

// Login verifies the password and returns a session with the account
// and its role profile attached.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrBadRequest)
	}

	creds, err := s.provider.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := s.GetUserData(ctx, creds.UID)
	if err != nil {
		return nil, err
	}

	s.emit(&user.Account)
	return &Session{
		UID:          creds.UID,
		IDToken:      creds.IDToken,
		RefreshToken: creds.RefreshToken,
		ExpiresAt:    s.now().Add(creds.ExpiresIn),
		User:         user,
	}, nil
}

// Logout signals subscribers that the session ended. Token invalidation
// stays client-side; the server holds no session state.
func (s *Service) Logout(ctx context.Context) error {
	s.emit(nil)
	return nil
}

// GetUserData loads the account plus its role profile. A missing
// profile document yields a nil Profile, not an error.
func (s *Service) GetUserData(ctx context.Context, uid string) (*UserData, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	acc, err := s.repo.GetAccount(ctx, uid)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.GetProfile(ctx, acc.Role, uid)
	if err != nil {
		return nil, err
	}
	return &UserData{Account: *acc, Profile: profile}, nil
}

// immutable account fields a profile patch may never touch.
var protectedProfileKeys = []string{"uid", "email", "role", "createdAt"}

// UpdateProfile merges a patch into the caller's role profile. The
// display name on the identity follows a name change, best-effort.
func (s *Service) UpdateProfile(ctx context.Context, uid string, patch map[string]interface{}) error {
	if uid == "" {
		return fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	if len(patch) == 0 {
		return fmt.Errorf("%w: nothing to update", ErrBadRequest)
	}

	acc, err := s.repo.GetAccount(ctx, uid)
	if err != nil {
		return err
	}

	for _, k := range protectedProfileKeys {
		delete(patch, k)
	}
	patch["updatedAt"] = s.now()

	if err := s.repo.MergeProfile(ctx, acc.Role, uid, patch); err != nil {
		return err
	}

	displayName, _ := patch["name"].(string)
	if displayName == "" {
		displayName, _ = patch["schoolName"].(string)
	}
	if displayName != "" {
		if err := s.provider.UpdateDisplayName(ctx, uid, displayName); err != nil {
			log.Printf("warn: failed to sync display name for %s: %v", uid, err)
		}
	}
	return nil
}

// ResetPassword mints a reset link and mails it to the user.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidEmail)
	}

	link, err := s.provider.PasswordResetLink(ctx, email)
	if err != nil {
		return err
	}

	if s.mailer == nil {
		log.Printf("warn: no mailer configured, reset link for %s not delivered", email)
		return nil
	}
	return s.mailer.Send(ctx, email, "",
		"Reset your Nahio password",
		"Reset your password: "+link,
		fmt.Sprintf(`<p>Reset your password: <a href="%s">click here</a></p>`, link))
}

// CreateGuardianAccount lets an institution provision a guardian. The
// guardian gets a throwaway password and a reset email to pick their
// own. The identity is rolled back if the document writes fail.
func (s *Service) CreateGuardianAccount(ctx context.Context, actorUID string, in GuardianInput) (*Account, error) {
	in.Trim()
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidEmail)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	if in.InstitutionID == "" || in.InstitutionID != actorUID {
		return nil, fmt.Errorf("%w: guardians can only be created by their institution", ErrBadRequest)
	}

	tempPassword := uuid.NewString()
	uid, err := s.provider.CreateUser(ctx, in.Email, tempPassword, in.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	acc := Account{
		UID:       uid,
		Email:     in.Email,
		Role:      schema.RoleGuardian,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	profile := schema.NewGuardianProfile(in.Name, in.Phone, in.InstitutionID)
	if err := s.repo.CreateAccount(ctx, acc, profile); err != nil {
		if derr := s.provider.DeleteUser(ctx, uid); derr != nil {
			log.Printf("warn: failed to roll back identity %s: %v", uid, derr)
		}
		return nil, err
	}

	if err := s.sendGuardianWelcome(ctx, in); err != nil {
		log.Printf("warn: guardian %s created but welcome email failed: %v", uid, err)
	}
	return &acc, nil
}

func (s *Service) sendGuardianWelcome(ctx context.Context, in GuardianInput) error {
	link, err := s.provider.PasswordResetLink(ctx, in.Email)
	if err != nil {
		return err
	}
	if s.mailer == nil {
		return fmt.Errorf("no mailer configured")
	}
	return s.mailer.Send(ctx, in.Email, in.Name,
		"Your Nahio guardian account",
		"Your account is ready. Set your password: "+link,
		fmt.Sprintf(`<p>Your account is ready. <a href="%s">Set your password</a>.</p>`, link))
}
