package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	resetTokenTTL     = time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("missing required fields")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrResetInvalid       = errors.New("reset token is invalid or expired")
	ErrEmailNotVerified   = errors.New("google account email is not verified")
)

// ResetNotifier delivers password reset tokens to users.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user *User, token string) error
}

// LogNotifier writes reset tokens to the log. It stands in for a mail
// sender in development.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (n LogNotifier) SendPasswordReset(ctx context.Context, user *User, token string) error {
	n.Log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
		"token":   token,
	}).Info("password reset requested")
	return nil
}

type Service struct {
	repo        UserRepository
	resets      ResetRepository
	tokens      *TokenIssuer
	notifier    ResetNotifier
	adminEmails map[string]bool
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewService(
	repo UserRepository,
	resets ResetRepository,
	tokens *TokenIssuer,
	notifier ResetNotifier,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		repo:        repo,
		resets:      resets,
		tokens:      tokens,
		notifier:    notifier,
		adminEmails: map[string]bool{},
		log:         log.WithField("component", "auth"),
		now:         time.Now,
	}
}

// SetAdminEmails grants the ADMIN role to these addresses when they sign up.
func (s *Service) SetAdminEmails(emails []string) {
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			s.adminEmails[e] = true
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) roleFor(email string) string {
	if s.adminEmails[email] {
		return RoleAdmin
	}
	return RoleCustomer
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrWeakPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// REGISTER
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     s.roleFor(email),
		Provider: ProviderPassword,
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// LOGIN
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword(
		[]byte(user.Password),
		[]byte(password),
	)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken signs a session token for user.
func (s *Service) IssueToken(user *User) (string, error) {
	return s.tokens.Generate(user.ID, user.Email, user.Role)
}

// --------------------------------------------------
// Password reset
// --------------------------------------------------

// RequestPasswordReset issues a one-hour reset token. Unknown addresses are
// accepted silently so callers cannot probe for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	reset := &PasswordReset{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(resetTokenTTL),
	}
	if err := s.resets.SaveReset(ctx, reset); err != nil {
		return err
	}
	return s.notifier.SendPasswordReset(ctx, user, reset.Token)
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	reset, err := s.resets.FindReset(ctx, token)
	if errors.Is(err, ErrResetNotFound) {
		return ErrResetInvalid
	}
	if err != nil {
		return err
	}
	if !reset.Usable(s.now()) {
		return ErrResetInvalid
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, reset.UserID, hashed); err != nil {
		return err
	}
	if err := s.resets.MarkResetUsed(ctx, token); err != nil {
		return err
	}

	s.log.WithField("user_id", reset.UserID).Info("password reset completed")
	return nil
}

// --------------------------------------------------
// Federated sign-in
// --------------------------------------------------

// SignInWithGoogle returns the account for a verified Google identity,
// creating it on first sign-in.
func (s *Service) SignInWithGoogle(ctx context.Context, id *GoogleIdentity) (*User, error) {
	if !id.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	email := normalizeEmail(id.Email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = email
	}
	user = &User{
		Name:     name,
		Email:    email,
		Role:     s.roleFor(email),
		Provider: ProviderGoogle,
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered with google")
	return user, nil
}
