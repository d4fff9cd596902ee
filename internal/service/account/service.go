// Package account implements sign-up, sign-in, sign-out and token
// authentication.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/auth"
	"github.com/lazypower/cony/internal/domain"
	"github.com/lazypower/cony/internal/store"
	"go.uber.org/zap"
)

type profileStore interface {
	CreateProfile(p domain.Profile) (domain.Profile, error)
	GetProfile(id uuid.UUID) (domain.Profile, error)
	GetProfileByEmail(email string) (domain.Profile, error)
}

type sessionStore interface {
	InitSession(sessionID string, userID uuid.UUID, expiresAt time.Time) (*store.Session, error)
	GetSession(sessionID string) (*store.Session, error)
	RevokeSession(sessionID string) error
}

type activityRecorder interface {
	RecordActivity(userID uuid.UUID, kind string, refID *uuid.UUID) error
}

type tokenIssuer interface {
	Issue(s auth.Session) (string, time.Time, error)
	Validate(token string) (auth.Session, error)
}

// Service implements account operations.
type Service struct {
	log        *zap.Logger
	profiles   profileStore
	sessions   sessionStore
	activity   activityRecorder
	tokens     tokenIssuer
	bcryptCost int
	loc        *time.Location
	now        domain.Clock
}

// Option customizes a Service.
type Option func(*Service)

// WithLocation sets the timezone registration dates are recorded in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// NewService creates an account service.
func NewService(logger *zap.Logger, profiles profileStore, sessions sessionStore, activity activityRecorder, tokens tokenIssuer, bcryptCost int, opts ...Option) *Service {
	s := &Service{
		log:        logger.Named("account"),
		profiles:   profiles,
		sessions:   sessions,
		activity:   activity,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		loc:        time.UTC,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SignUpInput holds the fields of a new account.
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// normalize lowercases the email and falls back to its local part when no
// name was given.
func (i *SignUpInput) normalize() {
	i.Email = strings.ToLower(strings.TrimSpace(i.Email))
	i.Name = strings.TrimSpace(i.Name)
	if i.Name == "" {
		i.Name, _, _ = strings.Cut(i.Email, "@")
	}
}

// Validate checks email format, password length and name.
func (i SignUpInput) Validate() error {
	var errs []domain.FieldError

	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	} else if _, err := mail.ParseAddress(i.Email); err != nil || len(i.Email) > 254 {
		errs = append(errs, domain.FieldError{Field: "email", Message: "invalid email"})
	}

	if utf8.RuneCountInString(i.Password) < auth.MinPasswordLength {
		errs = append(errs, domain.FieldError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", auth.MinPasswordLength)})
	} else if len(i.Password) > 72 {
		errs = append(errs, domain.FieldError{Field: "password", Message: "too long"})
	}

	if i.Name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	} else if utf8.RuneCountInString(i.Name) > 100 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "too long"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// SignInInput holds credentials.
type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate requires both fields.
func (i SignInInput) Validate() error {
	var errs []domain.FieldError
	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	}
	if i.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	Token      string           `json:"token"`
	ExpiresAt  time.Time        `json:"expires_at"`
	Profile    domain.Profile   `json:"profile"`
	Navigation []domain.NavItem `json:"navigation"`
}

// Register creates an account with role. Sign-up always uses RolePatient;
// other roles are for administrative tooling.
func (s *Service) Register(ctx context.Context, in SignUpInput, role domain.Role) (domain.Profile, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return domain.Profile{}, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("account.Register: %w", err)
	}

	p, err := s.profiles.CreateProfile(domain.Profile{
		Email:            in.Email,
		Name:             in.Name,
		Role:             role,
		PasswordHash:     hash,
		RegistrationDate: domain.DayOf(s.now(), s.loc),
	})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("account.Register: %w", err)
	}

	s.log.Info("account created", zap.String("user_id", p.ID.String()), zap.String("role", string(role)))
	return p, nil
}

// SignUp creates a patient account and signs it in.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (AuthResult, error) {
	p, err := s.Register(ctx, in, domain.RolePatient)
	if err != nil {
		return AuthResult{}, err
	}
	return s.startSession(p)
}

// SignIn checks credentials and starts a session. Unknown emails and wrong
// passwords both return domain.ErrUnauthorized.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := in.Validate(); err != nil {
		return AuthResult{}, err
	}

	p, err := s.profiles.GetProfileByEmail(in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return AuthResult{}, domain.ErrUnauthorized
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("account.SignIn get profile: %w", err)
	}
	if !auth.CheckPassword(p.PasswordHash, in.Password) {
		return AuthResult{}, domain.ErrUnauthorized
	}

	return s.startSession(p)
}

func (s *Service) startSession(p domain.Profile) (AuthResult, error) {
	sess := auth.Session{UserID: p.ID, Role: p.Role, SessionID: auth.NewSessionID()}

	token, exp, err := s.tokens.Issue(sess)
	if err != nil {
		return AuthResult{}, fmt.Errorf("account issue token: %w", err)
	}
	if _, err := s.sessions.InitSession(sess.SessionID, p.ID, exp); err != nil {
		return AuthResult{}, fmt.Errorf("account init session: %w", err)
	}
	if err := s.activity.RecordActivity(p.ID, store.ActivitySignIn, nil); err != nil {
		s.log.Warn("record sign-in", zap.String("user_id", p.ID.String()), zap.Error(err))
	}

	s.log.Info("signed in", zap.String("user_id", p.ID.String()), zap.String("session_id", sess.SessionID))
	return AuthResult{
		Token:      token,
		ExpiresAt:  exp,
		Profile:    p,
		Navigation: p.Role.Navigation(),
	}, nil
}

// SignOut revokes the session the request was made with.
func (s *Service) SignOut(ctx context.Context, sess auth.Session) error {
	if err := s.sessions.RevokeSession(sess.SessionID); err != nil {
		return fmt.Errorf("account.SignOut: %w", err)
	}
	return nil
}

// Authenticate validates a bearer token and checks its session is still
// live. Any failure is domain.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (auth.Session, error) {
	sess, err := s.tokens.Validate(token)
	if err != nil {
		s.log.Debug("token rejected", zap.Error(err))
		return auth.Session{}, domain.ErrUnauthorized
	}

	row, err := s.sessions.GetSession(sess.SessionID)
	if err != nil {
		return auth.Session{}, fmt.Errorf("account.Authenticate: %w", err)
	}
	if row == nil || row.UserID != sess.UserID || !row.Active(s.now()) {
		return auth.Session{}, domain.ErrUnauthorized
	}
	return sess, nil
}

// MeResult is the signed-in user's profile and navigation.
type MeResult struct {
	Profile    domain.Profile   `json:"profile"`
	Navigation []domain.NavItem `json:"navigation"`
}

// Me returns the session user's profile and the views their role may open.
func (s *Service) Me(ctx context.Context, sess auth.Session) (MeResult, error) {
	p, err := s.profiles.GetProfile(sess.UserID)
	if err != nil {
		return MeResult{}, fmt.Errorf("account.Me: %w", err)
	}
	return MeResult{Profile: p, Navigation: p.Role.Navigation()}, nil
}
