// Package admin implements platform administration: statistics, user roles,
// and patient assignment.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/analytics"
	"github.com/lazypower/cony/internal/auth"
	"github.com/lazypower/cony/internal/domain"
	"go.uber.org/zap"
)

type adminStore interface {
	Totals(activeSince time.Time) (analytics.Totals, error)
	ListProfiles(role *domain.Role) ([]domain.Profile, error)
	GetProfile(id uuid.UUID) (domain.Profile, error)
	SetRole(id uuid.UUID, role domain.Role) error
	RevokeUserSessions(userID uuid.UUID) (int64, error)
	AssignPatient(patientID uuid.UUID, psychologistID *uuid.UUID) error
	ListPsychologists() ([]domain.Psychologist, error)
	UpdatePsychologist(id uuid.UUID, u domain.PsychologistUpdate) error
}

// Service implements admin operations.
type Service struct {
	log          *zap.Logger
	store        adminStore
	activeWindow time.Duration
	now          domain.Clock
}

// NewService creates an admin service. Users active within activeWindowDays
// count as active in Stats.
func NewService(logger *zap.Logger, store adminStore, activeWindowDays int) *Service {
	return &Service{
		log:          logger.Named("admin"),
		store:        store,
		activeWindow: time.Duration(activeWindowDays) * 24 * time.Hour,
		now:          time.Now,
	}
}

func requireAdmin(sess auth.Session) error {
	if sess.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

// Stats returns the platform overview.
func (s *Service) Stats(ctx context.Context, sess auth.Session) (analytics.AdminStats, error) {
	if err := requireAdmin(sess); err != nil {
		return analytics.AdminStats{}, err
	}
	t, err := s.store.Totals(s.now().Add(-s.activeWindow))
	if err != nil {
		return analytics.AdminStats{}, fmt.Errorf("admin.Stats: %w", err)
	}
	return analytics.BuildAdminStats(t), nil
}

// ListUsers returns all accounts, or only those with role when it is set.
func (s *Service) ListUsers(ctx context.Context, sess auth.Session, role string) ([]domain.Profile, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	var filter *domain.Role
	if role = strings.TrimSpace(role); role != "" {
		if !domain.IsKnownRole(role) {
			return nil, domain.NewValidationError("role", "unknown role")
		}
		r := domain.Role(role)
		filter = &r
	}
	users, err := s.store.ListProfiles(filter)
	if err != nil {
		return nil, fmt.Errorf("admin.ListUsers: %w", err)
	}
	return users, nil
}

// SetRole changes a user's role and signs them out everywhere so their next
// token carries the new role. Admins cannot change their own role.
func (s *Service) SetRole(ctx context.Context, sess auth.Session, id uuid.UUID, role string) (domain.Profile, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Profile{}, err
	}
	if !domain.IsKnownRole(role) {
		return domain.Profile{}, domain.NewValidationError("role", "unknown role")
	}
	if id == sess.UserID {
		return domain.Profile{}, domain.NewValidationError("id", "cannot change your own role")
	}

	if err := s.store.SetRole(id, domain.Role(role)); err != nil {
		return domain.Profile{}, fmt.Errorf("admin.SetRole: %w", err)
	}
	if n, err := s.store.RevokeUserSessions(id); err != nil {
		s.log.Warn("revoke sessions after role change", zap.String("user_id", id.String()), zap.Error(err))
	} else {
		s.log.Info("role changed",
			zap.String("user_id", id.String()),
			zap.String("role", role),
			zap.Int64("sessions_revoked", n))
	}

	return s.store.GetProfile(id)
}

// Assign links a patient to a psychologist, or unassigns when psychologistID
// is nil. Fails with domain.ErrConflict when the psychologist is full.
func (s *Service) Assign(ctx context.Context, sess auth.Session, patientID uuid.UUID, psychologistID *uuid.UUID) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.store.AssignPatient(patientID, psychologistID); err != nil {
		return fmt.Errorf("admin.Assign: %w", err)
	}
	return nil
}

// PsychologistSummary adds derived capacity to a psychologist.
type PsychologistSummary struct {
	domain.Psychologist
	Capacity float64 `json:"capacity"`
	Full     bool    `json:"full"`
}

// ListPsychologists returns every psychologist with their load.
func (s *Service) ListPsychologists(ctx context.Context, sess auth.Session) ([]PsychologistSummary, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	psychs, err := s.store.ListPsychologists()
	if err != nil {
		return nil, fmt.Errorf("admin.ListPsychologists: %w", err)
	}
	out := make([]PsychologistSummary, 0, len(psychs))
	for _, p := range psychs {
		out = append(out, PsychologistSummary{Psychologist: p, Capacity: p.Capacity(), Full: p.Full()})
	}
	return out, nil
}

// PsychologistInput holds practice details to change. Nil fields are kept.
type PsychologistInput struct {
	License         *string  `json:"license,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
	MaxPatients     *int     `json:"max_patients,omitempty"`
}

// Validate rejects negative capacity.
func (i PsychologistInput) Validate() error {
	if i.MaxPatients != nil && *i.MaxPatients < 0 {
		return domain.NewValidationError("max_patients", "must be >= 0")
	}
	return nil
}

// UpdatePsychologist changes a psychologist's practice details.
func (s *Service) UpdatePsychologist(ctx context.Context, sess auth.Session, id uuid.UUID, in PsychologistInput) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	err := s.store.UpdatePsychologist(id, domain.PsychologistUpdate{
		License:         in.License,
		Specializations: in.Specializations,
		MaxPatients:     in.MaxPatients,
	})
	if err != nil {
		return fmt.Errorf("admin.UpdatePsychologist: %w", err)
	}
	return nil
}
