// Package roster implements a psychologist's view of their assigned patients.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/analytics"
	"github.com/lazypower/cony/internal/auth"
	"github.com/lazypower/cony/internal/domain"
	"go.uber.org/zap"
)

type patientStore interface {
	ListPatients(f domain.PatientFilter) ([]domain.Patient, error)
	GetPatient(id uuid.UUID) (domain.Patient, error)
	UpdatePatient(id uuid.UUID, u domain.PatientUpdate) error
}

type recordReader interface {
	Records(ctx context.Context, ownerID uuid.UUID) ([]domain.EmotionEntry, []domain.ThoughtRecord, bool)
	Today() domain.Day
}

// Service implements roster operations for psychologists.
type Service struct {
	log      *zap.Logger
	patients patientStore
	records  recordReader
}

// NewService creates a roster service.
func NewService(logger *zap.Logger, patients patientStore, records recordReader) *Service {
	return &Service{
		log:      logger.Named("roster"),
		patients: patients,
		records:  records,
	}
}

// Filter narrows a roster listing.
type Filter struct {
	Search string
	Status string
	Risk   string
}

// Validate rejects unknown status and risk values.
func (f Filter) Validate() error {
	var errs []domain.FieldError
	if f.Status != "" && !domain.PatientStatus(f.Status).Valid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}
	if f.Risk != "" && !domain.RiskLevel(f.Risk).Valid() {
		errs = append(errs, domain.FieldError{Field: "risk", Message: "unknown risk level"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Roster is a filtered patient list with stats over the whole roster.
type Roster struct {
	Patients []domain.Patient      `json:"patients"`
	Stats    analytics.RosterStats `json:"stats"`
}

// List returns the session psychologist's patients matching f.
func (s *Service) List(ctx context.Context, sess auth.Session, f Filter) (Roster, error) {
	if sess.Role != domain.RolePsychologist {
		return Roster{}, domain.ErrForbidden
	}
	if err := f.Validate(); err != nil {
		return Roster{}, err
	}

	all, err := s.patients.ListPatients(domain.PatientFilter{PsychologistID: &sess.UserID})
	if err != nil {
		return Roster{}, fmt.Errorf("roster.List: %w", err)
	}

	filtered := all
	if f.Search != "" || f.Status != "" || f.Risk != "" {
		filtered, err = s.patients.ListPatients(domain.PatientFilter{
			PsychologistID: &sess.UserID,
			Search:         strings.TrimSpace(f.Search),
			Status:         domain.PatientStatus(f.Status),
			Risk:           domain.RiskLevel(f.Risk),
		})
		if err != nil {
			return Roster{}, fmt.Errorf("roster.List filtered: %w", err)
		}
	}

	return Roster{
		Patients: filtered,
		Stats:    analytics.BuildRosterStats(all),
	}, nil
}

// PatientDetail is everything a psychologist sees about one patient.
type PatientDetail struct {
	Patient   domain.Patient         `json:"patient"`
	Emotions  []domain.EmotionEntry  `json:"emotions"`
	Thoughts  []domain.ThoughtRecord `json:"thoughts"`
	Dashboard analytics.Dashboard    `json:"dashboard"`
	Partial   bool                   `json:"partial"`
}

// assigned loads patient id and checks it belongs to the session psychologist.
func (s *Service) assigned(sess auth.Session, id uuid.UUID) (domain.Patient, error) {
	if sess.Role != domain.RolePsychologist {
		return domain.Patient{}, domain.ErrForbidden
	}
	p, err := s.patients.GetPatient(id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Patient{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Patient{}, fmt.Errorf("roster get patient: %w", err)
	}
	if p.AssignedPsychologist == nil || *p.AssignedPsychologist != sess.UserID {
		return domain.Patient{}, domain.ErrForbidden
	}
	return p, nil
}

// Patient returns the detail view for one assigned patient.
func (s *Service) Patient(ctx context.Context, sess auth.Session, id uuid.UUID) (PatientDetail, error) {
	p, err := s.assigned(sess, id)
	if err != nil {
		return PatientDetail{}, err
	}

	emotions, thoughts, partial := s.records.Records(ctx, id)

	return PatientDetail{
		Patient:   p,
		Emotions:  emotions,
		Thoughts:  thoughts,
		Dashboard: analytics.BuildDashboard(emotions, thoughts, s.records.Today()),
		Partial:   partial,
	}, nil
}

// UpdateInput holds the clinical fields to change. Nil fields are kept.
type UpdateInput struct {
	Status    *string `json:"status,omitempty"`
	RiskLevel *string `json:"risk_level,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// Validate rejects unknown status and risk values.
func (i UpdateInput) Validate() error {
	var errs []domain.FieldError
	if i.Status != nil && !domain.PatientStatus(*i.Status).Valid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}
	if i.RiskLevel != nil && !domain.RiskLevel(*i.RiskLevel).Valid() {
		errs = append(errs, domain.FieldError{Field: "risk_level", Message: "unknown risk level"})
	}
	if i.Notes != nil && len(*i.Notes) > 5000 {
		errs = append(errs, domain.FieldError{Field: "notes", Message: "too long"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Update changes an assigned patient's clinical record and returns it.
func (s *Service) Update(ctx context.Context, sess auth.Session, id uuid.UUID, in UpdateInput) (domain.Patient, error) {
	if err := in.Validate(); err != nil {
		return domain.Patient{}, err
	}
	if _, err := s.assigned(sess, id); err != nil {
		return domain.Patient{}, err
	}

	var u domain.PatientUpdate
	if in.Status != nil {
		st := domain.PatientStatus(*in.Status)
		u.Status = &st
	}
	if in.RiskLevel != nil {
		r := domain.RiskLevel(*in.RiskLevel)
		u.RiskLevel = &r
	}
	u.Notes = in.Notes

	if err := s.patients.UpdatePatient(id, u); err != nil {
		return domain.Patient{}, fmt.Errorf("roster.Update: %w", err)
	}
	s.log.Info("patient updated",
		zap.String("patient_id", id.String()),
		zap.String("psychologist_id", sess.UserID.String()))

	return s.patients.GetPatient(id)
}
