package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is an account as stored.
type Profile struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Role             Role       `json:"role"`
	PasswordHash     string     `json:"-"`
	RegistrationDate Day        `json:"registration_date"`
	LastActivity     *time.Time `json:"last_activity,omitempty"`
}

// PatientStatus tracks where a patient is in treatment.
type PatientStatus string

const (
	StatusActive    PatientStatus = "active"
	StatusInactive  PatientStatus = "inactive"
	StatusCompleted PatientStatus = "completed"
)

// Valid reports whether s is a known status.
func (s PatientStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusCompleted:
		return true
	}
	return false
}

// RiskLevel is the clinician-assessed risk of a patient.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Patient joins a patient profile with its clinical record.
type Patient struct {
	Profile
	AssignedPsychologist *uuid.UUID    `json:"assigned_psychologist,omitempty"`
	Status               PatientStatus `json:"status"`
	TreatmentStartDate   Day           `json:"treatment_start_date"`
	Notes                string        `json:"notes,omitempty"`
	RiskLevel            RiskLevel     `json:"risk_level"`
}

// Psychologist joins a psychologist profile with its practice details.
type Psychologist struct {
	Profile
	License         string      `json:"license"`
	Specializations []string    `json:"specializations"`
	MaxPatients     int         `json:"max_patients"`
	Patients        []uuid.UUID `json:"patients"`
}

// Capacity is the share of MaxPatients already assigned, 0 when unlimited.
func (p Psychologist) Capacity() float64 {
	if p.MaxPatients <= 0 {
		return 0
	}
	return float64(len(p.Patients)) / float64(p.MaxPatients)
}

// Full reports whether no more patients can be assigned.
func (p Psychologist) Full() bool {
	return p.MaxPatients > 0 && len(p.Patients) >= p.MaxPatients
}

// PatientFilter narrows a roster listing. Zero values match everything.
type PatientFilter struct {
	PsychologistID *uuid.UUID
	Search         string
	Status         PatientStatus
	Risk           RiskLevel
}

// PatientUpdate carries the clinical fields a psychologist may change.
// Nil fields are left alone.
type PatientUpdate struct {
	Status    *PatientStatus
	RiskLevel *RiskLevel
	Notes     *string
}

// PsychologistUpdate carries practice details. Nil fields are left alone.
type PsychologistUpdate struct {
	License         *string
	Specializations []string
	MaxPatients     *int
}
