package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/domain"
)

const patientColumns = `p.id, p.email, p.name, p.role, p.password_hash, p.registration_date, p.last_activity,
	c.psychologist_id, c.status, c.treatment_start_date, c.notes, c.risk_level`

func scanPatient(row rowScanner) (domain.Patient, error) {
	var (
		pt           domain.Patient
		role         string
		regDate      string
		lastActivity sql.NullInt64
		psych        uuid.NullUUID
		status       string
		start        string
		risk         string
	)
	err := row.Scan(&pt.ID, &pt.Email, &pt.Name, &role, &pt.PasswordHash, &regDate, &lastActivity,
		&psych, &status, &start, &pt.Notes, &risk)
	if err != nil {
		return domain.Patient{}, err
	}
	pt.Role = domain.ParseRole(role)
	pt.RegistrationDate = domain.Day(regDate)
	if lastActivity.Valid {
		t := time.UnixMilli(lastActivity.Int64).UTC()
		pt.LastActivity = &t
	}
	if psych.Valid {
		id := psych.UUID
		pt.AssignedPsychologist = &id
	}
	pt.Status = domain.PatientStatus(status)
	pt.TreatmentStartDate = domain.Day(start)
	pt.RiskLevel = domain.RiskLevel(risk)
	return pt, nil
}

func patientQuery() sq.SelectBuilder {
	return sq.Select(patientColumns).
		From("patients c").
		Join("profiles p ON p.id = c.user_id").
		Where(sq.Eq{"p.role": string(domain.RolePatient)})
}

// ListPatients returns patients matching f, ordered by name.
func (db *DB) ListPatients(f domain.PatientFilter) ([]domain.Patient, error) {
	q := patientQuery().OrderBy("p.name", "p.email")
	if f.PsychologistID != nil {
		q = q.Where(sq.Eq{"c.psychologist_id": f.PsychologistID.String()})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"c.status": string(f.Status)})
	}
	if f.Risk != "" {
		q = q.Where(sq.Eq{"c.risk_level": string(f.Risk)})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(sq.Or{
			sq.Like{"LOWER(p.name)": like},
			sq.Like{"LOWER(p.email)": like},
		})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list patients: %w", err)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	patients := []domain.Patient{}
	for rows.Next() {
		pt, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, pt)
	}
	return patients, rows.Err()
}

// GetPatient returns one patient, or domain.ErrNotFound.
func (db *DB) GetPatient(id uuid.UUID) (domain.Patient, error) {
	query, args, err := patientQuery().Where(sq.Eq{"p.id": id.String()}).ToSql()
	if err != nil {
		return domain.Patient{}, fmt.Errorf("build get patient: %w", err)
	}
	pt, err := scanPatient(db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Patient{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Patient{}, fmt.Errorf("get patient: %w", err)
	}
	return pt, nil
}

// UpdatePatient applies u to patient id.
func (db *DB) UpdatePatient(id uuid.UUID, u domain.PatientUpdate) error {
	set := sq.Update("patients").Where(sq.Eq{"user_id": id.String()})
	changed := false
	if u.Status != nil {
		set = set.Set("status", string(*u.Status))
		changed = true
	}
	if u.RiskLevel != nil {
		set = set.Set("risk_level", string(*u.RiskLevel))
		changed = true
	}
	if u.Notes != nil {
		set = set.Set("notes", *u.Notes)
		changed = true
	}
	if !changed {
		_, err := db.GetPatient(id)
		return err
	}

	query, args, err := set.ToSql()
	if err != nil {
		return fmt.Errorf("build update patient: %w", err)
	}
	result, err := db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AssignPatient links patientID to psychologistID. A nil psychologistID
// unassigns. Returns domain.ErrNotFound unless patientID currently has the
// patient role, and domain.ErrConflict when the psychologist is at capacity.
// Only current patients count toward capacity.
func (db *DB) AssignPatient(patientID uuid.UUID, psychologistID *uuid.UUID) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin assign: %w", err)
	}
	defer tx.Rollback()

	var current uuid.NullUUID
	err = tx.QueryRow(`
		SELECT c.psychologist_id
		FROM patients c JOIN profiles p ON p.id = c.user_id
		WHERE c.user_id = ? AND p.role = ?
	`, patientID, string(domain.RolePatient)).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("patient %s: %w", patientID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get patient assignment: %w", err)
	}

	var target uuid.NullUUID
	if psychologistID != nil {
		target = uuid.NullUUID{UUID: *psychologistID, Valid: true}

		var maxPatients, assigned int
		err := tx.QueryRow(`
			SELECT s.max_patients,
			       (SELECT COUNT(*) FROM patients c JOIN profiles cp ON cp.id = c.user_id
			        WHERE c.psychologist_id = s.user_id AND c.user_id != ? AND cp.role = ?)
			FROM psychologists s JOIN profiles p ON p.id = s.user_id
			WHERE s.user_id = ? AND p.role = ?
		`, patientID, string(domain.RolePatient), *psychologistID, string(domain.RolePsychologist)).Scan(&maxPatients, &assigned)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("psychologist %s: %w", *psychologistID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get psychologist capacity: %w", err)
		}
		if maxPatients > 0 && assigned >= maxPatients {
			return fmt.Errorf("psychologist %s has %d/%d patients: %w", *psychologistID, assigned, maxPatients, domain.ErrConflict)
		}
	}

	if _, err := tx.Exec(`UPDATE patients SET psychologist_id = ? WHERE user_id = ?`, target, patientID); err != nil {
		return fmt.Errorf("assign patient: %w", err)
	}
	return tx.Commit()
}

// ListPsychologists returns every psychologist with the ids of their patients.
func (db *DB) ListPsychologists() ([]domain.Psychologist, error) {
	rows, err := db.Query(`
		SELECT p.id, p.email, p.name, p.role, p.password_hash, p.registration_date, p.last_activity,
		       s.license, s.specializations, s.max_patients
		FROM psychologists s JOIN profiles p ON p.id = s.user_id
		WHERE p.role = ?
		ORDER BY p.name, p.email
	`, string(domain.RolePsychologist))
	if err != nil {
		return nil, fmt.Errorf("list psychologists: %w", err)
	}

	psychs := []domain.Psychologist{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			ps           domain.Psychologist
			role         string
			regDate      string
			lastActivity sql.NullInt64
			specs        string
		)
		if err := rows.Scan(&ps.ID, &ps.Email, &ps.Name, &role, &ps.PasswordHash, &regDate, &lastActivity,
			&ps.License, &specs, &ps.MaxPatients); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan psychologist: %w", err)
		}
		ps.Role = domain.ParseRole(role)
		ps.RegistrationDate = domain.Day(regDate)
		if lastActivity.Valid {
			t := time.UnixMilli(lastActivity.Int64).UTC()
			ps.LastActivity = &t
		}
		if err := json.Unmarshal([]byte(specs), &ps.Specializations); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decode specializations for %s: %w", ps.ID, err)
		}
		ps.Patients = []uuid.UUID{}
		index[ps.ID] = len(psychs)
		psychs = append(psychs, ps)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Second pass once the first cursor is closed; OpenMemory allows a
	// single connection.
	links, err := db.Query(`
		SELECT c.psychologist_id, c.user_id
		FROM patients c JOIN profiles p ON p.id = c.user_id
		WHERE c.psychologist_id IS NOT NULL AND p.role = ?
		ORDER BY c.user_id
	`, string(domain.RolePatient))
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer links.Close()

	for links.Next() {
		var psychID, patientID uuid.UUID
		if err := links.Scan(&psychID, &patientID); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if i, ok := index[psychID]; ok {
			psychs[i].Patients = append(psychs[i].Patients, patientID)
		}
	}
	return psychs, links.Err()
}

// UpdatePsychologist applies u to psychologist id.
func (db *DB) UpdatePsychologist(id uuid.UUID, u domain.PsychologistUpdate) error {
	set := sq.Update("psychologists").Where(sq.Eq{"user_id": id.String()})
	if u.License != nil {
		set = set.Set("license", *u.License)
	}
	if u.Specializations != nil {
		specs, err := json.Marshal(u.Specializations)
		if err != nil {
			return fmt.Errorf("encode specializations: %w", err)
		}
		set = set.Set("specializations", string(specs))
	}
	if u.MaxPatients != nil {
		set = set.Set("max_patients", *u.MaxPatients)
	}
	if u.License == nil && u.Specializations == nil && u.MaxPatients == nil {
		return nil
	}

	query, args, err := set.ToSql()
	if err != nil {
		return fmt.Errorf("build update psychologist: %w", err)
	}
	result, err := db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update psychologist: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkInactive flips active patients whose last activity (or registration,
// when they never acted) is older than before to inactive. Returns the
// number of patients changed.
func (db *DB) MarkInactive(before time.Time) (int64, error) {
	result, err := db.Exec(`
		UPDATE patients SET status = 'inactive'
		WHERE status = 'active' AND user_id IN (
			SELECT id FROM profiles
			WHERE role = 'patient'
			  AND COALESCE(last_activity, created_at) < ?
		)
	`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("mark inactive: %w", err)
	}
	return result.RowsAffected()
}
