package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/domain"
)

const profileColumns = "id, email, name, role, password_hash, registration_date, last_activity"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (domain.Profile, error) {
	var (
		p            domain.Profile
		role         string
		regDate      string
		lastActivity sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Email, &p.Name, &role, &p.PasswordHash, &regDate, &lastActivity); err != nil {
		return domain.Profile{}, err
	}
	p.Role = domain.ParseRole(role)
	p.RegistrationDate = domain.Day(regDate)
	if lastActivity.Valid {
		t := time.UnixMilli(lastActivity.Int64).UTC()
		p.LastActivity = &t
	}
	return p, nil
}

// CreateProfile inserts a new account. Patients and psychologists also get
// their clinical row. Returns domain.ErrConflict when the email is taken.
func (db *DB) CreateProfile(p domain.Profile) (domain.Profile, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	now := time.Now()
	if p.RegistrationDate == "" {
		p.RegistrationDate = domain.DayOf(now, time.UTC)
	}

	tx, err := db.Begin()
	if err != nil {
		return domain.Profile{}, fmt.Errorf("begin create profile: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO profiles (id, email, name, role, password_hash, registration_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Email, p.Name, string(p.Role), p.PasswordHash, string(p.RegistrationDate), now.UnixMilli())
	if isUniqueViolation(err) {
		return domain.Profile{}, fmt.Errorf("email %s: %w", p.Email, domain.ErrConflict)
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("insert profile: %w", err)
	}

	if err := ensureRoleRow(tx, p.ID, p.Role, p.RegistrationDate); err != nil {
		return domain.Profile{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Profile{}, fmt.Errorf("commit create profile: %w", err)
	}
	return p, nil
}

// ensureRoleRow creates the patients/psychologists row for role if missing.
func ensureRoleRow(tx *sql.Tx, id uuid.UUID, role domain.Role, since domain.Day) error {
	switch role {
	case domain.RolePatient:
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO patients (user_id, treatment_start_date) VALUES (?, ?)
		`, id, string(since)); err != nil {
			return fmt.Errorf("insert patient row: %w", err)
		}
	case domain.RolePsychologist:
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO psychologists (user_id) VALUES (?)
		`, id); err != nil {
			return fmt.Errorf("insert psychologist row: %w", err)
		}
	case domain.RoleAdmin:
		// no clinical record
	}
	return nil
}

// GetProfile returns the profile with the given id, or domain.ErrNotFound.
func (db *DB) GetProfile(id uuid.UUID) (domain.Profile, error) {
	p, err := scanProfile(db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// GetProfileByEmail looks an account up by (case-insensitive) email.
func (db *DB) GetProfileByEmail(email string) (domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := scanProfile(db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get profile by email: %w", err)
	}
	return p, nil
}

// ListProfiles returns accounts ordered by name, optionally limited to one role.
func (db *DB) ListProfiles(role *domain.Role) ([]domain.Profile, error) {
	q := sq.Select(profileColumns).From("profiles").OrderBy("name", "email")
	if role != nil {
		q = q.Where(sq.Eq{"role": string(*role)})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list profiles: %w", err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// SetRole changes an account's role, creating the clinical row the new role
// needs. Existing clinical rows are kept so a role flip is reversible.
func (db *DB) SetRole(id uuid.UUID, role domain.Role) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin set role: %w", err)
	}
	defer tx.Rollback()

	var regDate string
	err = tx.QueryRow(`SELECT registration_date FROM profiles WHERE id = ?`, id).Scan(&regDate)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get profile for role change: %w", err)
	}

	if _, err := tx.Exec(`UPDATE profiles SET role = ? WHERE id = ?`, string(role), id); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if err := ensureRoleRow(tx, id, role, domain.Day(regDate)); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteProfile removes an account and, through cascades, everything it owns.
func (db *DB) DeleteProfile(id uuid.UUID) error {
	result, err := db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
