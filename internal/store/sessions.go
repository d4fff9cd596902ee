package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is a sign-in session. Access tokens carry SessionID and are only
// honored while the matching row is active and unexpired.
type Session struct {
	ID        int64
	SessionID string
	UserID    uuid.UUID
	StartedAt int64
	ExpiresAt int64
	EndedAt   *int64
	Status    string
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s != nil && s.Status == "active" && now.UnixMilli() < s.ExpiresAt
}

const sessionColumns = "id, session_id, user_id, started_at, expires_at, ended_at, status"

func scanSession(row rowScanner) (Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.SessionID, &s.UserID, &s.StartedAt, &s.ExpiresAt, &s.EndedAt, &s.Status)
	return s, err
}

// InitSession creates an active session for userID. session_id is unique;
// reusing one is an error.
func (db *DB) InitSession(sessionID string, userID uuid.UUID, expiresAt time.Time) (*Session, error) {
	now := time.Now().UnixMilli()

	result, err := db.Exec(`
		INSERT INTO sessions (session_id, user_id, started_at, expires_at, status)
		VALUES (?, ?, ?, ?, 'active')
	`, sessionID, userID, now, expiresAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	id, _ := result.LastInsertId()
	return &Session{
		ID:        id,
		SessionID: sessionID,
		UserID:    userID,
		StartedAt: now,
		ExpiresAt: expiresAt.UnixMilli(),
		Status:    "active",
	}, nil
}

// GetSession returns a session by its session_id, or nil if none exists.
func (db *DB) GetSession(sessionID string) (*Session, error) {
	s, err := scanSession(db.QueryRow(`
		SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?
	`, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// RevokeSession ends an active session (sign-out).
func (db *DB) RevokeSession(sessionID string) error {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		UPDATE sessions SET status = 'revoked', ended_at = ?
		WHERE session_id = ? AND status = 'active'
	`, now, sessionID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no active session found for %s", sessionID)
	}
	return nil
}

// RevokeUserSessions ends every active session belonging to userID.
// Used when an administrator changes a role so stale tokens stop working.
func (db *DB) RevokeUserSessions(userID uuid.UUID) (int64, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		UPDATE sessions SET status = 'revoked', ended_at = ?
		WHERE user_id = ? AND status = 'active'
	`, now, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}
	return result.RowsAffected()
}

// GetRecentSessions returns the most recent sessions of any status, newest
// first.
func (db *DB) GetRecentSessions(limit int) ([]Session, error) {
	rows, err := db.Query(`
		SELECT `+sessionColumns+`
		FROM sessions ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// PurgeExpiredSessions deletes sessions that expired or ended before cutoff.
func (db *DB) PurgeExpiredSessions(cutoff time.Time) (int64, error) {
	result, err := db.Exec(`
		DELETE FROM sessions
		WHERE expires_at < ? OR (ended_at IS NOT NULL AND ended_at < ?)
	`, cutoff.UnixMilli(), cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return result.RowsAffected()
}
