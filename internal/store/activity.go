package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Activity kinds recorded by the services.
const (
	ActivitySignIn        = "signin"
	ActivityEmotionLogged = "emotion"
	ActivityThoughtLogged = "thought"
)

// Activity is a single user action.
type Activity struct {
	ID        int64
	UserID    uuid.UUID
	Kind      string
	RefID     *string
	CreatedAt int64
}

// RecordActivity stores an activity row and bumps profiles.last_activity.
func (db *DB) RecordActivity(userID uuid.UUID, kind string, refID *uuid.UUID) error {
	now := time.Now().UnixMilli()

	var ref sql.NullString
	if refID != nil {
		ref = sql.NullString{String: refID.String(), Valid: true}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin activity: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO activity (user_id, kind, ref_id, created_at)
		VALUES (?, ?, ?, ?)
	`, userID, kind, ref, now); err != nil {
		return fmt.Errorf("add activity: %w", err)
	}
	if _, err := tx.Exec(`UPDATE profiles SET last_activity = ? WHERE id = ?`, now, userID); err != nil {
		return fmt.Errorf("touch profile: %w", err)
	}
	return tx.Commit()
}

// GetActivity returns a user's activity, newest first.
func (db *DB) GetActivity(userID uuid.UUID, limit int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT id, user_id, kind, ref_id, created_at
		FROM activity WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	defer rows.Close()

	var acts []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Kind, &a.RefID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		acts = append(acts, a)
	}
	return acts, rows.Err()
}
