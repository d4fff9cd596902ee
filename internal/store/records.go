package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/domain"
)

// EmotionStore persists emotion check-ins in the emotions table.
type EmotionStore struct{ db *DB }

// ThoughtStore persists CBT thought records in the thought_records table.
type ThoughtStore struct{ db *DB }

var (
	_ domain.EmotionRepository = (*EmotionStore)(nil)
	_ domain.ThoughtRepository = (*ThoughtStore)(nil)
)

// Emotions returns the emotion repository backed by db.
func (db *DB) Emotions() *EmotionStore { return &EmotionStore{db: db} }

// Thoughts returns the thought-record repository backed by db.
func (db *DB) Thoughts() *ThoughtStore { return &ThoughtStore{db: db} }

// List returns ownerID's check-ins newest first.
func (s *EmotionStore) List(ctx context.Context, ownerID uuid.UUID) ([]domain.EmotionEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, emotion, intensity, date, COALESCE(note, ''), triggers, created_at
		FROM emotions WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list emotions: %w", err)
	}
	defer rows.Close()

	entries := []domain.EmotionEntry{}
	for rows.Next() {
		var (
			e        domain.EmotionEntry
			emotion  string
			date     string
			triggers string
			created  int64
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &emotion, &e.Intensity, &date, &e.Note, &triggers, &created); err != nil {
			return nil, fmt.Errorf("scan emotion: %w", err)
		}
		e.Emotion = domain.Emotion(emotion)
		e.Date = domain.Day(date)
		e.CreatedAt = time.UnixMilli(created).UTC()
		if err := json.Unmarshal([]byte(triggers), &e.Triggers); err != nil {
			return nil, fmt.Errorf("decode triggers for %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Create stores e with a fresh ID and creation time.
func (s *EmotionStore) Create(ctx context.Context, e domain.EmotionEntry) (domain.EmotionEntry, error) {
	e.ID = uuid.New()
	e.CreatedAt = time.UnixMilli(time.Now().UnixMilli()).UTC()
	if e.Triggers == nil {
		e.Triggers = []domain.Trigger{}
	}
	triggers, err := json.Marshal(e.Triggers)
	if err != nil {
		return domain.EmotionEntry{}, fmt.Errorf("encode triggers: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO emotions (id, owner_id, emotion, intensity, date, note, triggers, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.OwnerID, string(e.Emotion), e.Intensity, string(e.Date), e.Note, string(triggers), e.CreatedAt.UnixMilli())
	if err != nil {
		return domain.EmotionEntry{}, fmt.Errorf("insert emotion: %w", err)
	}
	return e, nil
}

// Delete removes ownerID's check-in id.
func (s *EmotionStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.db.deleteOwned(ctx, "emotions", ownerID, id)
}

// List returns ownerID's thought records newest first.
func (s *ThoughtStore) List(ctx context.Context, ownerID uuid.UUID) ([]domain.ThoughtRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, date, situation, automatic_thought, emotion, pre_intensity,
		       evidence, alternative_thought, post_intensity, created_at
		FROM thought_records WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list thought records: %w", err)
	}
	defer rows.Close()

	records := []domain.ThoughtRecord{}
	for rows.Next() {
		var (
			r       domain.ThoughtRecord
			date    string
			created int64
		)
		if err := rows.Scan(&r.ID, &r.OwnerID, &date, &r.Situation, &r.AutomaticThought, &r.Emotion,
			&r.PreIntensity, &r.Evidence, &r.AlternativeThought, &r.PostIntensity, &created); err != nil {
			return nil, fmt.Errorf("scan thought record: %w", err)
		}
		r.Date = domain.Day(date)
		r.CreatedAt = time.UnixMilli(created).UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}

// Create stores r with a fresh ID and creation time.
func (s *ThoughtStore) Create(ctx context.Context, r domain.ThoughtRecord) (domain.ThoughtRecord, error) {
	r.ID = uuid.New()
	r.CreatedAt = time.UnixMilli(time.Now().UnixMilli()).UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO thought_records (id, owner_id, date, situation, automatic_thought, emotion,
			pre_intensity, evidence, alternative_thought, post_intensity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.OwnerID, string(r.Date), r.Situation, r.AutomaticThought, r.Emotion,
		r.PreIntensity, r.Evidence, r.AlternativeThought, r.PostIntensity, r.CreatedAt.UnixMilli())
	if err != nil {
		return domain.ThoughtRecord{}, fmt.Errorf("insert thought record: %w", err)
	}
	return r, nil
}

// Delete removes ownerID's thought record id.
func (s *ThoughtStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.db.deleteOwned(ctx, "thought_records", ownerID, id)
}

// deleteOwned deletes one row of table scoped to its owner. table is always
// a package constant.
func (db *DB) deleteOwned(ctx context.Context, table string, ownerID, id uuid.UUID) error {
	result, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
