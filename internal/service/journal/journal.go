package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/analytics"
	"github.com/lazypower/cony/internal/auth"
	"github.com/lazypower/cony/internal/domain"
	"github.com/lazypower/cony/internal/store"
	"go.uber.org/zap"
)

// CreateEmotion validates in and stores it for the session's user. Intensity
// is clamped to [1,10]; an empty date means today.
func (s *Service) CreateEmotion(ctx context.Context, sess auth.Session, in EmotionInput) (domain.EmotionEntry, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return domain.EmotionEntry{}, err
	}

	entry := domain.EmotionEntry{
		OwnerID:   sess.UserID,
		Emotion:   domain.Emotion(in.Emotion),
		Intensity: domain.ClampIntensity(in.Intensity),
		Date:      s.dayOrToday(in.Date),
		Note:      in.Note,
		Triggers:  uniqueTriggers(in.Triggers),
	}

	created, err := s.emotions.Create(ctx, entry)
	if err != nil {
		return domain.EmotionEntry{}, fmt.Errorf("journal.CreateEmotion: %w", err)
	}
	s.touch(ctx, sess.UserID, store.ActivityEmotionLogged, created.ID)
	return created, nil
}

// ListEmotions returns the session user's check-ins, newest first.
func (s *Service) ListEmotions(ctx context.Context, sess auth.Session) ([]domain.EmotionEntry, error) {
	entries, err := s.emotions.List(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("journal.ListEmotions: %w", err)
	}
	return entries, nil
}

// DeleteEmotion removes one of the session user's check-ins.
func (s *Service) DeleteEmotion(ctx context.Context, sess auth.Session, id uuid.UUID) error {
	if err := s.emotions.Delete(ctx, sess.UserID, id); err != nil {
		return fmt.Errorf("journal.DeleteEmotion: %w", err)
	}
	return nil
}

// CreateThought validates in and stores it for the session's user.
func (s *Service) CreateThought(ctx context.Context, sess auth.Session, in ThoughtInput) (domain.ThoughtRecord, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return domain.ThoughtRecord{}, err
	}

	record := domain.ThoughtRecord{
		OwnerID:            sess.UserID,
		Date:               s.dayOrToday(in.Date),
		Situation:          in.Situation,
		AutomaticThought:   in.AutomaticThought,
		Emotion:            in.Emotion,
		PreIntensity:       domain.ClampIntensity(in.PreIntensity),
		Evidence:           in.Evidence,
		AlternativeThought: in.AlternativeThought,
		PostIntensity:      domain.ClampIntensity(in.PostIntensity),
	}

	created, err := s.thoughts.Create(ctx, record)
	if err != nil {
		return domain.ThoughtRecord{}, fmt.Errorf("journal.CreateThought: %w", err)
	}
	s.touch(ctx, sess.UserID, store.ActivityThoughtLogged, created.ID)
	return created, nil
}

// ListThoughts returns the session user's thought records, newest first.
func (s *Service) ListThoughts(ctx context.Context, sess auth.Session) ([]domain.ThoughtRecord, error) {
	records, err := s.thoughts.List(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("journal.ListThoughts: %w", err)
	}
	return records, nil
}

// DeleteThought removes one of the session user's thought records.
func (s *Service) DeleteThought(ctx context.Context, sess auth.Session, id uuid.UUID) error {
	if err := s.thoughts.Delete(ctx, sess.UserID, id); err != nil {
		return fmt.Errorf("journal.DeleteThought: %w", err)
	}
	return nil
}

// AnalyticsResult is the analytics view. Partial is set when a record list
// could not be loaded and was treated as empty.
type AnalyticsResult struct {
	analytics.Report
	Partial bool `json:"partial"`
}

// DashboardResult is the dashboard view, with the same Partial semantics.
type DashboardResult struct {
	analytics.Dashboard
	Partial bool `json:"partial"`
}

// Analytics computes trend, top emotions, CBT improvement and weekly counts
// for the session user as of today.
func (s *Service) Analytics(ctx context.Context, sess auth.Session) AnalyticsResult {
	entries, records, partial := s.load(ctx, sess.UserID)
	return AnalyticsResult{
		Report:  analytics.BuildReport(entries, records, s.Today()),
		Partial: partial,
	}
}

// Dashboard computes the engagement summary for the session user.
func (s *Service) Dashboard(ctx context.Context, sess auth.Session) DashboardResult {
	entries, records, partial := s.load(ctx, sess.UserID)
	return DashboardResult{
		Dashboard: analytics.BuildDashboard(entries, records, s.Today()),
		Partial:   partial,
	}
}

// Records returns both of ownerID's record lists, each empty on failure.
// Callers enforce access.
func (s *Service) Records(ctx context.Context, ownerID uuid.UUID) ([]domain.EmotionEntry, []domain.ThoughtRecord, bool) {
	return s.load(ctx, ownerID)
}

// load fetches both record lists. A failed fetch is logged and replaced by
// an empty list so analytics stay computable.
func (s *Service) load(ctx context.Context, ownerID uuid.UUID) ([]domain.EmotionEntry, []domain.ThoughtRecord, bool) {
	partial := false

	entries, err := s.emotions.List(ctx, ownerID)
	if err != nil {
		s.log.Error("list emotions for analytics", zap.String("user_id", ownerID.String()), zap.Error(err))
		entries, partial = []domain.EmotionEntry{}, true
	}

	records, err := s.thoughts.List(ctx, ownerID)
	if err != nil {
		s.log.Error("list thought records for analytics", zap.String("user_id", ownerID.String()), zap.Error(err))
		records, partial = []domain.ThoughtRecord{}, true
	}

	return entries, records, partial
}

func (s *Service) dayOrToday(raw string) domain.Day {
	if raw == "" {
		return s.Today()
	}
	d, _ := domain.ParseDay(raw) // validated by the caller
	return d
}

func uniqueTriggers(raw []string) []domain.Trigger {
	out := make([]domain.Trigger, 0, len(raw))
	seen := make(map[domain.Trigger]bool, len(raw))
	for _, r := range raw {
		t := domain.Trigger(r)
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
