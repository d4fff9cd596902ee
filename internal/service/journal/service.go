// Package journal implements a user's own emotion check-ins and thought
// records, plus the analytics derived from them.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/domain"
	"go.uber.org/zap"
)

// activityRecorder stamps user activity; the store implements it.
type activityRecorder interface {
	RecordActivity(userID uuid.UUID, kind string, refID *uuid.UUID) error
}

// createdCounter counts created records; *metrics.Metrics implements it.
type createdCounter interface {
	RecordCreated(kind string)
}

// Service implements journal operations. Every call takes the caller's
// session explicitly and only ever touches that user's records.
type Service struct {
	log      *zap.Logger
	emotions domain.EmotionRepository
	thoughts domain.ThoughtRepository
	activity activityRecorder
	counter  createdCounter
	loc      *time.Location
	now      domain.Clock
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(c domain.Clock) Option {
	return func(s *Service) { s.now = c }
}

// WithLocation sets the timezone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithCounter reports created records to c.
func WithCounter(c createdCounter) Option {
	return func(s *Service) { s.counter = c }
}

// NewService creates a journal service. activity may be nil.
func NewService(logger *zap.Logger, emotions domain.EmotionRepository, thoughts domain.ThoughtRepository, activity activityRecorder, opts ...Option) *Service {
	s := &Service{
		log:      logger.Named("journal"),
		emotions: emotions,
		thoughts: thoughts,
		activity: activity,
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today is the current calendar day in the service's timezone.
func (s *Service) Today() domain.Day {
	return domain.DayOf(s.now(), s.loc)
}

// touch records activity without failing the caller's write. kind is one of
// the store activity kinds and doubles as the metrics label.
func (s *Service) touch(ctx context.Context, userID uuid.UUID, kind string, ref uuid.UUID) {
	if s.counter != nil {
		s.counter.RecordCreated(kind)
	}
	if s.activity == nil {
		return
	}
	if err := s.activity.RecordActivity(userID, kind, &ref); err != nil {
		s.log.Warn("record activity failed",
			zap.String("user_id", userID.String()),
			zap.String("kind", kind),
			zap.Error(err))
	}
}
