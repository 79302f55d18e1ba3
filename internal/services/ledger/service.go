package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"payee-confirmation-backend/internal/logger"
	"payee-confirmation-backend/internal/metrics"
	"payee-confirmation-backend/internal/models"

	"go.uber.org/zap"
)

// Outcome of a submission attempt.
type Outcome int

const (
	Accepted Outcome = iota + 1
	AlreadyExists
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "Accepted"
	case AlreadyExists:
		return "AlreadyExists"
	default:
		return "Unknown"
	}
}

var ErrInvalidSubmission = errors.New("invalid submission")

// Store is the durable submission table. Insert must be atomic: it either
// writes the row or reports false when the id is taken.
type Store interface {
	Insert(ctx context.Context, s *models.Submission) (bool, error)
	List(ctx context.Context) ([]models.Submission, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	IDs(ctx context.Context) ([]string, error)
}

type Service struct {
	store   Store
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used to stamp submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, log *zap.Logger, m *metrics.Metrics, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:   store,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit records the first submission for a token. Later submissions for the
// same token return AlreadyExists and leave the stored record untouched.
// Storage errors are returned as is.
func (s *Service) Submit(ctx context.Context, record models.Submission) (Outcome, error) {
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return 0, fmt.Errorf("%w: id is required", ErrInvalidSubmission)
	}
	if record.Fee < 0 {
		return 0, fmt.Errorf("%w: fee must not be negative", ErrInvalidSubmission)
	}

	now := s.now()
	record.SubmittedAt = SubmissionTime(now)
	record.CreatedAt = now

	log := logger.WithContext(ctx, s.log).With(zap.String("token", record.ID))

	inserted, err := s.store.Insert(ctx, &record)
	if err != nil {
		log.Error("submission insert failed", zap.Error(err))
		s.metrics.Submission("error")
		return 0, err
	}
	if !inserted {
		log.Info("submission already exists")
		s.metrics.Submission(AlreadyExists.String())
		return AlreadyExists, nil
	}

	log.Info("submission accepted")
	s.metrics.Submission(Accepted.String())
	return Accepted, nil
}

// List returns the ledger in insertion order.
func (s *Service) List(ctx context.Context) ([]models.Submission, error) {
	return s.store.List(ctx)
}

// Tokens returns the set of tokens that already have a submission.
func (s *Service) Tokens(ctx context.Context) (map[string]struct{}, error) {
	ids, err := s.store.IDs(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Get returns the submission for id, or nil when the token has not submitted.
func (s *Service) Get(ctx context.Context, id string) (*models.Submission, error) {
	return s.store.Get(ctx, strings.TrimSpace(id))
}

// SubmissionTime is t in local civil time, truncated to the minute.
func SubmissionTime(t time.Time) time.Time {
	l := t.In(time.Local)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), 0, 0, time.Local)
}
