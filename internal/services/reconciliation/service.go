package reconciliation

import (
	"context"

	"payee-confirmation-backend/internal/logger"
	"payee-confirmation-backend/internal/metrics"
	"payee-confirmation-backend/internal/models"
	"payee-confirmation-backend/internal/services/batches"

	"go.uber.org/zap"
)

// ErrNoBatch is returned when nothing was ever uploaded to reconcile against.
var ErrNoBatch = batches.ErrNoBatch

type BatchSource interface {
	Current(ctx context.Context) (*models.Batch, []models.BatchRow, error)
}

type SubmissionSource interface {
	List(ctx context.Context) ([]models.Submission, error)
}

// ReconciliationService reads the ledger and the active batch and merges
// them. It holds no state of its own.
type ReconciliationService struct {
	batches BatchSource
	ledger  SubmissionSource
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewReconciliationService(batches BatchSource, ledger SubmissionSource, log *zap.Logger, m *metrics.Metrics) *ReconciliationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReconciliationService{batches: batches, ledger: ledger, log: log, metrics: m}
}

// Reconcile returns every submission followed by the pending rows of the
// active batch, or ErrNoBatch.
func (s *ReconciliationService) Reconcile(ctx context.Context) (Result, error) {
	submissions, rows, err := s.load(ctx)
	if err != nil {
		return Result{}, err
	}
	s.metrics.Reconciliation("full")

	result := Merge(rows, submissions)
	summary := result.Summary()
	logger.WithContext(ctx, s.log).Debug("reconciled",
		zap.Int("responded", summary.Responded),
		zap.Int("pending", summary.Pending),
	)
	return result, nil
}

// Pending returns only the rows of the active batch without a submission.
func (s *ReconciliationService) Pending(ctx context.Context) (Result, error) {
	submissions, rows, err := s.load(ctx)
	if err != nil {
		return Result{}, err
	}
	s.metrics.Reconciliation("pending")
	return PendingOnly(rows, submissions), nil
}

func (s *ReconciliationService) load(ctx context.Context) ([]models.Submission, []models.BatchRow, error) {
	submissions, err := s.ledger.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	_, rows, err := s.batches.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	return submissions, rows, nil
}
