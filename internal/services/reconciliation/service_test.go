package reconciliation

import (
	"context"
	"errors"
	"testing"

	"payee-confirmation-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBatches struct {
	rows []models.BatchRow
	err  error
}

func (f fakeBatches) Current(context.Context) (*models.Batch, []models.BatchRow, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return &models.Batch{ID: "batch"}, f.rows, nil
}

type fakeLedger struct {
	subs []models.Submission
	err  error
}

func (f fakeLedger) List(context.Context) ([]models.Submission, error) {
	return f.subs, f.err
}

func TestReconcile(t *testing.T) {
	svc := NewReconciliationService(
		fakeBatches{rows: batchRows},
		fakeLedger{subs: []models.Submission{submission("bbbbbbbb", "Bob")}},
		nil, nil,
	)

	res, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bbbbbbbb", "aaaaaaaa", "cccccccc"}, ids(res))

	pending, err := svc.Pending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaaaaaa", "cccccccc"}, ids(pending))
}

func TestReconcile_NoBatch(t *testing.T) {
	svc := NewReconciliationService(fakeBatches{err: ErrNoBatch}, fakeLedger{}, nil, nil)

	_, err := svc.Reconcile(context.Background())
	assert.ErrorIs(t, err, ErrNoBatch)

	_, err = svc.Pending(context.Background())
	assert.ErrorIs(t, err, ErrNoBatch)
}

func TestReconcile_EmptyBatchIsNotAnError(t *testing.T) {
	svc := NewReconciliationService(
		fakeBatches{rows: []models.BatchRow{}},
		fakeLedger{subs: []models.Submission{submission("aaaaaaaa", "Alice")}},
		nil, nil,
	)

	res, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 1, Responded: 1}, res.Summary())
}

func TestReconcile_LedgerError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewReconciliationService(fakeBatches{rows: batchRows}, fakeLedger{err: boom}, nil, nil)

	_, err := svc.Reconcile(context.Background())
	assert.ErrorIs(t, err, boom)
}
