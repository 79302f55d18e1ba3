package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"payee-confirmation-backend/internal/models"
	"payee-confirmation-backend/internal/repository"
	"payee-confirmation-backend/internal/repository/repositorytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	db := repositorytest.NewDB(t)
	return NewService(repository.NewSubmissionRepository(db), nil, nil, opts...)
}

func alice() models.Submission {
	return models.Submission{
		ID:          "ab12cd34",
		Name:        "Alice",
		Email:       "a@x.com",
		Title:       "T1",
		Fee:         100,
		Bank:        "First Bank",
		Account:     "0001",
		AccountName: "Alice A",
	}
}

func TestSubmit_FirstWins(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 9, 30, 45, 0, time.Local)
	svc := newTestService(t, WithClock(func() time.Time { return clock }))

	outcome, err := svc.Submit(ctx, alice())
	require.NoError(t, err)
	assert.Equal(t, Accepted, outcome)

	second := alice()
	second.Bank = "Other Bank"
	second.Account = "9999"
	clock = clock.Add(time.Hour)

	outcome, err = svc.Submit(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, outcome)

	stored, err := svc.Get(ctx, "ab12cd34")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "First Bank", stored.Bank)
	assert.Equal(t, "0001", stored.Account)
	assert.True(t, stored.SubmittedAt.Equal(time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSubmit_ConcurrentSameToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	const n = 20
	outcomes := make([]Outcome, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := alice()
			rec.Account = string(rune('a' + i))
			outcomes[i], errs[i] = svc.Submit(ctx, rec)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for i := range outcomes {
		require.NoError(t, errs[i])
		if outcomes[i] == Accepted {
			accepted++
		} else {
			assert.Equal(t, AlreadyExists, outcomes[i])
		}
	}
	assert.Equal(t, 1, accepted)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSubmit_Validation(t *testing.T) {
	svc := newTestService(t)

	rec := alice()
	rec.ID = "   "
	_, err := svc.Submit(context.Background(), rec)
	assert.ErrorIs(t, err, ErrInvalidSubmission)

	rec = alice()
	rec.Fee = -1
	_, err = svc.Submit(context.Background(), rec)
	assert.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestList_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc := newTestService(t, WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))

	for _, id := range []string{"zz000001", "aa000002", "mm000003"} {
		rec := alice()
		rec.ID = id
		_, err := svc.Submit(ctx, rec)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "zz000001", all[0].ID)
	assert.Equal(t, "aa000002", all[1].ID)
	assert.Equal(t, "mm000003", all[2].ID)
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	empty, err := svc.Tokens(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, id := range []string{"aaaaaaaa", "bbbbbbbb"} {
		rec := alice()
		rec.ID = id
		_, err := svc.Submit(ctx, rec)
		require.NoError(t, err)
	}

	tokens, err := svc.Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"aaaaaaaa": {}, "bbbbbbbb": {}}, tokens)
}

func TestGet_Unknown(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.Get(context.Background(), "missing0")
	require.NoError(t, err)
	assert.Nil(t, got)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, s *models.Submission) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) List(ctx context.Context) ([]models.Submission, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Submission), args.Error(1)
}

func (m *mockStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *mockStore) IDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func TestSubmit_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("disk full")
	store := new(mockStore)
	store.On("Insert", mock.Anything, mock.MatchedBy(func(s *models.Submission) bool {
		return s.ID == "ab12cd34"
	})).Return(false, boom)

	svc := NewService(store, nil, nil)
	outcome, err := svc.Submit(context.Background(), alice())

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, outcome)
	store.AssertExpectations(t)
}

func TestSubmissionTime(t *testing.T) {
	in := time.Date(2024, 5, 1, 9, 30, 59, 999, time.UTC)

	got := SubmissionTime(in)

	assert.Equal(t, time.Local, got.Location())
	assert.Zero(t, got.Second())
	assert.Zero(t, got.Nanosecond())
	assert.True(t, in.Truncate(time.Minute).Equal(got))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "Accepted", Accepted.String())
	assert.Equal(t, "AlreadyExists", AlreadyExists.String())
	assert.Equal(t, "Unknown", Outcome(0).String())
}
