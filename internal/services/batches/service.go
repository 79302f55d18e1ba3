package batches

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"payee-confirmation-backend/internal/batchfile"
	"payee-confirmation-backend/internal/logger"
	"payee-confirmation-backend/internal/metrics"
	"payee-confirmation-backend/internal/models"
	"payee-confirmation-backend/internal/services/notification"
	"payee-confirmation-backend/internal/services/tokens"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ErrNoBatch means no batch has ever been uploaded. It is different from an
// active batch that has no rows.
var ErrNoBatch = errors.New("no batch available")

type Registry interface {
	Activate(ctx context.Context, b *models.Batch) error
	Active(ctx context.Context) (*models.Batch, error)
	List(ctx context.Context) ([]models.Batch, error)
}

// IssuedTokens is the set of tokens already used by recorded submissions.
// New tokens avoid it so a fresh payee never inherits an old submission.
type IssuedTokens interface {
	Tokens(ctx context.Context) (map[string]struct{}, error)
}

type Notifier interface {
	Notify(ctx context.Context, rows []models.BatchRow) notification.Report
}

type Service struct {
	registry  Registry
	assigner  *tokens.Assigner
	issued    IssuedTokens
	notifier  Notifier
	uploadDir string
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(
	registry Registry,
	assigner *tokens.Assigner,
	issued IssuedTokens,
	notifier Notifier,
	uploadDir string,
	log *zap.Logger,
	m *metrics.Metrics,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		registry:  registry,
		assigner:  assigner,
		issued:    issued,
		notifier:  notifier,
		uploadDir: uploadDir,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

type UploadResult struct {
	Batch         *models.Batch       `json:"batch"`
	Rows          []models.BatchRow   `json:"rows"`
	Notifications notification.Report `json:"notifications"`
}

// Upload validates a batch file, stores it, assigns missing tokens, makes it
// the active batch and notifies every row. Nothing is written when the file
// fails validation.
func (s *Service) Upload(ctx context.Context, filename string, content []byte) (*UploadResult, error) {
	log := logger.WithContext(ctx, s.log).With(zap.String("filename", filename))

	format, err := batchfile.FormatOf(filename)
	if err != nil {
		s.metrics.Upload("rejected")
		return nil, err
	}
	table, err := batchfile.Decode(format, bytes.NewReader(content))
	if err != nil {
		s.metrics.Upload("rejected")
		return nil, err
	}
	if _, err := table.Rows(); err != nil {
		s.metrics.Upload("rejected")
		log.Info("batch rejected", zap.Error(err))
		return nil, err
	}

	assigner, err := s.reservingAssigner(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	path := filepath.Join(s.uploadDir, id+"_"+safeName(filename))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, err
	}

	tokenized, err := assigner.AssignFile(path)
	if err != nil {
		return nil, fmt.Errorf("assign tokens: %w", err)
	}

	columns, err := json.Marshal(tokenized.Table.Header)
	if err != nil {
		return nil, err
	}
	batch := &models.Batch{
		ID:             id,
		Filename:       filename,
		Path:           path,
		Format:         string(format),
		Columns:        datatypes.JSON(columns),
		RowCount:       len(tokenized.Rows),
		TokensAssigned: tokenized.Assigned,
		UploadedAt:     s.now(),
	}
	if err := s.registry.Activate(ctx, batch); err != nil {
		return nil, err
	}
	s.metrics.Upload("accepted")
	log.Info("batch activated",
		zap.String("batch_id", batch.ID),
		zap.Int("rows", batch.RowCount),
		zap.Int("tokens_assigned", batch.TokensAssigned),
	)

	result := &UploadResult{Batch: batch, Rows: tokenized.Rows}
	if s.notifier != nil {
		result.Notifications = s.notifier.Notify(ctx, tokenized.Rows)
	}
	return result, nil
}

func (s *Service) reservingAssigner(ctx context.Context) (*tokens.Assigner, error) {
	if s.issued == nil {
		return s.assigner, nil
	}
	used, err := s.issued.Tokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("load issued tokens: %w", err)
	}
	return s.assigner.WithReserved(func(token string) bool {
		_, ok := used[token]
		return ok
	}), nil
}

// History returns every uploaded batch, newest first.
func (s *Service) History(ctx context.Context) ([]models.Batch, error) {
	return s.registry.List(ctx)
}

// Active returns the active batch record, or ErrNoBatch.
func (s *Service) Active(ctx context.Context) (*models.Batch, error) {
	batch, err := s.registry.Active(ctx)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, ErrNoBatch
	}
	return batch, nil
}

// Current returns the active batch together with its rows read from the
// stored batch file.
func (s *Service) Current(ctx context.Context) (*models.Batch, []models.BatchRow, error) {
	batch, err := s.Active(ctx)
	if err != nil {
		return nil, nil, err
	}
	table, _, err := batchfile.ReadFile(batch.Path)
	if err != nil {
		return nil, nil, err
	}
	rows, err := table.Rows()
	if err != nil {
		return nil, nil, err
	}
	return batch, rows, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func safeName(filename string) string {
	name := unsafeChars.ReplaceAllString(filepath.Base(filename), "_")
	if name == "" || name == "." || name == ".." {
		return "batch" + filepath.Ext(filename)
	}
	return name
}
