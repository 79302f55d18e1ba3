package notification

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"payee-confirmation-backend/internal/logger"
	"payee-confirmation-backend/internal/metrics"
	"payee-confirmation-backend/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PagesPath is the URL prefix confirmation pages are served under.
const PagesPath = "/static/confirm_pages"

const (
	DefaultSubject = "Please confirm your payment details"
	bodyFormat     = "Hello %s,\n\nPlease follow the link below to confirm your fee details and fill in your bank account information:\n%s\n"
)

type Config struct {
	BaseURL     string
	Subject     string
	Concurrency int
}

type Failure struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Error string `json:"error"`

	index int
}

type Report struct {
	Total  int       `json:"total"`
	Sent   int       `json:"sent"`
	Failed []Failure `json:"failed"`
}

// Fanout renders a page and sends an email for every row of a batch. It keeps
// no record of earlier sends, so notifying the same batch twice sends twice.
type Fanout struct {
	pages   PageRenderer
	mailer  Mailer
	cfg     Config
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewFanout(pages PageRenderer, mailer Mailer, cfg Config, log *zap.Logger, m *metrics.Metrics) *Fanout {
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fanout{pages: pages, mailer: mailer, cfg: cfg, log: log, metrics: m}
}

// Notify handles each row independently: a failed row is logged and reported
// and the remaining rows still go out.
func (f *Fanout) Notify(ctx context.Context, rows []models.BatchRow) Report {
	log := logger.WithContext(ctx, f.log)
	report := Report{Total: len(rows), Failed: []Failure{}}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(f.cfg.Concurrency)

	for i, row := range rows {
		g.Go(func() error {
			err := f.notifyOne(ctx, row)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, Failure{ID: row.ID, Email: row.Email, Error: err.Error(), index: i})
				f.metrics.Notification("failed")
				log.Warn("notification failed",
					zap.String("token", row.ID),
					zap.String("email", row.Email),
					zap.Error(err),
				)
				return nil
			}
			report.Sent++
			f.metrics.Notification("sent")
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.Failed, func(a, b int) bool {
		return report.Failed[a].index < report.Failed[b].index
	})
	log.Info("batch notified",
		zap.Int("total", report.Total),
		zap.Int("sent", report.Sent),
		zap.Int("failed", len(report.Failed)),
	)
	return report
}

// Link is the confirmation page URL for a token.
func (f *Fanout) Link(id string) string {
	return strings.TrimRight(f.cfg.BaseURL, "/") + PagesPath + "/" + url.PathEscape(id) + ".html"
}

func (f *Fanout) notifyOne(ctx context.Context, row models.BatchRow) error {
	if err := f.pages.Render(row); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	body := fmt.Sprintf(bodyFormat, row.Name, f.Link(row.ID))
	if err := f.mailer.Send(ctx, []string{row.Email}, f.cfg.Subject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
