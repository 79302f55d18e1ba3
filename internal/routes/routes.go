package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"payee-confirmation-backend/internal/config"
	handler "payee-confirmation-backend/internal/handlers"
	"payee-confirmation-backend/internal/metrics"
	"payee-confirmation-backend/internal/repository"
	"payee-confirmation-backend/internal/services/batches"
	"payee-confirmation-backend/internal/services/ledger"
	"payee-confirmation-backend/internal/services/notification"
	service "payee-confirmation-backend/internal/services/reconciliation"
	"payee-confirmation-backend/internal/services/tokens"
)

// Dependencies that RegisterRoutes does not build itself. Mailer is optional;
// when nil one is derived from cfg.Email.
type Dependencies struct {
	DB       *gorm.DB
	Config   config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Mailer   notification.Mailer
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) error {
	cfg := deps.Config
	log := deps.Logger
	var registerer prometheus.Registerer
	if deps.Registry != nil {
		registerer = deps.Registry
	}
	m := metrics.New(registerer)

	submissionRepo := repository.NewSubmissionRepository(deps.DB)
	batchRepo := repository.NewBatchRepository(deps.DB)

	pages, err := notification.NewFilePages(cfg.PagesDir, cfg.BaseURL+"/submit")
	if err != nil {
		return err
	}
	mailer := deps.Mailer
	if mailer == nil {
		mailer = notification.NewMailer(notification.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.Address,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		}, log)
	}
	fanout := notification.NewFanout(pages, mailer, notification.Config{
		BaseURL:     cfg.BaseURL,
		Subject:     cfg.Email.Subject,
		Concurrency: cfg.Email.Concurrency,
	}, log, m)

	ledgerService := ledger.NewService(submissionRepo, log, m)
	batchService := batches.NewService(batchRepo, tokens.NewAssigner(), ledgerService, fanout, cfg.UploadDir, log, m)
	reconService := service.NewReconciliationService(batchService, ledgerService, log, m)

	batchHandler := handler.NewBatchHandler(batchService, cfg.MaxUploadBytes)
	submissionHandler := handler.NewSubmissionHandler(ledgerService)
	reconHandler := handler.NewReconciliationHandler(reconService)

	// Confirmation pages and the form they post to
	r.Static(notification.PagesPath, cfg.PagesDir)
	r.POST("/submit", submissionHandler.Submit)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	batch := api.Group("/batches")
	batch.GET("", batchHandler.List)
	batch.POST("/upload", batchHandler.Upload)
	batch.GET("/active", batchHandler.Active)

	subs := api.Group("/submissions")
	subs.GET("", submissionHandler.List)
	subs.GET("/:id", submissionHandler.Get)

	recon := api.Group("/reconciliation")
	recon.GET("", reconHandler.Reconcile)
	recon.GET("/pending", reconHandler.Pending)

	exports := api.Group("/export")
	{
		exports.GET("", reconHandler.Export)
		exports.GET("/pending", reconHandler.ExportPending)
	}

	return nil
}
