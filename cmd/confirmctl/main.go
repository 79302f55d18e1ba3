// Command confirmctl inspects and exports the payee confirmation ledger from
// the command line, using the same configuration as the server.
package main

import (
	"context"
	"fmt"
	"os"

	"payee-confirmation-backend/internal/config"
	"payee-confirmation-backend/internal/logger"
	"payee-confirmation-backend/internal/repository"
	"payee-confirmation-backend/internal/services/batches"
	"payee-confirmation-backend/internal/services/ledger"
	"payee-confirmation-backend/internal/services/reconciliation"
	"payee-confirmation-backend/internal/services/tokens"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "confirmctl",
		Short:        "Inspect payee confirmations and export reconciliation reports",
		SilenceUsage: true,
	}
	root.AddCommand(
		newReconcileCmd(),
		newStatusCmd(),
		newTokensCmd(),
	)
	return root
}

type services struct {
	ledger  *ledger.Service
	batches *batches.Service
	recon   *reconciliation.ReconciliationService
}

func openServices(ctx context.Context) (*services, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	// stdout carries report output
	zl, err := logger.New(logger.Config{
		ServiceName: "confirmctl",
		Environment: cfg.Environment,
		Level:       "warn",
		Format:      "console",
		Output:      "stderr",
	})
	if err != nil {
		return nil, nil, err
	}

	db, err := config.InitDB(cfg, zl)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.Migrate(db.WithContext(ctx)); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	ledgerService := ledger.NewService(repository.NewSubmissionRepository(db), zl, nil)
	batchService := batches.NewService(repository.NewBatchRepository(db), tokens.NewAssigner(), ledgerService, nil, cfg.UploadDir, zl, nil)

	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = zl.Sync()
	}
	return &services{
		ledger:  ledgerService,
		batches: batchService,
		recon:   reconciliation.NewReconciliationService(batchService, ledgerService, zl, nil),
	}, closeFn, nil
}
