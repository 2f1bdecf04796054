// Command budget prints budget reports and records transactions, budgets and
// subscriptions from the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"budgetbook/internal/cli"
	"budgetbook/internal/config"
	applog "budgetbook/internal/log"
	"budgetbook/internal/services"
	"budgetbook/internal/sheets"
	gsheet "budgetbook/internal/sheets/google"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	// Logs go to stderr so stdout stays machine-readable.
	logger := cli.SetupLogger(os.Stderr, config.Load().LogLevel, applog.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := applog.WithLogger(context.Background(), logger)

	result, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open backend", "error", err)
		os.Exit(1)
	}

	a := &app{
		repo:    result.Repository,
		reports: services.NewReportService(result.Repository),
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
	if cfg.SheetsEnabled() {
		a.newExporter = func(ctx context.Context) (sheets.ReportWriter, error) {
			return gsheet.New(ctx, gsheet.Config{
				SpreadsheetID:     cfg.GoogleSpreadsheetID,
				ReportSheet:       cfg.GoogleReportSheetName,
				SubscriptionSheet: cfg.GoogleSubscriptionSheet,
				CredentialsJSON:   cfg.GoogleServiceAccountJSON,
				CredentialsFile:   cfg.GoogleServiceAccountFile,
			})
		}
	}

	runErr := a.run(ctx, os.Args[1:])

	if err := result.Cleanup(); err != nil {
		logger.Warn("Backend cleanup failed", "error", err)
	}

	switch {
	case runErr == nil:
	case errors.Is(runErr, flag.ErrHelp):
		os.Exit(2)
	case errors.Is(runErr, errUsage):
		fmt.Fprintln(os.Stderr, runErr)
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	default:
		logger.Error("Command failed", "command", firstArg(os.Args[1:]), "error", runErr)
		os.Exit(1)
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
