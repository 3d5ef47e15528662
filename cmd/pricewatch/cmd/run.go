package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"pricewatch/lib/auditlog"
	"pricewatch/lib/configutil"
	"pricewatch/lib/notify"
	"pricewatch/lib/page"
	"pricewatch/lib/probe"
	"pricewatch/lib/siteprofile"
	"pricewatch/lib/telemetry"
	"pricewatch/services/sheetsync"
	"pricewatch/services/watch"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runFlags struct {
	config   string
	rowLimit int
	dryRun   bool
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.config, "config", "c", "config.json5", "path to the config file")
	runCmd.Flags().IntVar(&runFlags.rowLimit, "rows", 0, "stop after this many products (0 = all)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "probe and decide but do not touch the sheet")
	rootCmd.AddCommand(runCmd)
}

func fatalerr(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Processes the whole product table once and writes the results back.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		tel, err := telemetry.SetupFromEnv(ctx, "pricewatch")
		if err != nil {
			fatalerr("failed to set up telemetry", err)
		}
		defer tel.Shutdown(ctx)

		config, err := configutil.ReadConfig[PricewatchConfig](runFlags.config)
		if err != nil {
			fatalerr("failed to read config", err)
		}
		if runFlags.rowLimit > 0 {
			config.Watch.RowLimit = runFlags.rowLimit
		}

		store, closeStore, err := config.openStore()
		if err != nil {
			fatalerr("failed to open sheet store", err)
		}
		defer closeStore()
		if runFlags.dryRun {
			slog.Info("dry run, mutations will not reach the sheet")
			store = shadowStore(store)
		}

		registry := siteprofile.Default()
		if config.Profiles != "" {
			registry, err = siteprofile.Load(config.Profiles)
			if err != nil {
				fatalerr("failed to load site profiles", err)
			}
		}

		client, err := page.NewClient(page.ClientOptions{})
		if err != nil {
			fatalerr("failed to build page client", err)
		}

		runID := uuid.NewString()
		config.Watch.RunID = runID

		auditDir := config.AuditDir
		if auditDir == "" {
			auditDir = "logs"
		}
		audit, closeLogs, err := auditlog.Open(auditDir, runID)
		if err != nil {
			fatalerr("failed to open audit log", err)
		}
		defer closeLogs()

		svc := watch.NewService(
			store,
			page.NewStatic(client),
			probe.New(probe.Options{Registry: registry}),
			sheetsync.New(store, audit, sheetsync.Options{}),
			config.Watch,
		)

		report, err := svc.Run(ctx)
		if err != nil {
			fatalerr("run failed", err)
		}
		fmt.Println(report.SummaryTable())

		mailer := notify.NewMailer(config.Email)
		if mailer.Enabled() {
			subject := fmt.Sprintf("Price watch run %s: %d updated, %d failed",
				report.RunID, report.Stats.Updated, report.Stats.Failed)
			if err := mailer.SendRunSummary(ctx, subject, report.SummaryTable()); err != nil {
				slog.Error("failed to send summary email", "err", err.Error())
			}
		}
	},
}
