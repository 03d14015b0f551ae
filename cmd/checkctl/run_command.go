package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/account-checker/config"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/app"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
)

const stopTimeout = 30 * time.Second

func newRunCommand() *cobra.Command {
	var dir string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run [record.json...]",
		Short: "Check a batch of account records and print the outcome counters",
		Long: "Checks the given account record files, or every *.json record under --dir " +
			"(RECORDS_DIR when omitted), and prints one counter per outcome.\n\n" +
			"A record with phone_code must also carry the phone_code_hash returned when that code was " +
			"requested; the checker never requests codes itself. Per-record lock files are kept in a " +
			"hidden .locks directory next to the records.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var (
				service    deps.CheckService
				checkerCfg *config.CheckerConfig
			)
			fxApp := fx.New(
				app.CreateCLI(),
				fx.NopLogger,
				fx.Populate(&service, &checkerCfg),
			)
			if err := fxApp.Err(); err != nil {
				return err
			}
			if err := fxApp.Start(ctx); err != nil {
				return fmt.Errorf("start: %w", err)
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
				defer cancel()
				_ = fxApp.Stop(stopCtx)
			}()

			paths := args
			if len(paths) == 0 {
				if dir == "" {
					dir = checkerCfg.RecordsDir
				}
				resolved, err := service.ResolvePaths(dir)
				if err != nil {
					return err
				}
				if len(resolved) == 0 {
					return fmt.Errorf("no account records found in %s", dir)
				}
				paths = resolved
			}

			report, err := service.RunBatch(ctx, paths)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Batch %s: %d accounts in %s\n",
				report.ID, report.Total(), report.FinishedAt.Sub(report.StartedAt).Round(time.Second))
			fmt.Fprintln(out, renderCounters(report))
			if verbose {
				fmt.Fprintln(out, renderResults(report))
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory with account records (defaults to RECORDS_DIR)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print one row per account")

	return cmd
}
