package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/uiverify/uiverify/run"
	"github.com/uiverify/uiverify/target"
)

var (
	runsConfigFile string
	runsJSON       bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect verification runs",
}

func init() {
	runsCmd.PersistentFlags().StringVarP(&runsConfigFile, "config", "c", "", "config file path")
	runsCmd.PersistentFlags().BoolVar(&runsJSON, "json", false, "print output as JSON")

	runsCmd.AddCommand(newRunsListCmd())
	runsCmd.AddCommand(newRunsGetCmd())
	rootCmd.AddCommand(runsCmd)
}

func newRunsListCmd() *cobra.Command {
	var targetName string
	var limit, offset int

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List runs, newest first",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := LoadConfig(runsConfigFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log := newLogger(cfg)

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get database instance: %w", err)
			}
			defer sqlDB.Close()

			runs := run.NewMySQLStore(db, log)

			var records []*run.Run
			if targetName != "" {
				targets := target.NewMySQLStore(db, log)
				tgt, err := targets.GetByName(ctx, targetName)
				if err != nil {
					return err
				}
				records, err = runs.ListByTarget(ctx, tgt.ID, limit, offset)
				if err != nil {
					return err
				}
			} else {
				records, err = runs.List(ctx, limit, offset)
				if err != nil {
					return err
				}
			}

			if runsJSON {
				printJSON(records)
				return nil
			}

			headers := []string{"ID", "SCENARIO", "STATUS", "FAILED STEP", "STARTED AT", "COMPLETED AT"}
			var rows [][]string
			for _, r := range records {
				failedStep := "-"
				if r.FailedStep != nil {
					failedStep = strconv.Itoa(*r.FailedStep)
				}
				rows = append(rows, []string{
					r.ID.String(),
					r.ScenarioName,
					string(r.Status),
					failedStep,
					formatTime(r.StartedAt),
					formatTime(r.CompletedAt),
				})
			}
			printTable(headers, rows)
			printMessage(fmt.Sprintf("\nShowing %d runs", len(records)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetName, "target", "t", "", "filter by target name")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of runs to skip")
	return cmd
}

func newRunsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "get <run-id>",
		Short:        "Show one run with its artifacts",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run ID: %w", err)
			}

			cfg, err := LoadConfig(runsConfigFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log := newLogger(cfg)

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get database instance: %w", err)
			}
			defer sqlDB.Close()

			runs := run.NewMySQLStore(db, log)
			assets := run.NewMySQLAssetStore(db, log)

			rec, err := runs.GetByID(ctx, id)
			if err != nil {
				return err
			}
			recAssets, err := assets.ListByRun(ctx, id)
			if err != nil {
				return err
			}

			if runsJSON {
				printJSON(struct {
					Run    *run.Run     `json:"run"`
					Assets []*run.Asset `json:"assets"`
				}{rec, recAssets})
				return nil
			}

			printRunResult(rec, recAssets)
			return nil
		},
	}
	return cmd
}
