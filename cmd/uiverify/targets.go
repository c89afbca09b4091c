package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uiverify/uiverify/target"
)

var (
	targetsConfigFile string
	targetsJSON       bool
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Manage verification targets",
}

func init() {
	targetsCmd.PersistentFlags().StringVarP(&targetsConfigFile, "config", "c", "", "config file path")
	targetsCmd.PersistentFlags().BoolVar(&targetsJSON, "json", false, "print output as JSON")

	targetsCmd.AddCommand(newTargetsAddCmd())
	targetsCmd.AddCommand(newTargetsListCmd())
	rootCmd.AddCommand(targetsCmd)
}

func newTargetsAddCmd() *cobra.Command {
	var name, description, baseURL, username, password string

	cmd := &cobra.Command{
		Use:          "add",
		Short:        "Register a target application",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := LoadConfig(targetsConfigFile)
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

			tgt := &target.Target{
				Name:        name,
				Description: description,
				BaseURL:     baseURL,
				Username:    username,
				IsActive:    true,
			}
			if password != "" {
				if err := tgt.SetPassword(credentialKey(cfg), password); err != nil {
					return err
				}
			}

			targets := target.NewMySQLStore(db, log)
			if err := targets.Create(ctx, tgt); err != nil {
				return err
			}

			printMessage(fmt.Sprintf("Target %s registered (%s)", tgt.Name, tgt.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "unique target name")
	cmd.Flags().StringVar(&description, "description", "", "target description")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "target base URL")
	cmd.Flags().StringVar(&username, "username", "", "login username")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("base-url")
	return cmd
}

func newTargetsListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List active targets",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := LoadConfig(targetsConfigFile)
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

			targets := target.NewMySQLStore(db, log)
			records, err := targets.List(ctx, limit, offset)
			if err != nil {
				return err
			}

			if targetsJSON {
				printJSON(records)
				return nil
			}

			headers := []string{"ID", "NAME", "BASE URL", "USERNAME"}
			var rows [][]string
			for _, t := range records {
				rows = append(rows, []string{
					t.ID.String(),
					t.Name,
					t.BaseURL,
					t.Username,
				})
			}
			printTable(headers, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of targets")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of targets to skip")
	return cmd
}
