package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/uiverify/uiverify/browser"
	"github.com/uiverify/uiverify/run"
	"github.com/uiverify/uiverify/runner"
	"github.com/uiverify/uiverify/scenario"
	"github.com/uiverify/uiverify/target"
)

var (
	verifyConfigFile string
	verifyTargetName string
	verifyScenario   string
	verifyBaseURL    string
	verifyUsername   string
	verifyPassword   string
	verifyHeaded     bool
	verifySlowMo     time.Duration
	verifyInstall    bool
	verifyJSON       bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run a scenario against a target and report the result",
	Long: `Runs a verification scenario in a real browser. The target comes from
the store by name, or is created on the fly from --base-url, --username
and --password. The command exits non-zero when the run does not pass.`,
	SilenceUsage: true,
	RunE:         runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyConfigFile, "config", "c", "", "config file path")
	verifyCmd.Flags().StringVarP(&verifyTargetName, "target", "t", "rbac-frontend", "target name")
	verifyCmd.Flags().StringVarP(&verifyScenario, "scenario", "s", "rbac-frontend", "scenario name (built-in or stored)")
	verifyCmd.Flags().StringVar(&verifyBaseURL, "base-url", "", "target base URL (registers or updates the target)")
	verifyCmd.Flags().StringVar(&verifyUsername, "username", "", "target login username")
	verifyCmd.Flags().StringVar(&verifyPassword, "password", "", "target login password")
	verifyCmd.Flags().BoolVar(&verifyHeaded, "headed", false, "run the browser with a visible window")
	verifyCmd.Flags().DurationVar(&verifySlowMo, "slow-mo", 0, "delay between browser commands, for debugging")
	verifyCmd.Flags().BoolVar(&verifyInstall, "install-browser", false, "download browser binaries before running")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "print the run as JSON")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := LoadConfig(verifyConfigFile)
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

	blobs, err := buildStorage(cfg)
	if err != nil {
		return err
	}

	key := credentialKey(cfg)
	targets := target.NewMySQLStore(db, log)
	runs := run.NewMySQLStore(db, log)
	assets := run.NewMySQLAssetStore(db, log)
	scenarios := scenario.NewMySQLStore(db, log)

	tgt, err := resolveVerifyTarget(ctx, targets, key)
	if err != nil {
		return err
	}

	sc, err := resolveVerifyScenario(ctx, scenarios, tgt)
	if err != nil {
		return err
	}

	opts := browser.Options{
		Headless:       !verifyHeaded && cfg.Browser.Headless,
		SlowMo:         cfg.Browser.SlowMo,
		DefaultTimeout: cfg.Browser.DefaultTimeout,
		Install:        verifyInstall || cfg.Browser.Install,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
	}
	if verifyHeaded {
		opts.Headless = false
	}
	if verifySlowMo > 0 {
		opts.SlowMo = verifySlowMo
	}

	r := runner.New(runner.PlaywrightLauncher(opts), runs, assets, blobs, key, log)

	rec, err := r.Execute(ctx, tgt, sc)
	if err != nil {
		return err
	}

	recAssets, err := assets.ListByRun(ctx, rec.ID)
	if err != nil {
		return err
	}

	if verifyJSON {
		printJSON(struct {
			Run    *run.Run     `json:"run"`
			Assets []*run.Asset `json:"assets"`
		}{rec, recAssets})
	} else {
		printRunResult(rec, recAssets)
	}

	if rec.Status != run.StatusPassed {
		return fmt.Errorf("run %s: %s", rec.Status, rec.Notes)
	}
	return nil
}

// resolveVerifyTarget loads the named target, registering or updating
// it when connection flags are given.
func resolveVerifyTarget(ctx context.Context, targets target.Store, key []byte) (*target.Target, error) {
	tgt, err := targets.GetByName(ctx, verifyTargetName)
	if err != nil && !errors.Is(err, target.ErrTargetNotFound) {
		return nil, err
	}

	if tgt == nil {
		if verifyBaseURL == "" {
			return nil, fmt.Errorf("target %q not found; pass --base-url to register it", verifyTargetName)
		}
		tgt = &target.Target{
			Name:     verifyTargetName,
			BaseURL:  verifyBaseURL,
			Username: verifyUsername,
			IsActive: true,
		}
		if verifyPassword != "" {
			if err := tgt.SetPassword(key, verifyPassword); err != nil {
				return nil, err
			}
		}
		if err := targets.Create(ctx, tgt); err != nil {
			return nil, fmt.Errorf("failed to register target: %w", err)
		}
		return tgt, nil
	}

	var setters []target.UpdateSetter
	if verifyBaseURL != "" && verifyBaseURL != tgt.BaseURL {
		setters = append(setters, target.SetBaseURL(verifyBaseURL))
		tgt.BaseURL = verifyBaseURL
	}
	if verifyUsername != "" && verifyUsername != tgt.Username {
		setters = append(setters, target.SetUsername(verifyUsername))
		tgt.Username = verifyUsername
	}
	if verifyPassword != "" {
		setters = append(setters, target.SetPassword(key, verifyPassword))
		if err := tgt.SetPassword(key, verifyPassword); err != nil {
			return nil, err
		}
	}
	if len(setters) > 0 {
		if err := targets.Update(ctx, tgt.ID, setters...); err != nil {
			return nil, fmt.Errorf("failed to update target: %w", err)
		}
	}
	return tgt, nil
}

// resolveVerifyScenario prefers the built-in catalog, then the target's
// stored scenarios.
func resolveVerifyScenario(ctx context.Context, scenarios scenario.Store, tgt *target.Target) (*scenario.Scenario, error) {
	if sc, ok := scenario.Builtin(verifyScenario); ok {
		return sc, nil
	}
	sc, err := scenarios.GetByName(ctx, tgt.ID, verifyScenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %q: %w", verifyScenario, err)
	}
	return sc, nil
}
