package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/uiverify/uiverify/browser"
	"github.com/uiverify/uiverify/cmd/uiverify/handlers"
	"github.com/uiverify/uiverify/queue"
	"github.com/uiverify/uiverify/run"
	"github.com/uiverify/uiverify/runner"
	"github.com/uiverify/uiverify/scenario"
	"github.com/uiverify/uiverify/target"
)

var serveConfigFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and job workers",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := LoadConfig(serveConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(cfg)
	log.Info(ctx, "starting server", map[string]interface{}{
		"version": Version,
		"commit":  Commit,
		"date":    BuildDate,
	})

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	log.Info(ctx, "database connected", map[string]interface{}{
		"driver": cfg.Database.Driver,
	})

	blobs, err := buildStorage(cfg)
	if err != nil {
		return err
	}

	// Stores
	targetStore := target.NewMySQLStore(db, log)
	scenarioStore := scenario.NewMySQLStore(db, log)
	runStore := run.NewMySQLStore(db, log)
	assetStore := run.NewMySQLAssetStore(db, log)
	jobStore := queue.NewMySQLStore(db, log)

	credKey := credentialKey(cfg)

	// Runner and worker pool
	opts := browser.Options{
		Headless:       cfg.Browser.Headless,
		SlowMo:         cfg.Browser.SlowMo,
		DefaultTimeout: cfg.Browser.DefaultTimeout,
		Install:        cfg.Browser.Install,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
	}
	r := runner.New(runner.PlaywrightLauncher(opts), runStore, assetStore, blobs, credKey, log)
	dispatcher := queue.NewDispatcher(targetStore, scenarioStore, jobStore, r, log)
	pool := queue.NewWorkerPool(cfg.Queue.MaxWorkers, jobStore, dispatcher, log)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	pool.Start(workerCtx)

	log.Info(ctx, "worker pool started", map[string]interface{}{
		"max_workers": cfg.Queue.MaxWorkers,
	})

	// Setup router
	router := mux.NewRouter()

	router.HandleFunc("/health", handlers.HealthHandler).Methods("GET")

	targetHandler := handlers.NewTargetHandler(targetStore, credKey, log)
	scenarioHandler := handlers.NewScenarioHandler(scenarioStore, log)
	runHandler := handlers.NewRunHandler(
		runStore,
		assetStore,
		blobs,
		[]byte(cfg.Artifact.TokenSecret),
		int(cfg.Artifact.TokenTTL.Seconds()),
		log,
	)
	jobHandler := handlers.NewJobHandler(jobStore, targetStore, pool.Notify, log)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()

	apiRouter.HandleFunc("/targets", targetHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/targets", targetHandler.List).Methods("GET")
	apiRouter.HandleFunc("/targets/{id}", targetHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/targets/{id}", targetHandler.Update).Methods("PUT")
	apiRouter.HandleFunc("/targets/{id}", targetHandler.Delete).Methods("DELETE")

	apiRouter.HandleFunc("/scenarios/builtin", scenarioHandler.Builtins).Methods("GET")
	apiRouter.HandleFunc("/targets/{target_id}/scenarios", scenarioHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/targets/{target_id}/scenarios", scenarioHandler.ListByTarget).Methods("GET")
	apiRouter.HandleFunc("/scenarios/{id}", scenarioHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/scenarios/{id}", scenarioHandler.Update).Methods("PUT")
	apiRouter.HandleFunc("/scenarios/{id}", scenarioHandler.Delete).Methods("DELETE")

	apiRouter.HandleFunc("/runs", runHandler.List).Methods("GET")
	apiRouter.HandleFunc("/runs/{id}", runHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/runs/{id}/assets", runHandler.ListAssets).Methods("GET")
	apiRouter.HandleFunc("/artifacts/{token}", runHandler.DownloadArtifact).Methods("GET")

	apiRouter.HandleFunc("/jobs", jobHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/jobs", jobHandler.List).Methods("GET")
	apiRouter.HandleFunc("/jobs/{id}", jobHandler.GetByID).Methods("GET")

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info(ctx, "server listening", map[string]interface{}{
			"address": addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Stop the claim loop. A run in flight is aborted at its next step
	// boundary and recorded as errored; wait for the workers to finish
	// recording before exiting.
	stopWorkers()
	pool.Wait()

	log.Info(ctx, "server stopped", nil)
	return nil
}
