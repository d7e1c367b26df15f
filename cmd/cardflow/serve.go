package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/internal/cli"
	"github.com/aretw0/cardflow/internal/config"
	httpadapter "github.com/aretw0/cardflow/pkg/adapters/http"
	"github.com/aretw0/cardflow/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the cardflow engine in server mode, exposing sessions as a JSON API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		logger := cli.NewLogger(cfg, debug)

		ctx := context.Background()
		directory, closeDir, err := cli.NewDirectory(ctx, cfg)
		if err != nil {
			fmt.Printf("Error initializing directory: %v\n", err)
			os.Exit(1)
		}
		defer closeDir()

		manager, closeStore, err := cli.NewSessionManager(cfg, logger)
		if err != nil {
			fmt.Printf("Error initializing sessions: %v\n", err)
			os.Exit(1)
		}
		defer closeStore()

		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
		engine, err := cli.NewEngine(directory, logger, cardflow.WithLifecycleHooks(metrics.Hooks()))
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		handler := httpadapter.NewHandler(engine, manager, httpadapter.WithLogger(logger))
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: handler,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", srv.Addr,
				"directory", cfg.Directory.Backend,
				"sessions", cfg.Sessions.Backend,
			)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}
			logger.Info("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
