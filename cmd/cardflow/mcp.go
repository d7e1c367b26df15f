package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/cardflow/internal/cli"
	"github.com/aretw0/cardflow/internal/config"
	mcpadapter "github.com/aretw0/cardflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the cardflow engine as an MCP Server.
This lets AI agents drive card replacement dialogues as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		logger := cli.NewLogger(cfg, true)
		log.SetOutput(os.Stderr)

		ctx := context.Background()
		directory, closeDir, err := cli.NewDirectory(ctx, cfg)
		if err != nil {
			log.Fatalf("Error initializing directory: %v", err)
		}
		defer closeDir()

		manager, closeStore, err := cli.NewSessionManager(cfg, logger)
		if err != nil {
			log.Fatalf("Error initializing sessions: %v", err)
		}
		defer closeStore()

		engine, err := cli.NewEngine(directory, logger)
		if err != nil {
			log.Fatalf("Error initializing engine: %v", err)
		}

		srv := mcpadapter.NewServer(engine, manager)

		switch transport {
		case "stdio":
			logger.Info("starting MCP server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				logger.Error("MCP server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			logger.Info("starting MCP server (SSE)", "port", port)

			sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(sigCtx, port); err != nil && err != http.ErrServerClosed {
				logger.Error("MCP server execution failed", "err", err)
				os.Exit(1)
			}
			logger.Info("MCP server stopped")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
