package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nacala04/ripel-gosset-wrapper/config"
	agentcore "github.com/nacala04/ripel-gosset-wrapper/internal/agent/core"
	agenttele "github.com/nacala04/ripel-gosset-wrapper/internal/agent/telemetry"
	srv "github.com/nacala04/ripel-gosset-wrapper/internal/server"
)

func main() {
	var cfgPath string
	root := &cobra.Command{Use: "ripel"}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")

	var serveAddr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if serveAddr == "" {
				serveAddr = os.Getenv("RIPEL_HTTP_ADDR")
			}
			return srv.Run(cfg, serveAddr)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to general.listen)")

	var migDir string
	var direction string
	var steps int
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			var dsn string
			if cfg.Storage.Postgres.Enabled() {
				if dsn, err = cfg.Storage.Postgres.DSN(); err != nil {
					return err
				}
			}
			return srv.Migrate(migDir, dsn, direction, steps)
		},
	}
	migrate.Flags().StringVar(&migDir, "dir", "file://migrations", "migrations source (file://migrations)")
	migrate.Flags().StringVar(&direction, "direction", "up", "up or down")
	migrate.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")

	var maxSearches, maxResults int
	var quiet bool
	research := &cobra.Command{
		Use:   "research [query]",
		Short: "Run one research task and print the results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			logWriter := io.Writer(os.Stderr)
			if quiet {
				logWriter = io.Discard
			}
			logger := log.New(logWriter, "[ORCH] ", log.LstdFlags)
			tele := agenttele.NewTelemetry(cfg.Telemetry)
			orch, err := agentcore.NewResearchOrchestrator(cfg, logger, tele)
			if err != nil {
				return err
			}
			if maxSearches == 0 {
				maxSearches = cfg.Research.DefaultMaxSearches
			}
			if maxResults == 0 {
				maxResults = cfg.Research.DefaultMaxResults
			}
			res := orch.ProcessTask(cmd.Context(), agentcore.Task{
				Query:       args[0],
				MaxSearches: maxSearches,
				MaxResults:  maxResults,
			})
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	research.Flags().IntVar(&maxSearches, "max-searches", 0, "iteration budget (0 = config default)")
	research.Flags().IntVar(&maxResults, "max-results", 0, "result budget (0 = config default)")
	research.Flags().BoolVar(&quiet, "quiet", false, "suppress progress logs")

	root.AddCommand(serve, migrate, research)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
