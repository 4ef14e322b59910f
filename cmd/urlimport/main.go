package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/striveopps/backend/internal/config"
	"github.com/striveopps/backend/internal/core/services"
	"github.com/striveopps/backend/internal/infrastructure/db"
	"github.com/striveopps/backend/internal/infrastructure/logger"
)

var (
	cfgFile    string
	jsonOutput bool
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "urlimport <file>",
	Short: "Queue scraping tasks from a .txt or .csv file of URLs",
	Long: `urlimport reads one URL per line (.txt) or the first column of each
record (.csv, optional "url" header) and creates a pending scraping task for
every new, well-formed URL in the configured database.

Examples:
  urlimport sources.txt
  urlimport --config config/config.yaml sources.csv
  urlimport --json sources.csv`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runImport,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "output the result as JSON")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall import timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := services.ParseFileFormat(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer log.Sync()

	database, err := db.NewConnection(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close(database)

	if err := db.RunMigrations(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	tasks := services.NewTaskService(services.TaskServiceConfig{
		Repository: db.NewTaskRepository(database, log),
		Events:     db.NewTaskEventRepository(database, log),
		Logger:     log,
	})
	ingestion := services.NewIngestionService(services.IngestionServiceConfig{
		Tasks:  tasks,
		Logger: log,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	result, err := ingestion.SubmitFromFile(ctx, content, format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]int{
			"tasks_created":   result.Created,
			"tasks_skipped":   result.Skipped(),
			"tasks_invalid":   result.Invalid,
			"tasks_duplicate": result.Duplicate,
		})
	}

	fmt.Fprintf(out, "created:   %d\n", result.Created)
	fmt.Fprintf(out, "skipped:   %d (invalid %d, duplicate %d)\n", result.Skipped(), result.Invalid, result.Duplicate)
	return nil
}
