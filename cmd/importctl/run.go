package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	configs "github.com/freitasmatheusrn/fleamarket-inventory/configs"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/database/postgres"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/imports"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/inventory"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/logging"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/storage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runInput   string
	runArchive string
	runUser    string
	runSkip    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Import a local workbook into the inventory of one user",
	Long: `Run the full import against the configured Postgres, S3 and Redis.

Rows are merged into the user's inventory exactly as an upload through the API
would be; the result is also stored as the user's latest import.`,
	Example: `
  importctl run --user 6f1c2a3e-0b7d-4c61-9d5e-1a2b3c4d5e6f -i 仕入れ_3月.xlsx --archive images.zip`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := uuid.Parse(runUser); err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}

		cfg, err := configs.LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger, closeLogger, err := logging.New(cfg.LogPath)
		if err != nil {
			return err
		}
		defer closeLogger()

		input := imports.ImportInput{
			UserID:       runUser,
			FileName:     filepath.Base(runInput),
			SkipFirstRow: runSkip,
		}
		if input.Spreadsheet, err = os.ReadFile(runInput); err != nil {
			return err
		}
		if runArchive != "" {
			if input.Archive, err = os.ReadFile(runArchive); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.ImportTimeoutSeconds)*time.Second)
		defer cancel()

		db, err := postgres.Init(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		store, err := storage.NewS3Store(ctx, cfg.Storage())
		if err != nil {
			return err
		}

		// the latest result is optional here
		var results imports.ResultStore
		if redisClient, err := cfg.Redis(); err != nil {
			logger.Warn("redis unavailable, result will not be stored", zap.Error(err))
		} else {
			defer redisClient.Close()
			results = imports.NewRedisResultStore(redisClient.Client, time.Duration(cfg.ImportResultTTL)*time.Second)
		}

		service := imports.NewService(inventory.NewRepository(db), store, results, imports.Options{
			UploadConcurrency: cfg.ImportUploadConcurrency,
			BatchSize:         cfg.ImportDBBatchSize,
			MaxErrors:         cfg.ImportMaxErrors,
		}, logger)

		result, apiErr := service.ImportWithProgress(ctx, input, func(e imports.ImportProgressEvent) {
			if e.Type == imports.ImportEventPersist {
				fmt.Fprintf(cmd.ErrOrStderr(), "persisted %d/%d\n", e.Index, e.Total)
			}
		})
		if apiErr != nil {
			return apiErr
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "workbook file (.xlsx or .xls)")
	runCmd.Flags().StringVar(&runArchive, "archive", "", "zip of product images")
	runCmd.Flags().StringVar(&runUser, "user", "", "owner user id")
	runCmd.Flags().BoolVar(&runSkip, "skip-first-row", false, "ignore the first sheet row before the header")
	_ = runCmd.MarkFlagRequired("input")
	_ = runCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(runCmd)
}
