package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"skywatcher/internal/adsbx"
	"skywatcher/internal/config"
	"skywatcher/internal/database"
	"skywatcher/internal/logging"
	"skywatcher/internal/notify"
	"skywatcher/internal/watch"
)

// openReferenceDB opens the optional aircraft reference database, loading it
// from CSV on first use. Failures only disable enrichment.
func openReferenceDB(cfg config.AircraftDBConfig) (*database.DB, database.AircraftRepository) {
	if cfg.Path == "" {
		return nil, nil
	}

	db, err := database.New(cfg.Path)
	if err != nil {
		slog.Error("Failed to open aircraft reference database", "path", cfg.Path, "error", err)
		return nil, nil
	}

	repo := db.AircraftRepository()

	populated, err := repo.IsTablePopulated()
	if err != nil {
		slog.Error("Failed to check aircraft table", "error", err)
		db.Close()
		return nil, nil
	}

	if !populated && len(cfg.CSVPaths) > 0 {
		slog.Info("Aircraft table is empty, loading from CSV files", "csv_paths", cfg.CSVPaths)
		if err := repo.LoadFromMultipleCSV(cfg.CSVPaths, 5000); err != nil {
			slog.Error("Failed to load aircraft from CSV", "error", err)
			db.Close()
			return nil, nil
		}
	}

	return db, repo
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger isn't initialized yet
		basicLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		basicLogger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logFile, err := logging.Setup(cfg.Log)
	if err != nil {
		basicLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		basicLogger.Error("Failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	var opts []watch.Option
	db, repo := openReferenceDB(cfg.AircraftDB)
	if db != nil {
		defer db.Close()
		opts = append(opts, watch.WithLookup(repo))
	}

	client := adsbx.NewClient(cfg.ADSB.URL, time.Duration(cfg.ADSB.TimeoutSeconds)*time.Second)
	notifier := notify.NewWhatsApp(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, cfg.Twilio.ToNumber)

	watch.New(cfg, client, notifier, logger, opts...).Run(context.Background())
}
