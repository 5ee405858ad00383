package watch

import (
	"context"
	"fmt"
	"log/slog"

	"skywatcher/internal/config"
	"skywatcher/internal/models"
)

// Fetcher returns the aircraft currently within radiusKm of a point
type Fetcher interface {
	FetchNearby(ctx context.Context, lat, lon, radiusKm float64) ([]models.AircraftRecord, error)
}

// Notifier delivers one alert body
type Notifier interface {
	Send(ctx context.Context, body string) error
}

// Report summarises one run
type Report struct {
	Fetched  int
	Matched  int
	Sent     int
	Failed   int
	FetchErr error
	SendErrs []error
}

// Watcher runs a single fetch, filter and notify cycle
type Watcher struct {
	location  config.LocationConfig
	operator  config.OperatorConfig
	fetcher   Fetcher
	notifier  Notifier
	lookup    AircraftLookup
	formatter *Formatter
	logger    *slog.Logger
}

// Option customises a Watcher
type Option func(*Watcher)

// WithLookup enables type enrichment from an aircraft reference database
func WithLookup(lookup AircraftLookup) Option {
	return func(w *Watcher) {
		w.lookup = lookup
	}
}

// WithFormatter replaces the default formatter
func WithFormatter(f *Formatter) Option {
	return func(w *Watcher) {
		w.formatter = f
	}
}

// New creates a watcher for the configured location and operator
func New(cfg *config.Config, fetcher Fetcher, notifier Notifier, logger *slog.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		location:  cfg.Location,
		operator:  cfg.Operator,
		fetcher:   fetcher,
		notifier:  notifier,
		formatter: NewFormatter(cfg.Operator.Name),
		logger:    logger,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run performs exactly one cycle. Fetch and send failures are logged and
// reported; they never abort the run.
func (w *Watcher) Run(ctx context.Context) Report {
	var report Report

	records, err := w.fetcher.FetchNearby(ctx, w.location.Latitude, w.location.Longitude, w.location.RadiusKm)
	if err != nil {
		w.logger.Error("Error fetching aircraft data", "error", err)
		report.FetchErr = err
		records = nil
	}
	report.Fetched = len(records)

	matches := FilterByOperator(records, w.operator.Match)
	report.Matched = len(matches)

	for _, rec := range matches {
		rec = enrich(w.logger, w.lookup, rec)
		msg := w.formatter.Format(rec)

		if err := w.notifier.Send(ctx, msg); err != nil {
			w.logger.Error("Error sending WhatsApp message", "flight", rec.Callsign, "error", err)
			report.Failed++
			report.SendErrs = append(report.SendErrs, err)
		} else {
			w.logger.Info("WhatsApp message sent successfully", "flight", rec.Callsign)
			report.Sent++
		}

		w.logger.Info(fmt.Sprintf("Detected %s flight", w.operator.Name),
			"flight", orDefault(rec.Callsign, UnknownPlaceholder),
			"icao", rec.ICAO,
			"operator", rec.Operator,
			"message", msg,
		)
	}

	w.logger.Debug("Watch run complete",
		"fetched", report.Fetched,
		"matched", report.Matched,
		"sent", report.Sent,
		"failed", report.Failed,
	)

	return report
}
