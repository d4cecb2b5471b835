package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"weather-report/internal/config"
	"weather-report/internal/fetcher"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newHistoryFetcher() fetcher.HistoryFetcher {
	return fetcher.NewTWC(fetcher.TWCOptions{
		APIKey:             a.Config.TWC.APIKey,
		OrgID:              a.Config.TWC.OrgID,
		SaaSClientID:       a.Config.TWC.SaaSClientID,
		GeospatialClientID: a.Config.TWC.ResolveGeospatialClientID(),
		AuthURL:            a.Config.TWC.AuthURL,
		HistoryURL:         a.Config.TWC.HistoryURL,
		Units:              a.Config.TWC.Units,
		Products:           a.Config.TWC.Products,
		Timeout:            a.Config.TWC.RequestTimeout,
	}, a.Logger)
}

// readPayloadFile decodes an offline JSON payload from disk.
func readPayloadFile(path string) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payload file: %w", err)
	}
	defer file.Close()

	var payload any
	if err := json.NewDecoder(file).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload file %s: %w", path, err)
	}
	return payload, nil
}

// ReportOptions hold parameters for building a monthly report.
type ReportOptions struct {
	City      string
	Year      int
	Month     int
	InputPath string // offline JSON payload; skips the API when set
	SalesPath string // optional per-day sales/inventory CSV to join
	OutDir    string // when set, CSV and PNG artefacts are written here
}

// BoundsOptions configure the bounds command.
type BoundsOptions struct {
	Year  int
	Month int
}
