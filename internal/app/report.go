package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"weather-report/internal/table"
	"weather-report/internal/weather"
)

// Report builds the monthly report: fetch or load a payload, normalize it,
// clamp it to the requested local calendar month, aggregate daily and
// ten-day summaries, optionally join a sales CSV, and render everything.
func (a *App) Report(ctx context.Context, opts ReportOptions) error {
	if opts.Month < 1 || opts.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", opts.Month)
	}

	loc, err := a.Config.Location()
	if err != nil {
		return err
	}

	payload, err := a.loadPayload(ctx, opts)
	if err != nil {
		return err
	}

	raw := weather.Normalize(payload, loc)
	a.Logger.Debug().Int("rows", raw.Len()).Msg("normalized payload")

	clamped := weather.ClampToMonth(raw, opts.Year, opts.Month, loc)
	a.Logger.Info().
		Int("observations", clamped.Len()).
		Int("year", opts.Year).
		Int("month", opts.Month).
		Msg("clamped to calendar month")

	daily, err := weather.DailyAggregates(clamped, loc)
	if err != nil {
		return fmt.Errorf("daily aggregation: %w", err)
	}
	tenDay := weather.TenDayBuckets(daily)

	printTable(os.Stdout, "Daily aggregates", daily)
	printTable(os.Stdout, "Ten-day buckets (1–10 / 11–20 / 21–末)", tenDay)

	var joined *table.Table
	salesCol := ""
	if opts.SalesPath != "" {
		joined, salesCol, err = a.joinSales(daily, opts)
		if err != nil {
			return err
		}
		printTable(os.Stdout, "Daily aggregates × sales", joined)
		if salesCol != "" {
			a.Logger.Info().Str("column", salesCol).Msg("sales quantity column")
		} else {
			a.Logger.Warn().Msg("no numeric sales quantity column found")
		}
	}

	if opts.OutDir != "" {
		if err := a.writeArtefacts(opts.OutDir, daily, tenDay, joined, salesCol); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) loadPayload(ctx context.Context, opts ReportOptions) (any, error) {
	if opts.InputPath != "" {
		a.Logger.Info().Str("path", opts.InputPath).Msg("loading offline payload")
		return readPayloadFile(opts.InputPath)
	}

	city, ok := a.Config.Report.FindCity(opts.City)
	if !ok {
		return nil, fmt.Errorf("unknown city %q; configure it under report.cities", opts.City)
	}

	loc, err := a.Config.Location()
	if err != nil {
		return nil, err
	}
	start, end := weather.MonthBoundsLocal(opts.Year, opts.Month, loc)

	a.Logger.Info().
		Str("city", city.Name).
		Str("start", weather.FormatBound(start)).
		Str("end", weather.FormatBound(end)).
		Msg("fetching history")

	return a.newHistoryFetcher().FetchHistory(
		ctx, city.Lat, city.Lon,
		weather.FormatBound(start), weather.FormatBound(end),
	)
}

// joinSales reads the external CSV, normalises it to one row per day, and
// inner-joins it with the daily aggregates.
func (a *App) joinSales(daily *table.Table, opts ReportOptions) (*table.Table, string, error) {
	external, err := a.readSalesTable(opts.SalesPath)
	if err != nil {
		return nil, "", err
	}

	metric, err := weather.PrepareMetricDaily(external, opts.Year, opts.Month)
	if err != nil {
		if errors.Is(err, weather.ErrNoDateColumn) {
			return nil, "", fmt.Errorf("sales csv %s: no 'date' or '日付' column", opts.SalesPath)
		}
		return nil, "", err
	}

	joined := daily.InnerJoin(metric, weather.ColDate)
	salesCol, _ := weather.GuessSalesColumn(joined)
	return joined, salesCol, nil
}

// readSalesTable parses the sales CSV as UTF-8, falling back to Shift_JIS
// for Japanese-market spreadsheet exports.
func (a *App) readSalesTable(path string) (*table.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sales csv: %w", err)
	}
	if !utf8.Valid(raw) {
		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), japanese.ShiftJIS.NewDecoder()))
		if err != nil {
			return nil, fmt.Errorf("decode sales csv %s: %w", path, err)
		}
		a.Logger.Debug().Str("path", path).Msg("sales csv decoded as shift_jis")
		raw = decoded
	}

	external, err := table.ReadCSV(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read sales csv: %w", err)
	}
	return external, nil
}

// writeArtefacts exports the report tables as CSV and PNG files.
func (a *App) writeArtefacts(dir string, daily, tenDay, joined *table.Table, salesCol string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := writeTableCSV(filepath.Join(dir, "weather_daily.csv"), daily); err != nil {
		return err
	}
	if err := writeTableCSV(filepath.Join(dir, "weather_10day.csv"), tenDay); err != nil {
		return err
	}
	if !daily.IsEmpty() {
		if err := a.writeDailyPNG(filepath.Join(dir, "weather_daily.png"), daily); err != nil {
			return err
		}
	}

	if joined != nil {
		if err := writeTableCSV(filepath.Join(dir, "weather_sales.csv"), joined); err != nil {
			return err
		}
		if salesCol != "" {
			if err := a.writeSalesPNG(filepath.Join(dir, "weather_sales.png"), joined, salesCol); err != nil {
				return err
			}
		}
	}

	a.Logger.Info().Str("dir", dir).Msg("report artefacts written")
	return nil
}

// Bounds prints the UTC query range for a local calendar month, as it
// would be sent to the history API.
func (a *App) Bounds(opts BoundsOptions) error {
	if opts.Month < 1 || opts.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", opts.Month)
	}
	loc, err := a.Config.Location()
	if err != nil {
		return err
	}
	start, end := weather.MonthBoundsLocal(opts.Year, opts.Month, loc)
	fmt.Fprintf(os.Stdout, "startDateTime: %s\nendDateTime:   %s\n",
		weather.FormatBound(start), weather.FormatBound(end))
	return nil
}
