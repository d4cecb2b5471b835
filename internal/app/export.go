package app

import (
	"os"
	"time"

	"cloud.google.com/go/civil"
	chart "github.com/wcharczuk/go-chart/v2"

	"weather-report/internal/table"
	"weather-report/internal/weather"
)

// writeTableCSV exports a table as delimited text.
func writeTableCSV(path string, t *table.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return t.WriteCSV(file)
}

// metricPoints extracts the (date, value) pairs of one metric column,
// skipping rows where either is missing.
func metricPoints(t *table.Table, col string) ([]time.Time, []float64) {
	xs := make([]time.Time, 0, t.Len())
	ys := make([]float64, 0, t.Len())
	for _, row := range t.Rows() {
		date, ok := row[weather.ColDate].(civil.Date)
		if !ok {
			continue
		}
		v, ok := table.AsFloat(row[col])
		if !ok {
			continue
		}
		xs = append(xs, date.In(time.UTC))
		ys = append(ys, v)
	}
	return xs, ys
}

func (a *App) timeSeries(t *table.Table, col, name string, secondary bool) chart.Series {
	xs, ys := metricPoints(t, col)
	if len(xs) < 2 {
		return nil
	}
	series := chart.TimeSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
	}
	if secondary {
		series.YAxis = chart.YAxisSecondary
	}
	return series
}

// writeDailyPNG renders the daily overlay: temperature and humidity on
// the primary axis, precipitation on the secondary. Columns absent from
// the table are skipped.
func (a *App) writeDailyPNG(path string, daily *table.Table) error {
	series := make([]chart.Series, 0, 3)
	if daily.HasColumn(weather.ColTemp) {
		if s := a.timeSeries(daily, weather.ColTemp, "気温 (℃)", false); s != nil {
			series = append(series, s)
		}
	}
	if daily.HasColumn(weather.ColHumidity) {
		if s := a.timeSeries(daily, weather.ColHumidity, "湿度 (%)", false); s != nil {
			series = append(series, s)
		}
	}
	if daily.HasColumn(weather.ColPrecip) {
		if s := a.timeSeries(daily, weather.ColPrecip, "降水量 (mm)", true); s != nil {
			series = append(series, s)
		}
	}
	return a.renderChart(path, series)
}

// writeSalesPNG renders the sold quantity against the weather metrics.
func (a *App) writeSalesPNG(path string, joined *table.Table, salesCol string) error {
	series := make([]chart.Series, 0, 2)
	if s := a.timeSeries(joined, salesCol, salesCol, false); s != nil {
		series = append(series, s)
	}
	if joined.HasColumn(weather.ColTemp) {
		if s := a.timeSeries(joined, weather.ColTemp, "気温 (℃)", true); s != nil {
			series = append(series, s)
		}
	}
	return a.renderChart(path, series)
}

func (a *App) renderChart(path string, series []chart.Series) error {
	if len(series) == 0 {
		a.Logger.Warn().Str("path", path).Msg("not enough data points to chart")
		return nil
	}

	graph := chart.Chart{
		Width:  a.Config.Chart.Width,
		Height: a.Config.Chart.Height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.1f")
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}
