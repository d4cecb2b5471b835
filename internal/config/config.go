package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"weather-report/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	Logging logging.Config `mapstructure:"logging"`
	TWC     TWCConfig      `mapstructure:"twc"`
	Report  ReportConfig   `mapstructure:"report"`
	Chart   ChartConfig    `mapstructure:"chart"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// TWCConfig covers History on Demand API access.
type TWCConfig struct {
	APIKey             string        `mapstructure:"api_key"`
	OrgID              string        `mapstructure:"org_id"`
	SaaSClientID       string        `mapstructure:"saas_client_id"`
	GeospatialClientID string        `mapstructure:"geospatial_client_id"`
	TenantID           string        `mapstructure:"tenant_id"`
	AuthURL            string        `mapstructure:"auth_url"`
	HistoryURL         string        `mapstructure:"history_url"`
	Units              string        `mapstructure:"units"`
	Products           string        `mapstructure:"products"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
}

// CityConfig names a WGS84 coordinate usable as a report target.
type CityConfig struct {
	Name string  `mapstructure:"name"`
	Lat  float64 `mapstructure:"lat"`
	Lon  float64 `mapstructure:"lon"`
}

// ReportConfig governs report defaults.
type ReportConfig struct {
	Timezone string       `mapstructure:"timezone"`
	Cities   []CityConfig `mapstructure:"cities"`
}

// ChartConfig sets PNG rendering dimensions.
type ChartConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Load builds configuration from file, environment, and defaults. A .env
// file in the working directory is honoured when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WEATHERREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindLegacyEnv keeps the bare History on Demand credential variable
// names working alongside the prefixed ones.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("twc.api_key", "WEATHERREPORT_TWC_API_KEY", "HOD_API_KEY")
	_ = v.BindEnv("twc.org_id", "WEATHERREPORT_TWC_ORG_ID", "ORG_ID")
	_ = v.BindEnv("twc.saas_client_id", "WEATHERREPORT_TWC_SAAS_CLIENT_ID", "SAAS_CLIENT_ID")
	_ = v.BindEnv("twc.geospatial_client_id", "WEATHERREPORT_TWC_GEOSPATIAL_CLIENT_ID", "GEOSPATIAL_CLIENT_ID")
	_ = v.BindEnv("twc.tenant_id", "WEATHERREPORT_TWC_TENANT_ID", "TENANT_ID")
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "weatherreport")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("twc.units", "m")
	v.SetDefault("twc.products", "all")
	v.SetDefault("twc.request_timeout", "30s")

	v.SetDefault("report.timezone", "Asia/Tokyo")
	v.SetDefault("report.cities", []map[string]any{
		{"name": "東京", "lat": 35.6812, "lon": 139.7671},
		{"name": "大阪", "lat": 34.6937, "lon": 135.5023},
		{"name": "福岡", "lat": 33.5902, "lon": 130.4017},
	})

	v.SetDefault("chart.width", 1280)
	v.SetDefault("chart.height", 720)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Report.Timezone == "" {
		return fmt.Errorf("report.timezone must not be empty")
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("report.timezone: %w", err)
	}
	if c.TWC.RequestTimeout <= 0 {
		return fmt.Errorf("twc.request_timeout must be greater than zero")
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart dimensions must be greater than zero")
	}
	return nil
}

// Location resolves the configured report time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Report.Timezone)
}

// ResolveGeospatialClientID falls back to the tenant-derived client id
// when none is configured explicitly.
func (c *TWCConfig) ResolveGeospatialClientID() string {
	if c.GeospatialClientID != "" {
		return c.GeospatialClientID
	}
	if c.TenantID != "" {
		return "geospatial-" + c.TenantID
	}
	return ""
}

// FindCity looks up a configured city by name.
func (c *ReportConfig) FindCity(name string) (CityConfig, bool) {
	for _, city := range c.Cities {
		if city.Name == name {
			return city, true
		}
	}
	return CityConfig{}, false
}
