package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for one watch run
type Config struct {
	Twilio     TwilioConfig
	Location   LocationConfig
	ADSB       ADSBConfig
	Operator   OperatorConfig
	Log        LogConfig
	AircraftDB AircraftDBConfig
}

// TwilioConfig holds the messaging account and the WhatsApp endpoints
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	ToNumber   string
}

// LocationConfig is the point the search radius is centred on
type LocationConfig struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// ADSBConfig points at the aircraft tracking endpoint
type ADSBConfig struct {
	URL            string
	TimeoutSeconds int
}

// OperatorConfig selects which operator triggers an alert
type OperatorConfig struct {
	Match string // substring matched against the record operator, case-insensitive
	Name  string // display name used in the alert title
}

// LogConfig holds logging configuration
type LogConfig struct {
	Dir     string
	File    string
	Level   string
	Format  string
	Console bool
}

// AircraftDBConfig configures the optional aircraft reference database
type AircraftDBConfig struct {
	Path     string
	CSVPaths []string
}

const (
	DefaultADSBURL  = "https://public-api.adsbexchange.com/VirtualRadar/AircraftList.json"
	DefaultRadiusKm = 25.0
	envPrefix       = "SKYWATCHER"
	envConfigPath   = "SKYWATCHER_CONFIG_PATH"
)

// Load loads configuration from the config file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath := os.Getenv(envConfigPath); configPath != "" {
		// Format follows the file extension
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("ini")
		v.AddConfigPath("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: credentials must then come from the environment
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("location.radius_km", DefaultRadiusKm)
	v.SetDefault("adsb.url", DefaultADSBURL)
	v.SetDefault("adsb.timeout_seconds", 10)
	v.SetDefault("operator.match", "ryanair")
	v.SetDefault("operator.name", "Ryanair")
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.file", "detections.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.console", false)
	v.SetDefault("aircraft_db.path", "")
	v.SetDefault("aircraft_db.csv_paths", []string{})
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only answers for keys viper already knows about
	for _, key := range []string{
		"twilio.account_sid", "twilio.auth_token", "twilio.from_number", "twilio.to_number",
		"location.latitude", "location.longitude",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	cfg := &Config{
		Twilio: TwilioConfig{
			AccountSID: v.GetString("twilio.account_sid"),
			AuthToken:  v.GetString("twilio.auth_token"),
			FromNumber: v.GetString("twilio.from_number"),
			ToNumber:   v.GetString("twilio.to_number"),
		},
		Location: LocationConfig{
			Latitude:  v.GetFloat64("location.latitude"),
			Longitude: v.GetFloat64("location.longitude"),
			RadiusKm:  v.GetFloat64("location.radius_km"),
		},
		ADSB: ADSBConfig{
			URL:            v.GetString("adsb.url"),
			TimeoutSeconds: v.GetInt("adsb.timeout_seconds"),
		},
		Operator: OperatorConfig{
			Match: v.GetString("operator.match"),
			Name:  v.GetString("operator.name"),
		},
		Log: LogConfig{
			Dir:     v.GetString("log.dir"),
			File:    v.GetString("log.file"),
			Level:   v.GetString("log.level"),
			Format:  v.GetString("log.format"),
			Console: v.GetBool("log.console"),
		},
		AircraftDB: AircraftDBConfig{
			Path:     v.GetString("aircraft_db.path"),
			CSVPaths: v.GetStringSlice("aircraft_db.csv_paths"),
		},
	}

	// 0.0 is a valid coordinate, so presence is checked on the key itself
	if !v.IsSet("location.latitude") || !v.IsSet("location.longitude") {
		return nil, fmt.Errorf("invalid configuration: location.latitude and location.longitude are required")
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration values
func validate(cfg *Config) error {
	required := []struct {
		key   string
		value string
	}{
		{"twilio.account_sid", cfg.Twilio.AccountSID},
		{"twilio.auth_token", cfg.Twilio.AuthToken},
		{"twilio.from_number", cfg.Twilio.FromNumber},
		{"twilio.to_number", cfg.Twilio.ToNumber},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}

	if cfg.Location.Latitude < -90 || cfg.Location.Latitude > 90 {
		return fmt.Errorf("location.latitude out of range: %v", cfg.Location.Latitude)
	}

	if cfg.Location.Longitude < -180 || cfg.Location.Longitude > 180 {
		return fmt.Errorf("location.longitude out of range: %v", cfg.Location.Longitude)
	}

	if cfg.Location.RadiusKm <= 0 {
		return fmt.Errorf("location.radius_km must be greater than 0")
	}

	if cfg.ADSB.URL == "" {
		return fmt.Errorf("adsb.url is required")
	}

	if cfg.ADSB.TimeoutSeconds <= 0 {
		return fmt.Errorf("adsb.timeout_seconds must be greater than 0")
	}

	if strings.TrimSpace(cfg.Operator.Match) == "" {
		return fmt.Errorf("operator.match is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	if cfg.Log.File == "" {
		return fmt.Errorf("log.file is required")
	}

	return nil
}
