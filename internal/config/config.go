// Package config loads car-spotter settings from the environment, an
// optional .env file and an optional config file.
//
// Every key can be set through an environment variable with the
// CAR_SPOTTER_ prefix, e.g. CAR_SPOTTER_LOG_LEVEL=debug.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CAR_SPOTTER"

// Config holds all runtime settings.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// LogConsole switches stderr logs to human-readable output.
	LogConsole bool `mapstructure:"log_console"`

	OCRLanguage    string `mapstructure:"ocr_language"`
	TessdataPrefix string `mapstructure:"tessdata_prefix"`
	OCRRegionScan  bool   `mapstructure:"ocr_region_scan"`

	// MaxImageSide bounds the longest side of the frame scanned for
	// rectangles. Loaded photos keep their size. 0 disables downscaling.
	MaxImageSide int `mapstructure:"max_image_side"`

	RectMinArea   int     `mapstructure:"rect_min_area"`
	RectTolerance float64 `mapstructure:"rect_tolerance"`
	BlurRadius    float64 `mapstructure:"blur_radius"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_console", false)
	v.SetDefault("ocr_language", "eng")
	v.SetDefault("tessdata_prefix", "")
	v.SetDefault("ocr_region_scan", false)
	v.SetDefault("max_image_side", 1024)
	v.SetDefault("rect_min_area", 100)
	v.SetDefault("rect_tolerance", 0.8)
	v.SetDefault("blur_radius", 0.0)
}

// Load reads settings. A .env file in the working directory is loaded into
// the process environment first if present. configFile, when non-empty,
// names a YAML, TOML or JSON file whose values sit below the environment.
func Load(configFile string) (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxImageSide < 0 {
		errs = append(errs, fmt.Errorf("max_image_side must be >= 0, got %d", c.MaxImageSide))
	}
	if c.RectMinArea < 0 {
		errs = append(errs, fmt.Errorf("rect_min_area must be >= 0, got %d", c.RectMinArea))
	}
	if c.RectTolerance < 0 || c.RectTolerance > 1 {
		errs = append(errs, fmt.Errorf("rect_tolerance must be in [0, 1], got %g", c.RectTolerance))
	}
	if c.BlurRadius < 0 {
		errs = append(errs, fmt.Errorf("blur_radius must be >= 0, got %g", c.BlurRadius))
	}
	if c.OCRLanguage == "" {
		errs = append(errs, errors.New("ocr_language must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
