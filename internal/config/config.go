// Package config provides configuration loading and validation for the
// nucleus tools server.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ironsheep/nucleus-tools-mcp/internal/detection"
	"github.com/ironsheep/nucleus-tools-mcp/internal/imaging"
	"github.com/ironsheep/nucleus-tools-mcp/internal/profile"
	"github.com/ironsheep/nucleus-tools-mcp/internal/segment"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrInvalidLogFormat     = errors.New("invalid log format")
	ErrInvalidMinArea       = errors.New("detection min area must be positive")
	ErrInvalidBlurSigma     = errors.New("detection blur sigma must not be negative")
	ErrInvalidThreshold     = errors.New("detection threshold must be in 0-255")
	ErrInvalidOpenRadius    = errors.New("detection open radius must not be negative")
	ErrInvalidWindow        = errors.New("profile window proportion must be in (0, 0.5)")
	ErrInvalidSegmentLength = errors.New("profile min segment length below segment minimum")
	ErrInvalidDeviation     = errors.New("profile deviation must not be negative")
	ErrInvalidSmoothRadius  = errors.New("profile smooth radius must not be negative")
	ErrInvalidWorkers       = errors.New("analysis workers must be positive")
)

// Default configuration values.
const (
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultMinArea           = 100
	DefaultBlurSigma         = 1.0
	DefaultOpenRadius        = 1.0
	DefaultExcludeEdge       = true
	DefaultWindowProportion  = 0.05
	DefaultMinSegmentLength  = 10
	DefaultDeviation         = 5.0
	DefaultSmoothRadius      = 2
	DefaultWorkers           = 4
	maxThreshold             = 255
	maxWindowProportionBound = 0.5
)

// Config holds all configuration for the nucleus tools server.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Detection DetectionConfig `mapstructure:"detection"`
	Profile   ProfileConfig   `mapstructure:"profile"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DetectionConfig controls mask building and nucleus selection.
type DetectionConfig struct {
	StainColor  string  `mapstructure:"stain_color"`
	BlurSigma   float64 `mapstructure:"blur_sigma"`
	OpenRadius  float64 `mapstructure:"open_radius"`
	MinArea     int     `mapstructure:"min_area"`
	Threshold   int     `mapstructure:"threshold"`
	Invert      bool    `mapstructure:"invert"`
	ExcludeEdge bool    `mapstructure:"exclude_edge"`
}

// ProfileConfig controls angle profiling and segmentation.
type ProfileConfig struct {
	WindowProportion float64 `mapstructure:"window_proportion"`
	Deviation        float64 `mapstructure:"deviation"`
	MinSegmentLength int     `mapstructure:"min_segment_length"`
	SmoothRadius     int     `mapstructure:"smooth_radius"`
}

// AnalysisConfig holds batch analysis configuration.
type AnalysisConfig struct {
	Workers int `mapstructure:"workers"`
}

// MetricsConfig holds the Prometheus listener configuration. An empty
// address disables the listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// MaskOptions converts the detection section into mask building options.
func (c DetectionConfig) MaskOptions() imaging.MaskOptions {
	return imaging.MaskOptions{
		Stain:      imaging.StainOptions{StainHex: c.StainColor, Invert: c.Invert},
		BlurSigma:  c.BlurSigma,
		Threshold:  c.Threshold,
		OpenRadius: c.OpenRadius,
	}
}

// DetectOptions converts the detection section into nucleus selection options.
func (c DetectionConfig) DetectOptions() detection.Options {
	return detection.Options{MinArea: c.MinArea, ExcludeEdge: c.ExcludeEdge}
}

// SegmentOptions converts the profile section into segmentation options.
func (c ProfileConfig) SegmentOptions() profile.SegmentOptions {
	return profile.SegmentOptions{
		MinLength:    c.MinSegmentLength,
		Deviation:    c.Deviation,
		SmoothRadius: c.SmoothRadius,
	}
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Detection: DetectionConfig{
			BlurSigma:   DefaultBlurSigma,
			OpenRadius:  DefaultOpenRadius,
			MinArea:     DefaultMinArea,
			ExcludeEdge: DefaultExcludeEdge,
		},
		Profile: ProfileConfig{
			WindowProportion: DefaultWindowProportion,
			Deviation:        DefaultDeviation,
			MinSegmentLength: DefaultMinSegmentLength,
			SmoothRadius:     DefaultSmoothRadius,
		},
		Analysis: AnalysisConfig{Workers: DefaultWorkers},
	}
}

// LoadConfig loads configuration from file and environment variables.
//
// With an empty configPath, a file named nucleus-mcp.yaml is searched for in
// the working directory, ./config and /etc/nucleus-mcp; a missing file is not
// an error. Environment variables prefixed NUCLEUS_MCP_ override both, with
// dots in keys replaced by underscores (NUCLEUS_MCP_PROFILE_MIN_SEGMENT_LENGTH).
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("nucleus-mcp")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/nucleus-mcp")
	}

	viperCfg.SetEnvPrefix("NUCLEUS_MCP")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := Validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(viperCfg *viper.Viper) {
	d := Default()

	viperCfg.SetDefault("logging.level", d.Logging.Level)
	viperCfg.SetDefault("logging.format", d.Logging.Format)

	viperCfg.SetDefault("detection.stain_color", d.Detection.StainColor)
	viperCfg.SetDefault("detection.blur_sigma", d.Detection.BlurSigma)
	viperCfg.SetDefault("detection.open_radius", d.Detection.OpenRadius)
	viperCfg.SetDefault("detection.min_area", d.Detection.MinArea)
	viperCfg.SetDefault("detection.threshold", d.Detection.Threshold)
	viperCfg.SetDefault("detection.invert", d.Detection.Invert)
	viperCfg.SetDefault("detection.exclude_edge", d.Detection.ExcludeEdge)

	viperCfg.SetDefault("profile.window_proportion", d.Profile.WindowProportion)
	viperCfg.SetDefault("profile.deviation", d.Profile.Deviation)
	viperCfg.SetDefault("profile.min_segment_length", d.Profile.MinSegmentLength)
	viperCfg.SetDefault("profile.smooth_radius", d.Profile.SmoothRadius)

	viperCfg.SetDefault("analysis.workers", d.Analysis.Workers)

	viperCfg.SetDefault("metrics.addr", d.Metrics.Addr)
}

// Validate checks every section and returns the first violation found.
func Validate(config *Config) error {
	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	switch strings.ToLower(config.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if err := validateDetection(config.Detection); err != nil {
		return err
	}

	if err := validateProfile(config.Profile); err != nil {
		return err
	}

	if config.Analysis.Workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, config.Analysis.Workers)
	}

	return nil
}

func validateDetection(c DetectionConfig) error {
	if c.MinArea <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMinArea, c.MinArea)
	}

	if c.BlurSigma < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidBlurSigma, c.BlurSigma)
	}

	if c.Threshold < 0 || c.Threshold > maxThreshold {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, c.Threshold)
	}

	if c.OpenRadius < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidOpenRadius, c.OpenRadius)
	}

	return nil
}

func validateProfile(c ProfileConfig) error {
	if c.WindowProportion <= 0 || c.WindowProportion >= maxWindowProportionBound {
		return fmt.Errorf("%w: %v", ErrInvalidWindow, c.WindowProportion)
	}

	if c.MinSegmentLength < segment.MinimumSegmentLength {
		return fmt.Errorf("%w: %d < %d", ErrInvalidSegmentLength, c.MinSegmentLength, segment.MinimumSegmentLength)
	}

	if c.Deviation < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDeviation, c.Deviation)
	}

	if c.SmoothRadius < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSmoothRadius, c.SmoothRadius)
	}

	return nil
}
