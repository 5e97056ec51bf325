package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Receiver ReceiverConfig
	Detector DetectorConfig
	Display  DisplayConfig
	Storage  StorageConfig
}

type ReceiverConfig struct {
	GRPCPort int    `toml:"grpc_port"`
	HTTPPort int    `toml:"http_port"`
	Bind     string `toml:"bind"`
}

type DetectorConfig struct {
	MinGrepCalls      int `toml:"min_grep_calls"`
	MinReadCalls      int `toml:"min_read_calls"`
	MinGlobResults    int `toml:"min_glob_results"`
	MaxGrepResults    int `toml:"max_grep_results"`
	TimeWindowSeconds int `toml:"time_window_seconds"`
}

// Overlay renders the detector section as the threshold-overlay map the
// detector package consumes.
func (d DetectorConfig) Overlay() map[string]float64 {
	return map[string]float64{
		"min_grep_calls":      float64(d.MinGrepCalls),
		"min_read_calls":      float64(d.MinReadCalls),
		"min_glob_results":    float64(d.MinGlobResults),
		"max_grep_results":    float64(d.MaxGrepResults),
		"time_window_seconds": float64(d.TimeWindowSeconds),
	}
}

type DisplayConfig struct {
	EventBufferSize int `toml:"event_buffer_size"`
	RefreshRateMS   int `toml:"refresh_rate_ms"`
}

type StorageConfig struct {
	DBPath        string `toml:"db_path"`
	RetentionDays int    `toml:"retention_days"`
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

func DefaultConfig() Config {
	return Config{
		Receiver: ReceiverConfig{
			GRPCPort: 4317,
			HTTPPort: 4318,
			Bind:     "127.0.0.1",
		},
		Detector: DetectorConfig{
			MinGrepCalls:      3,
			MinReadCalls:      5,
			MinGlobResults:    15,
			MaxGrepResults:    20,
			TimeWindowSeconds: 60,
		},
		Display: DisplayConfig{
			EventBufferSize: 500,
			RefreshRateMS:   500,
		},
		Storage: StorageConfig{
			DBPath:        "",
			RetentionDays: 30,
		},
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cc-scout", "config.toml")
}

func Load() (*LoadResult, error) {
	return LoadFrom(defaultConfigPath())
}

func LoadFrom(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LoadResult{Config: DefaultConfig()}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromString(string(data))
}

func LoadFromString(data string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}

	if data == "" {
		return result, nil
	}

	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	knownTopLevel := map[string]bool{
		"receiver": true,
		"detector": true,
		"display":  true,
		"storage":  true,
	}
	for key := range raw {
		if !knownTopLevel[key] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key))
		}
	}

	var tf tomlFile
	if _, err := toml.Decode(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	mergeFromRaw(&result.Config, &tf, raw)

	if err := validate(&result.Config); err != nil {
		return nil, err
	}

	return result, nil
}

type tomlFile struct {
	Receiver *ReceiverConfig `toml:"receiver"`
	Detector *DetectorConfig `toml:"detector"`
	Display  *DisplayConfig  `toml:"display"`
	Storage  *StorageConfig  `toml:"storage"`
}

// mergeFromRaw overlays only the keys actually present in the document
// onto the defaults, so a partial section does not zero its siblings.
func mergeFromRaw(cfg *Config, tf *tomlFile, raw map[string]any) {
	if tf.Receiver != nil {
		if section, ok := rawSection(raw, "receiver"); ok {
			if _, exists := section["grpc_port"]; exists {
				cfg.Receiver.GRPCPort = tf.Receiver.GRPCPort
			}
			if _, exists := section["http_port"]; exists {
				cfg.Receiver.HTTPPort = tf.Receiver.HTTPPort
			}
			if _, exists := section["bind"]; exists {
				cfg.Receiver.Bind = tf.Receiver.Bind
			}
		}
	}
	if tf.Detector != nil {
		if section, ok := rawSection(raw, "detector"); ok {
			if _, exists := section["min_grep_calls"]; exists {
				cfg.Detector.MinGrepCalls = tf.Detector.MinGrepCalls
			}
			if _, exists := section["min_read_calls"]; exists {
				cfg.Detector.MinReadCalls = tf.Detector.MinReadCalls
			}
			if _, exists := section["min_glob_results"]; exists {
				cfg.Detector.MinGlobResults = tf.Detector.MinGlobResults
			}
			if _, exists := section["max_grep_results"]; exists {
				cfg.Detector.MaxGrepResults = tf.Detector.MaxGrepResults
			}
			if _, exists := section["time_window_seconds"]; exists {
				cfg.Detector.TimeWindowSeconds = tf.Detector.TimeWindowSeconds
			}
		}
	}
	if tf.Display != nil {
		if section, ok := rawSection(raw, "display"); ok {
			if _, exists := section["event_buffer_size"]; exists {
				cfg.Display.EventBufferSize = tf.Display.EventBufferSize
			}
			if _, exists := section["refresh_rate_ms"]; exists {
				cfg.Display.RefreshRateMS = tf.Display.RefreshRateMS
			}
		}
	}
	if tf.Storage != nil {
		if section, ok := rawSection(raw, "storage"); ok {
			if _, exists := section["db_path"]; exists {
				cfg.Storage.DBPath = tf.Storage.DBPath
			}
			if _, exists := section["retention_days"]; exists {
				cfg.Storage.RetentionDays = tf.Storage.RetentionDays
			}
		}
	}
}

func rawSection(raw map[string]any, key string) (map[string]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.Receiver.GRPCPort < 1 || cfg.Receiver.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("grpc_port must be 1-65535, got %d", cfg.Receiver.GRPCPort))
	}
	if cfg.Receiver.HTTPPort < 1 || cfg.Receiver.HTTPPort > 65535 {
		errs = append(errs, fmt.Sprintf("http_port must be 1-65535, got %d", cfg.Receiver.HTTPPort))
	}

	if cfg.Detector.MinGrepCalls < 1 {
		errs = append(errs, fmt.Sprintf("min_grep_calls must be positive, got %d", cfg.Detector.MinGrepCalls))
	}
	if cfg.Detector.MinReadCalls < 1 {
		errs = append(errs, fmt.Sprintf("min_read_calls must be positive, got %d", cfg.Detector.MinReadCalls))
	}
	if cfg.Detector.MinGlobResults < 1 {
		errs = append(errs, fmt.Sprintf("min_glob_results must be positive, got %d", cfg.Detector.MinGlobResults))
	}
	if cfg.Detector.MaxGrepResults < 1 {
		errs = append(errs, fmt.Sprintf("max_grep_results must be positive, got %d", cfg.Detector.MaxGrepResults))
	}
	if cfg.Detector.TimeWindowSeconds < 1 {
		errs = append(errs, fmt.Sprintf("time_window_seconds must be positive, got %d", cfg.Detector.TimeWindowSeconds))
	}

	if cfg.Display.EventBufferSize < 1 {
		errs = append(errs, fmt.Sprintf("event_buffer_size must be positive, got %d", cfg.Display.EventBufferSize))
	}
	if cfg.Display.RefreshRateMS < 1 {
		errs = append(errs, fmt.Sprintf("refresh_rate_ms must be positive, got %d", cfg.Display.RefreshRateMS))
	}

	if cfg.Storage.RetentionDays < 1 {
		errs = append(errs, fmt.Sprintf("storage retention_days must be positive, got %d", cfg.Storage.RetentionDays))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}
