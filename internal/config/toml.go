package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// Defaults used when neither the config file nor a flag sets a value.
const (
	DefaultCameraDevice  = 0
	DefaultMirror        = true
	DefaultMinConfidence = 0.5
	DefaultLogLevel      = "info"
)

// FileConfig represents the TOML configuration file.
// Pointer fields distinguish unset keys from zero values.
type FileConfig struct {
	Camera   CameraConfig   `toml:"camera"`
	Detector DetectorConfig `toml:"detector"`
	Log      LogConfig      `toml:"log"`
}

// CameraConfig maps capture settings.
type CameraConfig struct {
	Device *int    `toml:"device"`
	Video  *string `toml:"video"`
	Mirror *bool   `toml:"mirror"`
}

// DetectorConfig maps landmark service settings.
type DetectorConfig struct {
	Python        *string  `toml:"python"`
	Script        *string  `toml:"script"`
	MinConfidence *float64 `toml:"min-confidence"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// Config is the resolved runtime configuration.
type Config struct {
	CameraDevice int
	// Video, when set, replaces the camera with a recorded file.
	Video         string
	Mirror        bool
	Python        string
	Script        string
	MinConfidence float64
	LogLevel      string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CameraDevice:  DefaultCameraDevice,
		Mirror:        DefaultMirror,
		MinConfidence: DefaultMinConfidence,
		LogLevel:      DefaultLogLevel,
	}
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	for _, key := range md.Undecoded() {
		log.WithField("key", key.String()).Warn("Unknown config key ignored")
	}
	return cfg, nil
}

// Apply overlays the values set in the file onto c.
func (f FileConfig) Apply(c Config) Config {
	if f.Camera.Device != nil {
		c.CameraDevice = *f.Camera.Device
	}
	if f.Camera.Video != nil {
		c.Video = *f.Camera.Video
	}
	if f.Camera.Mirror != nil {
		c.Mirror = *f.Camera.Mirror
	}
	if f.Detector.Python != nil {
		c.Python = *f.Detector.Python
	}
	if f.Detector.Script != nil {
		c.Script = *f.Detector.Script
	}
	if f.Detector.MinConfidence != nil {
		c.MinConfidence = *f.Detector.MinConfidence
	}
	if f.Log.Level != nil {
		c.LogLevel = *f.Log.Level
	}
	return c
}

// Validate checks ranges and names.
func (c Config) Validate() error {
	if c.CameraDevice < 0 {
		return fmt.Errorf("camera device must be >= 0, got %d", c.CameraDevice)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min-confidence must be between 0 and 1, got %g", c.MinConfidence)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Template returns a commented config file with the default values.
func Template() string {
	return fmt.Sprintf(`# helpsign configuration

[camera]
# device = %d
# video = "/path/to/recording.avi"
# mirror = %t

[detector]
# python = "python3"
# script = "/path/to/landmark_service.py"
# min-confidence = %g

[log]
# level = %q
`, DefaultCameraDevice, DefaultMirror, DefaultMinConfidence, DefaultLogLevel)
}
