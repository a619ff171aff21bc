// Package main provides the CLI entrypoint for helpsign.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/helpsign/internal/app"
	"github.com/ayusman/helpsign/internal/capture"
	"github.com/ayusman/helpsign/internal/config"
	"github.com/ayusman/helpsign/internal/detector"
)

var version = "dev"

var (
	configPath    string
	cameraDevice  int
	videoPath     string
	mirror        bool
	pythonPath    string
	scriptPath    string
	minConfidence float64
	logLevel      string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "helpsign",
		Short:        "Show a help notification when the help hand signal is seen on camera",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runWatchCmd,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "path to the TOML config file")
	flags.IntVar(&cameraDevice, "camera", config.DefaultCameraDevice, "camera device index")
	flags.StringVar(&videoPath, "video", "", "read frames from a video file instead of the camera")
	flags.BoolVar(&mirror, "mirror", config.DefaultMirror, "flip frames horizontally")
	flags.StringVar(&pythonPath, "python", "", "python interpreter for the landmark service")
	flags.StringVar(&scriptPath, "script", "", "path to landmark_service.py")
	flags.Float64Var(&minConfidence, "min-confidence", config.DefaultMinConfidence, "minimum hand detection confidence (0-1)")
	flags.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := fileCfg.Apply(config.Default())

	flags := cmd.Flags()
	if flags.Changed("camera") {
		cfg.CameraDevice = cameraDevice
	}
	if flags.Changed("video") {
		cfg.Video = videoPath
	}
	if flags.Changed("mirror") {
		cfg.Mirror = mirror
	}
	if flags.Changed("python") {
		cfg.Python = pythonPath
	}
	if flags.Changed("script") {
		cfg.Script = scriptPath
	}
	if flags.Changed("min-confidence") {
		cfg.MinConfidence = minConfidence
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func setupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	if lvl, err := log.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	detCfg := detector.DefaultConfig()
	detCfg.MinConfidence = cfg.MinConfidence
	detCfg.Python = cfg.Python
	detCfg.Script = cfg.Script

	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detCfg); err == nil {
		det = mp
		log.Info("Using MediaPipe hand detection")
	} else {
		log.WithError(err).Warn("MediaPipe not available, no hands will be detected")
		det = detector.NewMockDetector()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(
		app.Config{Mirror: cfg.Mirror},
		newSource(cfg),
		det,
		app.NewWindow(app.WindowTitle),
	)
	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newSource(cfg config.Config) capture.Camera {
	if cfg.Video != "" {
		return capture.NewVideoFile(cfg.Video)
	}
	return capture.NewCamera(cfg.CameraDevice)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Write a default config file if none exists and print its path",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "helpsign", version)
		},
	}
}
