package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	imageaugmentor "github.com/txk/image-augmentor"
	"github.com/txk/image-augmentor/internal/config"
	"github.com/txk/image-augmentor/internal/logging"
	"github.com/txk/image-augmentor/internal/metrics"
	"github.com/txk/image-augmentor/internal/telemetry"
	"github.com/txk/image-augmentor/pkg/batch"
	"github.com/txk/image-augmentor/pkg/processing"
	"github.com/txk/image-augmentor/pkg/types"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "image-augmentor",
		Short:         "Batch-enhance every image in a folder",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd(), newConfigCmd(), newVersionCmd())
	return root
}

// runFlags mirrors the adjustable controls; only flags the user set override
// the loaded configuration.
type runFlags struct {
	configPath    string
	settings      types.EnhancementSettings
	failurePolicy string
	jpegQuality   int
	logLevel      string
	logFormat     string
	traceExporter string
	metricsFile   string
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Enhance all png/jpg/jpeg files of the source folder into the destination folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, &f, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(cmd.Context(), cmd, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "config file (yaml, json or toml)")
	fl.StringVarP(&f.settings.SourceDir, "source", "i", "", "folder to read images from")
	fl.StringVarP(&f.settings.DestDir, "dest", "o", "", "folder to write enhanced images to")
	fl.IntVar(&f.settings.ScalePercent, "scale", 0, "resize percentage (0..100), 0 disables resizing")
	fl.IntVar(&f.settings.BrightnessOffset, "brightness", 0, "brightness offset (-100..100)")
	fl.IntVar(&f.settings.ContrastOffset, "contrast", 0, "contrast offset (-100..100)")
	fl.IntVar(&f.settings.SharpenOffset, "sharpen", 0, "sharpness offset (-100..100)")
	fl.IntVar(&f.settings.SaturationOffset, "saturation", 0, "saturation offset (-100..100)")
	fl.IntVar(&f.settings.BlurRadius, "blur", 0, "gaussian blur radius (0..5)")
	fl.BoolVar(&f.settings.FlipHorizontal, "flip", false, "mirror images left-right")
	fl.BoolVar(&f.settings.RotateLeft, "rotate-left", false, "rotate 90 degrees counter-clockwise")
	fl.BoolVar(&f.settings.RotateRight, "rotate-right", false, "rotate 90 degrees clockwise")
	fl.StringVar(&f.failurePolicy, "on-error", "", "per-file failure policy: halt or continue")
	fl.IntVar(&f.jpegQuality, "jpeg-quality", 0, "JPEG output quality (1..100)")
	fl.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fl.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
	fl.StringVar(&f.traceExporter, "trace", "", "trace exporter: none, stdout or otlp")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	return cmd
}

// applyFlags copies every explicitly set flag over the loaded configuration
func applyFlags(cmd *cobra.Command, f *runFlags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	s := &cfg.Settings

	if changed("source") {
		s.SourceDir = f.settings.SourceDir
	}
	if changed("dest") {
		s.DestDir = f.settings.DestDir
	}
	if changed("scale") {
		s.ScalePercent = f.settings.ScalePercent
	}
	if changed("brightness") {
		s.BrightnessOffset = f.settings.BrightnessOffset
	}
	if changed("contrast") {
		s.ContrastOffset = f.settings.ContrastOffset
	}
	if changed("sharpen") {
		s.SharpenOffset = f.settings.SharpenOffset
	}
	if changed("saturation") {
		s.SaturationOffset = f.settings.SaturationOffset
	}
	if changed("blur") {
		s.BlurRadius = f.settings.BlurRadius
	}
	if changed("flip") {
		s.FlipHorizontal = f.settings.FlipHorizontal
	}
	if changed("rotate-left") {
		s.RotateLeft = f.settings.RotateLeft
	}
	if changed("rotate-right") {
		s.RotateRight = f.settings.RotateRight
	}
	if changed("on-error") {
		cfg.Batch.FailurePolicy = types.FailurePolicy(f.failurePolicy)
	}
	if changed("jpeg-quality") {
		cfg.Output.JPEGQuality = f.jpegQuality
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if changed("trace") {
		cfg.Telemetry.TraceExporter = f.traceExporter
	}
	if changed("metrics-file") {
		cfg.Telemetry.MetricsFile = f.metricsFile
	}
}

func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	// Settings are captured once here; nothing below reads live controls.
	settings := cfg.Settings
	logger.WithFields(logrus.Fields{
		"version": imageaugmentor.Version,
		"source":  settings.SourceDir,
		"dest":    settings.DestDir,
		"policy":  cfg.Batch.FailurePolicy,
	}).Info("starting batch enhancement")
	for _, label := range settings.Labels() {
		logger.Debug(label)
	}

	shutdown, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		ServiceName:  cfg.Telemetry.ServiceName,
		Exporter:     cfg.Telemetry.TraceExporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("tracing shutdown failed")
		}
	}()

	recorder := metrics.New()
	processor := processing.NewProcessorWithConfig(processing.Config{
		JPEGQuality:    cfg.Output.JPEGQuality,
		PNGCompression: cfg.Output.PNGCompressionLevel(),
	})
	enhancer := batch.New(processor, batch.Options{
		FailurePolicy: cfg.Batch.FailurePolicy,
		Logger:        logger,
		Observer:      recorder,
	})

	report, runErr := enhancer.Run(ctx, settings)

	if path := cfg.Telemetry.MetricsFile; path != "" {
		if err := recorder.WriteTextfile(path); err != nil {
			logger.WithError(err).Warn("metrics export failed")
		}
	}

	switch {
	case runErr != nil:
		return runErr
	case report.Aborted:
		return errors.New(report.AbortReason)
	case report.Failed() > 0:
		return fmt.Errorf("%d of %d files failed", report.Failed(), report.Processed())
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file %s already exists", path)
			}
			if err := config.Default().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "env",
		Short: "List the supported environment variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			desc, err := config.Describe()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), desc)
			return nil
		},
	})

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), imageaugmentor.GetVersion())
		},
	}
}
