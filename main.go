package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/upsbridge/internal/server"
	"github.com/tournevent/upsbridge/internal/telemetry"
	"github.com/tournevent/upsbridge/pkg/shipper"
	"github.com/tournevent/upsbridge/pkg/shipper/ups"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "upsbridge",
	Short:   "UPS Bridge - UPS XML shipping API as a JSON service",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var trackCmd = &cobra.Command{
	Use:   "track <tracking-number>...",
	Short: "Track one or more shipments and print the results as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTrack,
}

func init() {
	trackCmd.Flags().Bool("live", false, "use the production UPS endpoint")
	rootCmd.AddCommand(serveCmd, trackCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel, "json")
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracer, tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
		tracer = nil
	} else {
		defer tracerShutdown(context.Background())
	}

	reg := initRegistry()
	carrier := initCarrier(cfg, logger, tracer, telemetry.NewMetrics(reg))

	logger.Info("Starting UPS Bridge",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Bool("ups_test_mode", cfg.UPSTestMode),
		zap.Bool("ups_use_mock", cfg.UPSUseMock),
	)

	srv := server.New(server.Config{Port: cfg.Port}, carrier, logger, reg)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

type trackOutput struct {
	TrackingNumber string                  `json:"tracking_number"`
	Detail         *shipper.TrackingDetail `json:"detail,omitempty"`
	Error          string                  `json:"error,omitempty"`
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracer, tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
		tracer = nil
	} else {
		defer tracerShutdown(context.Background())
	}

	var opts ups.Options
	if live, _ := cmd.Flags().GetBool("live"); live {
		test := false
		opts.Test = &test
	}

	if tracer != nil {
		var span trace.Span
		ctx, span = tracer.Start(ctx, "upsbridge.track", trace.WithAttributes(cfg.Attributes()...))
		span.SetAttributes(attribute.Int("tracking.count", len(args)))
		defer span.End()
	}

	carrier := initCarrier(cfg, logger, tracer, nil)
	details, errs := carrier.TrackMany(ctx, args, opts)

	out := make([]trackOutput, len(args))
	failed := 0
	for i, number := range args {
		out[i] = trackOutput{TrackingNumber: number, Detail: details[i]}
		if errs[i] != nil {
			out[i].Error = errs[i].Error()
			failed++
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tracking requests failed", failed, len(args))
	}
	return nil
}
