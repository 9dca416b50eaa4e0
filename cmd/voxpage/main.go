// Command voxpage is the Telegram document-to-speech relay: it receives
// photos and PDFs in chat, extracts their text, and replies with a synthesized
// voice message.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voxpage/voxpage/internal/audio"
	"github.com/voxpage/voxpage/internal/bot"
	"github.com/voxpage/voxpage/internal/config"
	"github.com/voxpage/voxpage/internal/health"
	"github.com/voxpage/voxpage/internal/lang"
	"github.com/voxpage/voxpage/internal/observe"
	"github.com/voxpage/voxpage/internal/pipeline"
	"github.com/voxpage/voxpage/pkg/provider/ocr/azureread"
	"github.com/voxpage/voxpage/pkg/provider/speech/azuretts"
)

// version is stamped by the build; "dev" for local builds.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "path to the optional YAML configuration file")
	flag.Parse()

	// ── Environment & configuration ───────────────────────────────────────────
	// .env files are honoured for local development; absence is fine.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxpage: %v\n", err)
		return 1
	}
	if err := config.FromEnv(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "voxpage: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("voxpage starting",
		"version", version,
		"log_level", cfg.Server.LogLevel,
		"metrics_addr", cfg.Server.MetricsAddr,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "voxpage",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	metrics := observe.DefaultMetrics()

	var metricsSrv *http.Server
	if cfg.Server.MetricsAddr != "" {
		metricsSrv = observe.Server(cfg.Server.MetricsAddr,
			health.FFmpegProbe(cfg.Audio.FFmpegPath),
			health.TempDirProbe(cfg.Pipeline.TempDir),
		)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server error", "err", err)
			}
		}()
		slog.Info("metrics endpoint serving", "addr", cfg.Server.MetricsAddr)
	}

	// ── Collaborators ─────────────────────────────────────────────────────────
	ocrClient, err := azureread.New(cfg.OCR.Endpoint, cfg.OCR.Key, ocrOptions(cfg)...)
	if err != nil {
		slog.Error("failed to create OCR client", "err", err)
		return 1
	}

	ttsClient, err := azuretts.New(cfg.Speech.Key, cfg.Speech.Region, speechOptions(cfg)...)
	if err != nil {
		slog.Error("failed to create speech client", "err", err)
		return 1
	}

	remuxer := audio.NewRemuxer(audioOptions(cfg)...)

	runner, err := pipeline.New(pipeline.Config{
		OCR:              ocrClient,
		Speech:           ttsClient,
		Remuxer:          remuxer,
		Metrics:          metrics,
		MaxConcurrent:    cfg.Pipeline.MaxConcurrent,
		OCRTimeout:       cfg.OCR.Timeout.Std(),
		SynthesisTimeout: cfg.Speech.Timeout.Std(),
		TempDir:          cfg.Pipeline.TempDir,
	})
	if err != nil {
		slog.Error("failed to create pipeline", "err", err)
		return 1
	}

	catalog := languageCatalog(cfg)

	tgBot, err := bot.New(bot.Config{
		Token:           cfg.Telegram.Token,
		Pipeline:        runner,
		Catalog:         catalog,
		Policy:          bot.UploadPolicy{MaxFileSize: cfg.Upload.MaxFileSize},
		Metrics:         metrics,
		TempDir:         cfg.Pipeline.TempDir,
		LongPollTimeout: cfg.Telegram.LongPollTimeout.Std(),
	})
	if err != nil {
		slog.Error("failed to create Telegram bot", "err", err)
		return 1
	}

	printStartupSummary(cfg, catalog)
	slog.Info("relay ready — press Ctrl+C to shut down")

	if err := tgBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("metrics server shutdown error", "err", err)
		}
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown error", "err", err)
	}
	slog.Info("goodbye")
	return 0
}

// loadConfig loads the YAML file at path, or falls back to "config.yaml" when
// present, or returns all-defaults when no file exists.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return config.Load("config.yaml")
	}
	return config.Default(), nil
}

// ── Collaborator options ──────────────────────────────────────────────────────

func ocrOptions(cfg *config.Config) []azureread.Option {
	var opts []azureread.Option
	if d := cfg.OCR.Timeout.Std(); d > 0 {
		opts = append(opts, azureread.WithTimeout(d))
	}
	if d := cfg.OCR.PollInterval.Std(); d > 0 {
		opts = append(opts, azureread.WithPollInterval(d))
	}
	return opts
}

func speechOptions(cfg *config.Config) []azuretts.Option {
	var opts []azuretts.Option
	if d := cfg.Speech.Timeout.Std(); d > 0 {
		opts = append(opts, azuretts.WithTimeout(d))
	}
	if cfg.Speech.OutputFormat != "" {
		opts = append(opts, azuretts.WithOutputFormat(cfg.Speech.OutputFormat))
	}
	return opts
}

func audioOptions(cfg *config.Config) []audio.Option {
	var opts []audio.Option
	if cfg.Audio.FFmpegPath != "" {
		opts = append(opts, audio.WithFFmpegPath(cfg.Audio.FFmpegPath))
	}
	if cfg.Audio.Bitrate != "" {
		opts = append(opts, audio.WithBitrate(cfg.Audio.Bitrate))
	}
	if d := cfg.Audio.Timeout.Std(); d > 0 {
		opts = append(opts, audio.WithTimeout(d))
	}
	return opts
}

// languageCatalog builds the selectable-language catalogue from config,
// falling back to the built-in set when none is configured.
func languageCatalog(cfg *config.Config) lang.Catalog {
	if len(cfg.Languages) == 0 {
		return lang.Default()
	}
	catalog := make(lang.Catalog, 0, len(cfg.Languages))
	for _, l := range cfg.Languages {
		catalog = append(catalog, lang.Selection{
			Key:    l.Key,
			Label:  l.Label,
			Locale: l.Locale,
			Voice:  l.Voice,
		})
	}
	return catalog
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, catalog lang.Catalog) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║          voxpage — startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printEntry("OCR endpoint", cfg.OCR.Endpoint)
	printEntry("Speech region", cfg.Speech.Region)
	printEntry("Languages", fmt.Sprintf("%d configured", len(catalog)))
	ffmpeg := cfg.Audio.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg (PATH)"
	}
	printEntry("Remux", ffmpeg)
	if cfg.Server.MetricsAddr != "" {
		printEntry("Metrics", cfg.Server.MetricsAddr)
	} else {
		printEntry("Metrics", "(disabled)")
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printEntry(name, value string) {
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-14s  : %-19s ║\n", name, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
