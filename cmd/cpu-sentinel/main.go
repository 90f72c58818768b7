package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"cpu-sentinel/internal/alerts"
	"cpu-sentinel/internal/config"
	"cpu-sentinel/internal/hooks"
	"cpu-sentinel/internal/logging"
	"cpu-sentinel/internal/notify"
	"cpu-sentinel/internal/sampler"
	"cpu-sentinel/internal/storage"
)

const version = "1.0.0"

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "path to config.yaml (optional, env vars override)")
	flag.BoolVar(&showVersion, "version", false, "show version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("cpu-sentinel v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	smp, err := sampler.NewProcSampler()
	if err != nil {
		zap.S().Fatalf("failed to create sampler: %v", err)
	}
	smp.Prime()

	journal, err := logging.NewJournal(cfg.LogDir)
	if err != nil {
		zap.S().Fatalf("failed to open alert journal: %v", err)
	}
	defer journal.Close()

	rotator := storage.NewRotator(cfg.LogDir, cfg.RetentionDays)
	rotator.Start()
	defer rotator.Stop()

	notifier := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.NotifyTimeout())

	var hookRunner alerts.HookRunner
	if cfg.Hooks.Enabled {
		hookRunner = hooks.NewRunner(cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := alerts.NewEngine(cfg, smp, notifier, journal, hookRunner)
	engine.Run(ctx)
}

func newLogger(cfg *config.Config) *zap.Logger {
	level := zap.InfoLevel
	if cfg.LogLevel == "debug" {
		level = zap.DebugLevel
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	consoleWriter := zapcore.Lock(os.Stderr)

	fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "cpu-sentinel.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     cfg.RetentionDays, // days
		Compress:   true,
	})

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, consoleWriter, level),
		zapcore.NewCore(fileEncoder, fileWriter, level),
	)
	return zap.New(core, zap.AddCaller())
}
