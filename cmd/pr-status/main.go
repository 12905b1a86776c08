package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/untibullet/pr-status-sync/internal/config"
	"github.com/untibullet/pr-status-sync/internal/credential"
	"github.com/untibullet/pr-status-sync/internal/github"
	"github.com/untibullet/pr-status-sync/internal/project"
	"github.com/untibullet/pr-status-sync/internal/repository"
	"github.com/untibullet/pr-status-sync/internal/service"
	"github.com/untibullet/pr-status-sync/internal/sync"
)

var (
	flagRepos     []string
	flagOutputDir string
	flagDryRun    bool
	flagNoSync    bool
)

var rootCmd = &cobra.Command{
	Use:           "pr-status",
	Short:         "Audit open pull requests and sync planning fields from linked issues",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&flagRepos, "repo", nil, "Repository owner/name to audit (repeat flag)")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "", "Directory for generated reports")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Log planned field updates without sending them")
	rootCmd.PersistentFlags().BoolVar(&flagNoSync, "no-sync", false, "Only render reports, never update projects")

	rootCmd.AddCommand(runCmd, serveCmd, authCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app собранные зависимости для run и serve
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	repos   []string
	reports *repository.Repository
	auditor *service.Auditor
}

// bootstrap загружает конфигурацию, применяет флаги и собирает зависимости.
// Отсутствие gh завершает процесс до какого-либо вывода.
func bootstrap(cmd *cobra.Command) (*app, error) {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)

	// Инициализация логгера
	logger, err := initLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	token := cfg.GitHub.Token
	source := credential.SourceConfig
	if token == "" {
		store, err := credential.Open()
		if err != nil {
			logger.Debug("keyring unavailable", zap.Error(err))
		}
		token, source = credential.ResolveToken("", store)
	}

	runner, err := github.NewCLIRunner(cfg.GitHub.GHPath, token)
	if err != nil {
		if errors.Is(err, github.ErrToolNotFound) {
			logger.Fatal("required tool is missing", zap.Error(err))
		}
		return nil, err
	}
	logger.Info("gh CLI located", zap.String("path", runner.Path()), zap.String("token_source", source))

	client := github.NewClient(runner, logger)
	groups := cfg.ReviewerGroups(logger)
	reports := repository.New(cfg.Report.OutputDir)

	// каталоги проектов кэшируются только в пределах одного репозитория
	newSyncer := func() service.Syncer {
		cache := project.NewCache(project.NewResolver(client, logger))
		return sync.NewEngine(client, cache, logger, cfg.Sync.DryRun)
	}

	auditor := service.NewAuditor(client, newSyncer, reports, groups, logger, service.Options{
		PRLimit:     cfg.GitHub.PRLimit,
		SyncEnabled: cfg.Sync.Enabled,
	})

	repos := cfg.Repositories()
	if len(flagRepos) > 0 {
		repos = flagRepos
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		repos:   repos,
		reports: reports,
		auditor: auditor,
	}, nil
}

// applyFlags переопределяет конфигурацию флагами командной строки
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.Report.OutputDir = flagOutputDir
	}
	if flags.Changed("dry-run") {
		cfg.Sync.DryRun = flagDryRun
	}
	if flagNoSync {
		cfg.Sync.Enabled = false
	}
}

// initLogger инициализирует zap логгер на основе конфигурации
func initLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapConfig zap.Config
	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}
