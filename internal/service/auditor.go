package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/untibullet/pr-status-sync/internal/models"
	"github.com/untibullet/pr-status-sync/internal/report"
	"github.com/untibullet/pr-status-sync/internal/review"
	"github.com/untibullet/pr-status-sync/internal/sync"
)

// PullRequestSource выдает открытые PR и их детали
type PullRequestSource interface {
	ListOpenPullRequests(ctx context.Context, repo string, limit int) ([]models.ReviewRequest, error)
	LoadReviewDetails(ctx context.Context, repo string, pr *models.ReviewRequest) error
}

// Syncer синхронизирует поля PR или только читает их
type Syncer interface {
	Sync(ctx context.Context, pr *models.ReviewRequest) (sync.Result, error)
	Collect(ctx context.Context, pr *models.ReviewRequest) (sync.Result, error)
}

// SyncerFactory создает Syncer со свежим кэшем каталогов на один репозиторий
type SyncerFactory func() Syncer

// ReportStore сохраняет отчеты
type ReportStore interface {
	Save(ctx context.Context, name, content string) (bool, error)
}

// Options параметры прогона
type Options struct {
	PRLimit     int
	SyncEnabled bool
}

// Auditor обходит репозитории по очереди и строит отчеты
type Auditor struct {
	source    PullRequestSource
	newSyncer SyncerFactory
	store     ReportStore
	groups    review.GroupTable
	logger    *zap.Logger
	opts      Options
	now       func() time.Time
}

// NewAuditor создает Auditor. newSyncer может быть nil: тогда поля проектов не читаются.
func NewAuditor(source PullRequestSource, newSyncer SyncerFactory, store ReportStore, groups review.GroupTable,
	logger *zap.Logger, opts Options) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{
		source:    source,
		newSyncer: newSyncer,
		store:     store,
		groups:    groups,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// Run обрабатывает репозитории в заданном порядке. Ошибка одного репозитория
// не останавливает остальные; все ошибки объединяются.
func (a *Auditor) Run(ctx context.Context, repos []string) ([]models.RunSummary, error) {
	runID := uuid.NewString()
	log := a.logger.With(zap.String("run_id", runID))
	log.Info("audit started", zap.Strings("repos", repos), zap.Bool("sync", a.opts.SyncEnabled))

	summaries := make([]models.RunSummary, 0, len(repos))
	var errs []error

	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		summary, err := a.auditRepo(ctx, log.With(zap.String("repo", repo)), repo)
		summary.RunID = runID
		if err != nil {
			summary.Error = err.Error()
			errs = append(errs, fmt.Errorf("repository %q: %w", repo, err))
			log.Error("repository audit failed", zap.String("repo", repo), zap.Error(err))
		}
		summaries = append(summaries, summary)
	}

	log.Info("audit finished", zap.Int("repos", len(summaries)), zap.Int("failed", len(errs)))
	return summaries, errors.Join(errs...)
}

func (a *Auditor) auditRepo(ctx context.Context, log *zap.Logger, repo string) (models.RunSummary, error) {
	summary := models.RunSummary{Repository: repo, ReportName: report.FileName(repo)}

	prs, err := a.source.ListOpenPullRequests(ctx, repo, a.opts.PRLimit)
	if err != nil {
		return summary, err
	}
	log.Info("open pull requests listed", zap.Int("count", len(prs)))

	var syncer Syncer
	if a.newSyncer != nil {
		syncer = a.newSyncer()
	}

	records := make([]report.Record, 0, len(prs))
	for i := range prs {
		pr := &prs[i]
		records = append(records, a.processPullRequest(ctx, log.With(zap.Int("pr", pr.Number)), repo, pr, syncer, &summary))
	}
	summary.PullRequests = len(records)

	content := report.Render(repo, a.now(), records, a.groups)
	changed, err := a.store.Save(ctx, summary.ReportName, content)
	if err != nil {
		return summary, fmt.Errorf("failed to save report: %w", err)
	}
	summary.Changed = changed

	log.Info("report written",
		zap.String("report", summary.ReportName),
		zap.Bool("changed", changed),
		zap.Int("rows", len(records)),
		zap.Int("applied", summary.Applied),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// processPullRequest собирает строку отчета. Без деталей ревью строка строится
// из данных списка, а агрегация и синхронизация пропускаются.
func (a *Auditor) processPullRequest(ctx context.Context, log *zap.Logger, repo string, pr *models.ReviewRequest,
	syncer Syncer, summary *models.RunSummary) report.Record {
	if err := a.source.LoadReviewDetails(ctx, repo, pr); err != nil {
		log.Warn("review details unavailable, rendering partial row", zap.Error(err))
		summary.Partial++
		return report.Record{PullRequest: *pr, Assignees: pr.Assignees}
	}

	record := report.Record{
		PullRequest: *pr,
		Review:      review.Aggregate(pr.Reviews, pr.PendingReviewers, pr.IsDraft),
		Assignees:   pr.Assignees,
	}

	if syncer == nil {
		return record
	}

	var (
		result sync.Result
		err    error
	)
	if a.opts.SyncEnabled {
		result, err = syncer.Sync(ctx, pr)
	} else {
		result, err = syncer.Collect(ctx, pr)
	}
	if err != nil {
		log.Error("project sync failed", zap.Error(err))
		summary.Failed++
	}

	record.Fields = result.Fields
	if result.Assignees != nil {
		record.Assignees = result.Assignees
	}
	summary.Applied += result.Count(sync.OutcomeApplied)
	summary.Failed += result.Count(sync.OutcomeFailed)
	return record
}
