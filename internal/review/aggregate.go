package review

import (
	"sort"

	"github.com/untibullet/pr-status-sync/internal/models"
)

// Status сводный статус PR
type Status string

// Константы сводного статуса
const (
	StatusDraft            Status = "draft"
	StatusApproved         Status = "approved"
	StatusChangesRequested Status = "changes_requested"
	StatusInReview         Status = "in_review"
	StatusUnreviewed       Status = "unreviewed"
)

// ReviewerState итоговое состояние ревьюера
type ReviewerState struct {
	Login string
	State models.ReviewState
}

// Result результат агрегации истории ревью
type Result struct {
	Status    Status
	Reviewers []ReviewerState
}

// Aggregate сворачивает историю ревью и множество повторно запрошенных ревьюеров
// в сводный статус и состояние каждого ревьюера.
//
// Для каждого ревьюера берется последнее по времени ревью; ревьюеры из reRequested
// всегда считаются pending. Черновик всегда имеет статус draft, но состояния
// ревьюеров все равно вычисляются для отчета.
func Aggregate(reviews []models.Review, reRequested []string, isDraft bool) Result {
	sorted := make([]models.Review, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.Before(sorted[j].SubmittedAt)
	})

	requested := make(map[string]bool, len(reRequested))
	states := make(map[string]models.ReviewState)
	var order []string

	for _, login := range reRequested {
		if login == "" || requested[login] {
			continue
		}
		requested[login] = true
		states[login] = models.ReviewPending
		order = append(order, login)
	}

	for _, r := range sorted {
		if r.Reviewer == "" || requested[r.Reviewer] {
			continue
		}
		if _, seen := states[r.Reviewer]; !seen {
			order = append(order, r.Reviewer)
		}
		states[r.Reviewer] = r.State
	}

	result := Result{Reviewers: make([]ReviewerState, 0, len(order))}
	for _, login := range order {
		result.Reviewers = append(result.Reviewers, ReviewerState{Login: login, State: states[login]})
	}

	result.Status = aggregateStatus(result.Reviewers, len(reviews) > 0, isDraft)
	return result
}

func aggregateStatus(reviewers []ReviewerState, hasHistory, isDraft bool) Status {
	if isDraft {
		return StatusDraft
	}

	var changes bool
	for _, r := range reviewers {
		switch r.State {
		case models.ReviewApproved:
			return StatusApproved
		case models.ReviewChangesRequested:
			changes = true
		}
	}

	switch {
	case changes:
		return StatusChangesRequested
	case hasHistory:
		return StatusInReview
	default:
		return StatusUnreviewed
	}
}
