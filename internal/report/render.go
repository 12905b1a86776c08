package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/untibullet/pr-status-sync/internal/models"
	"github.com/untibullet/pr-status-sync/internal/review"
)

// TimestampLayout формат строки Updated
const TimestampLayout = "2006-01-02 15:04:05"

// UpdatedPrefix начало строки с временем генерации
const UpdatedPrefix = "Updated: "

// Unassigned выводится, если у PR нет исполнителей
const Unassigned = "Unassigned"

// FieldColumns колонки полей планирования в порядке вывода
var FieldColumns = []string{"Status", "Priority", "Target Date", "Sprint"}

// glyphs значки состояний ревьюера
var glyphs = map[models.ReviewState]string{
	models.ReviewApproved:         "✓",
	models.ReviewChangesRequested: "✗",
	models.ReviewCommented:        "💬",
	models.ReviewPending:          "⏳",
}

// Record данные одной строки отчета
type Record struct {
	PullRequest models.ReviewRequest
	Review      review.Result
	Fields      map[string]models.FieldValue
	Assignees   []models.Assignee
}

// Render строит Markdown отчет. При одинаковых входных данных результат
// отличается только строкой Updated.
func Render(repo string, generatedAt time.Time, records []Record, groups review.GroupTable) string {
	var logins []string
	for _, r := range records {
		for _, rs := range r.Review.Reviewers {
			logins = append(logins, rs.Login)
		}
	}
	columns := groups.Columns(logins)

	header := []string{"PR", "Title", "Author", "State"}
	for _, g := range columns {
		header = append(header, g+" Reviewers")
	}
	header = append(header, "Assignees")
	header = append(header, FieldColumns...)

	var b strings.Builder
	fmt.Fprintf(&b, "# Pull Request Status for %s\n\n", displayRepo(repo))
	fmt.Fprintf(&b, "%s%s\n\n", UpdatedPrefix, generatedAt.Format(TimestampLayout))
	writeRow(&b, header)

	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep)

	for _, r := range records {
		writeRow(&b, row(r, columns, groups))
	}
	return b.String()
}

func row(r Record, columns []string, groups review.GroupTable) []string {
	pr := r.PullRequest
	cells := []string{
		fmt.Sprintf("#%d", pr.Number),
		fmt.Sprintf("[%s](%s)", escapeLinkText(pr.Title), pr.URL),
		orDash(EscapeCell(pr.Author)),
		orDash(string(r.Review.Status)),
	}

	partition := groups.Partition(r.Review.Reviewers)
	for _, g := range columns {
		cells = append(cells, reviewerCell(partition[g]))
	}

	cells = append(cells, assigneeCell(r.Assignees))
	for _, name := range FieldColumns {
		cells = append(cells, EscapeCell(models.Display(r.Fields[name])))
	}
	return cells
}

func reviewerCell(reviewers []review.ReviewerState) string {
	if len(reviewers) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(reviewers))
	for _, rs := range reviewers {
		parts = append(parts, EscapeCell(rs.Login)+glyphs[rs.State])
	}
	return strings.Join(parts, "<br>")
}

func assigneeCell(assignees []models.Assignee) string {
	logins := make([]string, 0, len(assignees))
	for _, a := range assignees {
		if a.Login != "" {
			logins = append(logins, EscapeCell(a.Login))
		}
	}
	if len(logins) == 0 {
		return Unassigned
	}
	return strings.Join(logins, " ")
}

// EscapeCell экранирует символы, ломающие ячейку таблицы
func EscapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

// escapeLinkText дополнительно экранирует скобки текста ссылки
func escapeLinkText(s string) string {
	s = EscapeCell(s)
	s = strings.ReplaceAll(s, "[", "\\[")
	return strings.ReplaceAll(s, "]", "\\]")
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func displayRepo(repo string) string {
	if repo == "" {
		return "current repository"
	}
	return repo
}

// StripTimestamp удаляет строку Updated, чтобы сравнивать отчеты по содержимому
func StripTimestamp(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(l, UpdatedPrefix) {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

// FileName возвращает имя файла отчета для репозитория
func FileName(repo string) string {
	suffix := strings.ReplaceAll(strings.TrimSpace(repo), "/", "_")
	if suffix == "" {
		suffix = "unknown"
	}
	return "PR_Status_" + suffix + ".md"
}
