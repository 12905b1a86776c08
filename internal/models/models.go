// models/models.go
package models

import "time"

// ReviewState состояние отдельного ревью
type ReviewState string

// Константы состояний ревью
const (
	ReviewApproved         ReviewState = "approved"
	ReviewChangesRequested ReviewState = "changes_requested"
	ReviewCommented        ReviewState = "commented"
	ReviewPending          ReviewState = "pending"
)

// Review представляет одно отправленное ревью
type Review struct {
	Reviewer    string      `json:"reviewer"`
	State       ReviewState `json:"state"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

// Assignee представляет назначенного пользователя
type Assignee struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}

// ReviewRequest представляет открытый PR со всей историей ревью
type ReviewRequest struct {
	ID               string     `json:"id"`
	Number           int        `json:"number"`
	Title            string     `json:"title"`
	Author           string     `json:"author"`
	URL              string     `json:"url"`
	IsDraft          bool       `json:"is_draft"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Reviews          []Review   `json:"reviews"`
	PendingReviewers []string   `json:"pending_reviewers"`
	Assignees        []Assignee `json:"assignees"`
}

// AssigneeLogins возвращает логины назначенных пользователей
func (r *ReviewRequest) AssigneeLogins() []string {
	logins := make([]string, 0, len(r.Assignees))
	for _, a := range r.Assignees {
		logins = append(logins, a.Login)
	}
	return logins
}

// TrackingItem представляет задачу, связанную с PR через development-связь
type TrackingItem struct {
	ID          string              `json:"id"`
	Number      int                 `json:"number"`
	Title       string              `json:"title"`
	URL         string              `json:"url"`
	Assignees   []Assignee          `json:"assignees"`
	Memberships []ProjectMembership `json:"memberships"`
}

// ProjectMembership связывает элемент (PR или задачу) с проектом
type ProjectMembership struct {
	ProjectID    string           `json:"project_id"`
	ProjectTitle string           `json:"project_title"`
	ItemID       string           `json:"item_id"`
	Values       []ItemFieldValue `json:"values"`
}

// ItemFieldValue значение поля элемента в том виде, в котором его вернул сервис.
// RawID хранит идентификатор опции или итерации даже если его не удалось сопоставить с каталогом.
type ItemFieldValue struct {
	ProjectID string     `json:"project_id"`
	FieldID   string     `json:"field_id"`
	FieldName string     `json:"field_name"`
	Value     FieldValue `json:"-"`
	RawID     string     `json:"raw_id,omitempty"`
}

// MembershipFor возвращает членство в проекте по его идентификатору
func MembershipFor(memberships []ProjectMembership, projectID string) (ProjectMembership, bool) {
	for _, m := range memberships {
		if m.ProjectID == projectID {
			return m, true
		}
	}
	return ProjectMembership{}, false
}
