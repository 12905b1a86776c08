package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/untibullet/pr-status-sync/internal/models"
)

// Client выполняет запросы к GitHub через gh CLI
type Client struct {
	runner Runner
	logger *zap.Logger
}

// NewClient создает клиента поверх Runner
func NewClient(runner Runner, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{runner: runner, logger: logger}
}

// ListOpenPullRequests возвращает открытые PR репозитория без деталей ревью
func (c *Client) ListOpenPullRequests(ctx context.Context, repo string, limit int) ([]models.ReviewRequest, error) {
	if limit <= 0 {
		limit = 100
	}

	args := append([]string{
		"pr", "list", "--state", "open", "--limit", strconv.Itoa(limit),
		"--json", "id,number,title,author,url,isDraft,createdAt,updatedAt",
	}, repoArgs(repo)...)

	out, err := c.runner.Run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	c.logger.Debug("pull request list fetched", zap.String("repo", repo), zap.Int("bytes", len(out)))

	var raw []pullRequest
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode pull request list: %w", err)
	}

	prs := make([]models.ReviewRequest, 0, len(raw))
	for _, p := range raw {
		prs = append(prs, models.ReviewRequest{
			ID:        p.ID,
			Number:    p.Number,
			Title:     p.Title,
			Author:    p.Author.Login,
			URL:       p.URL,
			IsDraft:   p.IsDraft,
			CreatedAt: parseTime(p.CreatedAt),
			UpdatedAt: parseTime(p.UpdatedAt),
		})
	}
	return prs, nil
}

// LoadReviewDetails дополняет PR историей ревью, запрошенными ревьюерами и исполнителями
func (c *Client) LoadReviewDetails(ctx context.Context, repo string, pr *models.ReviewRequest) error {
	args := append([]string{
		"pr", "view", strconv.Itoa(pr.Number),
		"--json", "reviews,reviewRequests,assignees",
	}, repoArgs(repo)...)

	out, err := c.runner.Run(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to view pull request #%d: %w", pr.Number, err)
	}
	c.logger.Debug("pull request details fetched", zap.Int("pr", pr.Number), zap.Int("bytes", len(out)))

	var detail pullRequestDetail
	if err := json.Unmarshal(out, &detail); err != nil {
		return fmt.Errorf("failed to decode pull request #%d details: %w", pr.Number, err)
	}

	pr.Reviews = make([]models.Review, 0, len(detail.Reviews))
	for _, r := range detail.Reviews {
		login := ""
		if r.Author != nil {
			login = r.Author.Login
		}
		pr.Reviews = append(pr.Reviews, models.Review{
			Reviewer:    login,
			State:       mapReviewState(r.State),
			SubmittedAt: parseTime(r.SubmittedAt),
		})
	}

	pr.PendingReviewers = make([]string, 0, len(detail.ReviewRequests))
	for _, rr := range detail.ReviewRequests {
		if key := requestKey(rr); key != "" {
			pr.PendingReviewers = append(pr.PendingReviewers, key)
		}
	}

	pr.Assignees = make([]models.Assignee, 0, len(detail.Assignees))
	for _, a := range detail.Assignees {
		pr.Assignees = append(pr.Assignees, models.Assignee{ID: a.ID, Login: a.Login})
	}
	return nil
}

// LinkedTrackingItem возвращает первую задачу, которую PR закрывает, или nil
func (c *Client) LinkedTrackingItem(ctx context.Context, prID string) (*models.TrackingItem, error) {
	var data linkedIssueData
	if err := c.graphql(ctx, linkedIssueQuery, &data, "id="+prID); err != nil {
		return nil, fmt.Errorf("failed to resolve linked issue: %w", err)
	}
	if data.Node == nil || len(data.Node.ClosingIssuesReferences.Nodes) == 0 {
		return nil, nil
	}

	issue := data.Node.ClosingIssuesReferences.Nodes[0]
	item := &models.TrackingItem{
		ID:          issue.ID,
		Number:      issue.Number,
		Title:       issue.Title,
		URL:         issue.URL,
		Assignees:   make([]models.Assignee, 0, len(issue.Assignees.Nodes)),
		Memberships: convertMemberships(issue.ProjectItems.Nodes),
	}
	for _, a := range issue.Assignees.Nodes {
		item.Assignees = append(item.Assignees, models.Assignee{ID: a.ID, Login: a.Login})
	}
	return item, nil
}

// ProjectMemberships возвращает членство PR или задачи в проектах со значениями полей
func (c *Client) ProjectMemberships(ctx context.Context, contentID string) ([]models.ProjectMembership, error) {
	var data projectItemsData
	if err := c.graphql(ctx, projectItemsQuery, &data, "id="+contentID); err != nil {
		return nil, fmt.Errorf("failed to fetch project items: %w", err)
	}
	if data.Node == nil {
		return nil, nil
	}
	return convertMemberships(data.Node.ProjectItems.Nodes), nil
}

// ProjectFields возвращает поля проекта поддерживаемых типов без вариантов и итераций
func (c *Client) ProjectFields(ctx context.Context, projectID string) ([]models.FieldDefinition, error) {
	var data projectFieldsData
	if err := c.graphql(ctx, projectFieldsQuery, &data, "id="+projectID); err != nil {
		return nil, fmt.Errorf("failed to fetch project fields: %w", err)
	}
	if data.Node == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNoData)
	}

	fields := make([]models.FieldDefinition, 0, len(data.Node.Fields.Nodes))
	for _, f := range data.Node.Fields.Nodes {
		kind, ok := mapDataType(f.DataType)
		if !ok || f.ID == "" {
			continue
		}
		fields = append(fields, models.FieldDefinition{
			ID:        f.ID,
			Name:      f.Name,
			Kind:      kind,
			ProjectID: projectID,
		})
	}
	return fields, nil
}

// FieldChoices возвращает варианты single_select поля или итерации iteration поля
func (c *Client) FieldChoices(ctx context.Context, fieldID string) ([]models.FieldOption, []models.Iteration, error) {
	var data fieldChoicesData
	if err := c.graphql(ctx, fieldChoicesQuery, &data, "id="+fieldID); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch choices of field %s: %w", fieldID, err)
	}
	if data.Node == nil {
		return nil, nil, fmt.Errorf("field %s: %w", fieldID, ErrNoData)
	}

	var options []models.FieldOption
	for _, o := range data.Node.Options {
		options = append(options, models.FieldOption{ID: o.ID, Name: o.Name})
	}

	var iterations []models.Iteration
	if cfg := data.Node.Configuration; cfg != nil {
		for _, group := range [][]iterationNode{cfg.Iterations, cfg.CompletedIterations} {
			for _, it := range group {
				iterations = append(iterations, models.Iteration{ID: it.ID, Title: it.Title, StartDate: it.StartDate})
			}
		}
	}
	return options, iterations, nil
}

// UpdateFieldValue устанавливает значение одного поля элемента проекта
func (c *Client) UpdateFieldValue(ctx context.Context, projectID, itemID, fieldID string, value models.FieldValue) error {
	var query, valueVar string
	switch v := value.(type) {
	case models.TextValue:
		query, valueVar = updateTextMutation, "text="+v.Text
	case models.DateValue:
		query, valueVar = updateDateMutation, "date="+v.Date
	case models.OptionValue:
		query, valueVar = updateOptionMutation, "option="+v.OptionID
	case models.IterationValue:
		query, valueVar = updateIterationMutation, "iteration="+v.IterationID
	default:
		return fmt.Errorf("unsupported field value %T", value)
	}

	err := c.graphql(ctx, query, nil,
		"project="+projectID, "item="+itemID, "field="+fieldID, valueVar)
	if err != nil {
		return fmt.Errorf("failed to update field %s on item %s: %w", fieldID, itemID, err)
	}
	return nil
}

// AddAssignees добавляет исполнителей к PR или задаче
func (c *Client) AddAssignees(ctx context.Context, assignableID string, assigneeIDs []string) error {
	if len(assigneeIDs) == 0 {
		return nil
	}

	vars := []string{"assignable=" + assignableID}
	for _, id := range assigneeIDs {
		vars = append(vars, "assignees[]="+id)
	}

	if err := c.graphql(ctx, addAssigneesMutation, nil, vars...); err != nil {
		return fmt.Errorf("failed to add assignees to %s: %w", assignableID, err)
	}
	return nil
}

// graphql выполняет gh api graphql и декодирует data в out.
// Частичный ответ декодируется даже при наличии errors, но ошибка все равно возвращается.
func (c *Client) graphql(ctx context.Context, query string, out interface{}, vars ...string) error {
	args := []string{"api", "graphql", "-f", "query=" + query}
	for _, v := range vars {
		args = append(args, "-f", v)
	}

	raw, runErr := c.runner.Run(ctx, args...)
	if IsAuthError(runErr) {
		return runErr
	}
	if runErr != nil && len(bytes.TrimSpace(raw)) == 0 {
		return runErr
	}

	var resp graphQLResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		if runErr != nil {
			return runErr
		}
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}

	var gqlErr error
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		gqlErr = &GraphQLError{Messages: msgs}
	}

	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		switch {
		case gqlErr != nil:
			return gqlErr
		case runErr != nil:
			return runErr
		case out == nil:
			return nil
		default:
			return ErrNoData
		}
	}

	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to decode graphql data: %w", err)
		}
	}

	if gqlErr != nil {
		return gqlErr
	}
	return runErr
}

func convertMemberships(nodes []projectItemNode) []models.ProjectMembership {
	memberships := make([]models.ProjectMembership, 0, len(nodes))
	for _, n := range nodes {
		m := models.ProjectMembership{
			ProjectID:    n.Project.ID,
			ProjectTitle: n.Project.Title,
			ItemID:       n.ID,
		}
		for _, fv := range n.FieldValues.Nodes {
			if v, ok := convertFieldValue(n.Project.ID, fv); ok {
				m.Values = append(m.Values, v)
			}
		}
		memberships = append(memberships, m)
	}
	return memberships
}

func convertFieldValue(projectID string, fv fieldValueNode) (models.ItemFieldValue, bool) {
	if fv.Field == nil {
		return models.ItemFieldValue{}, false
	}

	v := models.ItemFieldValue{
		ProjectID: projectID,
		FieldID:   fv.Field.ID,
		FieldName: fv.Field.Name,
	}
	switch fv.TypeName {
	case "ProjectV2ItemFieldTextValue":
		v.Value = models.TextValue{Text: fv.Text}
	case "ProjectV2ItemFieldDateValue":
		v.Value = models.DateValue{Date: fv.Date}
	case "ProjectV2ItemFieldSingleSelectValue":
		v.Value = models.OptionValue{OptionID: fv.OptionID, Name: fv.Name}
		v.RawID = fv.OptionID
	case "ProjectV2ItemFieldIterationValue":
		v.Value = models.IterationValue{IterationID: fv.IterationID, Title: fv.Title}
		v.RawID = fv.IterationID
	default:
		return models.ItemFieldValue{}, false
	}
	return v, true
}

func mapDataType(dataType string) (models.FieldKind, bool) {
	switch dataType {
	case "TEXT":
		return models.FieldText, true
	case "DATE":
		return models.FieldDate, true
	case "SINGLE_SELECT":
		return models.FieldSingleSelect, true
	case "ITERATION":
		return models.FieldIteration, true
	default:
		return "", false
	}
}

func mapReviewState(state string) models.ReviewState {
	switch strings.ToUpper(state) {
	case "APPROVED":
		return models.ReviewApproved
	case "CHANGES_REQUESTED":
		return models.ReviewChangesRequested
	case "PENDING", "":
		return models.ReviewPending
	default:
		return models.ReviewCommented
	}
}

func requestKey(rr reviewRequest) string {
	switch {
	case rr.Login != "":
		return rr.Login
	case rr.Slug != "":
		return rr.Slug
	default:
		return rr.Name
	}
}

func repoArgs(repo string) []string {
	if repo == "" {
		return nil
	}
	return []string{"--repo", repo}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
