package github

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/untibullet/pr-status-sync/internal/models"
)

// fakeRunner отвечает заранее заданными ответами и запоминает аргументы вызовов
type fakeRunner struct {
	handler func(args []string) ([]byte, error)
	calls   [][]string
}

func (f *fakeRunner) Run(_ context.Context, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	return f.handler(args)
}

func respond(body string, err error) func([]string) ([]byte, error) {
	return func([]string) ([]byte, error) {
		return []byte(body), err
	}
}

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func TestClient_ListOpenPullRequests(t *testing.T) {
	runner := &fakeRunner{handler: respond(`[
		{"id":"PR_1","number":12,"title":"Add cache","author":{"login":"alice"},"url":"https://github.com/o/r/pull/12","isDraft":false,"createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-02T10:00:00Z"},
		{"id":"PR_2","number":13,"title":"WIP","author":{"login":"bob"},"url":"https://github.com/o/r/pull/13","isDraft":true}
	]`, nil)}
	client := NewClient(runner, zap.NewNop())

	prs, err := client.ListOpenPullRequests(context.Background(), "o/r", 0)

	require.NoError(t, err)
	require.Len(t, prs, 2)
	assert.Equal(t, "PR_1", prs[0].ID)
	assert.Equal(t, 12, prs[0].Number)
	assert.Equal(t, "alice", prs[0].Author)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), prs[0].CreatedAt)
	assert.True(t, prs[1].IsDraft)
	assert.True(t, prs[1].CreatedAt.IsZero())

	args := runner.calls[0]
	assert.Equal(t, []string{"pr", "list"}, args[:2])
	assert.True(t, hasArg(args, "100"), "default limit")
	assert.Equal(t, []string{"--repo", "o/r"}, args[len(args)-2:])
}

func TestClient_ListOpenPullRequests_CommandFailure(t *testing.T) {
	runner := &fakeRunner{handler: respond("", &CommandError{Args: []string{"pr", "list"}, ExitCode: 1, Stderr: "boom"})}
	client := NewClient(runner, nil)

	_, err := client.ListOpenPullRequests(context.Background(), "", 10)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 1, cmdErr.ExitCode)
	assert.False(t, hasArg(runner.calls[0], "--repo"))
}

func TestClient_LoadReviewDetails(t *testing.T) {
	runner := &fakeRunner{handler: respond(`{
		"reviews":[
			{"author":{"login":"alice"},"state":"APPROVED","submittedAt":"2024-05-03T09:00:00Z"},
			{"author":{"login":"bob"},"state":"DISMISSED","submittedAt":"2024-05-03T08:00:00Z"},
			{"author":null,"state":"COMMENTED","submittedAt":"2024-05-03T07:00:00Z"},
			{"author":{"login":"carol"},"state":"CHANGES_REQUESTED","submittedAt":"2024-05-03T06:00:00Z"}
		],
		"reviewRequests":[{"__typename":"User","login":"dave"},{"__typename":"Team","name":"Core Team","slug":"core-team"}],
		"assignees":[{"id":"U_1","login":"alice"}]
	}`, nil)}
	client := NewClient(runner, zap.NewNop())
	pr := &models.ReviewRequest{Number: 7}

	err := client.LoadReviewDetails(context.Background(), "o/r", pr)

	require.NoError(t, err)
	require.Len(t, pr.Reviews, 4)
	assert.Equal(t, models.ReviewApproved, pr.Reviews[0].State)
	assert.Equal(t, models.ReviewCommented, pr.Reviews[1].State)
	assert.Equal(t, "", pr.Reviews[2].Reviewer)
	assert.Equal(t, models.ReviewChangesRequested, pr.Reviews[3].State)
	assert.Equal(t, []string{"dave", "core-team"}, pr.PendingReviewers)
	assert.Equal(t, []models.Assignee{{ID: "U_1", Login: "alice"}}, pr.Assignees)
	assert.Equal(t, []string{"pr", "view", "7"}, runner.calls[0][:3])
}

const linkedIssueResponse = `{"data":{"node":{"closingIssuesReferences":{"nodes":[
	{"id":"I_1","number":3,"title":"Epic","url":"https://github.com/o/r/issues/3",
	 "assignees":{"nodes":[{"id":"U_9","login":"erin"}]},
	 "projectItems":{"nodes":[{"id":"PVTI_1","project":{"id":"P1","title":"Roadmap"},
	   "fieldValues":{"nodes":[
	     {"__typename":"ProjectV2ItemFieldSingleSelectValue","name":"High","optionId":"o1","field":{"id":"F_PRI","name":"Priority"}},
	     {"__typename":"ProjectV2ItemFieldIterationValue","title":"Sprint 4","iterationId":"it4","field":{"id":"F_SPR","name":"Sprint"}},
	     {"__typename":"ProjectV2ItemFieldDateValue","date":"2024-06-01","field":{"id":"F_DATE","name":"Target Date"}},
	     {"__typename":"ProjectV2ItemFieldTextValue","text":"hello","field":{"id":"F_TXT","name":"Notes"}},
	     {"__typename":"ProjectV2ItemFieldRepositoryValue","field":{"id":"F_REPO","name":"Repository"}},
	     {"__typename":"ProjectV2ItemFieldTextValue","text":"orphan"}
	   ]}}]}},
	{"id":"I_2","number":4,"title":"Second","url":"u","assignees":{"nodes":[]},"projectItems":{"nodes":[]}}
]}}}}`

func TestClient_LinkedTrackingItem(t *testing.T) {
	runner := &fakeRunner{handler: respond(linkedIssueResponse, nil)}
	client := NewClient(runner, zap.NewNop())

	item, err := client.LinkedTrackingItem(context.Background(), "PR_1")

	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "I_1", item.ID, "first linked issue wins")
	assert.Equal(t, []models.Assignee{{ID: "U_9", Login: "erin"}}, item.Assignees)
	require.Len(t, item.Memberships, 1)

	m := item.Memberships[0]
	assert.Equal(t, "P1", m.ProjectID)
	assert.Equal(t, "PVTI_1", m.ItemID)
	require.Len(t, m.Values, 4)
	assert.Equal(t, models.ItemFieldValue{
		ProjectID: "P1", FieldID: "F_PRI", FieldName: "Priority",
		Value: models.OptionValue{OptionID: "o1", Name: "High"}, RawID: "o1",
	}, m.Values[0])
	assert.Equal(t, models.IterationValue{IterationID: "it4", Title: "Sprint 4"}, m.Values[1].Value)
	assert.Equal(t, "it4", m.Values[1].RawID)
	assert.Equal(t, models.DateValue{Date: "2024-06-01"}, m.Values[2].Value)
	assert.Equal(t, models.TextValue{Text: "hello"}, m.Values[3].Value)

	args := runner.calls[0]
	assert.Equal(t, []string{"api", "graphql"}, args[:2])
	assert.True(t, hasArg(args, "id=PR_1"))
}

func TestClient_LinkedTrackingItem_None(t *testing.T) {
	runner := &fakeRunner{handler: respond(`{"data":{"node":{"closingIssuesReferences":{"nodes":[]}}}}`, nil)}
	client := NewClient(runner, zap.NewNop())

	item, err := client.LinkedTrackingItem(context.Background(), "PR_1")

	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestClient_ProjectFields(t *testing.T) {
	runner := &fakeRunner{handler: respond(`{"data":{"node":{"fields":{"nodes":[
		{"id":"F_TITLE","name":"Title","dataType":"TITLE"},
		{"id":"F_STATUS","name":"Status","dataType":"SINGLE_SELECT"},
		{"id":"F_SPR","name":"Sprint","dataType":"ITERATION"},
		{"id":"F_DATE","name":"Target Date","dataType":"DATE"},
		{"id":"F_TXT","name":"Notes","dataType":"TEXT"},
		{"id":"F_NUM","name":"Estimate","dataType":"NUMBER"}
	]}}}}`, nil)}
	client := NewClient(runner, zap.NewNop())

	fields, err := client.ProjectFields(context.Background(), "P1")

	require.NoError(t, err)
	require.Len(t, fields, 4)
	assert.Equal(t, models.FieldDefinition{ID: "F_STATUS", Name: "Status", Kind: models.FieldSingleSelect, ProjectID: "P1"}, fields[0])
	assert.Equal(t, models.FieldIteration, fields[1].Kind)
	assert.Equal(t, models.FieldDate, fields[2].Kind)
	assert.Equal(t, models.FieldText, fields[3].Kind)
}

func TestClient_ProjectFields_MissingNode(t *testing.T) {
	runner := &fakeRunner{handler: respond(`{"data":{"node":null}}`, nil)}
	client := NewClient(runner, zap.NewNop())

	_, err := client.ProjectFields(context.Background(), "P404")

	assert.ErrorIs(t, err, ErrNoData)
}

func TestClient_FieldChoices(t *testing.T) {
	t.Run("single select", func(t *testing.T) {
		runner := &fakeRunner{handler: respond(`{"data":{"node":{"options":[{"id":"o1","name":"High"},{"id":"o2","name":"Low"}]}}}`, nil)}
		client := NewClient(runner, zap.NewNop())

		options, iterations, err := client.FieldChoices(context.Background(), "F_PRI")

		require.NoError(t, err)
		assert.Equal(t, []models.FieldOption{{ID: "o1", Name: "High"}, {ID: "o2", Name: "Low"}}, options)
		assert.Empty(t, iterations)
	})

	t.Run("iteration includes completed", func(t *testing.T) {
		runner := &fakeRunner{handler: respond(`{"data":{"node":{"configuration":{
			"iterations":[{"id":"it5","title":"Sprint 5","startDate":"2024-06-01"}],
			"completedIterations":[{"id":"it4","title":"Sprint 4","startDate":"2024-05-15"}]}}}}`, nil)}
		client := NewClient(runner, zap.NewNop())

		options, iterations, err := client.FieldChoices(context.Background(), "F_SPR")

		require.NoError(t, err)
		assert.Empty(t, options)
		assert.Equal(t, []models.Iteration{
			{ID: "it5", Title: "Sprint 5", StartDate: "2024-06-01"},
			{ID: "it4", Title: "Sprint 4", StartDate: "2024-05-15"},
		}, iterations)
	})

	t.Run("graphql errors", func(t *testing.T) {
		runner := &fakeRunner{handler: respond(`{"data":{"node":null},"errors":[{"message":"Something went wrong"}]}`,
			&CommandError{Args: []string{"api", "graphql"}, ExitCode: 1})}
		client := NewClient(runner, zap.NewNop())

		_, _, err := client.FieldChoices(context.Background(), "F_SPR")

		var gqlErr *GraphQLError
		require.ErrorAs(t, err, &gqlErr)
		assert.Equal(t, []string{"Something went wrong"}, gqlErr.Messages)
	})
}

func TestClient_UpdateFieldValue(t *testing.T) {
	tests := []struct {
		name      string
		value     models.FieldValue
		wantVar   string
		wantQuery string
	}{
		{name: "text", value: models.TextValue{Text: "note"}, wantVar: "text=note", wantQuery: "value: {text: $text}"},
		{name: "date", value: models.DateValue{Date: "2024-06-01"}, wantVar: "date=2024-06-01", wantQuery: "value: {date: $date}"},
		{name: "option", value: models.OptionValue{OptionID: "o1", Name: "High"}, wantVar: "option=o1", wantQuery: "singleSelectOptionId"},
		{name: "iteration", value: models.IterationValue{IterationID: "it4"}, wantVar: "iteration=it4", wantQuery: "iterationId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{handler: respond(`{"data":{"updateProjectV2ItemFieldValue":{"projectV2Item":{"id":"PVTI_1"}}}}`, nil)}
			client := NewClient(runner, zap.NewNop())

			err := client.UpdateFieldValue(context.Background(), "P1", "PVTI_1", "F_1", tt.value)

			require.NoError(t, err)
			args := runner.calls[0]
			assert.True(t, hasArg(args, tt.wantVar))
			assert.True(t, hasArg(args, "project=P1"))
			assert.True(t, hasArg(args, "item=PVTI_1"))
			assert.True(t, hasArg(args, "field=F_1"))
			assert.True(t, strings.Contains(args[3], tt.wantQuery))
		})
	}

	t.Run("nil value", func(t *testing.T) {
		runner := &fakeRunner{handler: respond(`{}`, nil)}
		client := NewClient(runner, zap.NewNop())

		err := client.UpdateFieldValue(context.Background(), "P1", "PVTI_1", "F_1", nil)

		assert.Error(t, err)
		assert.Empty(t, runner.calls)
	})
}

func TestClient_AddAssignees(t *testing.T) {
	runner := &fakeRunner{handler: respond(`{"data":{"addAssigneesToAssignable":{"clientMutationId":null}}}`, nil)}
	client := NewClient(runner, zap.NewNop())

	require.NoError(t, client.AddAssignees(context.Background(), "PR_1", nil))
	assert.Empty(t, runner.calls)

	require.NoError(t, client.AddAssignees(context.Background(), "PR_1", []string{"U_1", "U_2"}))
	args := runner.calls[0]
	assert.True(t, hasArg(args, "assignable=PR_1"))
	assert.True(t, hasArg(args, "assignees[]=U_1"))
	assert.True(t, hasArg(args, "assignees[]=U_2"))
}

func TestClient_AuthErrorPassesThrough(t *testing.T) {
	runner := &fakeRunner{handler: respond("", &AuthError{Message: "To get started with GitHub CLI, please run:  gh auth login"})}
	client := NewClient(runner, zap.NewNop())

	_, err := client.ProjectMemberships(context.Background(), "PR_1")

	assert.True(t, IsAuthError(err))
}

func TestClient_GraphQLWithoutData(t *testing.T) {
	runner := &fakeRunner{handler: respond(`{"data":null}`, nil)}
	client := NewClient(runner, zap.NewNop())

	_, err := client.LinkedTrackingItem(context.Background(), "PR_1")

	assert.True(t, errors.Is(err, ErrNoData))
}

func TestNewCLIRunner_ToolNotFound(t *testing.T) {
	_, err := NewCLIRunner("gh-binary-that-does-not-exist-anywhere", "")

	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, isAuthFailure("HTTP 401: Bad credentials (https://api.github.com/graphql)"))
	assert.False(t, isAuthFailure("HTTP 502: Bad gateway"))
}
