package project

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/untibullet/pr-status-sync/internal/models"
)

type MockFieldSource struct {
	mock.Mock
}

func (m *MockFieldSource) ProjectFields(ctx context.Context, projectID string) ([]models.FieldDefinition, error) {
	args := m.Called(ctx, projectID)
	fields, _ := args.Get(0).([]models.FieldDefinition)
	return fields, args.Error(1)
}

func (m *MockFieldSource) FieldChoices(ctx context.Context, fieldID string) ([]models.FieldOption, []models.Iteration, error) {
	args := m.Called(ctx, fieldID)
	options, _ := args.Get(0).([]models.FieldOption)
	iterations, _ := args.Get(1).([]models.Iteration)
	return options, iterations, args.Error(2)
}

func baseFields() []models.FieldDefinition {
	return []models.FieldDefinition{
		{ID: "F_STATUS", Name: "Status", Kind: models.FieldSingleSelect},
		{ID: "F_SPR", Name: "Sprint", Kind: models.FieldIteration},
		{ID: "F_DATE", Name: "Target Date", Kind: models.FieldDate},
	}
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	source := new(MockFieldSource)
	source.On("ProjectFields", ctx, "P1").Return(baseFields(), nil)
	source.On("FieldChoices", ctx, "F_STATUS").
		Return([]models.FieldOption{{ID: "s1", Name: "Todo"}, {ID: "s2", Name: "Done"}}, nil, nil)
	source.On("FieldChoices", ctx, "F_SPR").
		Return(nil, []models.Iteration{{ID: "it1", Title: "Sprint 1"}}, nil)

	catalog, err := NewResolver(source, zap.NewNop()).Resolve(ctx, "P1")

	require.NoError(t, err)
	assert.Equal(t, "P1", catalog.ProjectID)
	require.Len(t, catalog.Fields, 3)

	status, ok := catalog.Field("status")
	require.True(t, ok)
	assert.Equal(t, "P1", status.ProjectID)
	assert.Len(t, status.Options, 2)

	sprint, ok := catalog.Field("Sprint")
	require.True(t, ok)
	assert.Equal(t, []models.Iteration{{ID: "it1", Title: "Sprint 1"}}, sprint.Iterations)

	source.AssertExpectations(t)
	source.AssertNotCalled(t, "FieldChoices", ctx, "F_DATE")
}

func TestResolver_DegradesOnChoiceFailure(t *testing.T) {
	ctx := context.Background()
	source := new(MockFieldSource)
	source.On("ProjectFields", ctx, "P1").Return(baseFields(), nil)
	source.On("FieldChoices", ctx, "F_STATUS").Return(nil, nil, errors.New("unexpected shape"))
	source.On("FieldChoices", ctx, "F_SPR").Return(nil, nil, errors.New("timeout"))

	catalog, err := NewResolver(source, nil).Resolve(ctx, "P1")

	require.NoError(t, err)
	require.Len(t, catalog.Fields, 3, "fields are kept with empty choices")

	status, ok := catalog.Field("Status")
	require.True(t, ok)
	assert.Empty(t, status.Options)
	_, found := status.OptionByName("Todo")
	assert.False(t, found)
}

func TestResolver_FieldsFailure(t *testing.T) {
	ctx := context.Background()
	source := new(MockFieldSource)
	source.On("ProjectFields", ctx, "P1").Return(nil, errors.New("boom"))

	catalog, err := NewResolver(source, zap.NewNop()).Resolve(ctx, "P1")

	assert.Error(t, err)
	assert.Nil(t, catalog)
}

func TestCache_MemoizesPerProject(t *testing.T) {
	ctx := context.Background()
	source := new(MockFieldSource)
	source.On("ProjectFields", ctx, "P1").Return([]models.FieldDefinition{{ID: "F_TXT", Name: "Notes", Kind: models.FieldText}}, nil).Once()
	source.On("ProjectFields", ctx, "P2").Return(nil, errors.New("forbidden")).Once()

	cache := NewCache(NewResolver(source, zap.NewNop()))

	first, err := cache.Get(ctx, "P1")
	require.NoError(t, err)
	second, err := cache.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = cache.Get(ctx, "P2")
	assert.Error(t, err)
	_, err = cache.Get(ctx, "P2")
	assert.Error(t, err)

	assert.Equal(t, 2, cache.Len())
	source.AssertNumberOfCalls(t, "ProjectFields", 2)
}

func TestCache_IsolatedPerInstance(t *testing.T) {
	ctx := context.Background()
	source := new(MockFieldSource)
	source.On("ProjectFields", ctx, "P1").Return([]models.FieldDefinition{}, nil)
	resolver := NewResolver(source, zap.NewNop())

	_, err := NewCache(resolver).Get(ctx, "P1")
	require.NoError(t, err)
	_, err = NewCache(resolver).Get(ctx, "P1")
	require.NoError(t, err)

	source.AssertNumberOfCalls(t, "ProjectFields", 2)
}

func TestExtract(t *testing.T) {
	catalog := &models.Catalog{
		ProjectID: "P1",
		Fields: []models.FieldDefinition{
			{ID: "F_STATUS", Name: "Status", Kind: models.FieldSingleSelect, ProjectID: "P1",
				Options: []models.FieldOption{{ID: "s1", Name: "In Progress"}}},
			{ID: "F_SPR", Name: "Sprint", Kind: models.FieldIteration, ProjectID: "P1",
				Iterations: []models.Iteration{{ID: "it1", Title: "Sprint 1"}}},
			{ID: "F_PRI", Name: "Priority", Kind: models.FieldSingleSelect, ProjectID: "P1"},
			{ID: "F_DATE", Name: "Target Date", Kind: models.FieldDate, ProjectID: "P1"},
			{ID: "F_TXT", Name: "Notes", Kind: models.FieldText, ProjectID: "P1"},
		},
	}
	membership := models.ProjectMembership{
		ProjectID: "P1",
		ItemID:    "PVTI_1",
		Values: []models.ItemFieldValue{
			{ProjectID: "P1", FieldID: "F_STATUS", FieldName: "Status", Value: models.OptionValue{OptionID: "s1", Name: "in progress"}, RawID: "s1"},
			{ProjectID: "P1", FieldID: "F_SPR", FieldName: "Sprint", Value: models.IterationValue{IterationID: "it9"}, RawID: "it9"},
			{ProjectID: "P1", FieldID: "F_DATE", FieldName: "Target Date", Value: models.TextValue{Text: "tomorrow"}},
			{ProjectID: "P1", FieldID: "F_TXT", FieldName: "Notes", Value: models.TextValue{Text: "note"}},
		},
	}

	values := Extract(membership, catalog)

	assert.Equal(t, "P1", values.ProjectID)
	assert.Equal(t, "PVTI_1", values.ItemID)
	assert.Equal(t, 5, values.Len())

	status, ok := values.Value("STATUS")
	require.True(t, ok)
	assert.Equal(t, models.OptionValue{OptionID: "s1", Name: "In Progress"}, status.Value, "name taken from catalog")

	sprint, ok := values.Value("Sprint")
	require.True(t, ok)
	assert.Equal(t, "it9", sprint.RawID, "raw id kept when catalog has no match")
	assert.Equal(t, models.IterationValue{IterationID: "it9"}, sprint.Value)

	priority, ok := values.Value("Priority")
	require.True(t, ok)
	assert.Nil(t, priority.Value)
	assert.Equal(t, "F_PRI", priority.FieldID)

	date, ok := values.Value("target  date")
	require.True(t, ok)
	assert.Nil(t, date.Value, "value of a different kind is dropped")

	notes, _ := values.Value("Notes")
	assert.Equal(t, models.TextValue{Text: "note"}, notes.Value)

	_, ok = values.Value("Estimate")
	assert.False(t, ok)
}

func TestExtract_WithoutCatalog(t *testing.T) {
	membership := models.ProjectMembership{
		ProjectID: "P1",
		ItemID:    "PVTI_2",
		Values: []models.ItemFieldValue{
			{ProjectID: "P1", FieldID: "F_PRI", FieldName: "Priority", Value: models.OptionValue{OptionID: "o1", Name: "High"}, RawID: "o1"},
			{ProjectID: "P1", FieldID: "F_PRI2", FieldName: "priority", Value: models.OptionValue{OptionID: "o2", Name: "Low"}, RawID: "o2"},
		},
	}

	values := Extract(membership, nil)

	priority, ok := values.Value("Priority")
	require.True(t, ok)
	assert.Equal(t, "o1", priority.RawID, "first matching field wins")
	assert.Equal(t, 1, values.Len())
}
