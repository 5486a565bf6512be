package closeout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
)

// MockRegimenCatalog is a mock implementation of RegimenCatalog.
type MockRegimenCatalog struct {
	mock.Mock
}

func (m *MockRegimenCatalog) Create(ctx context.Context, regimen *models.ArvRegimen) (*models.ArvRegimen, error) {
	args := m.Called(ctx, regimen)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ArvRegimen), args.Error(1)
}

func (m *MockRegimenCatalog) GetByID(ctx context.Context, id string) (*models.ArvRegimen, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ArvRegimen), args.Error(1)
}

func storedRegimen() *models.ArvRegimen {
	r := &models.ArvRegimen{
		Name:              "TDF/3TC/DTG",
		Code:              "TLD",
		TreatmentLine:     models.LineFirst,
		RecommendedFor:    "Adults and adolescents",
		Description:       "Preferred first-line regimen",
		Drugs:             models.StringList{"Tenofovir", "Lamivudine", "Dolutegravir"},
		Dosages:           models.StringList{"300mg", "300mg", "50mg"},
		Frequency:         JoinFrequencies([]string{"1", "1", "1"}),
		Contraindications: models.StringList{"Severe renal impairment"},
		SideEffects:       models.StringList{"Nausea", "Headache"},
	}
	r.ID = "regimen-original"
	return r
}

func TestResolveRegimen_UnmodifiedDraftReturnsOriginalID(t *testing.T) {
	catalog := &MockRegimenCatalog{}
	original := storedRegimen()
	draft := DraftFromRegimen(original)

	id, err := ResolveRegimen(context.Background(), catalog, original, draft, "doctor-1")

	require.NoError(t, err)
	assert.Equal(t, original.ID, id)
	catalog.AssertNumberOfCalls(t, "Create", 0)
}

func TestResolveRegimen_SingleFieldChangeCreates(t *testing.T) {
	catalog := &MockRegimenCatalog{}
	original := storedRegimen()
	draft := DraftFromRegimen(original)
	draft.Drugs = append([]string{}, draft.Drugs...)
	draft.Drugs[0] = "Zidovudine"

	created := &models.ArvRegimen{}
	created.ID = "regimen-new"
	catalog.On("Create", mock.Anything, mock.AnythingOfType("*models.ArvRegimen")).Return(created, nil)

	id, err := ResolveRegimen(context.Background(), catalog, original, draft, "doctor-1")

	require.NoError(t, err)
	assert.Equal(t, "regimen-new", id)
	catalog.AssertNumberOfCalls(t, "Create", 1)

	submitted := catalog.Calls[0].Arguments.Get(1).(*models.ArvRegimen)
	assert.Equal(t, "Zidovudine", submitted.Drugs[0])
	require.NotNil(t, submitted.CreatedByID)
	assert.Equal(t, "doctor-1", *submitted.CreatedByID)
	// The original record is untouched
	assert.Equal(t, "Tenofovir", original.Drugs[0])
}

func TestResolveRegimen_ReorderedDrugsCountAsModification(t *testing.T) {
	catalog := &MockRegimenCatalog{}
	original := storedRegimen()
	draft := DraftFromRegimen(original)
	draft.Drugs = []string{"Lamivudine", "Tenofovir", "Dolutegravir"}

	created := &models.ArvRegimen{}
	created.ID = "regimen-reordered"
	catalog.On("Create", mock.Anything, mock.Anything).Return(created, nil)

	id, err := ResolveRegimen(context.Background(), catalog, original, draft, "")

	require.NoError(t, err)
	assert.Equal(t, "regimen-reordered", id)
	catalog.AssertNumberOfCalls(t, "Create", 1)
}

func TestResolveRegimen_AbsentOriginalAlwaysCreates(t *testing.T) {
	catalog := &MockRegimenCatalog{}
	created := &models.ArvRegimen{}
	created.ID = "regimen-custom"
	catalog.On("Create", mock.Anything, mock.Anything).Return(created, nil)

	// An all-empty draft still creates, with a generated placeholder name
	id, err := ResolveRegimen(context.Background(), catalog, nil, RegimenDraft{}, "doctor-2")

	require.NoError(t, err)
	assert.Equal(t, "regimen-custom", id)
	catalog.AssertNumberOfCalls(t, "Create", 1)

	submitted := catalog.Calls[0].Arguments.Get(1).(*models.ArvRegimen)
	assert.True(t, strings.HasPrefix(submitted.Name, "Custom Regimen "), "got name %q", submitted.Name)
}

func TestResolveRegimen_CreateFailureSurfacesAsClosureError(t *testing.T) {
	catalog := &MockRegimenCatalog{}
	catalog.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("catalog unavailable"))

	_, err := ResolveRegimen(context.Background(), catalog, nil, RegimenDraft{Name: "X"}, "")

	require.Error(t, err)
	var closureErr *ClosureError
	require.ErrorAs(t, err, &closureErr)
	assert.Equal(t, StepResolvingRegimen, closureErr.Step)
}

func TestRegimenDraftModified_FieldWise(t *testing.T) {
	original := storedRegimen()

	base := DraftFromRegimen(original)
	assert.False(t, base.Modified(original))

	name := base
	name.Name = "Other"
	assert.True(t, name.Modified(original))

	line := base
	line.TreatmentLine = models.LineSecond
	assert.True(t, line.Modified(original))

	sideEffects := base
	sideEffects.SideEffects = []string{"Nausea"}
	assert.True(t, sideEffects.Modified(original))

	assert.True(t, base.Modified(nil), "absent original is always a modification")
}

func TestFrequencyMapper(t *testing.T) {
	joined := JoinFrequencies([]string{"1", "2", "as needed"})
	assert.Equal(t, []string{"1", "2", "as needed"}, SplitFrequencies(joined))
	assert.Nil(t, SplitFrequencies(""))

	assert.Equal(t, "2 times/day", FormatFrequency("2"))
	assert.Equal(t, "1 time/day", FormatFrequency("1"))
	assert.Equal(t, "after meals", FormatFrequency("after meals"), "non-numeric text passes through unchanged")
}
