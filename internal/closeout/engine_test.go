package closeout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
)

// MockResultStore is a mock implementation of ResultStore.
type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) Create(ctx context.Context, result *models.Result) (*models.Result, error) {
	args := m.Called(ctx, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockResultStore) AppendNotes(ctx context.Context, id string, notes string) (*models.Result, error) {
	args := m.Called(ctx, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockResultStore) FindByBookingID(ctx context.Context, bookingID string) (*models.Result, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

// MockBookingStore is a mock implementation of BookingStore.
type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) SetStatus(ctx context.Context, bookingID string, status models.BookingStatus) error {
	args := m.Called(ctx, bookingID, status)
	return args.Error(0)
}

type engineFixture struct {
	engine   *Engine
	catalog  *MockRegimenCatalog
	results  *MockResultStore
	bookings *MockBookingStore
	calls    []string
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		catalog:  &MockRegimenCatalog{},
		results:  &MockResultStore{},
		bookings: &MockBookingStore{},
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	f.engine = NewEngine(f.catalog, f.results, f.bookings, log)
	return f
}

func (f *engineFixture) record(name string) func(mock.Arguments) {
	return func(mock.Arguments) {
		f.calls = append(f.calls, name)
	}
}

func generalExamBooking() *models.Booking {
	b := &models.Booking{
		PatientID: "patient-1",
		DoctorID:  "doctor-1",
		Status:    models.StatusPaid,
		Service:   models.Service{Name: "General checkup"},
	}
	b.ID = "booking-general"
	return b
}

func labTestBooking() *models.Booking {
	b := &models.Booking{
		PatientID: "patient-1",
		DoctorID:  "doctor-1",
		Status:    models.StatusPaid,
		Service:   models.Service{Name: "Viral load test", IsLabTest: true},
	}
	b.ID = "booking-lab"
	return b
}

func arvTestBooking() *models.Booking {
	b := &models.Booking{
		PatientID: "patient-1",
		DoctorID:  "doctor-1",
		Status:    models.StatusPaid,
		Service:   models.Service{Name: "ARV consultation", IsArvTest: true},
	}
	b.ID = "booking-arv"
	return b
}

func arvDraft(originalID string) DraftClosure {
	original := storedRegimen()
	return DraftClosure{
		Result: ResultDraft{
			ResultName:      "ARV follow-up",
			MedicationSlot:  SlotMorningEvening,
			MedicationTimes: []string{"08:00", "20:00"},
		},
		Regimen: &RegimenEdit{
			OriginalID: originalID,
			Draft:      DraftFromRegimen(original),
		},
		Status:  models.StatusCompleted,
		ActorID: "doctor-1",
	}
}

func TestCloseout_GeneralExam_MissingStatusSelection(t *testing.T) {
	f := newEngineFixture()
	draft := DraftClosure{
		Result: ResultDraft{ResultName: "Routine exam"},
		// no status chosen
	}

	_, err := f.engine.CloseoutEncounter(context.Background(), generalExamBooking(), draft)

	require.ErrorIs(t, err, ErrMissingStatusSelection)
	var closureErr *ClosureError
	require.ErrorAs(t, err, &closureErr)
	assert.Equal(t, StepValidating, closureErr.Step)

	// Zero remote calls: validation happens before any collaborator is touched
	f.results.AssertNumberOfCalls(t, "Create", 0)
	f.results.AssertNumberOfCalls(t, "FindByBookingID", 0)
	f.bookings.AssertNumberOfCalls(t, "SetStatus", 0)
	f.catalog.AssertNumberOfCalls(t, "Create", 0)
}

func TestCloseout_MissingResultName(t *testing.T) {
	f := newEngineFixture()
	draft := DraftClosure{Status: models.StatusCompleted}

	_, err := f.engine.CloseoutEncounter(context.Background(), generalExamBooking(), draft)

	var missingField *MissingFieldError
	require.ErrorAs(t, err, &missingField)
	assert.Equal(t, "resultName", missingField.Field)
	f.results.AssertNumberOfCalls(t, "Create", 0)
}

func TestCloseout_GeneralExam_Success(t *testing.T) {
	f := newEngineFixture()
	booking := generalExamBooking()

	weight, height := 62.0, 165.0
	draft := DraftClosure{
		Result: ResultDraft{
			ResultName: "Routine exam",
			Symptoms:   "Fatigue",
			Diagnosis:  "Stable",
			WeightKg:   &weight,
			HeightCm:   &height,
		},
		Status:  models.StatusCompleted,
		ActorID: "doctor-1",
	}

	f.results.On("Create", mock.Anything, mock.AnythingOfType("*models.Result")).
		Run(f.record("results.Create")).
		Return(&models.Result{BaseModel: models.BaseModel{ID: "result-1"}}, nil)
	f.bookings.On("SetStatus", mock.Anything, booking.ID, models.StatusCompleted).
		Run(f.record("bookings.SetStatus")).
		Return(nil)

	result, err := f.engine.CloseoutEncounter(context.Background(), booking, draft)

	require.NoError(t, err)
	assert.Equal(t, "result-1", result.ID)
	assert.Equal(t, []string{"results.Create", "bookings.SetStatus"}, f.calls)

	persisted := f.results.Calls[0].Arguments.Get(1).(*models.Result)
	assert.Equal(t, booking.ID, persisted.BookingID)
	assert.Equal(t, "Fatigue", persisted.Symptoms)
	require.NotNil(t, persisted.BMI)
	assert.InDelta(t, 22.8, *persisted.BMI, 0.01, "BMI derived from weight and height")
	assert.Nil(t, persisted.ArvRegimenID)
}

func TestCloseout_LabTest_ExistingResultAppendsNotes(t *testing.T) {
	f := newEngineFixture()
	booking := labTestBooking()

	existing := &models.Result{BaseModel: models.BaseModel{ID: "result-lab"}, BookingID: booking.ID}
	f.results.On("FindByBookingID", mock.Anything, booking.ID).Return(existing, nil)
	f.results.On("AppendNotes", mock.Anything, "result-lab", "Second reading confirmed").
		Return(existing, nil)

	draft := DraftClosure{
		Result: ResultDraft{ResultName: "Viral load", Notes: "Second reading confirmed"},
		// no status selection: lab tests close without one
	}

	result, err := f.engine.CloseoutEncounter(context.Background(), booking, draft)

	require.NoError(t, err)
	assert.Equal(t, "result-lab", result.ID)

	// Exactly one update, never a duplicate create or a status transition
	f.results.AssertNumberOfCalls(t, "AppendNotes", 1)
	f.results.AssertNumberOfCalls(t, "Create", 0)
	f.bookings.AssertNumberOfCalls(t, "SetStatus", 0)
}

func TestCloseout_LabTest_FirstResultCreatesWithoutTransition(t *testing.T) {
	f := newEngineFixture()
	booking := labTestBooking()

	viralLoad := 40.0
	f.results.On("FindByBookingID", mock.Anything, booking.ID).Return(nil, nil)
	f.results.On("Create", mock.Anything, mock.AnythingOfType("*models.Result")).
		Return(&models.Result{BaseModel: models.BaseModel{ID: "result-lab-1"}}, nil)

	draft := DraftClosure{
		Result: ResultDraft{
			ResultName:      "Viral load",
			SampleType:      "Plasma",
			ViralLoad:       &viralLoad,
			ViralLoadResult: models.ViralLoadSuppressed,
		},
	}

	result, err := f.engine.CloseoutEncounter(context.Background(), booking, draft)

	require.NoError(t, err)
	assert.Equal(t, "result-lab-1", result.ID)
	f.bookings.AssertNumberOfCalls(t, "SetStatus", 0)

	persisted := f.results.Calls[1].Arguments.Get(1).(*models.Result)
	assert.Equal(t, "Plasma", persisted.SampleType)
	assert.Equal(t, models.ViralLoadSuppressed, persisted.ViralLoadResult)
}

func TestCloseout_ArvTest_ModifiedRegimenCreatesThenPersists(t *testing.T) {
	f := newEngineFixture()
	booking := arvTestBooking()
	original := storedRegimen()

	draft := arvDraft(original.ID)
	draft.Regimen.Draft.Drugs = append([]string{}, draft.Regimen.Draft.Drugs...)
	draft.Regimen.Draft.Drugs[2] = "Efavirenz"
	reExam := time.Now().AddDate(0, 1, 0)
	draft.Result.ReExaminationDate = &reExam

	created := &models.ArvRegimen{}
	created.ID = "regimen-new"
	f.catalog.On("GetByID", mock.Anything, original.ID).
		Run(f.record("catalog.GetByID")).
		Return(original, nil)
	f.catalog.On("Create", mock.Anything, mock.AnythingOfType("*models.ArvRegimen")).
		Run(f.record("catalog.Create")).
		Return(created, nil)
	f.results.On("Create", mock.Anything, mock.AnythingOfType("*models.Result")).
		Run(f.record("results.Create")).
		Return(&models.Result{BaseModel: models.BaseModel{ID: "result-arv"}}, nil)
	f.bookings.On("SetStatus", mock.Anything, booking.ID, models.StatusCompleted).
		Run(f.record("bookings.SetStatus")).
		Return(nil)

	_, err := f.engine.CloseoutEncounter(context.Background(), booking, draft)

	require.NoError(t, err)
	assert.Equal(t,
		[]string{"catalog.GetByID", "catalog.Create", "results.Create", "bookings.SetStatus"},
		f.calls, "regimen creation must happen strictly before the result write")

	var persisted *models.Result
	for _, call := range f.results.Calls {
		if call.Method == "Create" {
			persisted = call.Arguments.Get(1).(*models.Result)
		}
	}
	require.NotNil(t, persisted)
	require.NotNil(t, persisted.ArvRegimenID)
	assert.Equal(t, "regimen-new", *persisted.ArvRegimenID)
	assert.Equal(t, string(SlotMorningEvening), persisted.MedicationSlot)
	assert.Equal(t, models.StringList{"08:00", "20:00"}, persisted.MedicationTimes)
	// ARV submissions omit the general exam and lab groups
	assert.Empty(t, persisted.Symptoms)
	assert.Nil(t, persisted.ViralLoad)
}

func TestCloseout_ArvTest_UnmodifiedRegimenReferencesOriginal(t *testing.T) {
	f := newEngineFixture()
	booking := arvTestBooking()
	original := storedRegimen()

	f.catalog.On("GetByID", mock.Anything, original.ID).Return(original, nil)
	f.results.On("Create", mock.Anything, mock.AnythingOfType("*models.Result")).
		Return(&models.Result{BaseModel: models.BaseModel{ID: "result-arv"}}, nil)
	f.bookings.On("SetStatus", mock.Anything, booking.ID, models.StatusCompleted).Return(nil)

	_, err := f.engine.CloseoutEncounter(context.Background(), booking, arvDraft(original.ID))

	require.NoError(t, err)
	f.catalog.AssertNumberOfCalls(t, "Create", 0)

	persisted := f.results.Calls[0].Arguments.Get(1).(*models.Result)
	require.NotNil(t, persisted.ArvRegimenID)
	assert.Equal(t, original.ID, *persisted.ArvRegimenID)
}

func TestCloseout_ArvTest_BlankResultNameAutoFilled(t *testing.T) {
	f := newEngineFixture()
	booking := arvTestBooking()
	original := storedRegimen()

	draft := arvDraft(original.ID)
	draft.Result.ResultName = ""

	f.catalog.On("GetByID", mock.Anything, original.ID).Return(original, nil)
	f.results.On("Create", mock.Anything, mock.AnythingOfType("*models.Result")).
		Return(&models.Result{BaseModel: models.BaseModel{ID: "result-arv"}}, nil)
	f.bookings.On("SetStatus", mock.Anything, booking.ID, models.StatusCompleted).Return(nil)

	_, err := f.engine.CloseoutEncounter(context.Background(), booking, draft)

	require.NoError(t, err)
	persisted := f.results.Calls[0].Arguments.Get(1).(*models.Result)
	assert.True(t, strings.HasPrefix(persisted.ResultName, booking.Service.Name),
		"blank result name is auto-filled for ARV visits, got %q", persisted.ResultName)
}

func TestCloseout_ArvTest_ScheduleMismatchRejectedBeforeAnyCall(t *testing.T) {
	f := newEngineFixture()
	draft := arvDraft("regimen-original")
	draft.Result.MedicationTimes = []string{"08:00"} // Morning+Evening needs two

	_, err := f.engine.CloseoutEncounter(context.Background(), arvTestBooking(), draft)

	var scheduleErr *ScheduleError
	require.ErrorAs(t, err, &scheduleErr)
	assert.Equal(t, 1, scheduleErr.Index)
	f.catalog.AssertNumberOfCalls(t, "GetByID", 0)
	f.catalog.AssertNumberOfCalls(t, "Create", 0)
	f.results.AssertNumberOfCalls(t, "Create", 0)
}

func TestCloseout_ArvTest_MissingRegimenSection(t *testing.T) {
	f := newEngineFixture()
	draft := arvDraft("")
	draft.Regimen = nil

	_, err := f.engine.CloseoutEncounter(context.Background(), arvTestBooking(), draft)

	var missingField *MissingFieldError
	require.ErrorAs(t, err, &missingField)
	assert.Equal(t, "regimen", missingField.Field)
}

func TestCloseout_ArvTest_MisalignedDosagesRejected(t *testing.T) {
	f := newEngineFixture()
	draft := arvDraft("regimen-original")
	draft.Regimen.Draft.Dosages = draft.Regimen.Draft.Dosages[:1]

	_, err := f.engine.CloseoutEncounter(context.Background(), arvTestBooking(), draft)

	var missingField *MissingFieldError
	require.ErrorAs(t, err, &missingField)
	assert.Equal(t, "dosages", missingField.Field)
	f.results.AssertNumberOfCalls(t, "Create", 0)
}

func TestCloseout_RegimenCreateFailureAbortsPipeline(t *testing.T) {
	f := newEngineFixture()
	booking := arvTestBooking()

	draft := arvDraft("")
	draft.Regimen.Draft.Name = "Edited"

	f.catalog.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("catalog down"))

	_, err := f.engine.CloseoutEncounter(context.Background(), booking, draft)

	var closureErr *ClosureError
	require.ErrorAs(t, err, &closureErr)
	assert.Equal(t, StepResolvingRegimen, closureErr.Step)

	// No result is written when regimen creation fails
	f.results.AssertNumberOfCalls(t, "Create", 0)
	f.bookings.AssertNumberOfCalls(t, "SetStatus", 0)
}

func TestCloseout_ResultCreateFailureSkipsTransition(t *testing.T) {
	f := newEngineFixture()
	booking := generalExamBooking()

	f.results.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("store down"))

	draft := DraftClosure{
		Result: ResultDraft{ResultName: "Routine exam"},
		Status: models.StatusReExamination,
	}

	_, err := f.engine.CloseoutEncounter(context.Background(), booking, draft)

	var closureErr *ClosureError
	require.ErrorAs(t, err, &closureErr)
	assert.Equal(t, StepPersistingResult, closureErr.Step)
	f.bookings.AssertNumberOfCalls(t, "SetStatus", 0)
}

func TestCloseout_StatusTransitionFailure(t *testing.T) {
	f := newEngineFixture()
	booking := generalExamBooking()

	f.results.On("Create", mock.Anything, mock.Anything).
		Return(&models.Result{BaseModel: models.BaseModel{ID: "result-1"}}, nil)
	f.bookings.On("SetStatus", mock.Anything, booking.ID, models.StatusReExamination).
		Return(&NotFoundError{Kind: "booking", ID: booking.ID})

	draft := DraftClosure{
		Result: ResultDraft{ResultName: "Routine exam"},
		Status: models.StatusReExamination,
	}

	_, err := f.engine.CloseoutEncounter(context.Background(), booking, draft)

	var closureErr *ClosureError
	require.ErrorAs(t, err, &closureErr)
	assert.Equal(t, StepTransitioningStatus, closureErr.Step)

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCloseout_StaleRegimenReference(t *testing.T) {
	f := newEngineFixture()
	booking := arvTestBooking()

	f.catalog.On("GetByID", mock.Anything, "regimen-gone").
		Return(nil, &NotFoundError{Kind: "regimen", ID: "regimen-gone"})

	draft := arvDraft("regimen-gone")

	_, err := f.engine.CloseoutEncounter(context.Background(), booking, draft)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "regimen", notFound.Kind)
	f.results.AssertNumberOfCalls(t, "Create", 0)
}
