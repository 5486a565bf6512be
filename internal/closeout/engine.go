package closeout

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
)

// RegimenCatalog is the regimen collaborator contract. The transport behind
// it (HTTP client, gorm repository) is not the engine's concern.
type RegimenCatalog interface {
	Create(ctx context.Context, regimen *models.ArvRegimen) (*models.ArvRegimen, error)
	GetByID(ctx context.Context, id string) (*models.ArvRegimen, error)
}

// ResultStore persists clinical results. FindByBookingID returns (nil, nil)
// when no result exists for the booking.
type ResultStore interface {
	Create(ctx context.Context, result *models.Result) (*models.Result, error)
	AppendNotes(ctx context.Context, id string, notes string) (*models.Result, error)
	FindByBookingID(ctx context.Context, bookingID string) (*models.Result, error)
}

// BookingStore applies the terminal status chosen during closeout.
type BookingStore interface {
	SetStatus(ctx context.Context, bookingID string, status models.BookingStatus) error
}

// ResultDraft carries the operator-entered result fields for one closeout.
type ResultDraft struct {
	ResultName         string
	Symptoms           string
	Diagnosis          string
	Notes              string
	InterpretationNote string

	WeightKg      *float64
	HeightCm      *float64
	BMI           *float64
	BloodPressure string
	Pulse         *int
	Temperature   *float64

	SampleType      string
	TestMethod      string
	ResultType      models.ResultType
	TestValue       string
	Unit            string
	ReferenceRange  string
	ViralLoad       *float64
	ViralLoadRange  string
	ViralLoadResult models.ViralLoadInterpretation
	CD4Count        *int
	CD4Range        string
	CD4Result       models.CD4Interpretation
	CoInfections    []string
	P24Antigen      *float64
	HIVAntibody     *float64

	MedicationSlot    MedicationSlot
	MedicationTimes   []string
	ReExaminationDate *time.Time
}

// RegimenEdit pairs the regimen loaded when the form opened with the
// operator's edits. OriginalID is empty for a brand-new regimen entry.
type RegimenEdit struct {
	OriginalID string
	Draft      RegimenDraft
}

// DraftClosure is the complete input of one closeout submission, threaded
// as a single value through validation, regimen resolution and persistence.
type DraftClosure struct {
	Result  ResultDraft
	Regimen *RegimenEdit
	Status  models.BookingStatus // chosen terminal status, empty when none selected
	ActorID string
}

// Engine orchestrates the closeout of a booking: validate the required
// fields for the category, resolve the regimen, persist the result and
// transition the booking status. Each closeout is one sequential pipeline;
// nothing is retried and partial effects are not rolled back.
type Engine struct {
	regimens RegimenCatalog
	results  ResultStore
	bookings BookingStore
	log      *logrus.Logger
}

// NewEngine creates a closeout engine over the three collaborators.
func NewEngine(regimens RegimenCatalog, results ResultStore, bookings BookingStore, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{regimens: regimens, results: results, bookings: bookings, log: log}
}

// CloseoutEncounter runs the full closeout pipeline for one booking and
// returns the persisted result. All validation happens before the first
// remote mutation; any collaborator failure aborts the remaining steps and
// surfaces as a *ClosureError tagged with the originating step.
func (e *Engine) CloseoutEncounter(ctx context.Context, booking *models.Booking, draft DraftClosure) (*models.Result, error) {
	category := Classify(&booking.Service)
	log := e.log.WithFields(logrus.Fields{
		"bookingId": booking.ID,
		"category":  category.String(),
	})

	if err := validate(category, booking, &draft); err != nil {
		return nil, err
	}

	// Lab-test shortcut: a resubmission never creates a duplicate result,
	// it appends to the notes of the existing one and stops there.
	if category == LabTest {
		existing, err := e.results.FindByBookingID(ctx, booking.ID)
		if err != nil {
			return nil, failAt(StepValidating, err)
		}
		if existing != nil {
			updated, err := e.results.AppendNotes(ctx, existing.ID, draft.Result.Notes)
			if err != nil {
				return nil, failAt(StepPersistingResult, err)
			}
			log.WithField("resultId", existing.ID).Info("appended notes to existing lab result")
			return updated, nil
		}
	}

	var regimenID *string
	if category.RequiresRegimen() {
		id, err := e.resolveDraftRegimen(ctx, draft)
		if err != nil {
			return nil, err
		}
		regimenID = &id
		log = log.WithField("arvRegimenId", id)
	}

	result := buildResult(booking, category, draft, regimenID)
	created, err := e.results.Create(ctx, result)
	if err != nil {
		return nil, failAt(StepPersistingResult, err)
	}

	if category.RequiresStatusSelection() {
		if err := e.bookings.SetStatus(ctx, booking.ID, draft.Status); err != nil {
			return nil, failAt(StepTransitioningStatus, err)
		}
	}

	log.WithField("resultId", created.ID).Info("booking closed out")
	return created, nil
}

// validate enforces the category's required fields. It mutates the draft
// only to auto-fill a blank result name for ARV visits.
func validate(category Category, booking *models.Booking, draft *DraftClosure) error {
	if strings.TrimSpace(draft.Result.ResultName) == "" {
		if category != ArvTest {
			return failAt(StepValidating, &MissingFieldError{Field: "resultName"})
		}
		name := booking.Service.Name
		if name == "" {
			name = "ARV treatment"
		}
		draft.Result.ResultName = name + " " + time.Now().Format("2006-01-02")
	}

	if category.RequiresStatusSelection() {
		if draft.Status != models.StatusCompleted && draft.Status != models.StatusReExamination {
			return failAt(StepValidating, ErrMissingStatusSelection)
		}
	}

	if category.RequiresRegimen() {
		if draft.Regimen == nil {
			return failAt(StepValidating, &MissingFieldError{Field: "regimen"})
		}
		if err := ValidateTimes(draft.Result.MedicationSlot, draft.Result.MedicationTimes); err != nil {
			return failAt(StepValidating, err)
		}
		d := draft.Regimen.Draft
		if len(d.Drugs) == 0 {
			return failAt(StepValidating, &MissingFieldError{Field: "drugs"})
		}
		if len(d.Dosages) != len(d.Drugs) {
			return failAt(StepValidating, &MissingFieldError{Field: "dosages"})
		}
		if len(d.Frequencies) != len(d.Drugs) {
			return failAt(StepValidating, &MissingFieldError{Field: "frequencies"})
		}
	}

	return nil
}

// resolveDraftRegimen loads the original regimen, if any, and hands off to
// the resolver. The returned id is guaranteed to exist in the catalog.
func (e *Engine) resolveDraftRegimen(ctx context.Context, draft DraftClosure) (string, error) {
	var original *models.ArvRegimen
	if draft.Regimen.OriginalID != "" {
		r, err := e.regimens.GetByID(ctx, draft.Regimen.OriginalID)
		if err != nil {
			return "", failAt(StepResolvingRegimen, err)
		}
		original = r
	}
	return ResolveRegimen(ctx, e.regimens, original, draft.Regimen.Draft, draft.ActorID)
}

// buildResult assembles the persisted result from the validated draft,
// keeping only the field groups the category allows.
func buildResult(booking *models.Booking, category Category, draft DraftClosure, regimenID *string) *models.Result {
	rd := draft.Result
	result := &models.Result{
		BookingID:          booking.ID,
		ResultName:         rd.ResultName,
		Notes:              rd.Notes,
		InterpretationNote: rd.InterpretationNote,
	}

	if category != ArvTest {
		result.Symptoms = rd.Symptoms
		result.Diagnosis = rd.Diagnosis
	}

	if category.AllowsVitals() {
		result.WeightKg = rd.WeightKg
		result.HeightCm = rd.HeightCm
		result.BMI = deriveBMI(rd.BMI, rd.WeightKg, rd.HeightCm)
		result.BloodPressure = rd.BloodPressure
		result.Pulse = rd.Pulse
		result.Temperature = rd.Temperature
	}

	if category.AllowsLabPanel() {
		result.SampleType = rd.SampleType
		result.TestMethod = rd.TestMethod
		result.ResultType = rd.ResultType
		result.TestValue = rd.TestValue
		result.Unit = rd.Unit
		result.ReferenceRange = rd.ReferenceRange
		result.ViralLoad = rd.ViralLoad
		result.ViralLoadRange = rd.ViralLoadRange
		result.ViralLoadResult = rd.ViralLoadResult
		result.CD4Count = rd.CD4Count
		result.CD4Range = rd.CD4Range
		result.CD4Result = rd.CD4Result
		result.CoInfections = models.StringList(rd.CoInfections)
		result.P24Antigen = rd.P24Antigen
		result.HIVAntibody = rd.HIVAntibody
	}

	if category.RequiresRegimen() {
		result.ArvRegimenID = regimenID
		result.MedicationSlot = string(rd.MedicationSlot)
		result.MedicationTimes = models.StringList(rd.MedicationTimes)
		result.ReExaminationDate = rd.ReExaminationDate
	}

	return result
}

// deriveBMI computes BMI from weight and height when it was not supplied.
func deriveBMI(bmi, weightKg, heightCm *float64) *float64 {
	if bmi != nil {
		return bmi
	}
	if weightKg == nil || heightCm == nil || *heightCm <= 0 {
		return nil
	}
	heightM := *heightCm / 100
	v := math.Round(*weightKg/(heightM*heightM)*10) / 10
	return &v
}
