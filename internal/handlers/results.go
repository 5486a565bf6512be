package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/closeout"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/middleware"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/repository"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/utils"
)

// ResultHandler handles clinical result requests, including the closeout of
// a booking.
type ResultHandler struct {
	DB      *gorm.DB
	Engine  *closeout.Engine
	Results *repository.ResultRepository
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(db *gorm.DB, engine *closeout.Engine, results *repository.ResultRepository) *ResultHandler {
	return &ResultHandler{DB: db, Engine: engine, Results: results}
}

// RegimenSectionRequest is the regimen edit carried by an ARV closeout.
type RegimenSectionRequest struct {
	OriginalRegimenID string   `json:"originalRegimenId" binding:"omitempty,uuid"`
	Name              string   `json:"name"`
	Code              string   `json:"code"`
	TreatmentLine     string   `json:"treatmentLine" binding:"omitempty,oneof=first-line second-line third-line"`
	RecommendedFor    string   `json:"recommendedFor"`
	Description       string   `json:"description"`
	Drugs             []string `json:"drugs"`
	Dosages           []string `json:"dosages"`
	Frequencies       []string `json:"frequencies"`
	Contraindications []string `json:"contraindications"`
	SideEffects       []string `json:"sideEffects"`
}

// CloseoutRequest represents the request body for closing out a booking.
// Which field groups are honoured depends on the booking's category.
type CloseoutRequest struct {
	ResultName         string `json:"resultName"`
	Symptoms           string `json:"symptoms"`
	Diagnosis          string `json:"diagnosis"`
	Notes              string `json:"notes"`
	InterpretationNote string `json:"interpretationNote"`

	WeightKg      *float64 `json:"weightKg"`
	HeightCm      *float64 `json:"heightCm"`
	BMI           *float64 `json:"bmi"`
	BloodPressure string   `json:"bloodPressure"`
	Pulse         *int     `json:"pulse"`
	Temperature   *float64 `json:"temperature"`

	SampleType      string   `json:"sampleType"`
	TestMethod      string   `json:"testMethod"`
	ResultType      string   `json:"resultType" binding:"omitempty,oneof=qualitative quantitative"`
	TestValue       string   `json:"testValue"`
	Unit            string   `json:"unit"`
	ReferenceRange  string   `json:"referenceRange"`
	ViralLoad       *float64 `json:"viralLoad"`
	ViralLoadRange  string   `json:"viralLoadRange"`
	ViralLoadResult string   `json:"viralLoadResult" binding:"omitempty,oneof=undetectable suppressed high"`
	CD4Count        *int     `json:"cd4Count"`
	CD4Range        string   `json:"cd4Range"`
	CD4Result       string   `json:"cd4Result" binding:"omitempty,oneof=normal low critical"`
	CoInfections    []string `json:"coInfections"`
	P24Antigen      *float64 `json:"p24Antigen"`
	HIVAntibody     *float64 `json:"hivAntibody"`

	MedicationSlot    string     `json:"medicationSlot"`
	MedicationTimes   []string   `json:"medicationTimes"`
	ReExaminationDate *time.Time `json:"reExaminationDate"`

	Regimen *RegimenSectionRequest `json:"regimen"`
	Status  string                 `json:"status" binding:"omitempty,oneof=completed re-examination"`
}

// CloseoutBooking handles submitting the clinical result for a booking and
// applying the chosen terminal status. Only the booking's doctor or an
// admin may close out a visit.
func (h *ResultHandler) CloseoutBooking(c *gin.Context) {
	bookingID := c.Param("id")
	if _, err := uuid.Parse(bookingID); err != nil {
		utils.BadRequest(c, "Invalid booking ID format")
		return
	}

	var req CloseoutRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var booking models.Booking
	if err := h.DB.Preload("Service").First(&booking, "id = ?", bookingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Booking not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != models.RoleAdmin && !(userRole == models.RoleDoctor && userID == booking.DoctorID) {
		utils.Forbidden(c, "Only the booking's doctor can close out this visit.")
		return
	}

	if booking.Status == models.StatusCancelled {
		utils.Conflict(c, "A cancelled booking cannot be closed out")
		return
	}

	draft := buildDraftClosure(&req, userID)
	result, err := h.Engine.CloseoutEncounter(c.Request.Context(), &booking, draft)
	if err != nil {
		respondClosureError(c, err)
		return
	}

	utils.Created(c, "Booking closed out successfully", result)
}

// GetResultForBooking handles fetching the result of one booking.
func (h *ResultHandler) GetResultForBooking(c *gin.Context) {
	bookingID := c.Param("id")
	if _, err := uuid.Parse(bookingID); err != nil {
		utils.BadRequest(c, "Invalid booking ID format")
		return
	}

	var result models.Result
	if err := h.DB.Preload("ArvRegimen").First(&result, "booking_id = ?", bookingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "No result exists for this booking")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Result fetched successfully", result)
}

// GetResultsForPatient handles fetching all results of one patient.
// Accessible by the patient themselves, doctors and admins.
func (h *ResultHandler) GetResultsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")
	if _, err := uuid.Parse(patientID); err != nil {
		utils.BadRequest(c, "Invalid patient ID format")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RolePatient && userID != patientID {
		utils.Forbidden(c, "You are not authorized to view these results")
		return
	}

	results, err := h.Results.ListByPatientID(c.Request.Context(), patientID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch results: "+err.Error())
		return
	}

	utils.Success(c, "Results fetched successfully", results)
}

// GetMedicationSlots returns every medication slot with its ordered
// sub-slots, for client-side schedule validation feedback.
func (h *ResultHandler) GetMedicationSlots(c *gin.Context) {
	slots := []closeout.MedicationSlot{
		closeout.SlotMorning,
		closeout.SlotNoon,
		closeout.SlotEvening,
		closeout.SlotMorningNoon,
		closeout.SlotNoonEvening,
		closeout.SlotMorningEvening,
		closeout.SlotMorningNoonEvening,
	}

	type slotView struct {
		Slot     closeout.MedicationSlot `json:"slot"`
		SubSlots []closeout.SubSlot      `json:"subSlots"`
	}
	views := make([]slotView, 0, len(slots))
	for _, slot := range slots {
		subSlots, _ := closeout.RequiredSubSlots(slot)
		views = append(views, slotView{Slot: slot, SubSlots: subSlots})
	}

	utils.Success(c, "Medication slots fetched successfully", views)
}

// buildDraftClosure maps the request body onto the engine's input value.
func buildDraftClosure(req *CloseoutRequest, actorID string) closeout.DraftClosure {
	draft := closeout.DraftClosure{
		Result: closeout.ResultDraft{
			ResultName:         req.ResultName,
			Symptoms:           req.Symptoms,
			Diagnosis:          req.Diagnosis,
			Notes:              req.Notes,
			InterpretationNote: req.InterpretationNote,
			WeightKg:           req.WeightKg,
			HeightCm:           req.HeightCm,
			BMI:                req.BMI,
			BloodPressure:      req.BloodPressure,
			Pulse:              req.Pulse,
			Temperature:        req.Temperature,
			SampleType:         req.SampleType,
			TestMethod:         req.TestMethod,
			ResultType:         models.ResultType(req.ResultType),
			TestValue:          req.TestValue,
			Unit:               req.Unit,
			ReferenceRange:     req.ReferenceRange,
			ViralLoad:          req.ViralLoad,
			ViralLoadRange:     req.ViralLoadRange,
			ViralLoadResult:    models.ViralLoadInterpretation(req.ViralLoadResult),
			CD4Count:           req.CD4Count,
			CD4Range:           req.CD4Range,
			CD4Result:          models.CD4Interpretation(req.CD4Result),
			CoInfections:       req.CoInfections,
			P24Antigen:         req.P24Antigen,
			HIVAntibody:        req.HIVAntibody,
			MedicationSlot:     closeout.MedicationSlot(req.MedicationSlot),
			MedicationTimes:    req.MedicationTimes,
			ReExaminationDate:  req.ReExaminationDate,
		},
		Status:  models.BookingStatus(req.Status),
		ActorID: actorID,
	}

	if req.Regimen != nil {
		draft.Regimen = &closeout.RegimenEdit{
			OriginalID: req.Regimen.OriginalRegimenID,
			Draft: closeout.RegimenDraft{
				Name:              req.Regimen.Name,
				Code:              req.Regimen.Code,
				TreatmentLine:     models.TreatmentLine(req.Regimen.TreatmentLine),
				RecommendedFor:    req.Regimen.RecommendedFor,
				Description:       req.Regimen.Description,
				Drugs:             req.Regimen.Drugs,
				Dosages:           req.Regimen.Dosages,
				Frequencies:       req.Regimen.Frequencies,
				Contraindications: req.Regimen.Contraindications,
				SideEffects:       req.Regimen.SideEffects,
			},
		}
	}

	return draft
}

// respondClosureError maps engine errors to HTTP responses, carrying the
// offending field where one is known so the client can highlight it.
func respondClosureError(c *gin.Context, err error) {
	var missingField *closeout.MissingFieldError
	var scheduleErr *closeout.ScheduleError
	var notFound *closeout.NotFoundError

	switch {
	case errors.Is(err, closeout.ErrMissingStatusSelection):
		utils.FieldError(c, "status", closeout.ErrMissingStatusSelection.Error())
	case errors.As(err, &missingField):
		utils.FieldError(c, missingField.Field, missingField.Error())
	case errors.As(err, &scheduleErr):
		utils.FieldError(c, "medicationTimes", scheduleErr.Error())
	case errors.As(err, &notFound):
		utils.NotFound(c, notFound.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}
