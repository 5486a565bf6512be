package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/closeout"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/middleware"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/repository"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/utils"
)

// RegimenHandler handles ARV regimen catalog requests.
type RegimenHandler struct {
	Catalog *repository.ArvRegimenRepository
}

// NewRegimenHandler creates a new RegimenHandler.
func NewRegimenHandler(catalog *repository.ArvRegimenRepository) *RegimenHandler {
	return &RegimenHandler{Catalog: catalog}
}

// CreateRegimenRequest represents the request body for catalog curation.
// Drugs, dosages and frequencies are index aligned, one entry per drug.
type CreateRegimenRequest struct {
	Name              string   `json:"name" binding:"required"`
	Code              string   `json:"code"`
	TreatmentLine     string   `json:"treatmentLine" binding:"omitempty,oneof=first-line second-line third-line"`
	RecommendedFor    string   `json:"recommendedFor"`
	Description       string   `json:"description"`
	Drugs             []string `json:"drugs" binding:"required,min=1"`
	Dosages           []string `json:"dosages" binding:"required"`
	Frequencies       []string `json:"frequencies" binding:"required"`
	Contraindications []string `json:"contraindications"`
	SideEffects       []string `json:"sideEffects"`
}

// CreateRegimen handles adding a regimen to the catalog (doctors and admins).
func (h *RegimenHandler) CreateRegimen(c *gin.Context) {
	var req CreateRegimenRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if len(req.Dosages) != len(req.Drugs) {
		utils.FieldError(c, "dosages", "dosages must have one entry per drug")
		return
	}
	if len(req.Frequencies) != len(req.Drugs) {
		utils.FieldError(c, "frequencies", "frequencies must have one entry per drug")
		return
	}

	regimen := &models.ArvRegimen{
		Name:              req.Name,
		Code:              req.Code,
		TreatmentLine:     models.TreatmentLine(req.TreatmentLine),
		RecommendedFor:    req.RecommendedFor,
		Description:       req.Description,
		Drugs:             models.StringList(req.Drugs),
		Dosages:           models.StringList(req.Dosages),
		Frequency:         closeout.JoinFrequencies(req.Frequencies),
		Contraindications: models.StringList(req.Contraindications),
		SideEffects:       models.StringList(req.SideEffects),
	}
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		regimen.CreatedByID = &userID
	}

	created, err := h.Catalog.Create(c.Request.Context(), regimen)
	if err != nil {
		utils.InternalServerError(c, "Failed to create regimen: "+err.Error())
		return
	}

	utils.Created(c, "Regimen created successfully", created)
}

// GetRegimens handles listing the regimen catalog.
func (h *RegimenHandler) GetRegimens(c *gin.Context) {
	regimens, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch regimens: "+err.Error())
		return
	}
	utils.Success(c, "Regimens fetched successfully", regimens)
}

// RegimenView decorates a regimen with the per-drug frequency list and the
// display form of each frequency.
type RegimenView struct {
	models.ArvRegimen
	Frequencies        []string `json:"frequencies"`
	FrequenciesDisplay []string `json:"frequenciesDisplay"`
}

// GetRegimenByID handles fetching a single regimen.
func (h *RegimenHandler) GetRegimenByID(c *gin.Context) {
	regimenID := c.Param("id")
	if _, err := uuid.Parse(regimenID); err != nil {
		utils.BadRequest(c, "Invalid regimen ID format")
		return
	}

	regimen, err := h.Catalog.GetByID(c.Request.Context(), regimenID)
	if err != nil {
		var nf *closeout.NotFoundError
		if errors.As(err, &nf) {
			utils.NotFound(c, nf.Error())
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	frequencies := closeout.SplitFrequencies(regimen.Frequency)
	display := make([]string, len(frequencies))
	for i, f := range frequencies {
		display[i] = closeout.FormatFrequency(f)
	}

	utils.Success(c, "Regimen fetched successfully", RegimenView{
		ArvRegimen:         *regimen,
		Frequencies:        frequencies,
		FrequenciesDisplay: display,
	})
}
