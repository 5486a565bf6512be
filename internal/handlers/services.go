package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/utils"
)

// ServiceHandler handles service catalog requests.
type ServiceHandler struct {
	DB *gorm.DB
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{DB: db}
}

// ServiceRequest represents the request body for creating or updating a service.
type ServiceRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"gte=0"`
	DurationMinutes int     `json:"durationMinutes" binding:"gte=0"`
	IsLabTest       bool    `json:"isLabTest"`
	IsArvTest       bool    `json:"isArvTest"`
}

// CreateService handles creating a service definition (admin only).
func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req ServiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	service := models.Service{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsLabTest:       req.IsLabTest,
		IsArvTest:       req.IsArvTest,
	}
	if service.DurationMinutes == 0 {
		service.DurationMinutes = 30
	}

	if err := h.DB.Create(&service).Error; err != nil {
		utils.InternalServerError(c, "Failed to create service: "+err.Error())
		return
	}

	utils.Created(c, "Service created successfully", service)
}

// GetServices handles listing the service catalog.
func (h *ServiceHandler) GetServices(c *gin.Context) {
	var services []models.Service
	if err := h.DB.Order("name asc").Find(&services).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch services: "+err.Error())
		return
	}
	utils.Success(c, "Services fetched successfully", services)
}

// GetServiceByID handles fetching a single service.
func (h *ServiceHandler) GetServiceByID(c *gin.Context) {
	serviceID := c.Param("id")
	if _, err := uuid.Parse(serviceID); err != nil {
		utils.BadRequest(c, "Invalid service ID format")
		return
	}

	var service models.Service
	if err := h.DB.First(&service, "id = ?", serviceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Service not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Service fetched successfully", service)
}

// UpdateService handles updating a service definition (admin only).
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	serviceID := c.Param("id")
	if _, err := uuid.Parse(serviceID); err != nil {
		utils.BadRequest(c, "Invalid service ID format")
		return
	}

	var req ServiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var service models.Service
	if err := h.DB.First(&service, "id = ?", serviceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Service not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	service.Name = req.Name
	service.Description = req.Description
	service.Price = req.Price
	if req.DurationMinutes > 0 {
		service.DurationMinutes = req.DurationMinutes
	}
	service.IsLabTest = req.IsLabTest
	service.IsArvTest = req.IsArvTest

	if err := h.DB.Save(&service).Error; err != nil {
		utils.InternalServerError(c, "Failed to update service: "+err.Error())
		return
	}

	utils.Success(c, "Service updated successfully", service)
}

// DeleteService handles removing a service definition (admin only).
// Services referenced by existing bookings cannot be removed.
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	serviceID := c.Param("id")
	if _, err := uuid.Parse(serviceID); err != nil {
		utils.BadRequest(c, "Invalid service ID format")
		return
	}

	var count int64
	if err := h.DB.Model(&models.Booking{}).Where("service_id = ?", serviceID).Count(&count).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if count > 0 {
		utils.Conflict(c, "Service is referenced by existing bookings and cannot be deleted")
		return
	}

	result := h.DB.Delete(&models.Service{}, "id = ?", serviceID)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to delete service: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Service not found")
		return
	}

	utils.Success(c, "Service deleted successfully", nil)
}
