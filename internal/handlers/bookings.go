package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/middleware"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/utils"
)

// BookingHandler handles booking related requests.
type BookingHandler struct {
	DB *gorm.DB
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(db *gorm.DB) *BookingHandler {
	return &BookingHandler{DB: db}
}

// CreateBookingRequest represents the request body for creating a booking.
type CreateBookingRequest struct {
	DoctorID    string    `json:"doctorId" binding:"required,uuid"`
	PatientID   string    `json:"patientId" binding:"required,uuid"`
	ServiceID   string    `json:"serviceId" binding:"required,uuid"`
	BookingDate time.Time `json:"bookingDate" binding:"required"`
	StartTime   string    `json:"startTime" binding:"required"`
	EndTime     string    `json:"endTime"`
	Notes       string    `json:"notes"`
	IsAnonymous bool      `json:"isAnonymous"`
}

// CreateBooking handles creating a new booking.
// Typically initiated by a patient; staff may book on a patient's behalf.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	requestingUserID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	requestingUserRole, _ := middleware.GetUserRoleFromContext(c)
	if requestingUserRole == models.RolePatient && requestingUserID != req.PatientID {
		utils.Forbidden(c, "Patients can only book visits for themselves.")
		return
	}

	// Verify doctor exists and is a doctor
	var doctor models.User
	if err := h.DB.Where("id = ? AND role = ?", req.DoctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found or user is not a doctor")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}

	// Verify patient exists
	var patient models.User
	if err := h.DB.Where("id = ? AND role = ?", req.PatientID, models.RolePatient).First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	// Verify service exists
	var service models.Service
	if err := h.DB.First(&service, "id = ?", req.ServiceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Service not found")
		} else {
			utils.InternalServerError(c, "Database error verifying service: "+err.Error())
		}
		return
	}

	if req.BookingDate.Before(time.Now().Truncate(24 * time.Hour)) {
		utils.BadRequest(c, "Booking date must not be in the past.")
		return
	}
	if _, err := time.Parse("15:04", req.StartTime); err != nil {
		utils.BadRequest(c, "Start time must be a HH:MM time of day")
		return
	}

	endTime := req.EndTime
	if endTime == "" {
		start, _ := time.Parse("15:04", req.StartTime)
		endTime = start.Add(time.Duration(service.DurationMinutes) * time.Minute).Format("15:04")
	}

	booking := models.Booking{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		ServiceID:   req.ServiceID,
		BookingDate: req.BookingDate,
		StartTime:   req.StartTime,
		EndTime:     endTime,
		Notes:       req.Notes,
		IsAnonymous: req.IsAnonymous,
		Status:      models.StatusConfirmed,
	}

	if err := h.DB.Create(&booking).Error; err != nil {
		utils.InternalServerError(c, "Failed to create booking: "+err.Error())
		return
	}

	utils.Created(c, "Booking created successfully", booking)
}

// GetBookingsForUser handles fetching bookings for the logged-in user.
func (h *BookingHandler) GetBookingsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var bookings []models.Booking
	var err error

	query := h.DB.Preload("Patient").Preload("Doctor").Preload("Service").
		Order("booking_date asc, start_time asc")

	switch userRole {
	case models.RolePatient:
		err = query.Where("patient_id = ?", userID).Find(&bookings).Error
	case models.RoleDoctor:
		err = query.Where("doctor_id = ?", userID).Find(&bookings).Error
	case models.RoleAdmin:
		err = query.Find(&bookings).Error
	default:
		utils.Forbidden(c, "User role not permitted to view bookings this way.")
		return
	}

	if err != nil {
		utils.InternalServerError(c, "Failed to fetch bookings: "+err.Error())
		return
	}

	utils.Success(c, "Bookings fetched successfully", bookings)
}

// GetBookingByID handles fetching a single booking by its ID.
// Accessible by the involved patient, the involved doctor, or an admin.
func (h *BookingHandler) GetBookingByID(c *gin.Context) {
	bookingID := c.Param("id")
	if _, err := uuid.Parse(bookingID); err != nil {
		utils.BadRequest(c, "Invalid booking ID format")
		return
	}

	var booking models.Booking
	if err := h.DB.Preload("Patient").Preload("Doctor").Preload("Service").
		First(&booking, "id = ?", bookingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Booking not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	if userRole != models.RoleAdmin && userID != booking.PatientID && userID != booking.DoctorID {
		utils.Forbidden(c, "You are not authorized to view this booking")
		return
	}

	utils.Success(c, "Booking fetched successfully", booking)
}

// UpdateBookingStatusRequest represents the request body for updating a booking's status.
// completed and re-examination are not accepted here: those statuses are
// applied only by the closeout pipeline when a result is submitted.
type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status" binding:"required,oneof=confirmed checked-in paid cancelled"`
	Notes  string               `json:"notes"`
}

// UpdateBookingStatus handles front-desk status updates on a booking.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	bookingID := c.Param("id")
	if _, err := uuid.Parse(bookingID); err != nil {
		utils.BadRequest(c, "Invalid booking ID format")
		return
	}

	var req UpdateBookingStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Booking not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	// Patients can only cancel their own not-yet-completed bookings;
	// doctors and admins can apply any front-desk transition.
	canUpdate := false
	switch userRole {
	case models.RoleAdmin:
		canUpdate = true
	case models.RoleDoctor:
		canUpdate = userID == booking.DoctorID
	case models.RolePatient:
		if userID != booking.PatientID {
			break
		}
		if req.Status != models.StatusCancelled {
			utils.Forbidden(c, "Patients can only cancel bookings.")
			return
		}
		canUpdate = booking.Status == models.StatusConfirmed || booking.Status == models.StatusCheckedIn
	}

	if !canUpdate {
		utils.Forbidden(c, "You are not authorized to update this booking's status.")
		return
	}

	if booking.Status == models.StatusCompleted || booking.Status == models.StatusCancelled {
		utils.Conflict(c, "Booking is already "+string(booking.Status))
		return
	}

	booking.Status = req.Status
	if req.Notes != "" {
		booking.Notes = req.Notes
	}

	if err := h.DB.Save(&booking).Error; err != nil {
		utils.InternalServerError(c, "Failed to update booking status: "+err.Error())
		return
	}

	utils.Success(c, "Booking status updated successfully", booking)
}

// RescheduleBookingRequest represents the request body for rescheduling a booking.
type RescheduleBookingRequest struct {
	BookingDate time.Time `json:"bookingDate" binding:"required"`
	StartTime   string    `json:"startTime" binding:"required"`
	Notes       string    `json:"notes"`
}

// RescheduleBooking handles moving a booking to a new date and time.
func (h *BookingHandler) RescheduleBooking(c *gin.Context) {
	bookingID := c.Param("id")
	if _, err := uuid.Parse(bookingID); err != nil {
		utils.BadRequest(c, "Invalid booking ID format")
		return
	}

	var req RescheduleBookingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.BookingDate.Before(time.Now().Truncate(24 * time.Hour)) {
		utils.BadRequest(c, "New booking date must not be in the past.")
		return
	}
	if _, err := time.Parse("15:04", req.StartTime); err != nil {
		utils.BadRequest(c, "Start time must be a HH:MM time of day")
		return
	}

	var booking models.Booking
	if err := h.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Booking not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	canReschedule := false
	switch userRole {
	case models.RoleAdmin:
		canReschedule = true
	case models.RoleDoctor:
		canReschedule = userID == booking.DoctorID
	case models.RolePatient:
		canReschedule = userID == booking.PatientID &&
			(booking.Status == models.StatusConfirmed || booking.Status == models.StatusCheckedIn)
	}

	if !canReschedule {
		utils.Forbidden(c, "You are not authorized to reschedule this booking.")
		return
	}

	booking.BookingDate = req.BookingDate
	booking.StartTime = req.StartTime
	booking.Status = models.StatusConfirmed
	if req.Notes != "" {
		booking.Notes = req.Notes
	}

	if err := h.DB.Save(&booking).Error; err != nil {
		utils.InternalServerError(c, "Failed to reschedule booking: "+err.Error())
		return
	}

	utils.Success(c, "Booking rescheduled successfully", booking)
}
