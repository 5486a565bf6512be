package models

import (
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	StatusConfirmed     BookingStatus = "confirmed"
	StatusCheckedIn     BookingStatus = "checked-in"
	StatusPaid          BookingStatus = "paid"
	StatusCompleted     BookingStatus = "completed"
	StatusCancelled     BookingStatus = "cancelled"
	StatusReExamination BookingStatus = "re-examination"
)

// Booking represents a scheduled clinical visit
type Booking struct {
	BaseModel
	PatientID   string        `gorm:"size:36;index" json:"patientId"`
	DoctorID    string        `gorm:"size:36;index" json:"doctorId"`
	ServiceID   string        `gorm:"size:36;index" json:"serviceId"`
	BookingDate time.Time     `json:"bookingDate"`
	StartTime   string        `gorm:"size:5" json:"startTime"` // "HH:MM"
	EndTime     string        `gorm:"size:5" json:"endTime"`
	Status      BookingStatus `gorm:"size:20;default:'confirmed'" json:"status"`
	Notes       string        `gorm:"type:text" json:"notes"`
	IsAnonymous bool          `gorm:"default:false" json:"isAnonymous"`

	// Relations
	Patient User    `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User    `gorm:"foreignKey:DoctorID" json:"-"`
	Service Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

// PatientDisplayName returns the patient name for display, honouring the
// anonymous flag on the booking.
func (b *Booking) PatientDisplayName() string {
	if b.IsAnonymous {
		return "Anonymous patient"
	}
	name := b.Patient.FirstName + " " + b.Patient.LastName
	if name == " " {
		return b.PatientID
	}
	return name
}
