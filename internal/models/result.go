package models

import (
	"time"
)

// ResultType discriminates how a lab test value should be read
type ResultType string

const (
	ResultTypeQualitative  ResultType = "qualitative"
	ResultTypeQuantitative ResultType = "quantitative"
)

// ViralLoadInterpretation classifies a measured HIV viral load
type ViralLoadInterpretation string

const (
	ViralLoadUndetectable ViralLoadInterpretation = "undetectable"
	ViralLoadSuppressed   ViralLoadInterpretation = "suppressed"
	ViralLoadHigh         ViralLoadInterpretation = "high"
)

// CD4Interpretation classifies a measured CD4 cell count
type CD4Interpretation string

const (
	CD4Normal   CD4Interpretation = "normal"
	CD4Low      CD4Interpretation = "low"
	CD4Critical CD4Interpretation = "critical"
)

// Result represents the clinical record produced when a booking is closed
// out. Exactly one result exists per booking; for lab-test bookings a
// resubmission appends to the notes of the existing record instead of
// creating a second one.
type Result struct {
	BaseModel
	BookingID  string `gorm:"size:36;uniqueIndex;not null" json:"bookingId"`
	ResultName string `gorm:"size:255;not null" json:"resultName"`

	// General examination fields
	Symptoms           string `gorm:"type:text" json:"symptoms,omitempty"`
	Diagnosis          string `gorm:"type:text" json:"diagnosis,omitempty"`
	Notes              string `gorm:"type:text" json:"notes,omitempty"`
	InterpretationNote string `gorm:"type:text" json:"interpretationNote,omitempty"`

	// Vitals
	WeightKg      *float64 `json:"weightKg,omitempty"`
	HeightCm      *float64 `json:"heightCm,omitempty"`
	BMI           *float64 `json:"bmi,omitempty"`
	BloodPressure string   `gorm:"size:20" json:"bloodPressure,omitempty"`
	Pulse         *int     `json:"pulse,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`

	// Lab panel
	SampleType      string                  `gorm:"size:100" json:"sampleType,omitempty"`
	TestMethod      string                  `gorm:"size:100" json:"testMethod,omitempty"`
	ResultType      ResultType              `gorm:"size:20" json:"resultType,omitempty"`
	TestValue       string                  `gorm:"size:100" json:"testValue,omitempty"`
	Unit            string                  `gorm:"size:50" json:"unit,omitempty"`
	ReferenceRange  string                  `gorm:"size:100" json:"referenceRange,omitempty"`
	ViralLoad       *float64                `json:"viralLoad,omitempty"`
	ViralLoadRange  string                  `gorm:"size:100" json:"viralLoadRange,omitempty"`
	ViralLoadResult ViralLoadInterpretation `gorm:"size:20" json:"viralLoadResult,omitempty"`
	CD4Count        *int                    `json:"cd4Count,omitempty"`
	CD4Range        string                  `gorm:"size:100" json:"cd4Range,omitempty"`
	CD4Result       CD4Interpretation       `gorm:"size:20" json:"cd4Result,omitempty"`
	CoInfections    StringList              `gorm:"type:json" json:"coInfections,omitempty"`
	P24Antigen      *float64                `json:"p24Antigen,omitempty"`
	HIVAntibody     *float64                `json:"hivAntibody,omitempty"`

	// Regimen linkage, present only for ARV treatment visits
	ArvRegimenID      *string    `gorm:"size:36;index" json:"arvRegimenId,omitempty"`
	MedicationSlot    string     `gorm:"size:50" json:"medicationSlot,omitempty"`
	MedicationTimes   StringList `gorm:"type:json" json:"medicationTimes,omitempty"`
	ReExaminationDate *time.Time `json:"reExaminationDate,omitempty"`

	// Relations
	Booking    Booking     `gorm:"foreignKey:BookingID" json:"-"`
	ArvRegimen *ArvRegimen `gorm:"foreignKey:ArvRegimenID" json:"arvRegimen,omitempty"`
}
