package models

// TreatmentLine represents the WHO treatment line of an ARV regimen
type TreatmentLine string

const (
	LineFirst  TreatmentLine = "first-line"
	LineSecond TreatmentLine = "second-line"
	LineThird  TreatmentLine = "third-line"
)

// ArvRegimen represents a named antiretroviral drug protocol.
// Regimens are immutable once referenced by a result: editing one in the
// context of a booking never mutates the original record, it produces a new
// record attributed to the editing user.
type ArvRegimen struct {
	BaseModel
	Name           string        `gorm:"size:255;not null" json:"name"`
	Code           string        `gorm:"size:50" json:"code,omitempty"`
	TreatmentLine  TreatmentLine `gorm:"size:20" json:"treatmentLine"`
	RecommendedFor string        `gorm:"size:255" json:"recommendedFor"`
	Description    string        `gorm:"type:text" json:"description"`

	// Drugs and Dosages are index aligned, one entry per drug. Frequency
	// holds the per-drug frequencies joined into a single string; the
	// closeout package owns the join/split rules.
	Drugs     StringList `gorm:"type:json" json:"drugs"`
	Dosages   StringList `gorm:"type:json" json:"dosages"`
	Frequency string     `gorm:"size:255" json:"frequency"`

	Contraindications StringList `gorm:"type:json" json:"contraindications"`
	SideEffects       StringList `gorm:"type:json" json:"sideEffects"`

	CreatedByID *string `gorm:"size:36" json:"createdById,omitempty"`
	CreatedBy   *User   `gorm:"foreignKey:CreatedByID" json:"-"`
}
