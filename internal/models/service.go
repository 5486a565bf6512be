package models

// Service represents a bookable service definition (examination, lab test,
// ARV treatment visit). The two capability flags drive which field groups a
// closeout requires; a service with neither flag is a general examination.
type Service struct {
	BaseModel
	Name            string  `gorm:"size:255;not null" json:"name"`
	Description     string  `gorm:"type:text" json:"description"`
	Price           float64 `gorm:"default:0" json:"price"`
	DurationMinutes int     `gorm:"default:30" json:"durationMinutes"`
	IsLabTest       bool    `gorm:"default:false" json:"isLabTest"`
	IsArvTest       bool    `gorm:"default:false" json:"isArvTest"`
}
