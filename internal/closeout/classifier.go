package closeout

import (
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
)

// Category is the classification of a booking's required field groups,
// derived once from the attached service definition.
type Category int

const (
	GeneralExam Category = iota
	LabTest
	ArvTest
)

func (c Category) String() string {
	switch c {
	case LabTest:
		return "lab-test"
	case ArvTest:
		return "arv-test"
	default:
		return "general-exam"
	}
}

// Classify derives the booking category from its service definition.
// The two capability flags are not mutually exclusive in the data; the ARV
// flag takes precedence for form shaping. A nil service (or one with
// neither flag) is a general examination.
func Classify(service *models.Service) Category {
	if service == nil {
		return GeneralExam
	}
	if service.IsArvTest {
		return ArvTest
	}
	if service.IsLabTest {
		return LabTest
	}
	return GeneralExam
}

// RequiresStatusSelection reports whether closing a booking of this
// category needs an explicit terminal status. Lab tests close without one.
func (c Category) RequiresStatusSelection() bool {
	return c != LabTest
}

// RequiresRegimen reports whether the closeout must carry a regimen and
// medication schedule.
func (c Category) RequiresRegimen() bool {
	return c == ArvTest
}

// AllowsVitals reports whether vitals and diagnosis fields are offered.
func (c Category) AllowsVitals() bool {
	return c == GeneralExam
}

// AllowsLabPanel reports whether the lab result field group is offered.
func (c Category) AllowsLabPanel() bool {
	return c == LabTest
}
