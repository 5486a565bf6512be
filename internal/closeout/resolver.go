package closeout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
)

// frequencySeparator joins the per-drug frequencies into the single stored
// frequency column on ArvRegimen.
const frequencySeparator = "; "

// RegimenDraft is the edited regimen field set captured from the closeout
// form. Drugs, Dosages and Frequencies are index aligned.
type RegimenDraft struct {
	Name              string
	Code              string
	TreatmentLine     models.TreatmentLine
	RecommendedFor    string
	Description       string
	Drugs             []string
	Dosages           []string
	Frequencies       []string
	Contraindications []string
	SideEffects       []string
}

// DraftFromRegimen converts a stored regimen back into the draft shape the
// form edits, splitting the joined frequency column into the per-drug list.
func DraftFromRegimen(r *models.ArvRegimen) RegimenDraft {
	return RegimenDraft{
		Name:              r.Name,
		Code:              r.Code,
		TreatmentLine:     r.TreatmentLine,
		RecommendedFor:    r.RecommendedFor,
		Description:       r.Description,
		Drugs:             r.Drugs,
		Dosages:           r.Dosages,
		Frequencies:       SplitFrequencies(r.Frequency),
		Contraindications: r.Contraindications,
		SideEffects:       r.SideEffects,
	}
}

// Modified reports whether the draft is semantically different from the
// original across every edited field. List comparison is order-sensitive:
// reordering drugs counts as a modification. An absent original is always a
// modification.
func (d RegimenDraft) Modified(original *models.ArvRegimen) bool {
	if original == nil {
		return true
	}
	o := DraftFromRegimen(original)
	if d.Name != o.Name ||
		d.Code != o.Code ||
		d.TreatmentLine != o.TreatmentLine ||
		d.RecommendedFor != o.RecommendedFor ||
		d.Description != o.Description {
		return true
	}
	return !equalStringLists(d.Drugs, o.Drugs) ||
		!equalStringLists(d.Dosages, o.Dosages) ||
		!equalStringLists(d.Frequencies, o.Frequencies) ||
		!equalStringLists(d.Contraindications, o.Contraindications) ||
		!equalStringLists(d.SideEffects, o.SideEffects)
}

func equalStringLists(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// JoinFrequencies collapses the per-drug frequencies into the single stored
// representation.
func JoinFrequencies(frequencies []string) string {
	return strings.Join(frequencies, frequencySeparator)
}

// SplitFrequencies is the inverse of JoinFrequencies.
func SplitFrequencies(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, frequencySeparator)
}

// FormatFrequency renders a numeric "times per day" value for display,
// e.g. "2" becomes "2 times/day". Non-numeric free text passes through
// unchanged. The stored representation is never affected.
func FormatFrequency(value string) string {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return value
	}
	if n == 1 {
		return "1 time/day"
	}
	return fmt.Sprintf("%d times/day", n)
}

// ResolveRegimen decides whether the edited regimen is a reference to the
// original catalog entry or must be persisted as a new record, and returns
// the regimen id the result should reference. The original record is never
// mutated. Creation happens strictly before any result write, so a result
// can never reference a regimen id that does not exist.
func ResolveRegimen(ctx context.Context, catalog RegimenCatalog, original *models.ArvRegimen, draft RegimenDraft, actorID string) (string, error) {
	if original != nil && !draft.Modified(original) {
		return original.ID, nil
	}

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		name = fmt.Sprintf("Custom Regimen %d", time.Now().Unix())
	}

	regimen := &models.ArvRegimen{
		Name:              name,
		Code:              draft.Code,
		TreatmentLine:     draft.TreatmentLine,
		RecommendedFor:    draft.RecommendedFor,
		Description:       draft.Description,
		Drugs:             models.StringList(draft.Drugs),
		Dosages:           models.StringList(draft.Dosages),
		Frequency:         JoinFrequencies(draft.Frequencies),
		Contraindications: models.StringList(draft.Contraindications),
		SideEffects:       models.StringList(draft.SideEffects),
	}
	if actorID != "" {
		regimen.CreatedByID = &actorID
	}

	created, err := catalog.Create(ctx, regimen)
	if err != nil {
		return "", failAt(StepResolvingRegimen, err)
	}
	return created.ID, nil
}
