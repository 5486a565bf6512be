package closeout

import (
	"strings"
	"time"
)

// MedicationSlot is a coarse time-of-day dosing window selected on the ARV
// closeout form. Each slot expands deterministically into one, two or three
// sub-slots, and the operator must supply exactly one time per sub-slot.
type MedicationSlot string

const (
	SlotMorning            MedicationSlot = "Morning"
	SlotNoon               MedicationSlot = "Noon"
	SlotEvening            MedicationSlot = "Evening"
	SlotMorningNoon        MedicationSlot = "Morning+Noon"
	SlotNoonEvening        MedicationSlot = "Noon+Evening"
	SlotMorningEvening     MedicationSlot = "Morning+Evening"
	SlotMorningNoonEvening MedicationSlot = "Morning+Noon+Evening"
)

// SubSlot is a single day-part within a medication slot.
type SubSlot string

const (
	SubSlotMorning SubSlot = "Morning"
	SubSlotNoon    SubSlot = "Noon"
	SubSlotEvening SubSlot = "Evening"
)

var slotSubSlots = map[MedicationSlot][]SubSlot{
	SlotMorning:            {SubSlotMorning},
	SlotNoon:               {SubSlotNoon},
	SlotEvening:            {SubSlotEvening},
	SlotMorningNoon:        {SubSlotMorning, SubSlotNoon},
	SlotNoonEvening:        {SubSlotNoon, SubSlotEvening},
	SlotMorningEvening:     {SubSlotMorning, SubSlotEvening},
	SlotMorningNoonEvening: {SubSlotMorning, SubSlotNoon, SubSlotEvening},
}

const timeOfDayLayout = "15:04"

// RequiredSubSlots returns the ordered sub-slots a medication slot expands
// into. The second return value is false for an unknown or empty slot; no
// slot expands into zero sub-slots.
func RequiredSubSlots(slot MedicationSlot) ([]SubSlot, bool) {
	subSlots, ok := slotSubSlots[slot]
	if !ok {
		return nil, false
	}
	out := make([]SubSlot, len(subSlots))
	copy(out, subSlots)
	return out, true
}

// ValidateTimes checks that the supplied times satisfy the medication slot:
// exactly one entry per sub-slot, each a non-empty HH:MM time of day.
func ValidateTimes(slot MedicationSlot, times []string) error {
	subSlots, ok := RequiredSubSlots(slot)
	if !ok {
		return &ScheduleError{Slot: slot, Index: -1, Message: "unknown medication slot"}
	}
	if len(times) > len(subSlots) {
		return &ScheduleError{Slot: slot, Index: -1, Message: "more times supplied than the slot allows"}
	}
	for i, sub := range subSlots {
		if i >= len(times) || strings.TrimSpace(times[i]) == "" {
			return &ScheduleError{Slot: slot, Index: i, Message: "missing time for " + string(sub)}
		}
		if _, err := time.Parse(timeOfDayLayout, times[i]); err != nil {
			return &ScheduleError{Slot: slot, Index: i, Message: "not a valid HH:MM time of day"}
		}
	}
	return nil
}
