package closeout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredSubSlots_LengthMatchesLabel(t *testing.T) {
	slots := []MedicationSlot{
		SlotMorning,
		SlotNoon,
		SlotEvening,
		SlotMorningNoon,
		SlotNoonEvening,
		SlotMorningEvening,
		SlotMorningNoonEvening,
	}

	for _, slot := range slots {
		subSlots, ok := RequiredSubSlots(slot)
		require.True(t, ok, "slot %q should be known", slot)
		assert.Equal(t, len(strings.Split(string(slot), "+")), len(subSlots),
			"slot %q should expand into one sub-slot per day-part", slot)
		assert.NotEmpty(t, subSlots)
	}
}

func TestRequiredSubSlots_Ordering(t *testing.T) {
	subSlots, ok := RequiredSubSlots(SlotMorningEvening)
	require.True(t, ok)
	assert.Equal(t, []SubSlot{SubSlotMorning, SubSlotEvening}, subSlots)

	subSlots, ok = RequiredSubSlots(SlotMorningNoonEvening)
	require.True(t, ok)
	assert.Equal(t, []SubSlot{SubSlotMorning, SubSlotNoon, SubSlotEvening}, subSlots)
}

func TestRequiredSubSlots_UnknownSlot(t *testing.T) {
	_, ok := RequiredSubSlots("")
	assert.False(t, ok, "the empty slot is invalid")

	_, ok = RequiredSubSlots("Midnight")
	assert.False(t, ok)
}

func TestValidateTimes_Ok(t *testing.T) {
	assert.NoError(t, ValidateTimes(SlotMorningEvening, []string{"08:00", "20:00"}))
	assert.NoError(t, ValidateTimes(SlotMorning, []string{"07:30"}))
	assert.NoError(t, ValidateTimes(SlotMorningNoonEvening, []string{"07:00", "12:15", "21:45"}))
}

func TestValidateTimes_MissingTime(t *testing.T) {
	err := ValidateTimes(SlotMorningEvening, []string{"08:00"})
	require.Error(t, err)

	var scheduleErr *ScheduleError
	require.ErrorAs(t, err, &scheduleErr)
	assert.Equal(t, 1, scheduleErr.Index)
	assert.Equal(t, SlotMorningEvening, scheduleErr.Slot)
}

func TestValidateTimes_EmptyEntry(t *testing.T) {
	err := ValidateTimes(SlotMorningNoon, []string{"08:00", "  "})
	require.Error(t, err)

	var scheduleErr *ScheduleError
	require.ErrorAs(t, err, &scheduleErr)
	assert.Equal(t, 1, scheduleErr.Index)
}

func TestValidateTimes_InvalidTimeOfDay(t *testing.T) {
	err := ValidateTimes(SlotMorning, []string{"25:00"})
	require.Error(t, err)

	var scheduleErr *ScheduleError
	require.ErrorAs(t, err, &scheduleErr)
	assert.Equal(t, 0, scheduleErr.Index)

	assert.Error(t, ValidateTimes(SlotMorning, []string{"eight"}))
}

func TestValidateTimes_TooManyTimes(t *testing.T) {
	err := ValidateTimes(SlotMorning, []string{"08:00", "20:00"})
	require.Error(t, err)

	var scheduleErr *ScheduleError
	require.ErrorAs(t, err, &scheduleErr)
	assert.Equal(t, -1, scheduleErr.Index)
}

func TestValidateTimes_UnknownSlot(t *testing.T) {
	err := ValidateTimes("", []string{"08:00"})
	require.Error(t, err)

	var scheduleErr *ScheduleError
	require.ErrorAs(t, err, &scheduleErr)
	assert.Equal(t, -1, scheduleErr.Index)
}
