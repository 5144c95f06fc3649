package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		allowed  bool
	}{
		{StatusUpcoming, StatusOngoing, true},
		{StatusUpcoming, StatusCancelled, true},
		{StatusOngoing, StatusCompleted, true},
		{StatusUpcoming, StatusCompleted, false},
		{StatusOngoing, StatusCancelled, false},
		{StatusCompleted, StatusUpcoming, false},
		{StatusCancelled, StatusUpcoming, false},
		{StatusCancelled, StatusOngoing, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestAppointmentStatus_Liveness(t *testing.T) {
	assert.True(t, StatusUpcoming.IsLive())
	assert.True(t, StatusOngoing.IsLive())
	assert.False(t, StatusCompleted.IsLive())
	assert.False(t, StatusCancelled.IsLive())
}

func TestAppointment_SyncLiveSlotKey(t *testing.T) {
	appt := &Appointment{ProviderID: "doc-1", Date: "2026-10-19", Time: "09:00", Status: StatusUpcoming}
	appt.SyncLiveSlotKey()
	require.NotNil(t, appt.LiveSlotKey)
	assert.Equal(t, "doc-1|2026-10-19|09:00", *appt.LiveSlotKey)

	appt.Status = StatusOngoing
	appt.SyncLiveSlotKey()
	assert.NotNil(t, appt.LiveSlotKey)

	appt.Status = StatusCancelled
	appt.SyncLiveSlotKey()
	assert.Nil(t, appt.LiveSlotKey)
}

func TestAppointmentTypeFor(t *testing.T) {
	assert.Equal(t, TypeCaretaker, AppointmentTypeFor(RoleCaretaker))
	assert.Equal(t, TypeDoctor, AppointmentTypeFor(RoleDoctor))
}

func TestWeeklyTemplate(t *testing.T) {
	tmpl := WeeklyTemplate{
		{Day: "monday", Slots: []string{"10:00", "09:00"}},
		{Day: "friday", Slots: nil},
	}
	assert.True(t, tmpl.HasAnySlot())
	assert.Equal(t, []string{"10:00", "09:00"}, tmpl.SlotsOn("monday"))
	assert.Nil(t, tmpl.SlotsOn("tuesday"))
	assert.True(t, tmpl.Offers("monday", "09:00"))
	assert.False(t, tmpl.Offers("monday", "9:00"))
	assert.False(t, tmpl.Offers("friday", "09:00"))

	_, dup := tmpl.DuplicateDay()
	assert.False(t, dup)

	day, dup := append(tmpl, DaySlots{Day: "monday"}).DuplicateDay()
	assert.True(t, dup)
	assert.Equal(t, "monday", day)

	assert.False(t, WeeklyTemplate{{Day: "friday"}}.HasAnySlot())
	assert.False(t, WeeklyTemplate(nil).HasAnySlot())
}

func TestRequestTransitions(t *testing.T) {
	assert.True(t, CaretakerRequestPending.CanTransitionTo(CaretakerRequestAccepted))
	assert.False(t, CaretakerRequestAccepted.CanTransitionTo(CaretakerRequestRejected))

	assert.True(t, VisitPending.CanTransitionTo(VisitAccepted))
	assert.True(t, VisitAccepted.CanTransitionTo(VisitInProgress))
	assert.True(t, VisitInProgress.CanTransitionTo(VisitCompleted))
	assert.False(t, VisitInProgress.CanTransitionTo(VisitCancelled))
	assert.False(t, VisitCompleted.CanTransitionTo(VisitPending))
}
