package entity

import "strings"

type AppointmentStatus string

const (
	StatusUpcoming  AppointmentStatus = "upcoming"
	StatusOngoing   AppointmentStatus = "ongoing"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusUpcoming: {StatusOngoing, StatusCancelled},
	StatusOngoing:  {StatusCompleted},
}

// IsLive reports whether an appointment in this status occupies its slot.
func (s AppointmentStatus) IsLive() bool {
	return s == StatusUpcoming || s == StatusOngoing
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type AppointmentType string

const (
	TypeDoctor    AppointmentType = "doctor"
	TypeCaretaker AppointmentType = "caretaker"
)

// AppointmentTypeFor maps a provider role to the kind of appointment it serves.
func AppointmentTypeFor(role Role) AppointmentType {
	if role == RoleCaretaker {
		return TypeCaretaker
	}
	return TypeDoctor
}

type Appointment struct {
	ID           string            `gorm:"primaryKey;size:36" bson:"_id"`
	PatientID    string            `gorm:"size:36;not null;index" bson:"patientId"`
	PatientName  string            `gorm:"size:120" bson:"patientName"`
	ProviderID   string            `gorm:"size:36;not null;index:idx_provider_date" bson:"providerId"` // References: users(id)
	ProviderName string            `gorm:"size:120" bson:"providerName"`
	Type         AppointmentType   `gorm:"size:16;not null" bson:"type"`
	Date         string            `gorm:"size:10;not null;index:idx_provider_date" bson:"date"`
	Time         string            `gorm:"size:5;not null" bson:"time"`
	Location     string            `gorm:"size:255" bson:"location,omitempty"`
	Status       AppointmentStatus `gorm:"size:16;not null" bson:"status"`
	Notes        string            `gorm:"type:text" bson:"notes,omitempty"`

	// Set while the status is live, nil once terminal. Unique in storage, so
	// two live appointments can never hold the same provider slot.
	LiveSlotKey *string `gorm:"uniqueIndex;size:80" bson:"liveSlotKey,omitempty"`

	CreatedAt int64 `gorm:"not null;autoCreateTime:milli" bson:"createdAt"`
	UpdatedAt int64 `gorm:"not null;autoUpdateTime:milli" bson:"updatedAt"`

	// Relations
	Prescriptions []Prescription `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE" bson:"prescriptions"`
}

func LiveSlotKey(providerID, date, time string) string {
	return strings.Join([]string{providerID, date, time}, "|")
}

// SyncLiveSlotKey must run before every write that may change Status.
func (a *Appointment) SyncLiveSlotKey() {
	if a.Status.IsLive() {
		key := LiveSlotKey(a.ProviderID, a.Date, a.Time)
		a.LiveSlotKey = &key
		return
	}
	a.LiveSlotKey = nil
}

func (a *Appointment) IsParticipant(userID string) bool {
	return a.PatientID == userID || a.ProviderID == userID
}
