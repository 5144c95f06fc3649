package entity

import "gorm.io/datatypes"

type Role string

const (
	RolePatient          Role = "patient"
	RoleDoctor           Role = "doctor"
	RoleCaretaker        Role = "caretaker"
	RoleMedicalAssistant Role = "medical-assistant"
)

func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleCaretaker, RoleMedicalAssistant:
		return true
	}
	return false
}

// IsProvider reports whether users of this role offer bookable time.
func (r Role) IsProvider() bool {
	return r == RoleDoctor || r == RoleCaretaker
}

type User struct {
	ID            string `gorm:"primaryKey;size:36" bson:"_id"`
	SubUUID       string `gorm:"size:64;index" bson:"sub,omitempty"`
	Name          string `gorm:"size:120;not null" bson:"name"`
	Email         string `gorm:"uniqueIndex;size:255;not null" bson:"email"`
	PasswordHash  string `gorm:"size:255" bson:"password,omitempty"`
	Role          Role   `gorm:"size:32;not null;index" bson:"role"`
	EmailVerified bool   `gorm:"not null" bson:"emailVerified"`
	Verified      bool   `gorm:"not null" bson:"verified"`
	Available     *bool  `bson:"available,omitempty"`

	Specialization string                     `gorm:"size:120" bson:"specialization,omitempty"`
	Experience     string                     `gorm:"size:64" bson:"experience,omitempty"`
	Languages      datatypes.JSONSlice[string] `bson:"languages,omitempty"`
	Bio            string                     `gorm:"type:text" bson:"bio,omitempty"`
	Gender         string                     `gorm:"size:32" bson:"gender,omitempty"`
	Phone          string                     `gorm:"size:32" bson:"phone,omitempty"`

	Address   string   `gorm:"size:255" bson:"address,omitempty"`
	City      string   `gorm:"size:120" bson:"city,omitempty"`
	State     string   `gorm:"size:120" bson:"state,omitempty"`
	ZipCode   string   `gorm:"size:20" bson:"zipCode,omitempty"`
	Country   string   `gorm:"size:120" bson:"country,omitempty"`
	Latitude  *float64 `bson:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty"`

	// Weekly availability template, providers only.
	AvailableSlots datatypes.JSONSlice[DaySlots] `bson:"availableSlots,omitempty"`

	TransportationType string                     `gorm:"size:64" bson:"transportationType,omitempty"`
	AvailableDays      datatypes.JSONSlice[string] `bson:"availableDays,omitempty"`

	MedicalID             string `gorm:"size:64" bson:"medicalId,omitempty"`
	InternshipCertificate string `gorm:"size:255" bson:"internshipCertificate,omitempty"`

	CreatedAt int64 `gorm:"not null;autoCreateTime:milli" bson:"createdAt"`
	UpdatedAt int64 `gorm:"not null;autoUpdateTime:milli" bson:"updatedAt"`
}

// Template returns the user's weekly availability declaration.
func (u *User) Template() WeeklyTemplate {
	return WeeklyTemplate(u.AvailableSlots)
}

func (u *User) SetTemplate(t WeeklyTemplate) {
	u.AvailableSlots = datatypes.JSONSlice[DaySlots](t)
}
