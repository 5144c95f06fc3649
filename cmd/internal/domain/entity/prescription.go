package entity

import "gorm.io/datatypes"

// Prescription is append-only: there is no edit or delete path.
type Prescription struct {
	ID            string                     `gorm:"primaryKey;size:36" bson:"id"`
	AppointmentID string                     `gorm:"size:36;not null;index" bson:"appointmentId"`
	Medicine      string                     `gorm:"size:120;not null" bson:"medicine"`
	Dosage        string                     `gorm:"size:120;not null" bson:"dosage"`
	Times         datatypes.JSONSlice[string] `bson:"times"`
	Duration      string                     `gorm:"size:64" bson:"duration"`
	Notes         string                     `gorm:"type:text" bson:"notes,omitempty"`
	CreatedAt     int64                      `gorm:"not null;autoCreateTime:milli" bson:"createdAt"`
}

// MedicationIntake records whether one scheduled dose was taken. The
// (PrescriptionID, Date, Time) triple identifies the dose.
type MedicationIntake struct {
	ID             string `gorm:"primaryKey;size:36" bson:"_id"`
	PrescriptionID string `gorm:"size:36;not null;uniqueIndex:idx_intake_dose" bson:"prescriptionId"`
	Date           string `gorm:"size:10;not null;uniqueIndex:idx_intake_dose" bson:"date"`
	Time           string `gorm:"size:5;not null;uniqueIndex:idx_intake_dose" bson:"time"`
	Medicine       string `gorm:"size:120" bson:"medicine"`
	Taken          bool   `gorm:"not null" bson:"taken"`
	RecordedBy     string `gorm:"size:36" bson:"recordedBy"`
	CreatedAt      int64  `gorm:"not null;autoCreateTime:milli" bson:"createdAt"`
	UpdatedAt      int64  `gorm:"not null;autoUpdateTime:milli" bson:"updatedAt"`
}
