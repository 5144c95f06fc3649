package entity

type CaretakerRequestStatus string

const (
	CaretakerRequestPending  CaretakerRequestStatus = "pending"
	CaretakerRequestAccepted CaretakerRequestStatus = "accepted"
	CaretakerRequestRejected CaretakerRequestStatus = "rejected"
)

func (s CaretakerRequestStatus) CanTransitionTo(next CaretakerRequestStatus) bool {
	return s == CaretakerRequestPending && (next == CaretakerRequestAccepted || next == CaretakerRequestRejected)
}

type CaretakerRequest struct {
	ID            string                 `gorm:"primaryKey;size:36" bson:"_id"`
	PatientID     string                 `gorm:"size:36;not null;index" bson:"patientId"`
	PatientName   string                 `gorm:"size:120" bson:"patientName"`
	CaretakerID   string                 `gorm:"size:36;not null;index" bson:"caretakerId"`
	CaretakerName string                 `gorm:"size:120" bson:"caretakerName"`
	Status        CaretakerRequestStatus `gorm:"size:16;not null" bson:"status"`
	RequestDate   string                 `gorm:"size:10;not null" bson:"requestDate"`
	StartDate     string                 `gorm:"size:10" bson:"startDate,omitempty"`
	Duration      string                 `gorm:"size:64" bson:"duration,omitempty"`
	CareType      string                 `gorm:"size:64" bson:"careType,omitempty"`
	Message       string                 `gorm:"type:text" bson:"message,omitempty"`
	CreatedAt     int64                  `gorm:"not null;autoCreateTime:milli" bson:"createdAt"`
	UpdatedAt     int64                  `gorm:"not null;autoUpdateTime:milli" bson:"updatedAt"`
}

type VisitStatus string

const (
	VisitPending    VisitStatus = "pending"
	VisitAccepted   VisitStatus = "accepted"
	VisitInProgress VisitStatus = "in-progress"
	VisitCompleted  VisitStatus = "completed"
	VisitCancelled  VisitStatus = "cancelled"
)

var visitTransitions = map[VisitStatus][]VisitStatus{
	VisitPending:    {VisitAccepted, VisitCancelled},
	VisitAccepted:   {VisitInProgress, VisitCancelled},
	VisitInProgress: {VisitCompleted},
}

func (s VisitStatus) CanTransitionTo(next VisitStatus) bool {
	for _, allowed := range visitTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type MedicalVisitRequest struct {
	ID                   string      `gorm:"primaryKey;size:36" bson:"_id"`
	PatientID            string      `gorm:"size:36;not null;index" bson:"patientId"`
	PatientName          string      `gorm:"size:120" bson:"patientName"`
	MedicalAssistantID   string      `gorm:"size:36;index" bson:"medicalAssistantId,omitempty"`
	MedicalAssistantName string      `gorm:"size:120" bson:"medicalAssistantName,omitempty"`
	RequestDate          string      `gorm:"size:10;not null" bson:"requestDate"`
	VisitDate            string      `gorm:"size:10;not null" bson:"visitDate"`
	VisitTime            string      `gorm:"size:5;not null" bson:"visitTime"`
	Status               VisitStatus `gorm:"size:16;not null;index" bson:"status"`
	ServiceType          string      `gorm:"size:32;not null" bson:"serviceType"`
	PatientAddress       string      `gorm:"size:255;not null" bson:"patientAddress"`
	PatientLatitude      *float64    `bson:"patientLatitude,omitempty"`
	PatientLongitude     *float64    `bson:"patientLongitude,omitempty"`
	Notes                string      `gorm:"type:text" bson:"notes,omitempty"`
	Urgency              string      `gorm:"size:8;not null" bson:"urgency"`
	EstimatedDuration    string      `gorm:"size:64" bson:"estimatedDuration,omitempty"`
	CreatedAt            int64       `gorm:"not null;autoCreateTime:milli" bson:"createdAt"`
	UpdatedAt            int64       `gorm:"not null;autoUpdateTime:milli" bson:"updatedAt"`
}
