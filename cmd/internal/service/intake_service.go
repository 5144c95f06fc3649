package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"healtogether/cmd/internal/domain/entity"
	"healtogether/cmd/internal/utils"
	"healtogether/cmd/internal/utils/apierror"
)

type IntakeRepository interface {
	Upsert(ctx context.Context, intake *entity.MedicationIntake) (*entity.MedicationIntake, error)
	FindByPrescriptions(ctx context.Context, ids []string) ([]*entity.MedicationIntake, error)
}

// PrescriptionLookup is the part of the appointment store intakes need to
// check who may see a prescription.
type PrescriptionLookup interface {
	FindByID(ctx context.Context, id string) (*entity.Appointment, error)
	FindByParticipant(ctx context.Context, userID string) ([]*entity.Appointment, error)
	FindPrescription(ctx context.Context, id string) (*entity.Prescription, error)
}

type IntakeRequest struct {
	PrescriptionID string `json:"prescriptionId" validate:"required,max=64"`
	Medicine       string `json:"medicine" validate:"max=120"`
	Date           string `json:"date" validate:"required,isodate"`
	Time           string `json:"time" validate:"required,hhmm"`
	Taken          *bool  `json:"taken" validate:"required"`
}

type IntakeResponse struct {
	ID             string `json:"id"`
	PrescriptionID string `json:"prescriptionId"`
	Medicine       string `json:"medicine"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Taken          bool   `json:"taken"`
	RecordedBy     string `json:"recordedBy,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type DefaultIntakeService struct {
	IntakeRepo    IntakeRepository
	Prescriptions PrescriptionLookup
	Validate      *validator.Validate
}

func NewIntakeService(intakeRepo IntakeRepository, prescriptions PrescriptionLookup, validate *validator.Validate) *DefaultIntakeService {
	return &DefaultIntakeService{IntakeRepo: intakeRepo, Prescriptions: prescriptions, Validate: validate}
}

// RecordIntake stores whether a dose was taken. Recording the same dose
// again overwrites the previous answer.
func (i *DefaultIntakeService) RecordIntake(ctx context.Context, req *IntakeRequest, caller Caller) (*IntakeResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := i.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	prescription, apierr := i.findVisiblePrescription(ctx, req.PrescriptionID, caller)
	if apierr != nil {
		return nil, apierr
	}

	medicine := req.Medicine
	if medicine == "" {
		medicine = prescription.Medicine
	}

	now := utils.NowUTC()
	intake := &entity.MedicationIntake{
		ID:             newID(),
		PrescriptionID: prescription.ID,
		Medicine:       medicine,
		Date:           req.Date,
		Time:           req.Time,
		Taken:          *req.Taken,
		RecordedBy:     caller.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	stored, err := i.IntakeRepo.Upsert(ctx, intake)
	if err != nil {
		log.Errorf("failed to record intake of prescription %s at %s %s: %v", req.PrescriptionID, req.Date, req.Time, err)
		return nil, apierror.InternalServerError
	}
	return toIntakeResponse(stored), nil
}

// GetIntakes lists intakes of one prescription, or of every prescription the
// caller can see when prescriptionID is empty. Newest dose first.
func (i *DefaultIntakeService) GetIntakes(ctx context.Context, prescriptionID string, caller Caller) ([]*IntakeResponse, apierror.ErrorResponse) {
	var ids []string
	if prescriptionID != "" {
		if _, apierr := i.findVisiblePrescription(ctx, prescriptionID, caller); apierr != nil {
			return nil, apierr
		}
		ids = []string{prescriptionID}
	} else {
		appts, err := i.Prescriptions.FindByParticipant(ctx, caller.UserID)
		if err != nil {
			log.Errorf("failed to find appointments for user %s: %v", caller.UserID, err)
			return nil, apierror.InternalServerError
		}
		ids = make([]string, 0)
		for _, appt := range appts {
			for _, p := range appt.Prescriptions {
				ids = append(ids, p.ID)
			}
		}
	}

	intakes, err := i.IntakeRepo.FindByPrescriptions(ctx, ids)
	if err != nil {
		log.Errorf("failed to fetch intakes for user %s: %v", caller.UserID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*IntakeResponse, len(intakes))
	for j, intake := range intakes {
		resp[j] = toIntakeResponse(intake)
	}
	return resp, nil
}

func (i *DefaultIntakeService) findVisiblePrescription(ctx context.Context, id string, caller Caller) (*entity.Prescription, apierror.ErrorResponse) {
	prescription, err := i.Prescriptions.FindPrescription(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch prescription %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if prescription == nil {
		return nil, apierror.PrescriptionNotFoundError
	}

	appt, err := i.Prescriptions.FindByID(ctx, prescription.AppointmentID)
	if err != nil {
		log.Errorf("failed to fetch appointment %s: %v", prescription.AppointmentID, err)
		return nil, apierror.InternalServerError
	}

	if appt == nil || !appt.IsParticipant(caller.UserID) {
		return nil, apierror.PrescriptionNotFoundError
	}
	return prescription, nil
}

func toIntakeResponse(intake *entity.MedicationIntake) *IntakeResponse {
	return &IntakeResponse{
		ID:             intake.ID,
		PrescriptionID: intake.PrescriptionID,
		Medicine:       intake.Medicine,
		Date:           intake.Date,
		Time:           intake.Time,
		Taken:          intake.Taken,
		RecordedBy:     intake.RecordedBy,
		CreatedAt:      utils.FormatEpoch(intake.CreatedAt),
		UpdatedAt:      utils.FormatEpoch(intake.UpdatedAt),
	}
}
