package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"healtogether/cmd/internal/domain/entity"
	"healtogether/cmd/internal/scheduling"
	"healtogether/cmd/internal/utils"
	"healtogether/cmd/internal/utils/apierror"
)

type CaretakerRequestRepository interface {
	Save(ctx context.Context, req *entity.CaretakerRequest) error
	FindByID(ctx context.Context, id string) (*entity.CaretakerRequest, error)
	FindByParticipant(ctx context.Context, userID string) ([]*entity.CaretakerRequest, error)
}

type VisitRequestRepository interface {
	Save(ctx context.Context, req *entity.MedicalVisitRequest) error
	FindByID(ctx context.Context, id string) (*entity.MedicalVisitRequest, error)
	FindByPatient(ctx context.Context, patientID string) ([]*entity.MedicalVisitRequest, error)
	FindOpenOrAssigned(ctx context.Context, assistantID string) ([]*entity.MedicalVisitRequest, error)
}

type CreateCaretakerRequest struct {
	CaretakerID string `json:"caretakerId" validate:"required,max=64"`
	StartDate   string `json:"startDate" validate:"omitempty,isodate"`
	Duration    string `json:"duration" validate:"max=64"`
	CareType    string `json:"careType" validate:"max=64"`
	Message     string `json:"message" validate:"max=2000"`
}

type DecideCaretakerRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

type CaretakerRequestResponse struct {
	ID            string                        `json:"id"`
	PatientID     string                        `json:"patientId"`
	PatientName   string                        `json:"patientName"`
	CaretakerID   string                        `json:"caretakerId"`
	CaretakerName string                        `json:"caretakerName"`
	Status        entity.CaretakerRequestStatus `json:"status"`
	RequestDate   string                        `json:"requestDate"`
	StartDate     string                        `json:"startDate,omitempty"`
	Duration      string                        `json:"duration,omitempty"`
	CareType      string                        `json:"careType,omitempty"`
	Message       string                        `json:"message,omitempty"`
	CreatedAt     string                        `json:"createdAt"`
	UpdatedAt     string                        `json:"updatedAt"`
}

type CreateVisitRequest struct {
	VisitDate         string   `json:"visitDate" validate:"required,isodate"`
	VisitTime         string   `json:"visitTime" validate:"required,hhmm"`
	ServiceType       string   `json:"serviceType" validate:"required,oneof=vitals-check post-surgery-care medication-monitoring hospital-escort patient-education"`
	PatientAddress    string   `json:"patientAddress" validate:"required,max=255"`
	PatientLatitude   *float64 `json:"patientLatitude" validate:"omitempty,latitude"`
	PatientLongitude  *float64 `json:"patientLongitude" validate:"omitempty,longitude"`
	Notes             string   `json:"notes" validate:"max=2000"`
	Urgency           string   `json:"urgency" validate:"required,oneof=low medium high"`
	EstimatedDuration string   `json:"estimatedDuration" validate:"max=64"`
}

type TransitionVisitRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted in-progress completed cancelled"`
}

type VisitRequestResponse struct {
	ID                   string             `json:"id"`
	PatientID            string             `json:"patientId"`
	PatientName          string             `json:"patientName"`
	MedicalAssistantID   string             `json:"medicalAssistantId,omitempty"`
	MedicalAssistantName string             `json:"medicalAssistantName,omitempty"`
	RequestDate          string             `json:"requestDate"`
	VisitDate            string             `json:"visitDate"`
	VisitTime            string             `json:"visitTime"`
	Status               entity.VisitStatus `json:"status"`
	ServiceType          string             `json:"serviceType"`
	PatientAddress       string             `json:"patientAddress"`
	PatientLatitude      *float64           `json:"patientLatitude,omitempty"`
	PatientLongitude     *float64           `json:"patientLongitude,omitempty"`
	Notes                string             `json:"notes,omitempty"`
	Urgency              string             `json:"urgency"`
	EstimatedDuration    string             `json:"estimatedDuration,omitempty"`
	CreatedAt            string             `json:"createdAt"`
	UpdatedAt            string             `json:"updatedAt"`
}

type DefaultRequestService struct {
	CaretakerRepo CaretakerRequestRepository
	VisitRepo     VisitRequestRepository
	UserRepo      UserRepository
	Validate      *validator.Validate
	Clock         func() time.Time
}

func NewRequestService(caretakerRepo CaretakerRequestRepository, visitRepo VisitRequestRepository, userRepo UserRepository, validate *validator.Validate) *DefaultRequestService {
	return &DefaultRequestService{
		CaretakerRepo: caretakerRepo,
		VisitRepo:     visitRepo,
		UserRepo:      userRepo,
		Validate:      validate,
		Clock:         time.Now,
	}
}

// CreateCaretakerRequest lets a patient ask a caretaker for care.
func (r *DefaultRequestService) CreateCaretakerRequest(ctx context.Context, req *CreateCaretakerRequest, caller Caller) (*CaretakerRequestResponse, apierror.ErrorResponse) {
	if caller.Role != entity.RolePatient {
		return nil, apierror.ForbiddenError
	}

	utils.Sanitize(req)
	if err := r.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	caretaker, apierr := r.findUser(ctx, req.CaretakerID)
	if apierr != nil {
		return nil, apierr
	}

	if caretaker == nil || caretaker.Role != entity.RoleCaretaker {
		return nil, apierror.CaretakerNotFoundError
	}

	patient, apierr := r.findUser(ctx, caller.UserID)
	if apierr != nil {
		return nil, apierr
	}

	if patient == nil {
		return nil, apierror.NotFoundError
	}

	now := utils.NowUTC()
	request := &entity.CaretakerRequest{
		ID:            newID(),
		PatientID:     patient.ID,
		PatientName:   patient.Name,
		CaretakerID:   caretaker.ID,
		CaretakerName: caretaker.Name,
		Status:        entity.CaretakerRequestPending,
		RequestDate:   scheduling.DateAfter(r.Clock(), 0),
		StartDate:     req.StartDate,
		Duration:      req.Duration,
		CareType:      req.CareType,
		Message:       req.Message,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := r.CaretakerRepo.Save(ctx, request); err != nil {
		log.Errorf("failed to save caretaker request: %v", err)
		return nil, apierror.InternalServerError
	}
	return toCaretakerRequestResponse(request), nil
}

func (r *DefaultRequestService) GetCaretakerRequests(ctx context.Context, caller Caller) ([]*CaretakerRequestResponse, apierror.ErrorResponse) {
	requests, err := r.CaretakerRepo.FindByParticipant(ctx, caller.UserID)
	if err != nil {
		log.Errorf("failed to fetch caretaker requests of user %s: %v", caller.UserID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*CaretakerRequestResponse, len(requests))
	for i, request := range requests {
		resp[i] = toCaretakerRequestResponse(request)
	}
	return resp, nil
}

// DecideCaretakerRequest accepts or rejects a pending request. Only the
// addressed caretaker decides.
func (r *DefaultRequestService) DecideCaretakerRequest(ctx context.Context, id string, caller Caller, req *DecideCaretakerRequest) (*CaretakerRequestResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := r.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	request, err := r.CaretakerRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch caretaker request %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if request == nil || (request.PatientID != caller.UserID && request.CaretakerID != caller.UserID) {
		return nil, apierror.NotFoundError
	}

	if request.CaretakerID != caller.UserID {
		return nil, apierror.ForbiddenError
	}

	next := entity.CaretakerRequestStatus(req.Status)
	if !request.Status.CanTransitionTo(next) {
		return nil, apierror.InvalidTransitionError
	}

	request.Status = next
	request.UpdatedAt = utils.NowUTC()
	if err := r.CaretakerRepo.Save(ctx, request); err != nil {
		log.Errorf("failed to update caretaker request %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toCaretakerRequestResponse(request), nil
}

func (r *DefaultRequestService) CreateVisitRequest(ctx context.Context, req *CreateVisitRequest, caller Caller) (*VisitRequestResponse, apierror.ErrorResponse) {
	if caller.Role != entity.RolePatient {
		return nil, apierror.ForbiddenError
	}

	utils.Sanitize(req)
	if err := r.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	patient, apierr := r.findUser(ctx, caller.UserID)
	if apierr != nil {
		return nil, apierr
	}

	if patient == nil {
		return nil, apierror.NotFoundError
	}

	now := utils.NowUTC()
	visit := &entity.MedicalVisitRequest{
		ID:                newID(),
		PatientID:         patient.ID,
		PatientName:       patient.Name,
		RequestDate:       scheduling.DateAfter(r.Clock(), 0),
		VisitDate:         req.VisitDate,
		VisitTime:         req.VisitTime,
		Status:            entity.VisitPending,
		ServiceType:       req.ServiceType,
		PatientAddress:    req.PatientAddress,
		PatientLatitude:   req.PatientLatitude,
		PatientLongitude:  req.PatientLongitude,
		Notes:             req.Notes,
		Urgency:           req.Urgency,
		EstimatedDuration: req.EstimatedDuration,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := r.VisitRepo.Save(ctx, visit); err != nil {
		log.Errorf("failed to save medical visit request: %v", err)
		return nil, apierror.InternalServerError
	}
	return toVisitRequestResponse(visit), nil
}

// GetVisitRequests shows patients their own visits. Medical assistants see
// every pending visit plus those assigned to them.
func (r *DefaultRequestService) GetVisitRequests(ctx context.Context, caller Caller) ([]*VisitRequestResponse, apierror.ErrorResponse) {
	var (
		visits []*entity.MedicalVisitRequest
		err    error
	)
	switch caller.Role {
	case entity.RolePatient:
		visits, err = r.VisitRepo.FindByPatient(ctx, caller.UserID)
	case entity.RoleMedicalAssistant:
		visits, err = r.VisitRepo.FindOpenOrAssigned(ctx, caller.UserID)
	default:
		return nil, apierror.ForbiddenError
	}

	if err != nil {
		log.Errorf("failed to fetch medical visit requests of user %s: %v", caller.UserID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*VisitRequestResponse, len(visits))
	for i, visit := range visits {
		resp[i] = toVisitRequestResponse(visit)
	}
	return resp, nil
}

// TransitionVisitRequest moves a visit along its lifecycle. A medical
// assistant accepting a pending visit is assigned to it and drives it from
// then on; the patient may only cancel.
func (r *DefaultRequestService) TransitionVisitRequest(ctx context.Context, id string, caller Caller, req *TransitionVisitRequest) (*VisitRequestResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := r.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	visit, err := r.VisitRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch medical visit request %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if visit == nil {
		return nil, apierror.NotFoundError
	}

	next := entity.VisitStatus(req.Status)
	switch caller.Role {
	case entity.RolePatient:
		if visit.PatientID != caller.UserID {
			return nil, apierror.NotFoundError
		}
		if next != entity.VisitCancelled {
			return nil, apierror.ForbiddenError
		}
	case entity.RoleMedicalAssistant:
		if visit.Status == entity.VisitPending && next != entity.VisitAccepted {
			return nil, apierror.ForbiddenError
		}
		if visit.Status != entity.VisitPending && visit.MedicalAssistantID != caller.UserID {
			return nil, apierror.ForbiddenError
		}
	default:
		return nil, apierror.ForbiddenError
	}

	if !visit.Status.CanTransitionTo(next) {
		return nil, apierror.InvalidTransitionError
	}

	if next == entity.VisitAccepted {
		assistant, apierr := r.findUser(ctx, caller.UserID)
		if apierr != nil {
			return nil, apierr
		}
		visit.MedicalAssistantID = caller.UserID
		if assistant != nil {
			visit.MedicalAssistantName = assistant.Name
		}
	}

	visit.Status = next
	visit.UpdatedAt = utils.NowUTC()
	if err := r.VisitRepo.Save(ctx, visit); err != nil {
		log.Errorf("failed to update medical visit request %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toVisitRequestResponse(visit), nil
}

func (r *DefaultRequestService) findUser(ctx context.Context, id string) (*entity.User, apierror.ErrorResponse) {
	user, err := r.UserRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to find user (%s) by id: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return user, nil
}

func toCaretakerRequestResponse(req *entity.CaretakerRequest) *CaretakerRequestResponse {
	return &CaretakerRequestResponse{
		ID:            req.ID,
		PatientID:     req.PatientID,
		PatientName:   req.PatientName,
		CaretakerID:   req.CaretakerID,
		CaretakerName: req.CaretakerName,
		Status:        req.Status,
		RequestDate:   req.RequestDate,
		StartDate:     req.StartDate,
		Duration:      req.Duration,
		CareType:      req.CareType,
		Message:       req.Message,
		CreatedAt:     utils.FormatEpoch(req.CreatedAt),
		UpdatedAt:     utils.FormatEpoch(req.UpdatedAt),
	}
}

func toVisitRequestResponse(visit *entity.MedicalVisitRequest) *VisitRequestResponse {
	return &VisitRequestResponse{
		ID:                   visit.ID,
		PatientID:            visit.PatientID,
		PatientName:          visit.PatientName,
		MedicalAssistantID:   visit.MedicalAssistantID,
		MedicalAssistantName: visit.MedicalAssistantName,
		RequestDate:          visit.RequestDate,
		VisitDate:            visit.VisitDate,
		VisitTime:            visit.VisitTime,
		Status:               visit.Status,
		ServiceType:          visit.ServiceType,
		PatientAddress:       visit.PatientAddress,
		PatientLatitude:      visit.PatientLatitude,
		PatientLongitude:     visit.PatientLongitude,
		Notes:                visit.Notes,
		Urgency:              visit.Urgency,
		EstimatedDuration:    visit.EstimatedDuration,
		CreatedAt:            utils.FormatEpoch(visit.CreatedAt),
		UpdatedAt:            utils.FormatEpoch(visit.UpdatedAt),
	}
}
