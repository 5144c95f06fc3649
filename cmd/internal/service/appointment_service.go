package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"healtogether/cmd/internal/domain/entity"
	"healtogether/cmd/internal/scheduling"
	"healtogether/cmd/internal/utils"
	"healtogether/cmd/internal/utils/apierror"
)

const maxWindowDays = 60

type AppointmentRepository interface {
	Insert(ctx context.Context, appt *entity.Appointment) error
	Save(ctx context.Context, appt *entity.Appointment) error
	FindByID(ctx context.Context, id string) (*entity.Appointment, error)
	FindLiveSlot(ctx context.Context, providerID, date, time string) (*entity.Appointment, error)
	FindLiveInRange(ctx context.Context, providerID, fromDate, toDate string) ([]*entity.Appointment, error)
	FindByParticipant(ctx context.Context, userID string) ([]*entity.Appointment, error)
	AddPrescription(ctx context.Context, prescription *entity.Prescription) error
	FindPrescription(ctx context.Context, id string) (*entity.Prescription, error)
}

type BookingRequest struct {
	ProviderID string `json:"providerId" validate:"required,max=64"`

	// Only read when the caller is not the patient.
	PatientID string `json:"patientId" validate:"max=64"`
	Date      string `json:"date" validate:"required,isodate"`
	Time      string `json:"time" validate:"required,hhmm"`
	Location  string `json:"location" validate:"max=255"`
	Notes     string `json:"notes" validate:"max=2000"`
}

type UpdateAppointmentRequest struct {
	Status   *string `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
	Location *string `json:"location" validate:"omitempty,max=255"`
}

type PrescriptionRequest struct {
	Medicine string   `json:"medicine" validate:"required,max=120"`
	Dosage   string   `json:"dosage" validate:"required,max=120"`
	Times    []string `json:"times" validate:"required,min=1,max=12,nodupes,dive,hhmm"`
	Duration string   `json:"duration" validate:"max=64"`
	Notes    string   `json:"notes" validate:"max=2000"`
}

type SlotResponse struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Day  string `json:"day"`
}

type PrescriptionResponse struct {
	ID            string   `json:"id"`
	AppointmentID string   `json:"appointmentId"`
	Medicine      string   `json:"medicine"`
	Dosage        string   `json:"dosage"`
	Times         []string `json:"times"`
	Duration      string   `json:"duration"`
	Notes         string   `json:"notes,omitempty"`
	CreatedAt     string   `json:"createdAt"`

	// Set when listed outside of their appointment.
	PrescribedBy    string `json:"prescribedBy,omitempty"`
	PatientName     string `json:"patientName,omitempty"`
	AppointmentDate string `json:"appointmentDate,omitempty"`
}

type AppointmentResponse struct {
	ID            string                   `json:"id"`
	PatientID     string                   `json:"patientId"`
	PatientName   string                   `json:"patientName"`
	ProviderID    string                   `json:"providerId"`
	ProviderName  string                   `json:"providerName"`
	DoctorID      string                   `json:"doctorId,omitempty"`
	DoctorName    string                   `json:"doctorName,omitempty"`
	CaretakerID   string                   `json:"caretakerId,omitempty"`
	CaretakerName string                   `json:"caretakerName,omitempty"`
	Type          entity.AppointmentType   `json:"type"`
	Date          string                   `json:"date"`
	Time          string                   `json:"time"`
	Location      string                   `json:"location"`
	Status        entity.AppointmentStatus `json:"status"`
	Notes         string                   `json:"notes,omitempty"`
	Prescriptions []*PrescriptionResponse  `json:"prescriptions"`
	CreatedAt     string                   `json:"createdAt"`
	UpdatedAt     string                   `json:"updatedAt"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	UserRepo        UserRepository
	Validate        *validator.Validate

	// Clock anchors the availability window on today, local time.
	Clock      func() time.Time
	WindowDays int
}

func NewAppointmentService(apptRepo AppointmentRepository, userRepo UserRepository, validate *validator.Validate, windowDays int) *DefaultAppointmentService {
	if windowDays <= 0 {
		windowDays = scheduling.DefaultWindowDays
	}
	return &DefaultAppointmentService{
		AppointmentRepo: apptRepo,
		UserRepo:        userRepo,
		Validate:        validate,
		Clock:           time.Now,
		WindowDays:      windowDays,
	}
}

// ListAvailableSlots returns the provider's free slots for the given number
// of days starting today. A nil window means the configured one.
func (a *DefaultAppointmentService) ListAvailableSlots(ctx context.Context, providerID string, window *int) ([]*SlotResponse, apierror.ErrorResponse) {
	days := a.WindowDays
	if window != nil {
		days = *window
	}
	if days < 1 || days > maxWindowDays {
		return nil, apierror.InvalidWindowError
	}

	provider, apierr := a.findProvider(ctx, providerID)
	if apierr != nil {
		return nil, apierr
	}

	anchor := a.Clock()
	from, to := scheduling.DateAfter(anchor, 0), scheduling.DateAfter(anchor, days)
	booked, err := a.AppointmentRepo.FindLiveInRange(ctx, providerID, from, to)
	if err != nil {
		log.Errorf("failed to fetch live appointments of provider %s [%s - %s): %v", providerID, from, to, err)
		return nil, apierror.InternalServerError
	}

	slots := scheduling.Resolve(provider.Template(), anchor, days, booked)
	resp := make([]*SlotResponse, len(slots))
	for i, s := range slots {
		resp[i] = &SlotResponse{Date: s.Date, Time: s.Time, Day: s.Day}
	}
	return resp, nil
}

// CreateBooking books a template slot of the provider. The checks run in a
// fixed order so each failure maps to exactly one error. The final insert is
// guarded by the store's unique live slot key, which also catches a
// concurrent booking that slipped past the FindLiveSlot check.
func (a *DefaultAppointmentService) CreateBooking(ctx context.Context, req *BookingRequest, caller Caller) (*AppointmentResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	provider, apierr := a.findProvider(ctx, req.ProviderID)
	if apierr != nil {
		return nil, apierr
	}

	template := provider.Template()
	if !template.HasAnySlot() {
		return nil, apierror.NoAvailabilityError
	}

	day, err := scheduling.WeekdayOf(req.Date)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}

	if !template.Offers(day, req.Time) {
		return nil, apierror.SlotUnavailableError
	}

	existing, err := a.AppointmentRepo.FindLiveSlot(ctx, provider.ID, req.Date, req.Time)
	if err != nil {
		log.Errorf("failed to check slot %s %s of provider %s: %v", req.Date, req.Time, provider.ID, err)
		return nil, apierror.InternalServerError
	}

	if existing != nil {
		return nil, apierror.SlotTakenError
	}

	patient, apierr := a.resolvePatient(ctx, req, caller)
	if apierr != nil {
		return nil, apierr
	}

	now := utils.NowUTC()
	appt := &entity.Appointment{
		ID:           newID(),
		PatientID:    patient.ID,
		PatientName:  patient.Name,
		ProviderID:   provider.ID,
		ProviderName: provider.Name,
		Type:         entity.AppointmentTypeFor(provider.Role),
		Date:         req.Date,
		Time:         req.Time,
		Location:     req.Location,
		Status:       entity.StatusUpcoming,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = a.AppointmentRepo.Insert(ctx, appt)
	if errors.Is(err, entity.ErrLiveSlotTaken) {
		return nil, apierror.SlotTakenError
	}
	if err != nil {
		log.Errorf("failed to save appointment: %v", err)
		return nil, apierror.InternalServerError
	}
	return toAppointmentResponse(appt), nil
}

func (a *DefaultAppointmentService) GetAppointments(ctx context.Context, caller Caller) ([]*AppointmentResponse, apierror.ErrorResponse) {
	appts, err := a.AppointmentRepo.FindByParticipant(ctx, caller.UserID)
	if err != nil {
		log.Errorf("failed to find appointments for user %s: %v", caller.UserID, err)
		return nil, apierror.InternalServerError
	}

	response := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		response[i] = toAppointmentResponse(appt)
	}
	return response, nil
}

func (a *DefaultAppointmentService) GetAppointment(ctx context.Context, id string, caller Caller) (*AppointmentResponse, apierror.ErrorResponse) {
	appt, apierr := a.findParticipating(ctx, id, caller)
	if apierr != nil {
		return nil, apierr
	}
	return toAppointmentResponse(appt), nil
}

// UpdateAppointment moves the appointment along its lifecycle and edits its
// notes or location. The provider starts and completes it; either participant
// may cancel while it is upcoming. Asking for the current status is a no-op.
func (a *DefaultAppointmentService) UpdateAppointment(ctx context.Context, id string, caller Caller, req *UpdateAppointmentRequest) (*AppointmentResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	appt, apierr := a.findParticipating(ctx, id, caller)
	if apierr != nil {
		return nil, apierr
	}

	if req.Status != nil {
		next := entity.AppointmentStatus(*req.Status)
		if next != appt.Status {
			if !appt.Status.CanTransitionTo(next) {
				return nil, apierror.InvalidTransitionError
			}
			if next != entity.StatusCancelled && caller.UserID != appt.ProviderID {
				return nil, apierror.ForbiddenError
			}
			appt.Status = next
		}
	}

	if req.Notes != nil {
		appt.Notes = *req.Notes
	}
	if req.Location != nil {
		appt.Location = *req.Location
	}
	appt.UpdatedAt = utils.NowUTC()

	err := a.AppointmentRepo.Save(ctx, appt)
	if errors.Is(err, entity.ErrLiveSlotTaken) {
		return nil, apierror.SlotTakenError
	}
	if err != nil {
		log.Errorf("failed to update appointment %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toAppointmentResponse(appt), nil
}

// AddPrescription appends a prescription. Only the appointment's provider may
// prescribe, and never on a cancelled appointment.
func (a *DefaultAppointmentService) AddPrescription(ctx context.Context, appointmentID string, caller Caller, req *PrescriptionRequest) (*PrescriptionResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	appt, apierr := a.findParticipating(ctx, appointmentID, caller)
	if apierr != nil {
		return nil, apierr
	}

	if caller.UserID != appt.ProviderID {
		return nil, apierror.ForbiddenError
	}

	if appt.Status == entity.StatusCancelled {
		return nil, apierror.AppointmentClosedError
	}

	prescription := &entity.Prescription{
		ID:            newID(),
		AppointmentID: appt.ID,
		Medicine:      req.Medicine,
		Dosage:        req.Dosage,
		Times:         req.Times,
		Duration:      req.Duration,
		Notes:         req.Notes,
		CreatedAt:     utils.NowUTC(),
	}

	if err := a.AppointmentRepo.AddPrescription(ctx, prescription); err != nil {
		log.Errorf("failed to add prescription to appointment %s: %v", appt.ID, err)
		return nil, apierror.InternalServerError
	}
	return toPrescriptionResponse(prescription), nil
}

// GetPrescriptions lists the prescriptions of every appointment the caller
// takes part in.
func (a *DefaultAppointmentService) GetPrescriptions(ctx context.Context, caller Caller) ([]*PrescriptionResponse, apierror.ErrorResponse) {
	appts, err := a.AppointmentRepo.FindByParticipant(ctx, caller.UserID)
	if err != nil {
		log.Errorf("failed to find appointments for user %s: %v", caller.UserID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*PrescriptionResponse, 0)
	for _, appt := range appts {
		for i := range appt.Prescriptions {
			p := toPrescriptionResponse(&appt.Prescriptions[i])
			p.PrescribedBy = appt.ProviderName
			p.PatientName = appt.PatientName
			p.AppointmentDate = appt.Date
			resp = append(resp, p)
		}
	}
	return resp, nil
}

func (a *DefaultAppointmentService) findProvider(ctx context.Context, providerID string) (*entity.User, apierror.ErrorResponse) {
	provider, err := a.UserRepo.FindByID(ctx, providerID)
	if err != nil {
		log.Errorf("failed to fetch provider %s: %v", providerID, err)
		return nil, apierror.InternalServerError
	}

	if provider == nil || !provider.Role.IsProvider() {
		return nil, apierror.ProviderNotFoundError
	}
	return provider, nil
}

// resolvePatient books patients for themselves; anyone else must name the
// patient.
func (a *DefaultAppointmentService) resolvePatient(ctx context.Context, req *BookingRequest, caller Caller) (*entity.User, apierror.ErrorResponse) {
	patientID := req.PatientID
	if caller.Role == entity.RolePatient {
		patientID = caller.UserID
	}

	if patientID == "" {
		return nil, apierror.NewMissingParamError("patientId")
	}

	patient, err := a.UserRepo.FindByID(ctx, patientID)
	if err != nil {
		log.Errorf("failed to fetch patient %s: %v", patientID, err)
		return nil, apierror.InternalServerError
	}

	if patient == nil || patient.Role != entity.RolePatient {
		return nil, apierror.PatientNotFoundError
	}
	return patient, nil
}

// findParticipating hides appointments from users who take no part in them.
func (a *DefaultAppointmentService) findParticipating(ctx context.Context, id string, caller Caller) (*entity.Appointment, apierror.ErrorResponse) {
	appt, err := a.AppointmentRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if appt == nil || !appt.IsParticipant(caller.UserID) {
		return nil, apierror.NotFoundError
	}
	return appt, nil
}

func toPrescriptionResponse(p *entity.Prescription) *PrescriptionResponse {
	times := []string(p.Times)
	if times == nil {
		times = []string{}
	}
	return &PrescriptionResponse{
		ID:            p.ID,
		AppointmentID: p.AppointmentID,
		Medicine:      p.Medicine,
		Dosage:        p.Dosage,
		Times:         times,
		Duration:      p.Duration,
		Notes:         p.Notes,
		CreatedAt:     utils.FormatEpoch(p.CreatedAt),
	}
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:            appt.ID,
		PatientID:     appt.PatientID,
		PatientName:   appt.PatientName,
		ProviderID:    appt.ProviderID,
		ProviderName:  appt.ProviderName,
		Type:          appt.Type,
		Date:          appt.Date,
		Time:          appt.Time,
		Location:      appt.Location,
		Status:        appt.Status,
		Notes:         appt.Notes,
		Prescriptions: make([]*PrescriptionResponse, len(appt.Prescriptions)),
		CreatedAt:     utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt:     utils.FormatEpoch(appt.UpdatedAt),
	}

	if appt.Type == entity.TypeCaretaker {
		resp.CaretakerID, resp.CaretakerName = appt.ProviderID, appt.ProviderName
	} else {
		resp.DoctorID, resp.DoctorName = appt.ProviderID, appt.ProviderName
	}

	for i := range appt.Prescriptions {
		resp.Prescriptions[i] = toPrescriptionResponse(&appt.Prescriptions[i])
	}
	return resp
}
