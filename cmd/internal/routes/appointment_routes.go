package routes

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"healtogether/cmd/internal/service"
	"healtogether/cmd/internal/utils/apierror"
)

type AppointmentService interface {
	ListAvailableSlots(ctx context.Context, providerID string, days *int) ([]*service.SlotResponse, apierror.ErrorResponse)
	CreateBooking(ctx context.Context, req *service.BookingRequest, caller service.Caller) (*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointments(ctx context.Context, caller service.Caller) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointment(ctx context.Context, id string, caller service.Caller) (*service.AppointmentResponse, apierror.ErrorResponse)
	UpdateAppointment(ctx context.Context, id string, caller service.Caller, req *service.UpdateAppointmentRequest) (*service.AppointmentResponse, apierror.ErrorResponse)
	AddPrescription(ctx context.Context, appointmentID string, caller service.Caller, req *service.PrescriptionRequest) (*service.PrescriptionResponse, apierror.ErrorResponse)
	GetPrescriptions(ctx context.Context, caller service.Caller) ([]*service.PrescriptionResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

// GetSlots lists a provider's free slots. "days" defaults to the configured
// window.
func (a *DefaultAppointmentRoute) GetSlots(c echo.Context) error {
	providerID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	var days *int
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			apierr := apierror.NewInvalidParamTypeError("days", "integer")
			return c.JSON(apierr.Code(), apierr)
		}
		days = &n
	}

	slots, apierr := a.AppointmentService.ListAvailableSlots(c.Request().Context(), providerID, days)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"slots": slots}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	appts, apierr := a.AppointmentService.GetAppointments(c.Request().Context(), caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"appointments": appts}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAppointmentRoute) GetAppointment(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	appt, apierr := a.AppointmentService.GetAppointment(c.Request().Context(), id, caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) CreateAppointment(c echo.Context) error {
	var req service.BookingRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	appt, apierr := a.AppointmentService.CreateBooking(c.Request().Context(), &req, caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (a *DefaultAppointmentRoute) UpdateAppointment(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	var req service.UpdateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	appt, apierr := a.AppointmentService.UpdateAppointment(c.Request().Context(), id, caller, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) AddPrescription(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	var req service.PrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	prescription, apierr := a.AppointmentService.AddPrescription(c.Request().Context(), id, caller, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, prescription)
}

func (a *DefaultAppointmentRoute) GetPrescriptions(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	prescriptions, apierr := a.AppointmentService.GetPrescriptions(c.Request().Context(), caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"prescriptions": prescriptions}
	return c.JSON(http.StatusOK, &resp)
}
