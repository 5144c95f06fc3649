package routes

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"healtogether/cmd/internal/service"
	"healtogether/cmd/internal/utils/apierror"
)

type IntakeService interface {
	RecordIntake(ctx context.Context, req *service.IntakeRequest, caller service.Caller) (*service.IntakeResponse, apierror.ErrorResponse)
	GetIntakes(ctx context.Context, prescriptionID string, caller service.Caller) ([]*service.IntakeResponse, apierror.ErrorResponse)
}

type DefaultIntakeRoute struct {
	IntakeService IntakeService
}

func NewIntakeDefault(intakeService IntakeService) *DefaultIntakeRoute {
	return &DefaultIntakeRoute{IntakeService: intakeService}
}

func (i *DefaultIntakeRoute) GetIntakes(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	prescriptionID := strings.TrimSpace(c.QueryParam("prescriptionId"))
	intakes, apierr := i.IntakeService.GetIntakes(c.Request().Context(), prescriptionID, caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"intakes": intakes}
	return c.JSON(http.StatusOK, &resp)
}

func (i *DefaultIntakeRoute) RecordIntake(c echo.Context) error {
	var req service.IntakeRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	intake, apierr := i.IntakeService.RecordIntake(c.Request().Context(), &req, caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, intake)
}
