package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"healtogether/cmd/internal/service"
	"healtogether/cmd/internal/utils/apierror"
)

type RequestService interface {
	CreateCaretakerRequest(ctx context.Context, req *service.CreateCaretakerRequest, caller service.Caller) (*service.CaretakerRequestResponse, apierror.ErrorResponse)
	GetCaretakerRequests(ctx context.Context, caller service.Caller) ([]*service.CaretakerRequestResponse, apierror.ErrorResponse)
	DecideCaretakerRequest(ctx context.Context, id string, caller service.Caller, req *service.DecideCaretakerRequest) (*service.CaretakerRequestResponse, apierror.ErrorResponse)
	CreateVisitRequest(ctx context.Context, req *service.CreateVisitRequest, caller service.Caller) (*service.VisitRequestResponse, apierror.ErrorResponse)
	GetVisitRequests(ctx context.Context, caller service.Caller) ([]*service.VisitRequestResponse, apierror.ErrorResponse)
	TransitionVisitRequest(ctx context.Context, id string, caller service.Caller, req *service.TransitionVisitRequest) (*service.VisitRequestResponse, apierror.ErrorResponse)
}

type DefaultRequestRoute struct {
	RequestService RequestService
}

func NewRequestDefault(requestService RequestService) *DefaultRequestRoute {
	return &DefaultRequestRoute{RequestService: requestService}
}

func (r *DefaultRequestRoute) GetCaretakerRequests(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	requests, apierr := r.RequestService.GetCaretakerRequests(c.Request().Context(), caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"requests": requests}
	return c.JSON(http.StatusOK, &resp)
}

func (r *DefaultRequestRoute) CreateCaretakerRequest(c echo.Context) error {
	var req service.CreateCaretakerRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	request, apierr := r.RequestService.CreateCaretakerRequest(c.Request().Context(), &req, caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, request)
}

func (r *DefaultRequestRoute) DecideCaretakerRequest(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	var req service.DecideCaretakerRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	request, apierr := r.RequestService.DecideCaretakerRequest(c.Request().Context(), id, caller, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, request)
}

func (r *DefaultRequestRoute) GetVisitRequests(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	visits, apierr := r.RequestService.GetVisitRequests(c.Request().Context(), caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"requests": visits}
	return c.JSON(http.StatusOK, &resp)
}

func (r *DefaultRequestRoute) CreateVisitRequest(c echo.Context) error {
	var req service.CreateVisitRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	visit, apierr := r.RequestService.CreateVisitRequest(c.Request().Context(), &req, caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, visit)
}

func (r *DefaultRequestRoute) TransitionVisitRequest(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	var req service.TransitionVisitRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	visit, apierr := r.RequestService.TransitionVisitRequest(c.Request().Context(), id, caller, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, visit)
}
