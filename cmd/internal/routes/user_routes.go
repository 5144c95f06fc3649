package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"healtogether/cmd/internal/service"
	"healtogether/cmd/internal/utils/apierror"
)

type UserService interface {
	GetUsers(ctx context.Context, role string) ([]*service.UserResponse, apierror.ErrorResponse)
	GetUser(ctx context.Context, rawId string, caller service.Caller) (*service.UserResponse, apierror.ErrorResponse)
	Register(ctx context.Context, req *service.RegisterRequest) (*service.AuthResponse, apierror.ErrorResponse)
	Login(ctx context.Context, req *service.UserLoginRequest) (*service.AuthResponse, apierror.ErrorResponse)
	ConfirmSignup(ctx context.Context, req *service.ConfirmSignupRequest) apierror.ErrorResponse
	UpdateUser(ctx context.Context, rawId string, caller service.Caller, req *service.UpdateUserRequest) (*service.UserResponse, apierror.ErrorResponse)
}

type DefaultUserRoute struct {
	UserService UserService
}

func NewUserDefault(userService UserService) *DefaultUserRoute {
	return &DefaultUserRoute{UserService: userService}
}

func (u *DefaultUserRoute) GetUsers(c echo.Context) error {
	users, apierr := u.UserService.GetUsers(c.Request().Context(), c.QueryParam("role"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"users": users}
	return c.JSON(http.StatusOK, &resp)
}

func (u *DefaultUserRoute) GetUser(c echo.Context) error {
	rawId, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	user, apierr := u.UserService.GetUser(c.Request().Context(), rawId, caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, user)
}

// GetMe is GetUser for the "@me" alias.
func (u *DefaultUserRoute) GetMe(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	user, apierr := u.UserService.GetUser(c.Request().Context(), "@me", caller)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, user)
}

func (u *DefaultUserRoute) UpdateUser(c echo.Context) error {
	rawId, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	var req service.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, ok := callerFrom(c)
	if !ok {
		return unauthorized(c)
	}

	user, apierr := u.UserService.UpdateUser(c.Request().Context(), rawId, caller, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, user)
}

func (u *DefaultUserRoute) Register(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	resp, apierr := u.UserService.Register(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (u *DefaultUserRoute) CreateLogin(c echo.Context) error {
	var req service.UserLoginRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	resp, apierr := u.UserService.Login(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (u *DefaultUserRoute) VerifySignup(c echo.Context) error {
	var req service.ConfirmSignupRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	apierr := u.UserService.ConfirmSignup(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}
