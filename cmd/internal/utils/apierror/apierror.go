package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is what every service returns instead of a raw error. It is
// serialized as-is into the response body.
type ErrorResponse interface {
	error
	Code() int
}

type SimpleError struct {
	Status  int               `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *SimpleError) Error() string {
	return e.Message
}

func (e *SimpleError) Code() int {
	return e.Status
}

func NewSimple(code int, message string) ErrorResponse {
	return &SimpleError{Status: code, Message: message}
}

func NewMissingParamError(name string) ErrorResponse {
	return &SimpleError{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Missing required parameter '%s'", name),
		Details: map[string]string{name: "required"},
	}
}

func NewInvalidParamTypeError(name, expected string) ErrorResponse {
	return &SimpleError{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Parameter '%s' must be of type %s", name, expected),
		Details: map[string]string{name: expected},
	}
}

// FromValidationError maps validator errors to field -> failed tag details.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fieldPath(fe)] = fe.Tag()
	}
	return &SimpleError{
		Status:  http.StatusBadRequest,
		Message: "Request validation failed",
		Details: details,
	}
}

// fieldPath drops the top-level struct name from the namespace, so
// "BookingRequest.time" becomes "time" and nested fields keep their path.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	for i := 0; i < len(ns); i++ {
		if ns[i] == '.' {
			return ns[i+1:]
		}
	}
	return fe.Field()
}

var (
	InternalServerError   = NewSimple(http.StatusInternalServerError, "Internal server error")
	MalformedBodyError    = NewSimple(http.StatusBadRequest, "Malformed request body")
	NotFoundError         = NewSimple(http.StatusNotFound, "Resource not found")
	InvalidAuthTokenError = NewSimple(http.StatusUnauthorized, "Invalid or missing authentication token")
	ForbiddenError        = NewSimple(http.StatusForbidden, "You are not allowed to perform this action")

	UserAlreadyExistsError    = NewSimple(http.StatusConflict, "User with this email already exists")
	UserAlreadyConfirmedError = NewSimple(http.StatusConflict, "User is already confirmed")
	CredentialsMismatchError  = NewSimple(http.StatusUnauthorized, "Invalid email or password")
	DuplicateDayError         = NewSimple(http.StatusBadRequest, "Availability declares the same weekday more than once")

	IDPInvalidPasswordError     = NewSimple(http.StatusBadRequest, "Password does not satisfy the identity provider policy")
	IDPExistingEmailError       = NewSimple(http.StatusConflict, "Email is already registered with the identity provider")
	IDPUserNotFoundError        = NewSimple(http.StatusNotFound, "User not found")
	IDPUserNotConfirmedError    = NewSimple(http.StatusForbidden, "User has not confirmed their email yet")
	IDPCredentialsMismatchError = NewSimple(http.StatusUnauthorized, "Invalid email or password")
	IDPConfirmCodeMismatchError = NewSimple(http.StatusBadRequest, "Confirmation code does not match")
	IDPConfirmCodeExpiredError  = NewSimple(http.StatusBadRequest, "Confirmation code has expired")

	ProviderNotFoundError = NewSimple(http.StatusNotFound, "Provider not found")
	PatientNotFoundError  = NewSimple(http.StatusNotFound, "Patient not found")
	NoAvailabilityError   = NewSimple(http.StatusBadRequest, "Provider has no available slots")
	SlotUnavailableError  = NewSimple(http.StatusBadRequest, "Selected time slot is not available for this provider")
	SlotTakenError        = NewSimple(http.StatusConflict, "This time slot is already booked")
	InvalidWindowError    = NewSimple(http.StatusBadRequest, "Window must be between 1 and 60 days")

	InvalidTransitionError    = NewSimple(http.StatusConflict, "Status transition is not allowed")
	PrescriptionNotFoundError = NewSimple(http.StatusNotFound, "Prescription not found")
	AppointmentClosedError    = NewSimple(http.StatusConflict, "Appointment is cancelled")
	CaretakerNotFoundError    = NewSimple(http.StatusNotFound, "Caretaker not found")
)
