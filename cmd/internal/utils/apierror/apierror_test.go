package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingPayload struct {
	Date string `validate:"required"`
	Time string `validate:"required,len=5"`
}

func TestFromValidationError(t *testing.T) {
	err := validator.New().Struct(&bookingPayload{Time: "9:00"})
	require.Error(t, err)

	apierr := FromValidationError(err)
	assert.Equal(t, http.StatusBadRequest, apierr.Code())

	body, jerr := json.Marshal(apierr)
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"code":400,"message":"Request validation failed","details":{"Date":"required","Time":"len"}}`, string(body))
}

func TestFromValidationError_NonValidationError(t *testing.T) {
	assert.Equal(t, MalformedBodyError, FromValidationError(errors.New("boom")))
}

func TestParamErrors(t *testing.T) {
	missing := NewMissingParamError("id")
	assert.Equal(t, http.StatusBadRequest, missing.Code())
	assert.Contains(t, missing.Error(), "'id'")

	invalid := NewInvalidParamTypeError("days", "int")
	assert.Equal(t, http.StatusBadRequest, invalid.Code())
	assert.Contains(t, invalid.Error(), "int")
}

func TestBookingErrorsAreDistinct(t *testing.T) {
	errs := []ErrorResponse{ProviderNotFoundError, NoAvailabilityError, SlotUnavailableError, SlotTakenError}
	seen := map[string]bool{}
	for _, e := range errs {
		assert.False(t, seen[e.Error()], "duplicate message %q", e.Error())
		seen[e.Error()] = true
	}
	assert.Equal(t, http.StatusNotFound, ProviderNotFoundError.Code())
	assert.Equal(t, http.StatusConflict, SlotTakenError.Code())
}
