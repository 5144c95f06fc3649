package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passwordPayload struct {
	Password string `json:"password" validate:"hasupper,haslower,hasdigit,hasspecial,nospaces"`
}

type slotPayload struct {
	Date  string   `json:"date" validate:"isodate"`
	Time  string   `json:"time" validate:"hhmm"`
	Day   string   `json:"day" validate:"weekday"`
	Times []string `json:"times" validate:"nodupes,dive,hhmm"`
}

func TestPasswordTags(t *testing.T) {
	validate := New()

	assert.NoError(t, validate.Struct(&passwordPayload{Password: "Str0ng!pass"}))

	cases := map[string]string{
		"nouppercase1!": "hasupper",
		"NOLOWERCASE1!": "haslower",
		"NoDigitsHere!": "hasdigit",
		"NoSpecial123":  "hasspecial",
		"Has Space1!":   "nospaces",
	}
	for password, tag := range cases {
		err := validate.Struct(&passwordPayload{Password: password})
		require.Error(t, err, password)

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, tag, verrs[0].Tag(), password)
		assert.Equal(t, "password", verrs[0].Field())
	}
}

func TestSlotTags(t *testing.T) {
	validate := New()

	ok := &slotPayload{Date: "2026-10-19", Time: "09:00", Day: "monday", Times: []string{"08:00", "20:00"}}
	assert.NoError(t, validate.Struct(ok))

	bad := []*slotPayload{
		{Date: "2026-13-01", Time: "09:00", Day: "monday"},
		{Date: "19/10/2026", Time: "09:00", Day: "monday"},
		{Date: "2026-10-19", Time: "9:00", Day: "monday"},
		{Date: "2026-10-19", Time: "24:00", Day: "monday"},
		{Date: "2026-10-19", Time: "09:00", Day: "Monday"},
		{Date: "2026-10-19", Time: "09:00", Day: "monday", Times: []string{"08:00", "08:00"}},
		{Date: "2026-10-19", Time: "09:00", Day: "monday", Times: []string{"8am"}},
	}
	for _, p := range bad {
		assert.Error(t, validate.Struct(p), "%+v", p)
	}
}
