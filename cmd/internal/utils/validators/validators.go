package validators

import (
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var weekdays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

// New returns a validator with every custom tag registered. Field names in
// validation errors follow the json tag.
func New() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonTagName)

	_ = validate.RegisterValidation("hasupper", HasUpper)
	_ = validate.RegisterValidation("haslower", HasLower)
	_ = validate.RegisterValidation("hasdigit", HasDigit)
	_ = validate.RegisterValidation("hasspecial", HasSpecial)
	_ = validate.RegisterValidation("nodupes", NoDupes)
	_ = validate.RegisterValidation("nospaces", NoWhiteSpaces)
	_ = validate.RegisterValidation("isodate", IsIsoDate)
	_ = validate.RegisterValidation("hhmm", IsHHMM)
	_ = validate.RegisterValidation("weekday", IsWeekday)
	return validate
}

func jsonTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func HasUpper(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsUpper) >= 0
}

func HasLower(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsLower) >= 0
}

func HasDigit(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsDigit) >= 0
}

func HasSpecial(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}) >= 0
}

// NoDupes fails when a string slice repeats an element.
func NoDupes(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}

	seen := make(map[string]struct{}, field.Len())
	for i := 0; i < field.Len(); i++ {
		s := field.Index(i).String()
		if _, ok := seen[s]; ok {
			return false
		}
		seen[s] = struct{}{}
	}
	return true
}

func NoWhiteSpaces(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
}

// IsIsoDate accepts calendar dates as "YYYY-MM-DD".
func IsIsoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// IsHHMM accepts zero-padded 24h times, "09:00" but not "9:00".
func IsHHMM(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

func IsWeekday(fl validator.FieldLevel) bool {
	_, ok := weekdays[fl.Field().String()]
	return ok
}
