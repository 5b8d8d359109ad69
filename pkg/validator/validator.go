package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ISODateLayout is the layout accepted by the isodate rule
const ISODateLayout = "2006-01-02"

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance with the project rules registered
func New() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("isodate", isoDate)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// isoDate accepts calendar days in YYYY-MM-DD form
func isoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(ISODateLayout, fl.Field().String())
	return err == nil
}
