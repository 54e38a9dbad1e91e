package handler

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/utils"
)

// RequestValidator adapts go-playground/validator to echo's Validator
// interface and registers the domain formats: pass dates, HH-HH time
// ranges and personal identification numbers. Format violations are
// rejected here, before any request reaches the core.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	_ = v.RegisterValidation("timerange", func(fl validator.FieldLevel) bool {
		return model.ValidTimeRange(fl.Field().String())
	})
	_ = v.RegisterValidation("passdate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(model.DateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("personalnumber", func(fl validator.FieldLevel) bool {
		return utils.ValidPersonalNumber(fl.Field().String())
	})
	return &RequestValidator{validate: v}
}

// Validate implements echo.Validator. Violations surface as 400s with a
// generic message; field-level detail stays out of responses.
func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	return nil
}
