package validator

import (
	"errors"
	"fmt"
	"strings"

	"mediq/pkg/logger"
	"mediq/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type PatientValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPatientValidator(log *logger.Logger) *PatientValidator {
	v := validator.New()

	if err := v.RegisterValidation("au_state", validateAustralianState); err != nil {
		log.Fatal("Failed to register 'au_state' validator", "error", err)
	}

	return &PatientValidator{
		validate: v,
		logger:   log,
	}
}

func validateAustralianState(fl validator.FieldLevel) bool {
	state := strings.TrimSpace(fl.Field().String())
	for _, valid := range model.AustralianStates {
		if strings.EqualFold(state, valid) {
			return true
		}
	}
	return false
}

func (v *PatientValidator) Validate(patient *model.Patient) error {
	if err := v.validate.Struct(patient); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *PatientValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "au_state":
			message = fmt.Sprintf("%s must be an Australian state or territory", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object id", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
