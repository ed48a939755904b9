package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"fieldnorm/pkg/envcode"
	"fieldnorm/pkg/logger"

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

// Details renders the errors as a field to message map for error responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type RequestValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRequestValidator(log *logger.Logger) *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(jsonFieldName)
	if err := v.RegisterValidation("code_family", validateCodeFamily); err != nil {
		log.Fatal("Failed to register 'code_family' validator", "error", err)
	}

	log.Debug("Request validator initialized successfully")

	return &RequestValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks s against its validate tags. Tag failures come back as
// ValidationErrors keyed by JSON field name.
func (v *RequestValidator) Validate(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	validationErrors := make(ValidationErrors, 0, len(errs))

	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldPath(err),
			Message: message(err),
		})
	}

	return validationErrors
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return err.Field()
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "max":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", err.Param())
		}
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "required_without":
		return fmt.Sprintf("is required when %s is absent", strings.ToLower(err.Param()))
	case "code_family":
		return fmt.Sprintf("must be one of %s", familyList())
	default:
		return fmt.Sprintf("failed on '%s' validation", err.Tag())
	}
}

func validateCodeFamily(fl validator.FieldLevel) bool {
	_, ok := envcode.ParseFamily(fl.Field().String())
	return ok
}

func familyList() string {
	names := make([]string, 0, len(envcode.Families()))
	for _, f := range envcode.Families() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
