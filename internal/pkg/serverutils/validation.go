package serverutils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ErrorDetail struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError reports which fields of a request violated their contract.
// Reaching the service layer with one of these is a boundary bug, so it maps
// to a client error rather than a 500.
type ValidationError struct {
	details []ErrorDetail
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.details))
}

func (e *ValidationError) ToErrorDetails() []ErrorDetail {
	return e.details
}

func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make([]ErrorDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, ErrorDetail{
			Field: fe.Field(),
			Rule:  fe.Tag(),
		})
	}

	return &ValidationError{details: details}
}
