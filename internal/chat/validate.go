package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/matheus3301/livechat/internal/apperr"
)

var validate = validator.New()

// Registration is the input of Register.
type Registration struct {
	Name          string `validate:"required,max=32"`
	Password      string `validate:"required"`
	ProfilePicURL string `validate:"omitempty,uri"`
}

type groupInput struct {
	Name string `validate:"required,max=64"`
}

// validateStruct runs the struct tags of s and folds every field error
// into one invalid-argument error.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.CodeInvalidArgument, "invalid input", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return apperr.InvalidArg(strings.Join(msgs, ", "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "uri":
		return fmt.Sprintf("%s must be a URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
