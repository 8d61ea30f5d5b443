package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"pasar/internal/apperrors"
)

var validate = validator.New()

// checkStruct runs the validator tags for an entity and converts the first
// failure into a domain ValidationError with a readable message.
func checkStruct(entity string, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidation("invalid %s: %v", entity, err)
	}
	return apperrors.NewValidation("%s", fieldMessage(entity, verrs[0]))
}

func fieldMessage(entity string, fe validator.FieldError) string {
	switch fe.Field() {
	case "Email":
		return "invalid email format"
	case "Username":
		if fe.Tag() == "min" {
			return "username must be at least 3 characters long"
		}
		return "username is required"
	case "Price":
		return "price must be greater than zero"
	case "Stock":
		return "stock cannot be negative"
	case "Quantity":
		return "quantity must be greater than zero"
	case "Status":
		return fmt.Sprintf("status must be one of [%s %s %s]", StatusPending, StatusCompleted, StatusCancelled)
	default:
		return fmt.Sprintf("%s field %s failed on the '%s' rule", entity, strings.ToLower(fe.Field()), fe.Tag())
	}
}
