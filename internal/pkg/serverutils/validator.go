package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and converts failures into a
// 400 AppError listing the offending fields.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fields []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", verr.Field(), verr.Tag()))
		}
	}
	return NewAppError(fiber.StatusBadRequest, "Validation failed: "+strings.Join(fields, ", "), err)
}
