package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/plateup-dev/plateup/pkg/errors"
	"github.com/plateup-dev/plateup/pkg/response"
	appValidator "github.com/plateup-dev/plateup/pkg/validator"
)

// bindAndValidate decodes the JSON body into dest and validates it, writing
// a 400 response on failure.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return false
	}

	return true
}

func formatValidationError(err error) string {
	if err == nil {
		return "invalid request payload"
	}

	ve, ok := err.(appValidator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return "invalid request payload"
	}

	messages := make([]string, 0, len(ve))
	for _, failure := range ve {
		switch failure.Tag {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", failure.Field))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", failure.Field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", failure.Field, failure.Param))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", failure.Field, failure.Param))
		default:
			messages = append(messages, fmt.Sprintf("%s failed validation: %s", failure.Field, failure.Tag))
		}
	}
	return strings.Join(messages, "; ")
}
