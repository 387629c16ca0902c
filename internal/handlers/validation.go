package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/codgrandprix/server/pkg/errors"
	"github.com/codgrandprix/server/pkg/response"
	"github.com/codgrandprix/server/pkg/validator"
)

// bindAndValidate binds the JSON body into T and runs struct
// validation. On failure it writes the error response and reports
// false; handlers return immediately.
func bindAndValidate[T any](c *gin.Context) (T, bool) {
	var payload T

	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid request body"))
		return payload, false
	}

	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, formatValidationError(err))
		return payload, false
	}

	return payload, true
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		parts := make([]string, 0, len(verrs))
		for _, v := range verrs {
			parts = append(parts, v.Field+" failed on "+v.Tag)
		}
		return apperrors.NewBadRequest(strings.Join(parts, "; "))
	}
	return apperrors.NewBadRequest("validation failed")
}
