package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/service"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/response"
)

func init() {
	// report binding failures under the names clients send
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(wireFieldName)
	}
}

func wireFieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return ""
}

// bindJSON decodes the request body into v and runs its binding rules. On
// failure it writes 413 for an oversized body, a 400 naming the offending
// fields for rule violations, or a plain 400 otherwise, and returns false.
func bindJSON(c *gin.Context, v interface{}) bool {
	return handleBindError(c, c.ShouldBindJSON(v), "invalid request body")
}

// bindQuery is bindJSON for query parameters.
func bindQuery(c *gin.Context, v interface{}) bool {
	return handleBindError(c, c.ShouldBindQuery(v), "invalid query")
}

func handleBindError(c *gin.Context, err error, message string) bool {
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "request body too large")
		return false
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		handleCommonError(c, toValidationError(verrs))
		return false
	}

	response.BadRequest(c, response.CodeValidation, message)
	return false
}

func toValidationError(verrs validator.ValidationErrors) *service.ValidationError {
	ve := &service.ValidationError{}
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		ve.Fields = append(ve.Fields, fe.Field())
	}
	return ve
}

// handleCommonError maps the errors shared by every module. It returns false
// when err is module specific and still needs handling.
func handleCommonError(c *gin.Context, err error) bool {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation,
			"missing or invalid fields", strings.Join(ve.Fields, ","))
	case errors.Is(err, service.ErrUnauthenticated):
		response.Unauthorized(c, response.CodeUnauthenticated, "authentication required")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, response.CodeForbidden, "access restricted")
	default:
		return false
	}
	return true
}
