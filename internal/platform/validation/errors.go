package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorBody is the 400 payload for a request that failed validation.
// Fields maps the json field name to a readable reason.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorResponse converts a bind or validator error into an ErrorBody.
func ErrorResponse(err error) ErrorBody {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ErrorBody{Error: err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = reason(fe)
		}
	}
	return ErrorBody{Error: "validation_failed", Fields: fields}
}

// Describe flattens err into one line such as
// "period must be at most 100 characters; tier_id is required".
func Describe(err error) string {
	body := ErrorResponse(err)
	if len(body.Fields) == 0 {
		return body.Error
	}
	parts := make([]string, 0, len(body.Fields))
	for f, r := range body.Fields {
		parts = append(parts, f+" "+r)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		if fe.Kind().String() == "string" {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return fmt.Sprintf("failed %q", fe.Tag())
}
