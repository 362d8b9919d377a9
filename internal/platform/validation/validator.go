package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// std reports field names by their json tag so messages match the payload.
var std = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type echoValidator struct{ v *validator.Validate }

func (e *echoValidator) Validate(i interface{}) error { return e.v.Struct(i) }

// New returns the echo.Validator installed on the server.
func New() echo.Validator { return &echoValidator{v: std} }

// Struct validates v outside a request, e.g. each item of a bulk batch.
func Struct(v any) error { return std.Struct(v) }

// BindAndValidate binds the request into dst and runs the echo validator on it.
// Bind errors are returned as-is so callers can map them to 400.
func BindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return err
	}
	return c.Validate(dst)
}
