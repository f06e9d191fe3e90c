package handler

import (
    "errors"
    "fmt"
    "net/http"
    "reflect"
    "strconv"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo.Validator so handlers
// can call c.Validate after c.Bind.
type Validator struct {
    v *validator.Validate
}

// NewValidator returns a Validator that reports JSON field names.
func NewValidator() *Validator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
    return cv.v.Struct(i)
}

// describe turns the first validation failure into a short message.
func describe(err error) (field, msg string) {
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) || len(verrs) == 0 {
        return "", "Solicitud inválida"
    }
    fe := verrs[0]
    switch fe.Tag() {
    case "required":
        return fe.Field(), fmt.Sprintf("%s es obligatorio", fe.Field())
    case "datetime":
        return fe.Field(), fmt.Sprintf("%s debe tener el formato %s", fe.Field(), fe.Param())
    case "gt":
        return fe.Field(), fmt.Sprintf("%s debe ser mayor que %s", fe.Field(), fe.Param())
    }
    return fe.Field(), fmt.Sprintf("%s no es válido", fe.Field())
}

// bindValid binds and validates the request body into dst.  It writes the
// 400 response itself and reports whether the handler should continue.
func bindValid(c echo.Context, dst interface{}) (bool, error) {
    if err := c.Bind(dst); err != nil {
        return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "Solicitud inválida"})
    }
    if err := c.Validate(dst); err != nil {
        field, msg := describe(err)
        return false, c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "field": field})
    }
    return true, nil
}

// pathID parses a positive int64 path parameter.
func pathID(c echo.Context, name string) (int64, bool) {
    id, err := strconv.ParseInt(c.Param(name), 10, 64)
    if err != nil || id <= 0 {
        return 0, false
    }
    return id, true
}
