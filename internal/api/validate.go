package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nhle/taskboard/internal/model"
)

// messages maps validation tags to friendly messages.
var messages = map[string]string{
	"required":     "The field '%s' is required.",
	"notblank":     "The field '%s' must not be blank.",
	"oneof":        "The field '%s' must be one of %s.",
	"gte":          "The field '%s' must be greater than or equal to %s.",
	"lte":          "The field '%s' must be less than or equal to %s.",
	"hexcolor":     "The field '%s' must be a hex color.",
	"activitytype": "The field '%s' must be a known activity type.",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("path"); name != "" {
			return name
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("activitytype", func(fl validator.FieldLevel) bool {
		t := model.ActivityType(fl.Field().String())
		for _, known := range model.ActivityTypes {
			if t == known {
				return true
			}
		}
		return false
	})

	return v
}

// check validates req and converts failures into a *ValidationError.
func (c *Client) check(req interface{}) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating request: %w", err)
	}

	ve := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		ve.Fields[fe.Field()] = message(fe)
	}
	return ve
}

func message(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("Field '%s' is invalid: %s", fe.Field(), fe.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, fe.Field(), fe.Param())
	}
	return fmt.Sprintf(msg, fe.Field())
}
