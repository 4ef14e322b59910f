package dto

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind,omitempty"`
	Details []string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and renders each failure as a message.
func validateStruct(s interface{}) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", field))
		case "min":
			details = append(details, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			details = append(details, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "gte":
			details = append(details, fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param()))
		case "lte":
			details = append(details, fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param()))
		case "url":
			details = append(details, fmt.Sprintf("%s must be a valid URL", field))
		default:
			details = append(details, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return details
}
