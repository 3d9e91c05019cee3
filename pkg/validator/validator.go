package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// GetErrorMsg translates validation errors into user-friendly messages
func GetErrorMsg(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "invalid request parameters"
	}

	var errMsgs []string
	for _, e := range validationErrors {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("%s is required", field))
		case "email":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be a valid email", field))
		case "min", "gt":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be greater than %s", field, param))
		case "max":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be at most %s", field, param))
		case "oneof":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be one of [%s]", field, param))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("%s failed validation (%s)", field, e.Tag()))
		}
	}
	return strings.Join(errMsgs, "; ")
}

// Validate runs gin's validator engine against a struct outside of request binding.
func Validate(obj interface{}) error {
	return binding.Validator.ValidateStruct(obj)
}
