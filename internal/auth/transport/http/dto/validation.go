package dto

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("username_format", validateUsernameFormat)
}

// validateUsernameFormat allows only letters, digits and underscores.
func validateUsernameFormat(fl validator.FieldLevel) bool {
	username := fl.Field().String()
	if len(username) == 0 {
		return false
	}
	for _, char := range username {
		if !unicode.IsLetter(char) && !unicode.IsNumber(char) && char != '_' {
			return false
		}
	}
	return true
}

// Validate runs struct validation and maps the first failure to a domain
// error with a readable reason.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	ok := false
	if ve, isVE := err.(validator.ValidationErrors); isVE {
		verrs = ve
		ok = true
	}
	if !ok || len(verrs) == 0 {
		return domain.ErrInvalidField("request", "validation failed")
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]

	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(field)
	case "email":
		return domain.ErrInvalidField(field, "must be a valid email address")
	case "min":
		return domain.ErrInvalidField(field, "too short (min "+fe.Param()+")")
	case "max":
		return domain.ErrInvalidField(field, "too long (max "+fe.Param()+")")
	case "username_format":
		return domain.ErrInvalidField(field, "may only contain letters, numbers and underscores")
	case "oneof":
		return domain.ErrInvalidField(field, "must be one of: "+fe.Param())
	case "datetime":
		return domain.ErrInvalidField(field, "must match format "+fe.Param())
	default:
		return domain.ErrInvalidField(field, "failed "+fe.Tag()+" validation")
	}
}
