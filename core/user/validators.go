package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	roleTag  = "role"
	roleText = "role must be one of TEACHER or STUDENT"

	pwdLenTag  = "pwdlen"
	pwdLenText = "password must be at most 72 bytes long"
)

// InitValidators registers the user validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	_ = validate.RegisterValidation(pwdLenTag, pwdLenValidation)
	core.RegisterCustomTranslation(validate, translator, pwdLenTag, pwdLenText)
}

// roleValidation checks that the provided role name is one of AllRoles
func roleValidation(fl validator.FieldLevel) bool {
	if name, ok := fl.Field().Interface().(string); ok {
		_, err := ParseRole(name)
		return err == nil
	}
	return false
}

// pwdLenValidation counts bytes, not runes.
func pwdLenValidation(fl validator.FieldLevel) bool {
	if pwd, ok := fl.Field().Interface().(string); ok {
		return len(pwd) <= MaxPasswordBytes
	}
	return false
}
