package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	strongPwdTag  = "strongpwd"
	strongPwdText = "password must be at least 6 characters and contain lower, upper, digit and special characters"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"

	pwdLowerRegex   = regexp.MustCompile(`[a-z]`)
	pwdUpperRegex   = regexp.MustCompile(`[A-Z]`)
	pwdDigitRegex   = regexp.MustCompile(`\d`)
	pwdSpecialRegex = regexp.MustCompile(`[@#$%^&+=!*_-]`)
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(strongPwdTag, strongPwdValidation)
	RegisterCustomTranslation(validate, translator, strongPwdTag, strongPwdText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// strongPwdValidation enforces the university password policy:
// min 6 chars with at least one lower, upper, digit and special character.
func strongPwdValidation(fl validator.FieldLevel) bool {
	pwd := fl.Field().String()
	if len(pwd) < 6 {
		return false
	}
	return pwdLowerRegex.MatchString(pwd) &&
		pwdUpperRegex.MatchString(pwd) &&
		pwdDigitRegex.MatchString(pwd) &&
		pwdSpecialRegex.MatchString(pwd)
}
