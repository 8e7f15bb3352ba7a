package validation

import (
	"errors"

	"todoclient/internal/core/model/response"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)

	var found bool
	Translator, found = uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

func addCustomTranslations() {
	Validator.RegisterTranslation("required", Translator, func(ut ut.Translator) error {
		return ut.Add("required", "{0} should not be empty", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", getFieldName(fe.Field()))
		return t
	})

	Validator.RegisterTranslation("gt", Translator, func(ut ut.Translator) error {
		return ut.Add("gt", "{0} must be a positive id", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("gt", getFieldName(fe.Field()))
		return t
	})
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Title":     "Title",
		"UserID":    "userId",
		"Completed": "completed",
	}

	if name, exists := fieldNames[field]; exists {
		return name
	}

	return field
}

func FormatValidationErrors(err error) []response.ValidationError {
	var errs []response.ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			errs = append(errs, response.ValidationError{
				Field:   fieldError.StructNamespace(),
				Message: fieldError.Translate(Translator),
			})
		}
	}

	return errs
}
