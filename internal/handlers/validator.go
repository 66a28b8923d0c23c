package handlers

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"roastlog/internal/models"
	"roastlog/internal/roastlog"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// requestValidator is gin's binding validator with the roast tags
// (roastkind, level) and English messages that name fields by their JSON key.
type requestValidator struct {
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
}

var _ binding.StructValidator = (*requestValidator)(nil)

var installValidator sync.Once

// useRequestValidator replaces gin's default validator once per process.
func useRequestValidator() {
	installValidator.Do(func() {
		binding.Validator = &requestValidator{}
	})
}

func (v *requestValidator) ValidateStruct(obj any) error {
	if kindOfData(obj) != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.validate.Struct(obj)
}

func (v *requestValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *requestValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New(validator.WithRequiredStructEnabled())
		v.validate.SetTagName("binding")
		v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.validate.RegisterValidation("roastkind", validateRoastKind)
		_ = v.validate.RegisterValidation("level", validateLevel)

		english := en.New()
		uni := ut.New(english, english)
		v.translator, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v.validate, v.translator)
		v.registerCustomTranslations()
	})
}

func validateRoastKind(fl validator.FieldLevel) bool {
	_, err := models.ParseEventKind(fl.Field().String())
	return err == nil
}

func validateLevel(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := f.Int()
		return n >= roastlog.MinLevel && n <= roastlog.MaxLevel
	}
	return false
}

func (v *requestValidator) registerCustomTranslations() {
	add := func(tag, text string, params func(fe validator.FieldError) []string) {
		_ = v.validate.RegisterTranslation(tag, v.translator, func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, params(fe)...)
			return t
		})
	}
	field := func(fe validator.FieldError) []string { return []string{fe.Field()} }
	fieldParam := func(fe validator.FieldError) []string { return []string{fe.Field(), fe.Param()} }

	add("required", "{0} is required", field)
	add("min", "{0} must be at least {1}", fieldParam)
	add("max", "{0} must be at most {1}", fieldParam)
	add("gte", "{0} must be greater than or equal to {1}", fieldParam)
	add("roastkind", "{0} must be one of SET, DRY_END, FIRST_CRACK, SECOND_CRACK, COOL, DROP, END", field)
	add("level", "{0} must be between 0 and 9", field)
}

// fieldErrors translates binding failures into one message per field plus
// the offending JSON keys. Non-validation errors (bad JSON) yield no fields.
func fieldErrors(err error) (messages []string, fields []string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}, nil
	}
	v, ok := binding.Validator.(*requestValidator)
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		if ok {
			messages = append(messages, fe.Translate(v.translator))
		} else {
			messages = append(messages, fe.Error())
		}
	}
	return messages, fields
}

func kindOfData(data any) reflect.Kind {
	value := reflect.ValueOf(data)
	kind := value.Kind()
	if kind == reflect.Pointer {
		kind = value.Elem().Kind()
	}
	return kind
}
