package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	// custom validation tags & texts
	requiredTag  = "required"
	requiredText = "{0} is required"

	storePathTag  = "store_path"
	storePathText = "a file path is required by the json store"

	databaseTag  = "database"
	databaseText = "database host and name are required by the postgres store"
)

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON (or config) tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "mapstructure"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	validate.RegisterStructValidation(configStructValidation, Config{})

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, storePathTag, storePathText)
	RegisterCustomTranslation(validate, translator, databaseTag, databaseText)
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

// Validate checks the configuration and returns a *ValidationError holding translated field errors.
func (conf *Config) Validate(validate *validator.Validate, translator ut.Translator) error {
	err := validate.Struct(conf)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, "validating config")
	}

	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		// drop the root struct name: "Config.store.engine" -> "store.engine"
		ns := vErr.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		flds = append(flds, FieldError{Field: ns, Error: vErr.Translate(translator)})
	}
	return NewValidationError(errors.New("invalid config"), flds...)
}

// configStructValidation checks the settings required by the selected store engine.
func configStructValidation(sl validator.StructLevel) {
	conf, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	switch conf.Store.Engine {
	case StoreEngineJSON:
		if strings.TrimSpace(conf.Store.Path) == "" {
			sl.ReportError(conf.Store.Path, "store.path", "Path", storePathTag, "")
		}
	case StoreEnginePostgres:
		if conf.Database.Host == "" || conf.Database.Name == "" {
			sl.ReportError(conf.Database, "database", "Database", databaseTag, "")
		}
	}
}
