// Package validate checks user-supplied text before it reaches a session.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/textproc"
)

const (
	// MaxTitleLength bounds stored titles.
	MaxTitleLength = 50
	// MaxTextLength bounds stored text content.
	MaxTextLength = 50000
)

// InputError is a rejected text with one human-readable reason per field.
type InputError struct {
	Mode   model.Mode
	Fields map[string]string
}

func (e *InputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	if e.Mode == "" {
		return strings.Join(msgs, "; ")
	}
	return fmt.Sprintf("%s text rejected: %s", e.Mode, strings.Join(msgs, "; "))
}

// IsInputError reports whether err is or wraps an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

type assessmentText struct {
	Text string `json:"text" validate:"required,min=50,max=50000"`
}

type trainingText struct {
	Text string `json:"text" validate:"required,min=100,max=50000,minwords=50"`
}

type readingText struct {
	Text string `json:"text" validate:"required,min=10,max=50000"`
}

// Validator wraps validator/v10 with English messages.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New builds a Validator with the minwords rule registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("minwords", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return textproc.CountWords(fl.Field().String()) >= n
	})
	_ = v.RegisterTranslation("minwords", trans, func(t ut.Translator) error {
		return t.Add("minwords", "{0} must contain at least {1} words", true)
	}, func(t ut.Translator, fe validator.FieldError) string {
		msg, err := t.T("minwords", fe.Field(), fe.Param())
		if err != nil {
			return fe.Error()
		}
		return msg
	})

	return &Validator{validate: v, trans: trans}
}

// Text checks content against the minimums of mode. Content is trimmed first.
func (v *Validator) Text(mode model.Mode, content string) error {
	content = strings.TrimSpace(content)
	var req any
	switch mode {
	case model.ModeAssessment:
		req = &assessmentText{Text: content}
	case model.ModeTraining:
		req = &trainingText{Text: content}
	default:
		req = &readingText{Text: content}
	}
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate text: %w", err)
	}
	return &InputError{Mode: mode, Fields: v.translateError(verrs)}
}

func (v *Validator) translateError(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		fields[e.Field()] = e.Translate(v.trans)
	}
	return fields
}

// SanitizeTitle strips angle brackets and bounds the length. An empty
// result falls back to a dated default.
func SanitizeTitle(title string, now time.Time) string {
	title = strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(title))
	if utf8.RuneCountInString(title) > MaxTitleLength {
		title = strings.TrimSpace(string([]rune(title)[:MaxTitleLength]))
	}
	if title == "" {
		return DefaultTitle(now)
	}
	return title
}

// DefaultTitle names an untitled text after its creation time.
func DefaultTitle(now time.Time) string {
	return "Reading Session " + now.Format("2006-01-02 15:04")
}
