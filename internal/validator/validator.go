package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// Custom validation tags.
const (
	notBlankTag         = "notblank"
	attendanceStatusTag = "attendance_status"
	roleTag             = "role"
	fileOrNotesTag      = "file_or_notes"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		Register(v)
	}
}

// Register installs tag names, custom rules and translations on v.
func Register(v *govalidator.Validate) {
	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register English translations.
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterValidation(notBlankTag, notBlank)
	_ = v.RegisterValidation(attendanceStatusTag, attendanceStatus)
	_ = v.RegisterValidation(roleTag, validRole)
	v.RegisterStructValidation(createSubmissionStructValidation, model.CreateSubmissionRequest{})

	// The default translations are already registered, so the registration
	// callback is a no-op; only the message function matters.
	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, attendanceStatusTag, roleTag, fileOrNotesTag} {
		_ = v.RegisterTranslation(tag, trans, noop, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe govalidator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case attendanceStatusTag:
		return fe.Field() + " must be one of present, absent, late, excused"
	case roleTag:
		return fe.Field() + " must be one of admin, teacher, student"
	case fileOrNotesTag:
		return "file_url or notes is required"
	default:
		return fe.Field() + " is invalid"
	}
}

func notBlank(fl govalidator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func attendanceStatus(fl govalidator.FieldLevel) bool {
	return model.AttendanceStatus(fl.Field().String()).Valid()
}

func validRole(fl govalidator.FieldLevel) bool {
	return model.Role(fl.Field().String()).Valid()
}

// createSubmissionStructValidation requires a file link or notes.
func createSubmissionStructValidation(sl govalidator.StructLevel) {
	req, ok := sl.Current().Interface().(model.CreateSubmissionRequest)
	if !ok {
		return
	}
	blank := func(s *string) bool { return s == nil || strings.TrimSpace(*s) == "" }
	if blank(req.FileURL) && blank(req.Notes) {
		sl.ReportError(req.FileURL, "file_url", "FileURL", fileOrNotesTag, "")
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field path to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fieldPath(fe)] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// fieldPath drops the top-level struct name from the namespace so nested
// errors read as "records[2].status".
func fieldPath(fe govalidator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
