// Package validation checks raw request payloads against declarative rule
// sets. Every field is checked and every violation collected so callers can
// report all problems at once.
package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Payload maps field names to raw decoded values (JSON or form)
type Payload map[string]any

// Values is an accepted payload: every field of the rule set, normalized
type Values map[string]string

// FieldErrors maps a field name to its human-readable failure messages
type FieldErrors map[string][]string

// Add appends a message for field
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Fields returns the failing field names in sorted order
func (f FieldErrors) Fields() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// First returns the first message for field, or ""
func (f FieldErrors) First(field string) string {
	if msgs := f[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error is returned when a payload violates its rule set
type Error struct {
	RuleSet string
	Fields  FieldErrors
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: the given data was invalid (%s)", e.RuleSet, strings.Join(e.Fields.Fields(), ", "))
}

// AsError extracts a validation Error from err
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// UniqueFunc reports whether value is already taken
type UniqueFunc func(ctx context.Context, value string) (bool, error)

// Field declares the constraints for one payload field.
// Tags are go-playground/validator tags evaluated one at a time with Var.
type Field struct {
	Name      string
	Required  bool
	Tags      []string
	Confirmed bool
	// Raw disables whitespace trimming (passwords)
	Raw       bool
	Lower     bool
	Unique    UniqueFunc
	UniqueMsg string
	// Messages overrides the default message per tag ("required", "min", ...)
	Messages map[string]string
}

// RuleSet is a named list of field rules
type RuleSet struct {
	Name   string
	Fields []Field
}

// Validator evaluates rule sets
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator backed by go-playground/validator with the
// maxbytes tag registered
func New() *Validator {
	validate := validator.New()
	if err := validate.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(fmt.Sprintf("register maxbytes: %v", err))
	}
	return &Validator{validate: validate}
}

// maxBytes limits the encoded length of a string, unlike max which counts runes
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Validate checks payload against set. On success it returns the normalized
// values; otherwise an *Error listing every violation. A non-validation error
// is returned only when a uniqueness lookup fails.
func (v *Validator) Validate(ctx context.Context, set RuleSet, payload Payload) (Values, error) {
	values := make(Values, len(set.Fields))
	errs := make(FieldErrors)

	for _, field := range set.Fields {
		value, present, isString := field.extract(payload)
		if !present {
			if field.Required {
				errs.Add(field.Name, field.message("required", ""))
			}
			continue
		}
		if !isString {
			errs.Add(field.Name, field.message("string", ""))
			continue
		}

		failed := false
		for _, tag := range field.Tags {
			if err := v.validate.Var(value, tag); err != nil {
				errs.Add(field.Name, field.tagMessage(err, tag))
				failed = true
			}
		}

		if field.Confirmed {
			confirmation, _, _ := field.extractNamed(payload, field.Name+"_confirmation")
			if err := v.validate.VarWithValue(value, confirmation, "eqfield"); err != nil {
				errs.Add(field.Name, field.message("confirmed", ""))
				failed = true
			}
		}

		if !failed && field.Unique != nil {
			taken, err := field.Unique(ctx, value)
			if err != nil {
				return nil, fmt.Errorf("check unique %s: %w", field.Name, err)
			}
			if taken {
				errs.Add(field.Name, field.message("unique", ""))
				failed = true
			}
		}

		if !failed {
			values[field.Name] = value
		}
	}

	if len(errs) > 0 {
		return nil, &Error{RuleSet: set.Name, Fields: errs}
	}
	return values, nil
}

func (f Field) extract(payload Payload) (string, bool, bool) {
	return f.extractNamed(payload, f.Name)
}

// extractNamed applies the field's normalization to payload[name].
// Empty strings count as absent.
func (f Field) extractNamed(payload Payload, name string) (string, bool, bool) {
	raw, ok := payload[name]
	if !ok || raw == nil {
		return "", false, false
	}
	s, ok := raw.(string)
	if !ok {
		return "", true, false
	}
	if !f.Raw {
		s = strings.TrimSpace(s)
	}
	if f.Lower {
		s = strings.ToLower(s)
	}
	if s == "" {
		return "", false, false
	}
	return s, true, true
}

func (f Field) tagMessage(err error, tag string) string {
	name, param := tag, ""
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		name, param = verrs[0].Tag(), verrs[0].Param()
	} else if i := strings.IndexByte(tag, '='); i >= 0 {
		name, param = tag[:i], tag[i+1:]
	}
	return f.message(name, param)
}

func (f Field) message(tag, param string) string {
	if msg, ok := f.Messages[tag]; ok {
		return strings.ReplaceAll(msg, ":param", param)
	}
	label := strings.ReplaceAll(f.Name, "_", " ")
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "string":
		return fmt.Sprintf("The %s field must be a string.", label)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", label, param)
	case "max", "maxbytes":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, param)
	case "confirmed":
		return fmt.Sprintf("The %s field confirmation does not match.", label)
	case "unique":
		if f.UniqueMsg != "" {
			return f.UniqueMsg
		}
		return fmt.Sprintf("The %s has already been taken.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}
