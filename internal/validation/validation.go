// Package validation holds the field predicates used by resource validators.
// Rules are plain values so each resource can declare its rule set as a list
// and collect every failure in a single pass.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/router-for-me/AppSubscriptions/internal/apperr"
)

// Common messages shared by resource validators.
const (
	MsgRequired = "This field is required."
	MsgBlank    = "This field may not be blank."
	MsgNull     = "This field may not be null."
)

var fieldValidator = validator.New()

// Rule is a single field predicate and the message reported when it fails.
type Rule struct {
	Field   string
	Check   func() bool
	Message string
}

// Apply runs every rule and returns a validation error listing all failures,
// or nil when every rule passes. Only the first failure per field is kept.
func Apply(rules ...Rule) error {
	var fields map[string][]string
	for _, rule := range rules {
		if rule.Check() {
			continue
		}
		if fields == nil {
			fields = make(map[string][]string)
		}
		if _, seen := fields[rule.Field]; seen {
			continue
		}
		fields[rule.Field] = []string{rule.Message}
	}
	if len(fields) == 0 {
		return nil
	}
	return apperr.Validation(fields)
}

// Required fails when the field was not supplied.
func Required(field string, present bool) Rule {
	return Rule{Field: field, Check: func() bool { return present }, Message: MsgRequired}
}

// NotBlank fails when value is empty after trimming whitespace.
func NotBlank(field, value string) Rule {
	return Rule{
		Field:   field,
		Check:   func() bool { return strings.TrimSpace(value) != "" },
		Message: MsgBlank,
	}
}

// MaxLength fails when value has more than limit characters.
func MaxLength(field, value string, limit int) Rule {
	return Rule{
		Field:   field,
		Check:   func() bool { return utf8.RuneCountInString(value) <= limit },
		Message: fmt.Sprintf("Ensure this field has no more than %d characters.", limit),
	}
}

// MaxBytes fails when value is longer than limit bytes.
func MaxBytes(field, value string, limit int) Rule {
	return Rule{
		Field:   field,
		Check:   func() bool { return len(value) <= limit },
		Message: fmt.Sprintf("Ensure this field has no more than %d bytes.", limit),
	}
}

// NotNull fails when the field was sent as JSON null.
func NotNull(field string, null bool) Rule {
	return Rule{Field: field, Check: func() bool { return !null }, Message: MsgNull}
}

// OneOf fails when value is not one of the allowed choices.
func OneOf[T ~string](field string, value T, allowed []T) Rule {
	return Rule{
		Field: field,
		Check: func() bool {
			for _, choice := range allowed {
				if value == choice {
					return true
				}
			}
			return false
		},
		Message: fmt.Sprintf("%q is not a valid choice.", string(value)),
	}
}

// Email fails when value is not a syntactically valid email address.
func Email(field, value string) Rule {
	return Rule{
		Field:   field,
		Check:   func() bool { return fieldValidator.Var(value, "email") == nil },
		Message: "Enter a valid email address.",
	}
}

// URL fails when a non-empty value is not an absolute URL.
func URL(field, value string) Rule {
	return Rule{
		Field: field,
		Check: func() bool {
			return value == "" || fieldValidator.Var(value, "url") == nil
		},
		Message: "Enter a valid URL.",
	}
}

// PositiveID fails when id is zero.
func PositiveID(field string, id uint64) Rule {
	return Rule{
		Field:   field,
		Check:   func() bool { return id > 0 },
		Message: "Incorrect type. Expected pk value.",
	}
}
