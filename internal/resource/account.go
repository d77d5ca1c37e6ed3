package resource

import (
	"encoding/json"
	"strings"

	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	"github.com/router-for-me/AppSubscriptions/internal/security"
	"github.com/router-for-me/AppSubscriptions/internal/validation"
)

// UserNameMaxLength bounds the display name.
const UserNameMaxLength = 255

// SignupInput is the accepted signup payload.
type SignupInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`

	nulls map[string]bool
}

// UnmarshalJSON decodes the payload and records which keys were sent as null.
func (in *SignupInput) UnmarshalJSON(data []byte) error {
	type signupInput SignupInput
	var decoded signupInput
	if errDecode := json.Unmarshal(data, &decoded); errDecode != nil {
		return errDecode
	}
	nulls, errNulls := nullKeys(data)
	if errNulls != nil {
		return errNulls
	}
	*in = SignupInput(decoded)
	in.nulls = nulls
	return nil
}

// Signup is a checked signup payload. Email is trimmed and lower-cased.
type Signup struct {
	Name     string
	Email    string
	Password string
}

// ValidateSignup checks the signup payload shape. Uniqueness is checked by
// the identity service.
func ValidateSignup(in SignupInput) (Signup, error) {
	rules := nullRules(in.nulls, "name", "email", "password")
	rules = append(rules,
		validation.Required("email", in.Email != nil),
		validation.Required("password", in.Password != nil),
	)
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		rules = append(rules, validation.NotBlank("email", email), validation.Email("email", email))
	}
	if in.Password != nil {
		rules = append(rules,
			validation.NotBlank("password", *in.Password),
			validation.MaxBytes("password", *in.Password, security.MaxPasswordBytes),
		)
	}
	if in.Name != nil {
		rules = append(rules, validation.MaxLength("name", strings.TrimSpace(*in.Name), UserNameMaxLength))
	}
	if errValidate := validation.Apply(rules...); errValidate != nil {
		return Signup{}, errValidate
	}
	return Signup{
		Name:     strings.TrimSpace(deref(in.Name)),
		Email:    strings.ToLower(strings.TrimSpace(*in.Email)),
		Password: *in.Password,
	}, nil
}

// LoginInput is the accepted login payload. Either username or email names the account.
type LoginInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// ValidateLogin returns the login identifier and password.
func ValidateLogin(in LoginInput) (string, string, error) {
	login := strings.TrimSpace(deref(in.Username))
	if login == "" {
		login = strings.TrimSpace(deref(in.Email))
	}
	password := deref(in.Password)
	if login == "" || password == "" {
		return "", "", apperr.FieldError("non_field_errors", `Must include "username" or "email" and "password".`)
	}
	return login, password, nil
}

// ConfirmEmailInput carries the key from a confirmation link.
type ConfirmEmailInput struct {
	Key *string `json:"key"`
}

// ValidateConfirmEmail returns the trimmed confirmation key.
func ValidateConfirmEmail(in ConfirmEmailInput) (string, error) {
	key := strings.TrimSpace(deref(in.Key))
	if errValidate := validation.Apply(
		validation.Required("key", in.Key != nil),
		validation.NotBlank("key", key),
	); errValidate != nil {
		return "", errValidate
	}
	return key, nil
}
