package resource

import (
	"encoding/json"
	"strings"

	"github.com/router-for-me/AppSubscriptions/internal/models"
	"github.com/router-for-me/AppSubscriptions/internal/validation"
)

// Field limits for apps.
const (
	AppNameMaxLength       = 50
	AppDomainNameMaxLength = 50
	AppScreenshotMaxLength = 50
)

// AppInput is the accepted app payload. Keys outside this shape, including
// user and id, are dropped during decoding.
type AppInput struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Type        *models.AppType      `json:"type"`
	Framework   *models.AppFramework `json:"framework"`
	DomainName  *string              `json:"domain_name"`
	Screenshot  *string              `json:"screenshot"`

	nulls map[string]bool
}

// UnmarshalJSON decodes the payload and records which keys were sent as null.
func (in *AppInput) UnmarshalJSON(data []byte) error {
	type appInput AppInput
	var decoded appInput
	if errDecode := json.Unmarshal(data, &decoded); errDecode != nil {
		return errDecode
	}
	nulls, errNulls := nullKeys(data)
	if errNulls != nil {
		return errNulls
	}
	*in = AppInput(decoded)
	in.nulls = nulls
	return nil
}

var (
	appCreateFields = []string{"name", "description", "type", "framework", "domain_name"}
	appUpdateFields = append(append([]string(nil), appCreateFields...), "screenshot")
)

// AppValidatorFunc checks in and writes the accepted fields onto target.
// target is left untouched when validation fails.
type AppValidatorFunc func(in AppInput, target *models.App) error

var appValidators = map[Action]AppValidatorFunc{
	ActionCreate: validateAppCreate,
	ActionUpdate: validateAppUpdate,
}

// AppValidator returns the validator registered for action.
func AppValidator(action Action) (AppValidatorFunc, error) {
	fn, ok := appValidators[action]
	if !ok {
		return nil, ErrUnsupportedAction{Resource: "app", Action: action}
	}
	return fn, nil
}

func validateAppCreate(in AppInput, target *models.App) error {
	rules := nullRules(in.nulls, appCreateFields...)
	rules = append(rules, appCommonRules(in)...)
	if errValidate := validation.Apply(rules...); errValidate != nil {
		return errValidate
	}
	target.Name = strings.TrimSpace(*in.Name)
	target.Description = deref(in.Description)
	target.Type = *in.Type
	target.Framework = *in.Framework
	target.DomainName = strings.TrimSpace(deref(in.DomainName))
	return nil
}

// validateAppUpdate is a full replace: omitted optional fields are reset.
func validateAppUpdate(in AppInput, target *models.App) error {
	rules := nullRules(in.nulls, appUpdateFields...)
	rules = append(rules, appCommonRules(in)...)
	if in.Screenshot != nil {
		rules = append(rules,
			validation.MaxLength("screenshot", *in.Screenshot, AppScreenshotMaxLength),
			validation.URL("screenshot", strings.TrimSpace(*in.Screenshot)),
		)
	}
	if errValidate := validation.Apply(rules...); errValidate != nil {
		return errValidate
	}
	target.Name = strings.TrimSpace(*in.Name)
	target.Description = deref(in.Description)
	target.Type = *in.Type
	target.Framework = *in.Framework
	target.DomainName = strings.TrimSpace(deref(in.DomainName))
	target.Screenshot = strings.TrimSpace(deref(in.Screenshot))
	return nil
}

// appCommonRules covers the fields shared by create and full update; name,
// type and framework are required by both.
func appCommonRules(in AppInput) []validation.Rule {
	rules := []validation.Rule{
		validation.Required("name", in.Name != nil),
		validation.Required("type", in.Type != nil),
		validation.Required("framework", in.Framework != nil),
	}
	if in.Name != nil {
		rules = append(rules,
			validation.NotBlank("name", *in.Name),
			validation.MaxLength("name", strings.TrimSpace(*in.Name), AppNameMaxLength),
		)
	}
	if in.Type != nil {
		rules = append(rules, validation.OneOf("type", *in.Type, models.AppTypes))
	}
	if in.Framework != nil {
		rules = append(rules, validation.OneOf("framework", *in.Framework, models.AppFrameworks))
	}
	if in.DomainName != nil {
		rules = append(rules, validation.MaxLength("domain_name", strings.TrimSpace(*in.DomainName), AppDomainNameMaxLength))
	}
	return rules
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
