package resource

import (
	"encoding/json"

	"github.com/router-for-me/AppSubscriptions/internal/apperr"
	"github.com/router-for-me/AppSubscriptions/internal/models"
	"github.com/router-for-me/AppSubscriptions/internal/validation"
)

// SubscriptionInput is the accepted subscription payload. The owning user is
// never read from the payload.
type SubscriptionInput struct {
	Plan   *uint64 `json:"plan"`
	App    *uint64 `json:"app"`
	Active *bool   `json:"active"`

	nulls map[string]bool
}

// UnmarshalJSON decodes the payload and records which keys were sent as null.
func (in *SubscriptionInput) UnmarshalJSON(data []byte) error {
	type subscriptionInput SubscriptionInput
	var decoded subscriptionInput
	if errDecode := json.Unmarshal(data, &decoded); errDecode != nil {
		return errDecode
	}
	nulls, errNulls := nullKeys(data)
	if errNulls != nil {
		return errNulls
	}
	*in = SubscriptionInput(decoded)
	in.nulls = nulls
	return nil
}

var subscriptionFields = []string{"plan", "app", "active"}

// SubscriptionValidatorFunc checks in and writes the accepted fields onto target.
type SubscriptionValidatorFunc func(in SubscriptionInput, target *models.Subscription) error

var subscriptionValidators = map[Action]SubscriptionValidatorFunc{
	ActionCreate:        validateSubscriptionFull,
	ActionUpdate:        validateSubscriptionFull,
	ActionPartialUpdate: validateSubscriptionPartial,
}

// SubscriptionValidator returns the validator registered for action.
func SubscriptionValidator(action Action) (SubscriptionValidatorFunc, error) {
	fn, ok := subscriptionValidators[action]
	if !ok {
		return nil, ErrUnsupportedAction{Resource: "subscription", Action: action}
	}
	return fn, nil
}

// validateSubscriptionFull requires plan and app; an omitted active resets to true.
func validateSubscriptionFull(in SubscriptionInput, target *models.Subscription) error {
	rules := nullRules(in.nulls, subscriptionFields...)
	rules = append(rules,
		validation.Required("plan", in.Plan != nil),
		validation.Required("app", in.App != nil),
	)
	rules = append(rules, subscriptionIDRules(in)...)
	if errValidate := validation.Apply(rules...); errValidate != nil {
		return errValidate
	}
	target.PlanID = *in.Plan
	target.AppID = *in.App
	target.Active = true
	if in.Active != nil {
		target.Active = *in.Active
	}
	return nil
}

// validateSubscriptionPartial merges the supplied fields over target.
func validateSubscriptionPartial(in SubscriptionInput, target *models.Subscription) error {
	if errNull := validation.Apply(nullRules(in.nulls, subscriptionFields...)...); errNull != nil {
		return errNull
	}
	if in.Plan == nil && in.App == nil && in.Active == nil {
		return apperr.FieldError("non_field_errors", "No data provided.")
	}
	if errValidate := validation.Apply(subscriptionIDRules(in)...); errValidate != nil {
		return errValidate
	}
	if in.Plan != nil {
		target.PlanID = *in.Plan
	}
	if in.App != nil {
		target.AppID = *in.App
	}
	if in.Active != nil {
		target.Active = *in.Active
	}
	return nil
}

func subscriptionIDRules(in SubscriptionInput) []validation.Rule {
	var rules []validation.Rule
	if in.Plan != nil {
		rules = append(rules, validation.PositiveID("plan", *in.Plan))
	}
	if in.App != nil {
		rules = append(rules, validation.PositiveID("app", *in.App))
	}
	return rules
}
