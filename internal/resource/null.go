package resource

import (
	"encoding/json"

	"github.com/router-for-me/AppSubscriptions/internal/validation"
)

// nullKeys returns the top-level keys of a JSON object whose value is null.
func nullKeys(data []byte) (map[string]bool, error) {
	var raw map[string]json.RawMessage
	if errDecode := json.Unmarshal(data, &raw); errDecode != nil {
		return nil, errDecode
	}
	var nulls map[string]bool
	for key, value := range raw {
		if string(value) != "null" {
			continue
		}
		if nulls == nil {
			nulls = make(map[string]bool)
		}
		nulls[key] = true
	}
	return nulls, nil
}

// nullRules rejects every listed field that was sent as null. Keys outside
// fields are ignored like any other unknown key.
func nullRules(nulls map[string]bool, fields ...string) []validation.Rule {
	var rules []validation.Rule
	for _, field := range fields {
		if nulls[field] {
			rules = append(rules, validation.NotNull(field, true))
		}
	}
	return rules
}
