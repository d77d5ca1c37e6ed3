package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxPriceIntegerDigits matches decimal(20,2).
const maxPriceIntegerDigits = 18

// ErrInvalidPrice reports a price string that is not a valid decimal(20,2).
var ErrInvalidPrice = errors.New("invalid price")

// Price is a fixed-point amount stored as integer cents.
type Price int64

// ParsePrice parses a decimal string with at most two fractional digits.
func ParsePrice(raw string) (Price, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}
	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" && (!hasDot || fracPart == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 2 {
		return 0, fmt.Errorf("%w: %q has more than 2 decimal places", ErrInvalidPrice, raw)
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	intPart = strings.TrimLeft(intPart, "0")
	if len(intPart) > maxPriceIntegerDigits {
		return 0, fmt.Errorf("%w: %q has more than %d integer digits", ErrInvalidPrice, raw, maxPriceIntegerDigits)
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	cents, errParse := strconv.ParseInt(intPart+fracPart, 10, 64)
	if errParse != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	if negative {
		cents = -cents
	}
	return Price(cents), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats the price with exactly two decimal places.
func (p Price) String() string {
	cents := int64(p)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON renders the price as a decimal string.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number.
func (p *Price) UnmarshalJSON(data []byte) error {
	if p == nil {
		return fmt.Errorf("price unmarshal: nil receiver")
	}
	var s string
	if errString := json.Unmarshal(data, &s); errString != nil {
		var n json.Number
		if errNumber := json.Unmarshal(data, &n); errNumber != nil {
			return fmt.Errorf("%w: %s", ErrInvalidPrice, string(data))
		}
		s = n.String()
	}
	parsed, errParse := ParsePrice(s)
	if errParse != nil {
		return errParse
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer for database serialization.
func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements sql.Scanner for database deserialization.
func (p *Price) Scan(value any) error {
	if p == nil {
		return fmt.Errorf("price scan: nil receiver")
	}
	switch typed := value.(type) {
	case nil:
		*p = 0
		return nil
	case []byte:
		return p.scanString(string(typed))
	case string:
		return p.scanString(typed)
	case int64:
		*p = Price(typed * 100)
		return nil
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return fmt.Errorf("price scan: invalid float %v", typed)
		}
		*p = Price(math.Round(typed * 100))
		return nil
	default:
		return fmt.Errorf("price scan: unsupported type %T", value)
	}
}

func (p *Price) scanString(raw string) error {
	parsed, errParse := ParsePrice(raw)
	if errParse != nil {
		// Drivers may return more fractional digits than the column scale.
		f, errFloat := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if errFloat != nil {
			return fmt.Errorf("price scan: %w", errParse)
		}
		*p = Price(math.Round(f * 100))
		return nil
	}
	*p = parsed
	return nil
}
