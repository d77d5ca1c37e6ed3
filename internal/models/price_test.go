package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw  string
		want Price
	}{
		{"12.50", 1250},
		{"0", 0},
		{"0.5", 50},
		{".75", 75},
		{"19.", 1900},
		{"-3.10", -310},
		{"007.01", 701},
	}
	for _, tc := range cases {
		got, err := ParsePrice(tc.raw)
		if err != nil {
			t.Fatalf("ParsePrice(%q): unexpected error %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParsePrice(%q): expected %d, got %d", tc.raw, tc.want, got)
		}
	}
}

func TestParsePriceRejectsInvalid(t *testing.T) {
	for _, raw := range []string{"", ".", "-", "1.234", "abc", "1e3", "1234567890123456789.00"} {
		if _, err := ParsePrice(raw); !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("ParsePrice(%q): expected ErrInvalidPrice, got %v", raw, err)
		}
	}
}

func TestPriceJSON(t *testing.T) {
	data, err := json.Marshal(Price(995))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"9.95"` {
		t.Fatalf("expected \"9.95\", got %s", data)
	}

	var fromNumber Price
	if errUnmarshal := json.Unmarshal([]byte(`4.2`), &fromNumber); errUnmarshal != nil {
		t.Fatalf("unmarshal number: %v", errUnmarshal)
	}
	if fromNumber != 420 {
		t.Fatalf("expected 420, got %d", fromNumber)
	}
}

func TestPriceScan(t *testing.T) {
	var p Price
	if err := p.Scan([]byte("10.00")); err != nil || p != 1000 {
		t.Fatalf("scan bytes: got %d, err %v", p, err)
	}
	if err := p.Scan(float64(2.5)); err != nil || p != 250 {
		t.Fatalf("scan float: got %d, err %v", p, err)
	}
	if err := p.Scan(int64(3)); err != nil || p != 300 {
		t.Fatalf("scan int: got %d, err %v", p, err)
	}
	if err := p.Scan("1.2500"); err != nil || p != 125 {
		t.Fatalf("scan wide scale: got %d, err %v", p, err)
	}
	if err := p.Scan(true); err == nil {
		t.Fatalf("expected error for bool")
	}
}
