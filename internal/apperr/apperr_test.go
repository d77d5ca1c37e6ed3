package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{FieldError("name", "required"), http.StatusBadRequest},
		{Authentication("bad credentials"), http.StatusBadRequest},
		{NotFound(""), http.StatusNotFound},
		{Permission("missing token"), http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("store: get app: %w", NotFound("")), http.StatusNotFound},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v): expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestErrorMessageListsFields(t *testing.T) {
	err := Validation(map[string][]string{
		"type": {"invalid choice"},
		"name": {"required"},
	})
	want := "validation failed: name: required; type: invalid choice"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if !Is(err, KindValidation) {
		t.Fatalf("expected validation kind")
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("unique violation")
	err := &Error{Kind: KindValidation, Message: "duplicate", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
}
