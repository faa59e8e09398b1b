package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusBadRequest},
		{BadRequest("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{Forbidden("x"), http.StatusForbidden},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Internal("x"), http.StatusInternalServerError},
		{Partial("x", nil), http.StatusMultiStatus},
		{Unavailable("x", errors.New("down")), http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Fatalf("kind %d: expected %d, got %d", tc.err.Kind, tc.want, got)
		}
	}
}

func TestGetKindFollowsWrapChain(t *testing.T) {
	base := Forbidden("role not held")
	wrapped := fmt.Errorf("set active role: %w", base)

	if !Is(wrapped, KindForbidden) {
		t.Fatalf("expected wrapped error to report forbidden kind")
	}
	if Is(errors.New("plain"), KindForbidden) {
		t.Fatalf("plain error must not report a kind")
	}
}

func TestErrorMessageIncludesOpAndCause(t *testing.T) {
	err := Wrap(KindInternal, "insert failed", errors.New("boom")).WithOp("billables.Upsert")
	want := "billables.Upsert: insert failed: boom"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
