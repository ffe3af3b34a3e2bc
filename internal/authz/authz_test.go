package authz

import (
	"errors"
	"testing"

	"github.com/salescrm/order-service/internal/model"
)

func TestAuthorizeMatch(t *testing.T) {
	if err := Authorize("s1", "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthorizeMismatch(t *testing.T) {
	err := Authorize("s1", "s2")
	if !errors.Is(err, model.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthorizeEmptyCaller(t *testing.T) {
	if err := Authorize("s1", ""); !errors.Is(err, model.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
