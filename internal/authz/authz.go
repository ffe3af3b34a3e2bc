// Package authz holds the ownership check guarding every client and order
// mutation: the resource's owning seller must be the caller.
package authz

import (
	"fmt"

	"github.com/salescrm/order-service/internal/model"
)

// Authorize succeeds iff the resource's owner is the caller. It is a pure
// function; the caller identity comes in explicitly with every call, never
// from ambient state.
func Authorize(ownerSellerID, callerSellerID string) error {
	if ownerSellerID != callerSellerID {
		return fmt.Errorf("seller %s: %w", callerSellerID, model.ErrForbidden)
	}
	return nil
}
