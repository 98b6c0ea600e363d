package reconcile

import (
	"fmt"
	"strings"
)

// MergePolicy decides the quantity a guest cart line ends with on the server
// when the same product is already in the remote cart.
type MergePolicy string

const (
	// PolicySum adds guest and remote quantities.
	PolicySum MergePolicy = "sum"
	// PolicyGuest overwrites the remote quantity with the guest one.
	PolicyGuest MergePolicy = "guest"
	// PolicyRemote keeps the remote quantity when the product is present.
	PolicyRemote MergePolicy = "remote"
	// PolicyMax keeps the larger of the two quantities.
	PolicyMax MergePolicy = "max"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicySum

// ParseMergePolicy converts a config value to a MergePolicy.
// Empty input selects DefaultPolicy.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch p := MergePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultPolicy, nil
	case PolicySum, PolicyGuest, PolicyRemote, PolicyMax:
		return p, nil
	default:
		return "", fmt.Errorf("unknown merge policy %q (want sum, guest, remote or max)", s)
	}
}

// Merge returns the quantity to sync for one product.
// inRemote reports whether the product is already in the remote cart.
func (p MergePolicy) Merge(guestQty, remoteQty int, inRemote bool) int {
	if !inRemote {
		return guestQty
	}
	switch p {
	case PolicyGuest:
		return guestQty
	case PolicyRemote:
		return remoteQty
	case PolicyMax:
		return max(guestQty, remoteQty)
	default:
		return guestQty + remoteQty
	}
}
