// Package policy decides whether a principal may perform an action.
// Every function here is pure so it can be exercised without a request.
package policy

import (
	"storehub/internal/domain/entity"

	"github.com/google/uuid"
)

// Resource is the context an action targets.
type Resource struct {
	// StoreID is uuid.Nil when the action is not scoped to a store.
	StoreID uuid.UUID
}

// ForStore returns a resource scoped to the store.
func ForStore(storeID uuid.UUID) Resource {
	return Resource{StoreID: storeID}
}

// CanPerform reports whether principal may perform action on resource.
// A nil principal is denied.
func CanPerform(principal *entity.Principal, action entity.Permission, resource Resource) bool {
	if principal == nil {
		return false
	}

	switch principal.Guard {
	case entity.GuardAdmin:
		return true
	case entity.GuardStoreOwner:
		if !storeMatches(principal, resource) {
			return false
		}

		return EffectivePermissions(principal).Has(action)
	case entity.GuardStoreStaff:
		if !storeMatches(principal, resource) {
			return false
		}

		return EffectivePermissions(principal).Has(action)
	default:
		return false
	}
}

// EffectivePermissions returns what the principal actually holds for its own store.
// Manage keys also cover creation on the same resource.
func EffectivePermissions(principal *entity.Principal) entity.PermissionSet {
	switch principal.Guard {
	case entity.GuardAdmin:
		return entity.NewPermissionSet(entity.AllPermissions()...)
	case entity.GuardStoreOwner:
		return entity.DefaultOwnerPermissions().Union(principal.Permissions).WithImplied()
	case entity.GuardStoreStaff:
		return principal.Permissions.WithImplied()
	default:
		return entity.PermissionSet{}
	}
}

// storeMatches fails closed for a store-scoped principal without a store.
func storeMatches(principal *entity.Principal, resource Resource) bool {
	if principal.StoreID == uuid.Nil {
		return false
	}
	if resource.StoreID == uuid.Nil {
		return true
	}

	return resource.StoreID == principal.StoreID
}

// ValidateStaffPermissions parses raw keys for a staff record and rejects keys
// outside the vocabulary or reserved for owners.
func ValidateStaffPermissions(keys []string) (entity.PermissionSet, error) {
	set, err := entity.ParsePermissionSet(keys)
	if err != nil {
		return nil, err
	}
	for p := range set {
		if !p.GrantableToStaff() {
			return nil, ErrNotGrantable
		}
	}

	return set, nil
}
