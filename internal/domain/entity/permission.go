package entity

import (
	"slices"
	"sort"

	"storehub/internal/errors"
)

// Permission is a capability key drawn from a closed vocabulary.
type Permission string

const (
	PermViewStore      Permission = "view-store"
	PermEditStore      Permission = "edit-store"
	PermViewProducts   Permission = "view-products"
	PermCreateProducts Permission = "create-products"
	PermManageProducts Permission = "manage-products"
	PermDeleteProducts Permission = "delete-products"
	PermViewOrders     Permission = "view-orders"
	PermCreateOrders   Permission = "create-orders"
	PermManageOrders   Permission = "manage-orders"
	PermDeleteOrders   Permission = "delete-orders"
	PermViewStaff      Permission = "view-staff"
	PermManageStaff    Permission = "manage-staff"
)

// ErrUnknownPermission is returned when a permission key is outside the vocabulary.
var ErrUnknownPermission = errors.New("unknown permission")

var allPermissions = []Permission{
	PermViewStore, PermEditStore,
	PermViewProducts, PermCreateProducts, PermManageProducts, PermDeleteProducts,
	PermViewOrders, PermCreateOrders, PermManageOrders, PermDeleteOrders,
	PermViewStaff, PermManageStaff,
}

// managedCreates maps each manage key to the create key it covers.
var managedCreates = map[Permission]Permission{
	PermManageProducts: PermCreateProducts,
	PermManageOrders:   PermCreateOrders,
}

// AllPermissions returns the full vocabulary.
func AllPermissions() []Permission {
	return slices.Clone(allPermissions)
}

// IsValid checks if the Permission is part of the vocabulary.
func (p Permission) IsValid() bool {
	return slices.Contains(allPermissions, p)
}

// GrantableToStaff reports whether the permission may be stored on a staff record.
func (p Permission) GrantableToStaff() bool {
	return p.IsValid() && p != PermManageStaff
}

func (p Permission) String() string {
	return string(p)
}

// PermissionSet is an unordered set of permissions.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from known permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}

	return set
}

// ParsePermissionSet validates raw keys at the boundary and rejects unknown ones.
func ParsePermissionSet(keys []string) (PermissionSet, error) {
	set := make(PermissionSet, len(keys))
	for _, key := range keys {
		p := Permission(key)
		if !p.IsValid() {
			return nil, errors.Wrapf(ErrUnknownPermission, "%q", key)
		}
		set[p] = struct{}{}
	}

	return set, nil
}

// DefaultOwnerPermissions is always granted to store owners on top of their stored set.
func DefaultOwnerPermissions() PermissionSet {
	return NewPermissionSet(PermViewStore, PermEditStore, PermManageProducts, PermManageOrders, PermManageStaff)
}

// Has reports whether p is in the set. A nil set holds nothing.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]

	return ok
}

// Union returns a new set holding the members of both sets.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	out := make(PermissionSet, len(s)+len(other))
	for p := range s {
		out[p] = struct{}{}
	}
	for p := range other {
		out[p] = struct{}{}
	}

	return out
}

// WithImplied returns a copy of the set where every manage key also grants the
// create key of the same resource.
func (s PermissionSet) WithImplied() PermissionSet {
	out := s.Clone()
	for p := range s {
		if create, ok := managedCreates[p]; ok {
			out[create] = struct{}{}
		}
	}

	return out
}

// Clone returns a copy of the set.
func (s PermissionSet) Clone() PermissionSet {
	return s.Union(nil)
}

// Strings returns the keys sorted, suitable for storage and tokens.
func (s PermissionSet) Strings() []string {
	keys := make([]string, 0, len(s))
	for p := range s {
		keys = append(keys, string(p))
	}
	sort.Strings(keys)

	return keys
}
