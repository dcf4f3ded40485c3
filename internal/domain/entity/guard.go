// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

// Guard names an independently authenticated principal namespace.
type Guard string

const (
	// GuardAdmin authenticates platform administrators.
	GuardAdmin Guard = "admin"
	// GuardStoreOwner authenticates owners of one store.
	GuardStoreOwner Guard = "store_owner"
	// GuardStoreStaff authenticates staff members of one store.
	GuardStoreStaff Guard = "store_staff"
	// GuardUser authenticates generic customer accounts.
	GuardUser Guard = "user"
)

// String returns the string representation of the Guard.
func (g Guard) String() string {
	return string(g)
}

// IsValid checks if the Guard is a valid value.
func (g Guard) IsValid() bool {
	switch g {
	case GuardAdmin, GuardStoreOwner, GuardStoreStaff, GuardUser:
		return true
	default:
		return false
	}
}

// IsStoreScoped reports whether principals of this guard belong to exactly one store.
func (g Guard) IsStoreScoped() bool {
	return g == GuardStoreOwner || g == GuardStoreStaff
}

// ParseGuard accepts both the canonical value and the URL form ("store-owner").
func ParseGuard(s string) (Guard, bool) {
	switch s {
	case "store-owner":
		return GuardStoreOwner, true
	case "store-staff":
		return GuardStoreStaff, true
	}

	g := Guard(s)

	return g, g.IsValid()
}

// PathSegment returns the URL form of the guard.
func (g Guard) PathSegment() string {
	switch g {
	case GuardStoreOwner:
		return "store-owner"
	case GuardStoreStaff:
		return "store-staff"
	default:
		return string(g)
	}
}
