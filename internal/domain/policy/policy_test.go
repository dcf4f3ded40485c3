package policy

import (
	"testing"

	"storehub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func owner(storeID uuid.UUID, perms ...entity.Permission) *entity.Principal {
	return &entity.Principal{
		Guard:       entity.GuardStoreOwner,
		AccountID:   uuid.New(),
		StoreID:     storeID,
		Permissions: entity.NewPermissionSet(perms...),
	}
}

func staff(storeID uuid.UUID, perms ...entity.Permission) *entity.Principal {
	p := owner(storeID, perms...)
	p.Guard = entity.GuardStoreStaff

	return p
}

func TestCanPerform_AdminAlwaysAllowed(t *testing.T) {
	admin := &entity.Principal{Guard: entity.GuardAdmin, AccountID: uuid.New()}
	resources := []Resource{{}, ForStore(uuid.New()), ForStore(uuid.New())}

	for _, action := range entity.AllPermissions() {
		for _, res := range resources {
			assert.True(t, CanPerform(admin, action, res), "admin denied %s on %v", action, res.StoreID)
		}
	}
}

func TestCanPerform_OwnerStoreMismatchAlwaysDenied(t *testing.T) {
	own := owner(uuid.New(), entity.AllPermissions()...)
	other := ForStore(uuid.New())

	for _, action := range entity.AllPermissions() {
		assert.False(t, CanPerform(own, action, other), "owner allowed %s on foreign store", action)
	}
}

func TestCanPerform_OwnerDefaultsApplyWithEmptyStoredSet(t *testing.T) {
	storeID := uuid.New()
	own := owner(storeID)

	assert.True(t, CanPerform(own, entity.PermManageProducts, ForStore(storeID)))
	assert.True(t, CanPerform(own, entity.PermManageStaff, ForStore(storeID)))
	assert.False(t, CanPerform(own, entity.PermDeleteOrders, ForStore(storeID)))
}

func TestCanPerform_OwnerStoredSetIsUnioned(t *testing.T) {
	storeID := uuid.New()
	own := owner(storeID, entity.PermDeleteOrders)

	assert.True(t, CanPerform(own, entity.PermDeleteOrders, ForStore(storeID)))
	assert.True(t, CanPerform(own, entity.PermEditStore, ForStore(storeID)))
}

func TestCanPerform_ManageCoversCreate(t *testing.T) {
	storeID := uuid.New()

	own := owner(storeID)
	assert.True(t, CanPerform(own, entity.PermCreateOrders, ForStore(storeID)))
	assert.True(t, CanPerform(own, entity.PermCreateProducts, ForStore(storeID)))
	assert.False(t, CanPerform(own, entity.PermDeleteProducts, ForStore(storeID)))

	member := staff(storeID, entity.PermManageOrders)
	assert.True(t, CanPerform(member, entity.PermCreateOrders, ForStore(storeID)))
	assert.False(t, CanPerform(member, entity.PermCreateProducts, ForStore(storeID)))

	creator := staff(storeID, entity.PermCreateOrders)
	assert.True(t, CanPerform(creator, entity.PermCreateOrders, ForStore(storeID)))
	assert.False(t, CanPerform(creator, entity.PermManageOrders, ForStore(storeID)))
	assert.Equal(t, []string{"create-orders"}, creator.Permissions.Strings())
}

func TestCanPerform_StaffWithEmptySetDeniedEverywhere(t *testing.T) {
	storeID := uuid.New()
	member := staff(storeID)

	for _, action := range entity.AllPermissions() {
		assert.False(t, CanPerform(member, action, ForStore(storeID)))
		assert.False(t, CanPerform(member, action, Resource{}))
	}
}

func TestCanPerform_StaffExplicitOnly(t *testing.T) {
	storeID := uuid.New()
	member := staff(storeID, entity.PermViewOrders)

	assert.True(t, CanPerform(member, entity.PermViewOrders, ForStore(storeID)))
	assert.False(t, CanPerform(member, entity.PermManageOrders, ForStore(storeID)))
	assert.False(t, CanPerform(member, entity.PermViewOrders, ForStore(uuid.New())))
}

func TestCanPerform_FailsClosed(t *testing.T) {
	storeID := uuid.New()

	assert.False(t, CanPerform(nil, entity.PermViewStore, ForStore(storeID)))

	customer := &entity.Principal{Guard: entity.GuardUser, AccountID: uuid.New()}
	assert.False(t, CanPerform(customer, entity.PermViewStore, ForStore(storeID)))

	unknown := &entity.Principal{Guard: entity.Guard("robot"), AccountID: uuid.New()}
	assert.False(t, CanPerform(unknown, entity.PermViewStore, Resource{}))

	storeless := owner(uuid.Nil)
	assert.False(t, CanPerform(storeless, entity.PermViewStore, Resource{}))
}

func TestCanPerform_IsDeterministic(t *testing.T) {
	storeID := uuid.New()
	member := staff(storeID, entity.PermViewStore)

	first := CanPerform(member, entity.PermViewStore, ForStore(storeID))
	for range 10 {
		assert.Equal(t, first, CanPerform(member, entity.PermViewStore, ForStore(storeID)))
	}
	assert.Equal(t, []string{"view-store"}, member.Permissions.Strings())
}

func TestValidateStaffPermissions(t *testing.T) {
	set, err := ValidateStaffPermissions([]string{"view-orders", "create-orders"})
	require.NoError(t, err)
	assert.Len(t, set, 2)

	_, err = ValidateStaffPermissions([]string{"manage-staff"})
	assert.ErrorIs(t, err, ErrNotGrantable)

	_, err = ValidateStaffPermissions([]string{"fly"})
	assert.ErrorIs(t, err, entity.ErrUnknownPermission)
}
