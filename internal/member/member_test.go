package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolePredicates(t *testing.T) {
	assert.True(t, IsLeft(RoleLeft))
	assert.False(t, IsLeft(RoleMember))

	assert.True(t, IsAdministrator(RoleAdministrator))
	assert.False(t, IsAdministrator(RoleMember))
	assert.False(t, IsAdministrator(RoleGuest))

	assert.True(t, IsResident(RoleMember))
	assert.True(t, IsResident(RoleAdministrator))
	assert.False(t, IsResident(RoleLeft))
	assert.False(t, IsResident(RoleUserbot))
	assert.False(t, IsResident(RoleGuest))
}

func TestFormatRole(t *testing.T) {
	assert.Equal(t, "member", FormatRole(RoleMember))
	assert.Equal(t, "administrator", FormatRole(RoleAdministrator))
	assert.Equal(t, "left", FormatRole(RoleLeft))
	assert.Equal(t, "userbot", FormatRole(RoleUserbot))
	assert.Equal(t, "guest", FormatRole(RoleGuest))
	assert.Equal(t, "", FormatRole(42))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("administrator")
	require.True(t, ok)
	assert.Equal(t, RoleAdministrator, role)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
}

func TestAddRemovePermissions(t *testing.T) {
	mask := AddPermissions(PermissionDefault, PermissionMemberInvite, PermissionMemberKick)
	assert.True(t, HasPermission(mask, PermissionMemberInvite))
	assert.True(t, HasPermission(mask, PermissionMemberKick))
	assert.False(t, HasPermission(mask, PermissionMessageDelete))

	// adding a bit twice keeps the mask stable
	assert.Equal(t, mask, AddPermissions(mask, PermissionMemberInvite))

	mask = RemovePermissions(mask, PermissionMemberInvite)
	assert.False(t, HasPermission(mask, PermissionMemberInvite))
	assert.True(t, HasPermission(mask, PermissionMemberKick))

	// removing an absent bit is a no-op
	assert.Equal(t, mask, RemovePermissions(mask, PermissionSpaceSettings))
}

func TestHasAllPermissions(t *testing.T) {
	mask := AddPermissions(PermissionDefault, PermissionMemberInvite, PermissionMemberKick)
	assert.True(t, HasAllPermissions(mask, PermissionMemberInvite, PermissionMemberKick))
	assert.False(t, HasAllPermissions(mask, PermissionMemberInvite, PermissionBotManagement))
	assert.True(t, HasAllPermissions(mask))
}

func TestHasOwnerPermissions(t *testing.T) {
	mask := AddPermissions(PermissionDefault, OwnerPermissions...)
	assert.True(t, HasOwnerPermissions(mask))

	mask = RemovePermissions(mask, PermissionSpaceSettings)
	assert.False(t, HasOwnerPermissions(mask))
}

func TestPermissionList(t *testing.T) {
	mask := AddPermissions(PermissionDefault,
		PermissionGroupAdministrator,
		PermissionMemberKick,
		PermissionHiddenReadMessageStatus,
	)
	assert.Equal(t, []int64{
		PermissionGroupAdministrator,
		PermissionMemberKick,
		PermissionHiddenReadMessageStatus,
	}, PermissionList(mask))

	assert.Empty(t, PermissionList(PermissionDefault))
}

func TestConvertLegacyMask(t *testing.T) {
	tests := []struct {
		name     string
		legacy   int64
		expected []int64
		absent   []int64
	}{
		{
			name:   "full expands to the owner set",
			legacy: LegacyPermissionFull,
			expected: []int64{
				PermissionGroupAdministrator,
				PermissionBotManagement,
				PermissionMessageDelete,
				PermissionMemberProfileEdit,
				PermissionMemberInvite,
				PermissionMemberKick,
				PermissionSpaceSettingsLegacy,
				PermissionSpaceSettings,
				PermissionAdministratorManagement,
			},
		},
		{
			name:     "hr expands to people management",
			legacy:   LegacyPermissionHR,
			expected: []int64{PermissionMemberInvite, PermissionMemberKick, PermissionMemberProfileEdit},
			absent:   []int64{PermissionSpaceSettings, PermissionBotManagement},
		},
		{
			name:     "developer expands to bot management",
			legacy:   LegacyPermissionDeveloper,
			expected: []int64{PermissionBotManagement},
			absent:   []int64{PermissionMemberInvite},
		},
		{
			name:     "admin expands to administrator management",
			legacy:   LegacyPermissionAdmin,
			expected: []int64{PermissionAdministratorManagement},
			absent:   []int64{PermissionSpaceSettings},
		},
		{
			name:     "combined bits merge",
			legacy:   LegacyPermissionHR | LegacyPermissionDeveloper,
			expected: []int64{PermissionMemberInvite, PermissionMemberKick, PermissionMemberProfileEdit, PermissionBotManagement},
		},
		{
			name:   "empty legacy mask stays empty",
			legacy: 0,
			absent: AllowedPermissions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := ConvertLegacyMask(tt.legacy)
			for _, bit := range tt.expected {
				assert.True(t, HasPermission(mask, bit), "expected bit %d", bit)
			}
			for _, bit := range tt.absent {
				assert.False(t, HasPermission(mask, bit), "unexpected bit %d", bit)
			}
		})
	}
}

func TestLegacyPermissionBits(t *testing.T) {
	// the full set covers every other legacy subset
	mask := ConvertLegacyMask(LegacyPermissionFull)
	assert.Equal(t, []int64{
		LegacyPermissionFull,
		LegacyPermissionHR,
		LegacyPermissionAdmin,
		LegacyPermissionDeveloper,
	}, LegacyPermissionBits(mask))

	mask = ConvertLegacyMask(LegacyPermissionDeveloper)
	assert.Equal(t, []int64{LegacyPermissionDeveloper}, LegacyPermissionBits(mask))

	assert.Empty(t, LegacyPermissionBits(PermissionDefault))
}

func TestFormatPermissionsToOutput(t *testing.T) {
	mask := AddPermissions(PermissionDefault, PermissionMemberInvite, PermissionSpaceSettings)

	out := FormatPermissionsToOutput(RoleAdministrator, mask, 2)
	assert.Equal(t, 1, out["member_invite"])
	assert.Equal(t, 1, out["space_settings"])
	assert.Equal(t, 0, out["member_kick"])
	assert.Equal(t, 0, out["bot_management"])

	// card-scoped bits never show in the general block
	_, ok := out["restrict_badge_profile_edit"]
	assert.False(t, ok)

	// v1 reports the legacy name for space settings
	outV1 := FormatPermissionsToOutput(RoleAdministrator, AddPermissions(mask, PermissionSpaceSettingsLegacy), 1)
	assert.Equal(t, 1, outV1["space_settings"])
	assert.Equal(t, 1, outV1["space_delete"])

	// a plain member reports everything off regardless of the mask
	outMember := FormatPermissionsToOutput(RoleMember, mask, 2)
	for name, value := range outMember {
		assert.Equal(t, 0, value, "bit %s", name)
	}

	// unknown versions fall back to the current schema
	outFallback := FormatPermissionsToOutput(RoleAdministrator, mask, 99)
	assert.Equal(t, 1, outFallback["space_settings"])
}

func TestFormatProfileCardToOutput(t *testing.T) {
	mask := AddPermissions(PermissionDefault, PermissionRestrictStatusProfileEdit)

	out := FormatProfileCardToOutput(mask)
	require.Len(t, out, 3)
	assert.Equal(t, 0, out["restrict_badge_profile_edit"])
	assert.Equal(t, 1, out["restrict_status_profile_edit"])
	assert.Equal(t, 0, out["restrict_description_profile_edit"])
}

func TestParsePermissionsFromOutput(t *testing.T) {
	enabled, disabled := ParsePermissionsFromOutput(map[string]int{
		"member_invite":  1,
		"member_kick":    0,
		"made_up_bit":    1,
		"bot_management": 7, // not a flag value, ignored
	}, 2)

	assert.Equal(t, []int64{PermissionMemberInvite}, enabled)
	assert.Equal(t, []int64{PermissionMemberKick}, disabled)
}
