package member

// Permission bits of the member permission mask as stored in
// company_data.member_list. Every id must be a distinct power of two.
const (
	PermissionDefault int64 = 0

	PermissionGroupAdministrator             int64 = 1 << 0 // administrator of every group
	PermissionBotManagement                  int64 = 1 << 1
	PermissionMessageDelete                  int64 = 1 << 2
	PermissionMemberProfileEdit              int64 = 1 << 3
	PermissionMemberInvite                   int64 = 1 << 4
	PermissionMemberKick                     int64 = 1 << 5
	PermissionSpaceSettingsLegacy            int64 = 1 << 6
	PermissionAdministratorManagement        int64 = 1 << 7
	PermissionSpaceSettings                  int64 = 1 << 8
	PermissionAdministratorStatisticInfinite int64 = 1 << 9

	// profile card restrictions
	PermissionRestrictBadgeProfileEdit       int64 = 1 << 10
	PermissionRestrictStatusProfileEdit      int64 = 1 << 11
	PermissionRestrictDescriptionProfileEdit int64 = 1 << 12

	PermissionHiddenReadMessageStatus int64 = 1 << 13
)

// Legacy permission bits of the pre-mask role model.
const (
	LegacyPermissionFull      int64 = 1 << 0
	LegacyPermissionHR        int64 = 1 << 1
	LegacyPermissionAdmin     int64 = 1 << 3
	LegacyPermissionDeveloper int64 = 1 << 4
)

// legacyConversionRules expands one legacy bit into the modern bits it
// implied.
var legacyConversionRules = map[int64][]int64{
	LegacyPermissionFull: {
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
	LegacyPermissionHR: {
		PermissionMemberInvite,
		PermissionMemberKick,
		PermissionMemberProfileEdit,
	},
	LegacyPermissionDeveloper: {
		PermissionBotManagement,
	},
	LegacyPermissionAdmin: {
		PermissionAdministratorManagement,
	},
}

// AllowedPermissions lists the bits clients may set and read.
var AllowedPermissions = []int64{
	PermissionGroupAdministrator,
	PermissionBotManagement,
	PermissionMessageDelete,
	PermissionMemberProfileEdit,
	PermissionMemberInvite,
	PermissionMemberKick,
	PermissionSpaceSettingsLegacy,
	PermissionSpaceSettings,
	PermissionAdministratorManagement,
	PermissionAdministratorStatisticInfinite,
	PermissionRestrictBadgeProfileEdit,
	PermissionRestrictStatusProfileEdit,
	PermissionRestrictDescriptionProfileEdit,
	PermissionHiddenReadMessageStatus,
}

// OwnerPermissions is the full set that marks the space owner.
var OwnerPermissions = []int64{
	PermissionGroupAdministrator,
	PermissionBotManagement,
	PermissionMessageDelete,
	PermissionMemberProfileEdit,
	PermissionMemberInvite,
	PermissionMemberKick,
	PermissionSpaceSettingsLegacy,
	PermissionAdministratorManagement,
	PermissionSpaceSettings,
}

// profileCardPermissions are reported inside the user card, not in the
// general permissions block.
var profileCardPermissions = map[int64]string{
	PermissionRestrictBadgeProfileEdit:       "restrict_badge_profile_edit",
	PermissionRestrictStatusProfileEdit:      "restrict_status_profile_edit",
	PermissionRestrictDescriptionProfileEdit: "restrict_description_profile_edit",
}

// CurrentPermissionsOutputVersion is the schema used for new clients.
const CurrentPermissionsOutputVersion = 2

// permissionsOutputSchemaByVersion names each reportable bit per client
// schema version. v1 still reported the legacy space settings bit.
var permissionsOutputSchemaByVersion = map[int]map[int64]string{
	1: {
		PermissionGroupAdministrator:             "group_administrator",
		PermissionBotManagement:                  "bot_management",
		PermissionMessageDelete:                  "message_delete",
		PermissionMemberProfileEdit:              "member_profile_edit",
		PermissionMemberInvite:                   "member_invite",
		PermissionMemberKick:                     "member_kick",
		PermissionSpaceSettingsLegacy:            "space_settings",
		PermissionAdministratorManagement:        "administrator_management",
		PermissionSpaceSettings:                  "space_delete",
		PermissionAdministratorStatisticInfinite: "administrator_statistic_infinite",
		PermissionHiddenReadMessageStatus:        "hidden_read_message_status",
	},
	2: {
		PermissionGroupAdministrator:             "group_administrator",
		PermissionBotManagement:                  "bot_management",
		PermissionMessageDelete:                  "message_delete",
		PermissionMemberProfileEdit:              "member_profile_edit",
		PermissionMemberInvite:                   "member_invite",
		PermissionMemberKick:                     "member_kick",
		PermissionSpaceSettings:                  "space_settings",
		PermissionAdministratorManagement:        "administrator_management",
		PermissionAdministratorStatisticInfinite: "administrator_statistic_infinite",
		PermissionHiddenReadMessageStatus:        "hidden_read_message_status",
	},
}

// AddPermissions sets every given bit in the mask.
func AddPermissions(mask int64, permissions ...int64) int64 {
	for _, p := range permissions {
		mask |= p
	}
	return mask
}

// RemovePermissions clears every given bit from the mask.
func RemovePermissions(mask int64, permissions ...int64) int64 {
	for _, p := range permissions {
		mask &^= p
	}
	return mask
}

// HasPermission reports whether the bit is set.
func HasPermission(mask, permission int64) bool {
	return mask&permission != 0
}

// HasAllPermissions reports whether every given bit is set.
func HasAllPermissions(mask int64, permissions ...int64) bool {
	for _, p := range permissions {
		if mask&p == 0 {
			return false
		}
	}
	return true
}

// HasOwnerPermissions reports whether the mask carries the full owner set.
func HasOwnerPermissions(mask int64) bool {
	return HasAllPermissions(mask, OwnerPermissions...)
}

// PermissionList expands a mask into its individual bits, ascending.
func PermissionList(mask int64) []int64 {
	var list []int64
	for bit := int64(1); bit != 0 && bit <= mask; bit <<= 1 {
		if mask&bit != 0 {
			list = append(list, bit)
		}
	}
	return list
}

// ConvertLegacyMask rewrites a legacy permission mask into the modern
// one, expanding each legacy bit per the conversion rules.
func ConvertLegacyMask(legacyMask int64) int64 {
	mask := PermissionDefault
	for legacyBit, modern := range legacyConversionRules {
		if legacyMask&legacyBit != 0 {
			mask = AddPermissions(mask, modern...)
		}
	}
	return mask
}

// LegacyPermissionBits reduces a modern mask back to the legacy bits it
// satisfies, for clients that still speak the old role model.
func LegacyPermissionBits(mask int64) []int64 {
	var bits []int64
	for _, legacyBit := range []int64{LegacyPermissionFull, LegacyPermissionHR, LegacyPermissionAdmin, LegacyPermissionDeveloper} {
		if HasAllPermissions(mask, legacyConversionRules[legacyBit]...) {
			bits = append(bits, legacyBit)
		}
	}
	return bits
}

// FormatPermissionsToOutput renders the general permissions block for a
// client. Card-scoped bits are skipped (the card reports them), and bits
// the requested schema version does not know are dropped. A
// non-administrator reports every known bit as off.
func FormatPermissionsToOutput(role int, mask int64, version int) map[string]int {
	schema, ok := permissionsOutputSchemaByVersion[version]
	if !ok {
		schema = permissionsOutputSchemaByVersion[CurrentPermissionsOutputVersion]
	}

	out := make(map[string]int, len(schema))
	for bit, name := range schema {
		if _, card := profileCardPermissions[bit]; card {
			continue
		}
		if HasPermission(mask, bit) && role == RoleAdministrator {
			out[name] = 1
		} else {
			out[name] = 0
		}
	}
	return out
}

// FormatProfileCardToOutput renders the card-scoped restriction bits.
func FormatProfileCardToOutput(mask int64) map[string]int {
	out := make(map[string]int, len(profileCardPermissions))
	for bit, name := range profileCardPermissions {
		if HasPermission(mask, bit) {
			out[name] = 1
		} else {
			out[name] = 0
		}
	}
	return out
}

// ParsePermissionsFromOutput splits a client permissions block into the
// bits to enable and the bits to disable. Names outside the schema are
// ignored; values other than 0 and 1 are ignored too.
func ParsePermissionsFromOutput(permissions map[string]int, version int) (enabled, disabled []int64) {
	schema, ok := permissionsOutputSchemaByVersion[version]
	if !ok {
		schema = permissionsOutputSchemaByVersion[CurrentPermissionsOutputVersion]
	}

	byName := make(map[string]int64, len(schema))
	for bit, name := range schema {
		byName[name] = bit
	}

	for name, value := range permissions {
		bit, ok := byName[name]
		if !ok {
			continue
		}
		switch value {
		case 1:
			enabled = append(enabled, bit)
		case 0:
			disabled = append(disabled, bit)
		}
	}
	return enabled, disabled
}
