// Package member models space membership: roles, their client-facing
// names, and the permission bitmask administrators carry.
package member

// Member roles inside a space.
const (
	RoleLeft          = 0 // left the space
	RoleMember        = 1 // regular member
	RoleAdministrator = 2 // space administrator
	RoleUserbot       = 3 // user-controlled bot
	RoleGuest         = 4 // guest access
)

// Reasons a member stops being a resident.
const (
	LeaveReasonBlockedInSystem = "blocked_in_system"
	LeaveReasonKicked          = "dismissed"
	LeaveReasonLeave           = "leave"
)

// roleOutputSchema maps roles to their client-facing names.
var roleOutputSchema = map[int]string{
	RoleLeft:          "left",
	RoleMember:        "member",
	RoleAdministrator: "administrator",
	RoleUserbot:       "userbot",
	RoleGuest:         "guest",
}

// SpaceResidentRoles lists the roles counted as space residents.
var SpaceResidentRoles = []int{RoleMember, RoleAdministrator}

// AllowedSetRoles lists the roles one member may assign to another.
var AllowedSetRoles = []int{RoleMember, RoleAdministrator}

// IsLeft reports whether the role means the member is out of the space.
func IsLeft(role int) bool { return role == RoleLeft }

// IsAdministrator reports whether the role carries the admin bit of the
// permission model.
func IsAdministrator(role int) bool { return role == RoleAdministrator }

// IsResident reports whether the role counts toward space residency.
func IsResident(role int) bool {
	for _, r := range SpaceResidentRoles {
		if r == role {
			return true
		}
	}
	return false
}

// FormatRole renders a role for client output. Unknown roles yield an
// empty string; callers treat that as a bug upstream.
func FormatRole(role int) string {
	return roleOutputSchema[role]
}

// ParseRole resolves a client-supplied role name back to its id.
func ParseRole(name string) (int, bool) {
	for role, out := range roleOutputSchema {
		if out == name {
			return role, true
		}
	}
	return 0, false
}
