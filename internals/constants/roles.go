package constants

// Role names as they appear in JWT claims. Permission checks happen in the
// calling layer; the core only uses these to derive the tenant scope.
const (
	RoleAdmin        = "ADMIN"
	RoleBrandManager = "BRAND_MANAGER"
	RoleStoreManager = "STORE_MANAGER"
	RoleCoach        = "COACH"
	RoleMember       = "MEMBER"
)

var AllRoles = []string{
	RoleAdmin,
	RoleBrandManager,
	RoleStoreManager,
	RoleCoach,
	RoleMember,
}

func IsKnownRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
