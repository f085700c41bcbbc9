package auth

const (
	RoleEmployee   = "employee"
	RoleManager    = "manager"
	RoleHRAdmin    = "hr_admin"
	RoleSuperAdmin = "super_admin"
)

var AllRoles = []string{
	RoleEmployee,
	RoleManager,
	RoleHRAdmin,
	RoleSuperAdmin,
}

func ValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
