package auth

type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// CanManage reports whether the role may act on other employees' attendance and pay.
func (r Role) CanManage() bool {
	return r == RoleManager || r == RoleOwner
}
