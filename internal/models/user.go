// internal/models/user.go
package models

import "strings"

// Role is the closed set of roles known to the user directory.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleManager       Role = "manager"
	RoleDeveloper     Role = "developer"
	RoleMember        Role = "member"
)

// ParseRole maps a directory role name onto a Role. Anything unknown is an
// ordinary member.
func ParseRole(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "administrator", "admin":
		return RoleAdministrator
	case "manager", "shop_manager":
		return RoleManager
	case "developer":
		return RoleDeveloper
	default:
		return RoleMember
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleManager, RoleDeveloper, RoleMember:
		return true
	}
	return false
}

// Identity is a resolved caller.
type Identity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// DirectoryUser is a row of the directory's users table (wp_users).
type DirectoryUser struct {
	ID        uint   `gorm:"column:ID;primaryKey"`
	UserLogin string `gorm:"column:user_login"`
	UserPass  string `gorm:"column:user_pass"`
}

// DirectoryUserMeta is a row of the directory's usermeta table (wp_usermeta).
type DirectoryUserMeta struct {
	UMetaID   uint   `gorm:"column:umeta_id;primaryKey"`
	UserID    uint   `gorm:"column:user_id"`
	MetaKey   string `gorm:"column:meta_key"`
	MetaValue string `gorm:"column:meta_value"`
}
