package models

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleUser   UserRole = "user"
	UserRoleMember UserRole = "member"
)

// User is the identity principal. Name and Email are optional; the file
// registry never mutates a user.
type User struct {
	BaseModel
	Name         *string  `json:"name,omitempty" gorm:"type:varchar(100)"`
	Email        *string  `json:"email,omitempty" gorm:"type:varchar(255);uniqueIndex"`
	PasswordHash string   `json:"-" gorm:"type:text;not null"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
}

// DisplayName returns the user's name, or "" when none is set.
func (u *User) DisplayName() string {
	if u == nil || u.Name == nil {
		return ""
	}
	return *u.Name
}

func ValidRole(role UserRole) bool {
	switch role {
	case UserRoleAdmin, UserRoleUser, UserRoleMember:
		return true
	}
	return false
}
