package models

import (
	"time"
)

type UserType string

const (
	UserTypeRider  UserType = "rider"
	UserTypeDriver UserType = "driver"
	UserTypeAdmin  UserType = "admin"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeRider, UserTypeDriver, UserTypeAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	FullName  string    `json:"fullName" gorm:"column:full_name;not null"`
	Phone     *string   `json:"phone"`
	UserType  UserType  `json:"userType" gorm:"column:user_type;not null;default:'rider'"`
	IsActive  bool      `json:"isActive" gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// UserPatch carries the mutable user fields; nil means unchanged.
type UserPatch struct {
	Username *string   `json:"username"`
	Password *string   `json:"-"`
	FullName *string   `json:"fullName"`
	Phone    *string   `json:"phone"`
	UserType *UserType `json:"userType"`
	IsActive *bool     `json:"isActive"`
}

func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Phone != nil {
		v := *p.Phone
		u.Phone = &v
	}
	if p.UserType != nil {
		u.UserType = *p.UserType
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
}
