package model

import "time"

// Role is the identity claim that gates administration endpoints.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered customer or administrator.
type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	Name                string     `json:"name" gorm:"size:255;not null"`
	Email               string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash        string     `json:"-" gorm:"size:255"` // empty for Google-only accounts
	Role                Role       `json:"role" gorm:"size:20;not null;default:'user'"`
	EmailVerified       bool       `json:"emailVerified" gorm:"not null;default:false"`
	VerificationToken   *string    `json:"-" gorm:"size:64;uniqueIndex"`
	VerificationExpires *time.Time `json:"-"`
	ResetToken          *string    `json:"-" gorm:"size:64;uniqueIndex"`
	ResetExpires        *time.Time `json:"-"`
	GoogleID            *string    `json:"-" gorm:"size:255;uniqueIndex"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`

	Addresses      []Address       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PaymentMethods []PaymentMethod `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Orders         []Order         `json:"-" gorm:"foreignKey:UserID"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the sanitized view returned by auth endpoints.
type PublicUser struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Public strips credentials and tokens.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}
