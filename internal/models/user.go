package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// Roles used for notification-source gating. Issued by the identity
// subsystem; this service only reads them back from the JWT.
const (
	RoleAdmin             = "admin"
	RoleUpseller          = "upseller"
	RoleFrontSalesManager = "front_sales_manager"
	RoleProduction        = "production"
)

type User struct {
	gorm.Model `json:"-"`
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name"`
	Email      string `json:"email" gorm:"uniqueIndex"`
	Role       string `json:"role" gorm:"size:30;index"`
	Password   string `json:"-"` // Hashed; issuance lives in the identity subsystem
}

// UserCompact is the embedded user shape returned inside other payloads.
type UserCompact struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name, Role: u.Role}
}

// RosterEntry is a roster row combined with the user's live presence status.
type RosterEntry struct {
	UserCompact
	Status string `json:"status"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
