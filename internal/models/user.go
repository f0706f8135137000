package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleSeller   UserRole = "seller"
	RoleProvider UserRole = "provider"
	RoleCustomer UserRole = "customer"
)

type User struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name          string              `json:"name" bson:"name" validate:"required"`
	Email         string              `json:"email" bson:"email" validate:"required,email"`
	Roles         []UserRole          `json:"roles" bson:"roles"`
	ReferrerID    *primitive.ObjectID `json:"referrer_id" bson:"referrer_id,omitempty"`
	AffCode       string              `json:"aff_code" bson:"aff_code"`
	ParentAffCode string              `json:"parent_aff_code" bson:"parent_aff_code"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" bson:"updated_at"`
}

func (u *User) HasRole(role UserRole) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}
