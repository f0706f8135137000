package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UpgradeStatus string

const (
	UpgradeStatusPending   UpgradeStatus = "pending"
	UpgradeStatusAccepted  UpgradeStatus = "accepted"
	UpgradeStatusCancelled UpgradeStatus = "cancelled"
)

// RevenueDistribution records how an accepted upgrade's price was split.
// AdminAmount + ReferrerAmount always equals the package price; ReferrerAmount
// is zero when the seller has no referrer.
type RevenueDistribution struct {
	ReferrerID     *primitive.ObjectID `json:"referrer_id,omitempty" bson:"referrer_id,omitempty"`
	ReferrerAmount float64             `json:"referrer_amount" bson:"referrer_amount"`
	AdminAmount    float64             `json:"admin_amount" bson:"admin_amount"`
}

// UserUpgrade is one seller's attempt to purchase a subscription package.
// At most one record per user may have in_use=true at any time.
type UserUpgrade struct {
	ID                  primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID              primitive.ObjectID   `json:"user_id" bson:"user_id" validate:"required"`
	PackageID           primitive.ObjectID   `json:"package_id" bson:"package_id" validate:"required"`
	CodeUpgrade         string               `json:"code_upgrade" bson:"code_upgrade"`
	AdminHandleID       *primitive.ObjectID  `json:"admin_handle_id,omitempty" bson:"admin_handle_id,omitempty"`
	ExpiryDate          *time.Time           `json:"expiry_date,omitempty" bson:"expiry_date,omitempty"`
	Status              UpgradeStatus        `json:"status" bson:"status" default:"pending"`
	UpgradeCount        int                  `json:"upgrade_count" bson:"upgrade_count"`
	InUse               bool                 `json:"in_use" bson:"in_use"`
	IsSentPayment       bool                 `json:"is_sent_payment" bson:"is_sent_payment"`
	RevenueDistribution *RevenueDistribution `json:"revenue_distribution,omitempty" bson:"revenue_distribution,omitempty"`
	CreatedAt           time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at" bson:"updated_at"`
}

// IsActive reports whether the upgrade is the seller's current subscription
// and has not expired at the given instant.
func (u *UserUpgrade) IsActive(now time.Time) bool {
	return u.Status == UpgradeStatusAccepted && u.InUse && u.ExpiryDate != nil && u.ExpiryDate.After(now)
}
