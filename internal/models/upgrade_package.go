package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UpgradePackage is a purchasable subscription tier for sellers.
// ReferralCommissions is the percent share of the price paid out to the
// seller's referrer when an upgrade to this package is accepted.
type UpgradePackage struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name" validate:"required"`
	Description         string             `json:"description" bson:"description"`
	Price               float64            `json:"price" bson:"price" validate:"required,gt=0"`
	DurationInMonths    int                `json:"duration_in_months" bson:"duration_in_months" validate:"required,gt=0"`
	ReferralCommissions float64            `json:"referral_commissions" bson:"referral_commissions" validate:"gte=0,lte=100"`
	CreatedAt           time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" bson:"updated_at"`
}
