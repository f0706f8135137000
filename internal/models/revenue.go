package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RevenueInvite is an immutable ledger event crediting a beneficiary with a
// share of an accepted seller upgrade. Events are appended once and never
// mutated or deleted.
type RevenueInvite struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID           primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	UserUpgradeID    primitive.ObjectID `json:"user_upgrade_id" bson:"user_upgrade_id"`
	UpgradePackageID primitive.ObjectID `json:"upgrade_package_id" bson:"upgrade_package_id"`
	Money            float64            `json:"money" bson:"money"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
}

// RevenueAffiliate is the purchase-side counterpart of RevenueInvite.
type RevenueAffiliate struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	PurchaseID primitive.ObjectID `json:"purchase_id" bson:"purchase_id"`
	Money      float64            `json:"money" bson:"money"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// TotalRevenue is the running ledger for one beneficiary. Money always equals
// the sum of the money fields of every referenced revenue event; every event
// append increments Money and pushes the event id in the same update.
type TotalRevenue struct {
	ID                  primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID              primitive.ObjectID   `json:"user_id" bson:"user_id" validate:"required"`
	Role                UserRole             `json:"role" bson:"role"`
	RevenueInviteIDs    []primitive.ObjectID `json:"revenue_invite_id" bson:"revenue_invite_id"`
	RevenueAffiliateIDs []primitive.ObjectID `json:"revenue_affiliate_id" bson:"revenue_affiliate_id"`
	Rank                string               `json:"rank" bson:"rank"`
	Money               float64              `json:"money" bson:"money"`
	CreatedAt           time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at" bson:"updated_at"`
}
