package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusDone    TransactionStatus = "done"
)

// Transaction is a payment-proof record binding a seller's bank transfer to
// either a Purchase or a UserUpgrade. Exactly one of PurchaseID/UpgradeID is
// set; the storage layer enforces at most one Transaction per target.
type Transaction struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	SellerID        primitive.ObjectID  `json:"seller_id" bson:"seller_id" validate:"required"`
	PurchaseID      *primitive.ObjectID `json:"purchase_id,omitempty" bson:"purchase_id,omitempty"`
	UpgradeID       *primitive.ObjectID `json:"upgrade_id,omitempty" bson:"upgrade_id,omitempty"`
	TransactionCode string              `json:"transaction_code" bson:"transaction_code"`
	CodePurchase    string              `json:"code_purchase" bson:"code_purchase"`
	CodeUpgrade     string              `json:"code_upgrade" bson:"code_upgrade"`
	TotalPrice      float64             `json:"total_price" bson:"total_price"`
	TransferImage   string              `json:"transfer_image" bson:"transfer_image"`
	Status          TransactionStatus   `json:"status" bson:"status" default:"pending"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" bson:"updated_at"`
}
