package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusPaid      PurchaseStatus = "paid"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// Purchase is the order record a purchase settlement binds to. The settlement
// core only reads it; creation and fulfilment live with the catalog side.
type Purchase struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SellerID     primitive.ObjectID `json:"seller_id" bson:"seller_id" validate:"required"`
	CustomerID   primitive.ObjectID `json:"customer_id" bson:"customer_id"`
	CodePurchase string             `json:"code_purchase" bson:"code_purchase"`
	TotalPrice   float64            `json:"purchase_total_price" bson:"purchase_total_price"`
	Status       PurchaseStatus     `json:"status" bson:"status" default:"pending"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
