package interfaces

import (
	"context"
	"time"

	"goshop/internal/models"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RevenueSummary is one beneficiary's aggregated earnings over a period.
type RevenueSummary struct {
	UserID     primitive.ObjectID `json:"user_id" bson:"_id"`
	EventCount int64              `json:"event_count" bson:"event_count"`
	Total      float64            `json:"total" bson:"total"`
}

type RevenueRepository interface {
	// Ledger events. Events are append-only; there are no update or delete
	// operations on them.
	CreateInvite(ctx context.Context, invite *models.RevenueInvite) error
	CreateAffiliate(ctx context.Context, affiliate *models.RevenueAffiliate) error

	// Running totals. Credit* upserts the beneficiary's TotalRevenue row,
	// incrementing money and appending the event id in a single update.
	CreditInvite(ctx context.Context, userID primitive.ObjectID, role models.UserRole, inviteID primitive.ObjectID, money float64) error
	CreditAffiliate(ctx context.Context, userID primitive.ObjectID, role models.UserRole, affiliateID primitive.ObjectID, money float64) error

	// Queries
	GetTotalByUser(ctx context.Context, userID primitive.ObjectID) (*models.TotalRevenue, error)
	GetInvitesByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RevenueInvite, int64, error)
	GetAffiliatesByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RevenueAffiliate, int64, error)

	// Reports
	GetInviteSummary(ctx context.Context, from, to time.Time) ([]*RevenueSummary, error)
	GetAffiliateSummary(ctx context.Context, from, to time.Time) ([]*RevenueSummary, error)
}
