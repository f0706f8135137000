package mongodb

import (
	"context"
	"fmt"
	"time"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type revenueRepository struct {
	invites    *mongo.Collection
	affiliates *mongo.Collection
	totals     *mongo.Collection
}

func NewRevenueRepository(db *mongo.Database) interfaces.RevenueRepository {
	return &revenueRepository{
		invites:    db.Collection(utils.CollectionRevenuesInvite),
		affiliates: db.Collection(utils.CollectionRevenuesAffiliate),
		totals:     db.Collection(utils.CollectionTotalRevenues),
	}
}

// Ledger events
func (r *revenueRepository) CreateInvite(ctx context.Context, invite *models.RevenueInvite) error {
	invite.ID = primitive.NewObjectID()
	invite.CreatedAt = time.Now()

	_, err := r.invites.InsertOne(ctx, invite)
	if err != nil {
		return fmt.Errorf("failed to create revenue invite: %w", err)
	}

	return nil
}

func (r *revenueRepository) CreateAffiliate(ctx context.Context, affiliate *models.RevenueAffiliate) error {
	affiliate.ID = primitive.NewObjectID()
	affiliate.CreatedAt = time.Now()

	_, err := r.affiliates.InsertOne(ctx, affiliate)
	if err != nil {
		return fmt.Errorf("failed to create revenue affiliate: %w", err)
	}

	return nil
}

// Running totals. The $inc and $push land in one update so money and the
// event list never disagree; upsert creates the row on a beneficiary's first
// credit.
func (r *revenueRepository) CreditInvite(ctx context.Context, userID primitive.ObjectID, role models.UserRole, inviteID primitive.ObjectID, money float64) error {
	return r.credit(ctx, userID, role, "revenue_invite_id", inviteID, money)
}

func (r *revenueRepository) CreditAffiliate(ctx context.Context, userID primitive.ObjectID, role models.UserRole, affiliateID primitive.ObjectID, money float64) error {
	return r.credit(ctx, userID, role, "revenue_affiliate_id", affiliateID, money)
}

func (r *revenueRepository) credit(ctx context.Context, userID primitive.ObjectID, role models.UserRole, eventField string, eventID primitive.ObjectID, money float64) error {
	now := time.Now()
	opts := options.Update().SetUpsert(true)

	_, err := r.totals.UpdateOne(
		ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$inc":  bson.M{"money": money},
			"$push": bson.M{eventField: eventID},
			"$set":  bson.M{"updated_at": now},
			"$setOnInsert": bson.M{
				"role":       role,
				"rank":       "",
				"created_at": now,
			},
		},
		opts,
	)
	if err != nil {
		return fmt.Errorf("failed to credit total revenue: %w", err)
	}

	return nil
}

// Queries
func (r *revenueRepository) GetTotalByUser(ctx context.Context, userID primitive.ObjectID) (*models.TotalRevenue, error) {
	var total models.TotalRevenue
	err := r.totals.FindOne(ctx, bson.M{"user_id": userID}).Decode(&total)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("no revenue recorded for user")
		}
		return nil, fmt.Errorf("failed to get total revenue: %w", err)
	}

	return &total, nil
}

func (r *revenueRepository) GetInvitesByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RevenueInvite, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.invites.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count revenue invites: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.invites.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find revenue invites: %w", err)
	}
	defer cursor.Close(ctx)

	var invites []*models.RevenueInvite
	for cursor.Next(ctx) {
		var invite models.RevenueInvite
		if err := cursor.Decode(&invite); err != nil {
			return nil, 0, fmt.Errorf("failed to decode revenue invite: %w", err)
		}
		invites = append(invites, &invite)
	}

	return invites, total, nil
}

func (r *revenueRepository) GetAffiliatesByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RevenueAffiliate, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.affiliates.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count revenue affiliates: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.affiliates.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find revenue affiliates: %w", err)
	}
	defer cursor.Close(ctx)

	var affiliates []*models.RevenueAffiliate
	for cursor.Next(ctx) {
		var affiliate models.RevenueAffiliate
		if err := cursor.Decode(&affiliate); err != nil {
			return nil, 0, fmt.Errorf("failed to decode revenue affiliate: %w", err)
		}
		affiliates = append(affiliates, &affiliate)
	}

	return affiliates, total, nil
}

// Reports
func (r *revenueRepository) GetInviteSummary(ctx context.Context, from, to time.Time) ([]*interfaces.RevenueSummary, error) {
	return r.summarize(ctx, r.invites, from, to)
}

func (r *revenueRepository) GetAffiliateSummary(ctx context.Context, from, to time.Time) ([]*interfaces.RevenueSummary, error) {
	return r.summarize(ctx, r.affiliates, from, to)
}

func (r *revenueRepository) summarize(ctx context.Context, collection *mongo.Collection, from, to time.Time) ([]*interfaces.RevenueSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"created_at": bson.M{"$gte": from, "$lte": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$user_id",
			"event_count": bson.M{"$sum": 1},
			"total":       bson.M{"$sum": "$money"},
		}}},
		{{Key: "$sort", Value: bson.M{"total": -1}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue summary: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []*interfaces.RevenueSummary
	for cursor.Next(ctx) {
		var summary interfaces.RevenueSummary
		if err := cursor.Decode(&summary); err != nil {
			return nil, fmt.Errorf("failed to decode revenue summary: %w", err)
		}
		summaries = append(summaries, &summary)
	}

	return summaries, nil
}
