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
)

type purchaseRepository struct {
	collection *mongo.Collection
}

func NewPurchaseRepository(db *mongo.Database) interfaces.PurchaseRepository {
	return &purchaseRepository{
		collection: db.Collection(utils.CollectionPurchases),
	}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	purchase.ID = primitive.NewObjectID()
	purchase.CreatedAt = time.Now()
	purchase.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, purchase)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.ConflictError("purchase with this code already exists")
		}
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	return nil
}

func (r *purchaseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&purchase)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("purchase not found")
		}
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}

	return &purchase, nil
}

func (r *purchaseRepository) GetByCode(ctx context.Context, codePurchase string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.collection.FindOne(ctx, bson.M{"code_purchase": codePurchase}).Decode(&purchase)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("purchase not found")
		}
		return nil, fmt.Errorf("failed to get purchase by code: %w", err)
	}

	return &purchase, nil
}

func (r *purchaseRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFoundError("purchase not found")
	}

	return nil
}

func (r *purchaseRepository) GetBySeller(ctx context.Context, sellerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Purchase, int64, error) {
	filter := bson.M{"seller_id": sellerID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find purchases: %w", err)
	}
	defer cursor.Close(ctx)

	var purchases []*models.Purchase
	for cursor.Next(ctx) {
		var purchase models.Purchase
		if err := cursor.Decode(&purchase); err != nil {
			return nil, 0, fmt.Errorf("failed to decode purchase: %w", err)
		}
		purchases = append(purchases, &purchase)
	}

	return purchases, total, nil
}
