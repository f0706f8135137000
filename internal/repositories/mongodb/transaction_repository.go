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

type transactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) interfaces.TransactionRepository {
	return &transactionRepository{
		collection: db.Collection(utils.CollectionTransactions),
	}
}

// Basic CRUD operations
func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	transaction.ID = primitive.NewObjectID()
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, transaction)
	if err != nil {
		// The unique partial indexes on upgrade_id and purchase_id reject a
		// second transaction for the same target.
		if mongo.IsDuplicateKeyError(err) {
			return utils.ConflictError("transaction already exists for this target")
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&transaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("transaction not found")
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &transaction, nil
}

// MarkDone folds the not-yet-done check into the update filter, so two
// racing confirmations cannot both match.
func (r *transactionRepository) MarkDone(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":    id,
			"status": bson.M{"$ne": models.TransactionStatusDone},
		},
		bson.M{"$set": bson.M{
			"status":     models.TransactionStatusDone,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to confirm transaction: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.ConflictError("transaction already confirmed")
	}

	return nil
}

// Target lookups
func (r *transactionRepository) GetByUpgradeID(ctx context.Context, upgradeID primitive.ObjectID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"upgrade_id": upgradeID}).Decode(&transaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("transaction not found for upgrade")
		}
		return nil, fmt.Errorf("failed to get transaction by upgrade: %w", err)
	}

	return &transaction, nil
}

func (r *transactionRepository) GetByPurchaseID(ctx context.Context, purchaseID primitive.ObjectID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"purchase_id": purchaseID}).Decode(&transaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("transaction not found for purchase")
		}
		return nil, fmt.Errorf("failed to get transaction by purchase: %w", err)
	}

	return &transaction, nil
}

// GetByCode finds the transaction whose purchase code or upgrade code matches.
func (r *transactionRepository) GetByCode(ctx context.Context, code string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.collection.FindOne(ctx, bson.M{
		"$or": []bson.M{
			{"code_purchase": code},
			{"code_upgrade": code},
		},
	}).Decode(&transaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("transaction not found for code")
		}
		return nil, fmt.Errorf("failed to get transaction by code: %w", err)
	}

	return &transaction, nil
}

// Listing
func (r *transactionRepository) GetBySeller(ctx context.Context, sellerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return r.findTransactionsWithFilter(ctx, bson.M{"seller_id": sellerID}, params)
}

func (r *transactionRepository) GetByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return r.findTransactionsWithFilter(ctx, bson.M{"status": status}, params)
}

// ListDetailedByStatus joins each transaction with its seller and settlement
// target. The purchase and upgrade lookups unwind with
// preserveNullAndEmptyArrays since a transaction references exactly one of
// the two.
func (r *transactionRepository) ListDetailedByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*interfaces.TransactionDetail, int64, error) {
	filter := bson.M{"status": status}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.M{utils.NormalizeSortField(params.Sort): params.SortDirection()}}},
		{{Key: "$skip", Value: int64(params.GetSkip())}},
		{{Key: "$limit", Value: int64(params.GetLimit())}},
		{{Key: "$lookup", Value: bson.M{
			"from":         utils.CollectionUsers,
			"localField":   "seller_id",
			"foreignField": "_id",
			"as":           "seller",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$seller", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         utils.CollectionPurchases,
			"localField":   "purchase_id",
			"foreignField": "_id",
			"as":           "purchase",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$purchase", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         utils.CollectionUserUpgrades,
			"localField":   "upgrade_id",
			"foreignField": "_id",
			"as":           "upgrade",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$upgrade", "preserveNullAndEmptyArrays": true}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate transaction details: %w", err)
	}
	defer cursor.Close(ctx)

	var details []*interfaces.TransactionDetail
	for cursor.Next(ctx) {
		var detail interfaces.TransactionDetail
		if err := cursor.Decode(&detail); err != nil {
			return nil, 0, fmt.Errorf("failed to decode transaction detail: %w", err)
		}
		details = append(details, &detail)
	}

	return details, total, nil
}

// Statistics
func (r *transactionRepository) GetCountByStatus(ctx context.Context, status models.TransactionStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}

func (r *transactionRepository) findTransactionsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	if params.Search != "" {
		searchFilter := params.GetSearchFilter([]string{"transaction_code", "code_purchase", "code_upgrade"})
		if len(searchFilter) > 0 {
			filter = bson.M{
				"$and": []bson.M{filter, searchFilter},
			}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []*models.Transaction
	for cursor.Next(ctx) {
		var transaction models.Transaction
		if err := cursor.Decode(&transaction); err != nil {
			return nil, 0, fmt.Errorf("failed to decode transaction: %w", err)
		}
		transactions = append(transactions, &transaction)
	}

	return transactions, total, nil
}
