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

type userUpgradeRepository struct {
	collection *mongo.Collection
}

func NewUserUpgradeRepository(db *mongo.Database) interfaces.UserUpgradeRepository {
	return &userUpgradeRepository{
		collection: db.Collection(utils.CollectionUserUpgrades),
	}
}

// Basic CRUD operations
func (r *userUpgradeRepository) Create(ctx context.Context, upgrade *models.UserUpgrade) error {
	upgrade.ID = primitive.NewObjectID()
	upgrade.CreatedAt = time.Now()
	upgrade.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, upgrade)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.ConflictError("upgrade with this code already exists")
		}
		return fmt.Errorf("failed to create user upgrade: %w", err)
	}

	return nil
}

func (r *userUpgradeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserUpgrade, error) {
	var upgrade models.UserUpgrade
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&upgrade)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("user upgrade not found")
		}
		return nil, fmt.Errorf("failed to get user upgrade: %w", err)
	}

	return &upgrade, nil
}

func (r *userUpgradeRepository) GetByCode(ctx context.Context, codeUpgrade string) (*models.UserUpgrade, error) {
	var upgrade models.UserUpgrade
	err := r.collection.FindOne(ctx, bson.M{"code_upgrade": codeUpgrade}).Decode(&upgrade)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("user upgrade not found")
		}
		return nil, fmt.Errorf("failed to get user upgrade by code: %w", err)
	}

	return &upgrade, nil
}

func (r *userUpgradeRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update user upgrade: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFoundError("user upgrade not found")
	}

	return nil
}

// Lifecycle queries
func (r *userUpgradeRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.UserUpgrade, error) {
	var upgrade models.UserUpgrade
	err := r.collection.FindOne(ctx, bson.M{
		"user_id": userID,
		"in_use":  true,
	}).Decode(&upgrade)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("no active upgrade for user")
		}
		return nil, fmt.Errorf("failed to get active upgrade: %w", err)
	}

	return &upgrade, nil
}

func (r *userUpgradeRepository) GetPendingByUserAndPackage(ctx context.Context, userID, packageID primitive.ObjectID) (*models.UserUpgrade, error) {
	var upgrade models.UserUpgrade
	err := r.collection.FindOne(ctx, bson.M{
		"user_id":    userID,
		"package_id": packageID,
		"status":     models.UpgradeStatusPending,
	}).Decode(&upgrade)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("no pending upgrade for user and package")
		}
		return nil, fmt.Errorf("failed to get pending upgrade: %w", err)
	}

	return &upgrade, nil
}

// CancelActiveForUser demotes the user's current in-use upgrade, if any, so a
// newly accepted one can take its place. Returns the demoted record, or a
// not-found error when the user had no active upgrade.
func (r *userUpgradeRepository) CancelActiveForUser(ctx context.Context, userID, adminID primitive.ObjectID) (*models.UserUpgrade, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var prior models.UserUpgrade
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"user_id": userID, "in_use": true},
		bson.M{"$set": bson.M{
			"in_use":          false,
			"status":          models.UpgradeStatusCancelled,
			"admin_handle_id": adminID,
			"updated_at":      time.Now(),
		}},
		opts,
	).Decode(&prior)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("no active upgrade for user")
		}
		return nil, fmt.Errorf("failed to cancel active upgrade: %w", err)
	}

	return &prior, nil
}

// Listing
func (r *userUpgradeRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.UserUpgrade, int64, error) {
	return r.findUpgradesWithFilter(ctx, bson.M{"user_id": userID}, params)
}

func (r *userUpgradeRepository) GetByStatus(ctx context.Context, status models.UpgradeStatus, params *utils.PaginationParams) ([]*models.UserUpgrade, int64, error) {
	return r.findUpgradesWithFilter(ctx, bson.M{"status": status}, params)
}

// Statistics
func (r *userUpgradeRepository) GetCountByStatus(ctx context.Context, status models.UpgradeStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}

func (r *userUpgradeRepository) findUpgradesWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.UserUpgrade, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count user upgrades: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find user upgrades: %w", err)
	}
	defer cursor.Close(ctx)

	var upgrades []*models.UserUpgrade
	for cursor.Next(ctx) {
		var upgrade models.UserUpgrade
		if err := cursor.Decode(&upgrade); err != nil {
			return nil, 0, fmt.Errorf("failed to decode user upgrade: %w", err)
		}
		upgrades = append(upgrades, &upgrade)
	}

	return upgrades, total, nil
}
