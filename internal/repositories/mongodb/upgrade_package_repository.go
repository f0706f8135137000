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

type upgradePackageRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewUpgradePackageRepository(db *mongo.Database, cache CacheService) interfaces.UpgradePackageRepository {
	return &upgradePackageRepository{
		collection: db.Collection(utils.CollectionUpgradePackages),
		cache:      cache,
	}
}

func (r *upgradePackageRepository) Create(ctx context.Context, pkg *models.UpgradePackage) error {
	pkg.ID = primitive.NewObjectID()
	pkg.CreatedAt = time.Now()
	pkg.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, pkg)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.ConflictError("package with this name already exists")
		}
		return fmt.Errorf("failed to create upgrade package: %w", err)
	}

	r.cachePackage(ctx, pkg)

	return nil
}

func (r *upgradePackageRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UpgradePackage, error) {
	// Try cache first
	if r.cache != nil {
		var pkg models.UpgradePackage
		if err := r.cache.Get(ctx, utils.CachePackagePrefix+id.Hex(), &pkg); err == nil {
			return &pkg, nil
		}
	}

	var pkg models.UpgradePackage
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pkg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("upgrade package not found")
		}
		return nil, fmt.Errorf("failed to get upgrade package: %w", err)
	}

	r.cachePackage(ctx, &pkg)

	return &pkg, nil
}

func (r *upgradePackageRepository) GetByName(ctx context.Context, name string) (*models.UpgradePackage, error) {
	var pkg models.UpgradePackage
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&pkg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("upgrade package not found")
		}
		return nil, fmt.Errorf("failed to get upgrade package by name: %w", err)
	}

	return &pkg, nil
}

func (r *upgradePackageRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update upgrade package: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFoundError("upgrade package not found")
	}

	r.invalidatePackageCache(ctx, id.Hex())

	return nil
}

func (r *upgradePackageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete upgrade package: %w", err)
	}
	if result.DeletedCount == 0 {
		return utils.NotFoundError("upgrade package not found")
	}

	r.invalidatePackageCache(ctx, id.Hex())

	return nil
}

func (r *upgradePackageRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.UpgradePackage, int64, error) {
	filter := bson.M{}

	if params.Search != "" {
		searchFilter := params.GetSearchFilter([]string{"name", "description"})
		if len(searchFilter) > 0 {
			filter = searchFilter
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count upgrade packages: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find upgrade packages: %w", err)
	}
	defer cursor.Close(ctx)

	var packages []*models.UpgradePackage
	for cursor.Next(ctx) {
		var pkg models.UpgradePackage
		if err := cursor.Decode(&pkg); err != nil {
			return nil, 0, fmt.Errorf("failed to decode upgrade package: %w", err)
		}
		packages = append(packages, &pkg)
	}

	return packages, total, nil
}

func (r *upgradePackageRepository) cachePackage(ctx context.Context, pkg *models.UpgradePackage) {
	if r.cache != nil {
		r.cache.Set(ctx, utils.CachePackagePrefix+pkg.ID.Hex(), pkg, 30*time.Minute)
	}
}

func (r *upgradePackageRepository) invalidatePackageCache(ctx context.Context, id string) {
	if r.cache != nil {
		r.cache.Delete(ctx, utils.CachePackagePrefix+id)
	}
}
