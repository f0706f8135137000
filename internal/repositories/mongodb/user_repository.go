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

type userRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewUserRepository(db *mongo.Database, cache CacheService) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(utils.CollectionUsers),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.ConflictError("user already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.cacheUser(ctx, user)

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	// Try cache first
	if user := r.getUserFromCache(ctx, id.Hex()); user != nil {
		return user, nil
	}

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	r.cacheUser(ctx, &user)

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	r.cacheUser(ctx, &user)

	return &user, nil
}

func (r *userRepository) GetByAffCode(ctx context.Context, affCode string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"aff_code": affCode}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to get user by affiliate code: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFoundError("user not found")
	}

	r.invalidateUserCache(ctx, id.Hex())

	return nil
}

// Search and listing
func (r *userRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	return r.findUsersWithFilter(ctx, bson.M{}, params)
}

func (r *userRepository) GetByRole(ctx context.Context, role models.UserRole, params *utils.PaginationParams) ([]*models.User, int64, error) {
	filter := bson.M{"roles": role}
	return r.findUsersWithFilter(ctx, filter, params)
}

func (r *userRepository) GetReferrals(ctx context.Context, referrerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.User, int64, error) {
	filter := bson.M{"referrer_id": referrerID}
	return r.findUsersWithFilter(ctx, filter, params)
}

// Statistics
func (r *userRepository) GetTotalCount(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *userRepository) findUsersWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.User, int64, error) {
	if params.Search != "" {
		searchFilter := params.GetSearchFilter([]string{"name", "email", "aff_code"})
		if len(searchFilter) > 0 {
			filter = bson.M{
				"$and": []bson.M{filter, searchFilter},
			}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, 0, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}

	return users, total, nil
}

// Cache operations
func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache != nil {
		cacheKey := utils.CacheUserPrefix + user.ID.Hex()
		r.cache.Set(ctx, cacheKey, user, 15*time.Minute)
	}
}

func (r *userRepository) getUserFromCache(ctx context.Context, userID string) *models.User {
	if r.cache == nil {
		return nil
	}

	var user models.User
	if err := r.cache.Get(ctx, utils.CacheUserPrefix+userID, &user); err != nil {
		return nil
	}
	return &user
}

func (r *userRepository) invalidateUserCache(ctx context.Context, userID string) {
	if r.cache != nil {
		r.cache.Delete(ctx, utils.CacheUserPrefix+userID)
	}
}
