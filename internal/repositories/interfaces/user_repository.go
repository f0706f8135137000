package interfaces

import (
	"context"

	"goshop/internal/models"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAffCode(ctx context.Context, affCode string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Search and listing
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error)
	GetByRole(ctx context.Context, role models.UserRole, params *utils.PaginationParams) ([]*models.User, int64, error)
	GetReferrals(ctx context.Context, referrerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.User, int64, error)

	// Statistics
	GetTotalCount(ctx context.Context) (int64, error)
}
