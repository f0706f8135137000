package interfaces

import (
	"context"

	"goshop/internal/models"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserUpgradeRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, upgrade *models.UserUpgrade) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserUpgrade, error)
	GetByCode(ctx context.Context, codeUpgrade string) (*models.UserUpgrade, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Lifecycle queries
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.UserUpgrade, error)
	GetPendingByUserAndPackage(ctx context.Context, userID, packageID primitive.ObjectID) (*models.UserUpgrade, error)
	CancelActiveForUser(ctx context.Context, userID, adminID primitive.ObjectID) (*models.UserUpgrade, error)

	// Listing
	GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.UserUpgrade, int64, error)
	GetByStatus(ctx context.Context, status models.UpgradeStatus, params *utils.PaginationParams) ([]*models.UserUpgrade, int64, error)

	// Statistics
	GetCountByStatus(ctx context.Context, status models.UpgradeStatus) (int64, error)
}
