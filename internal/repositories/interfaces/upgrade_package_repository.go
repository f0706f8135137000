package interfaces

import (
	"context"

	"goshop/internal/models"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UpgradePackageRepository interface {
	Create(ctx context.Context, pkg *models.UpgradePackage) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.UpgradePackage, error)
	GetByName(ctx context.Context, name string) (*models.UpgradePackage, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.UpgradePackage, int64, error)
}
