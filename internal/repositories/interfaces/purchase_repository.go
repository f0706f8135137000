package interfaces

import (
	"context"

	"goshop/internal/models"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error)
	GetByCode(ctx context.Context, codePurchase string) (*models.Purchase, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	GetBySeller(ctx context.Context, sellerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Purchase, int64, error)
}
