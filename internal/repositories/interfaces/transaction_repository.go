package interfaces

import (
	"context"

	"goshop/internal/models"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionDetail is a transaction joined with its seller and settlement
// target for admin review screens. Purchase and Upgrade are mutually
// exclusive, matching the record's target.
type TransactionDetail struct {
	models.Transaction `bson:",inline"`
	Seller             *models.User        `bson:"seller,omitempty" json:"seller,omitempty"`
	Purchase           *models.Purchase    `bson:"purchase,omitempty" json:"purchase,omitempty"`
	Upgrade            *models.UserUpgrade `bson:"upgrade,omitempty" json:"upgrade,omitempty"`
}

type TransactionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, transaction *models.Transaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)

	// MarkDone confirms a transaction, failing with a conflict if it is
	// already done. The status check and the write are one atomic update.
	// Transactions are otherwise immutable once recorded.
	MarkDone(ctx context.Context, id primitive.ObjectID) error

	// Target lookups
	GetByUpgradeID(ctx context.Context, upgradeID primitive.ObjectID) (*models.Transaction, error)
	GetByPurchaseID(ctx context.Context, purchaseID primitive.ObjectID) (*models.Transaction, error)
	GetByCode(ctx context.Context, code string) (*models.Transaction, error)

	// Listing
	GetBySeller(ctx context.Context, sellerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	GetByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	ListDetailedByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*TransactionDetail, int64, error)

	// Statistics
	GetCountByStatus(ctx context.Context, status models.TransactionStatus) (int64, error)
}
