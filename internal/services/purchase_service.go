package services

import (
	"context"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurchaseService is the narrow purchase directory the settlement flow binds
// to. Order building and fulfilment live outside this service.
type PurchaseService interface {
	CreatePurchase(ctx context.Context, request *CreatePurchaseRequest) (*models.Purchase, error)
	GetPurchase(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error)
	GetPurchaseByCode(ctx context.Context, code string) (*models.Purchase, error)
	GetSellerPurchases(ctx context.Context, sellerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Purchase, int64, error)
}

type CreatePurchaseRequest struct {
	SellerID     primitive.ObjectID `json:"seller_id" binding:"required"`
	CustomerID   primitive.ObjectID `json:"customer_id" binding:"required"`
	CodePurchase string             `json:"code_purchase" binding:"required"`
	TotalPrice   float64            `json:"purchase_total_price" binding:"required,gt=0"`
}

type purchaseService struct {
	purchaseRepo interfaces.PurchaseRepository
	userRepo     interfaces.UserRepository
}

func NewPurchaseService(purchaseRepo interfaces.PurchaseRepository, userRepo interfaces.UserRepository) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		userRepo:     userRepo,
	}
}

func (s *purchaseService) CreatePurchase(ctx context.Context, request *CreatePurchaseRequest) (*models.Purchase, error) {
	if request.CodePurchase == "" {
		return nil, utils.InvalidStateError("purchase code is required")
	}
	if request.TotalPrice <= 0 {
		return nil, utils.InvalidStateError("purchase total must be positive")
	}

	if _, err := s.userRepo.GetByID(ctx, request.SellerID); err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		SellerID:     request.SellerID,
		CustomerID:   request.CustomerID,
		CodePurchase: request.CodePurchase,
		TotalPrice:   request.TotalPrice,
		Status:       models.PurchaseStatusPending,
	}

	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, err
	}

	return purchase, nil
}

func (s *purchaseService) GetPurchase(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	return s.purchaseRepo.GetByID(ctx, id)
}

func (s *purchaseService) GetPurchaseByCode(ctx context.Context, code string) (*models.Purchase, error) {
	return s.purchaseRepo.GetByCode(ctx, code)
}

func (s *purchaseService) GetSellerPurchases(ctx context.Context, sellerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Purchase, int64, error) {
	return s.purchaseRepo.GetBySeller(ctx, sellerID, params)
}
