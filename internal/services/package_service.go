package services

import (
	"context"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"
	"goshop/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PackageService interface {
	CreatePackage(ctx context.Context, request *CreatePackageRequest) (*models.UpgradePackage, error)
	GetPackage(ctx context.Context, id primitive.ObjectID) (*models.UpgradePackage, error)
	ListPackages(ctx context.Context, params *utils.PaginationParams) ([]*models.UpgradePackage, int64, error)
	UpdatePackage(ctx context.Context, id primitive.ObjectID, request *UpdatePackageRequest) (*models.UpgradePackage, error)
	DeletePackage(ctx context.Context, id primitive.ObjectID) error
}

type CreatePackageRequest struct {
	Name                string  `json:"name" binding:"required"`
	Description         string  `json:"description"`
	Price               float64 `json:"price" binding:"required,gt=0"`
	DurationInMonths    int     `json:"duration_in_months" binding:"required,gt=0"`
	ReferralCommissions float64 `json:"referral_commissions" binding:"gte=0,lte=100"`
}

type UpdatePackageRequest struct {
	Name                *string  `json:"name,omitempty"`
	Description         *string  `json:"description,omitempty"`
	Price               *float64 `json:"price,omitempty"`
	DurationInMonths    *int     `json:"duration_in_months,omitempty"`
	ReferralCommissions *float64 `json:"referral_commissions,omitempty"`
}

type packageService struct {
	packageRepo interfaces.UpgradePackageRepository
	logger      *logger.Logger
}

func NewPackageService(packageRepo interfaces.UpgradePackageRepository, logger *logger.Logger) PackageService {
	return &packageService{
		packageRepo: packageRepo,
		logger:      logger,
	}
}

func (s *packageService) CreatePackage(ctx context.Context, request *CreatePackageRequest) (*models.UpgradePackage, error) {
	if request.Price <= utils.MinPackagePrice {
		return nil, utils.InvalidStateError("package price must be positive")
	}
	if request.DurationInMonths <= 0 {
		return nil, utils.InvalidStateError("package duration must be at least one month")
	}
	if request.ReferralCommissions < 0 || request.ReferralCommissions > utils.MaxReferralCommission {
		return nil, utils.InvalidStateError("referral commission must be between 0 and 100 percent")
	}

	existing, err := s.packageRepo.GetByName(ctx, request.Name)
	if err != nil && !utils.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, utils.ConflictError("package with this name already exists")
	}

	pkg := &models.UpgradePackage{
		Name:                request.Name,
		Description:         request.Description,
		Price:               request.Price,
		DurationInMonths:    request.DurationInMonths,
		ReferralCommissions: request.ReferralCommissions,
	}

	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		return nil, err
	}

	s.logger.WithField("package_id", pkg.ID.Hex()).Infof("upgrade package %q created", pkg.Name)

	return pkg, nil
}

func (s *packageService) GetPackage(ctx context.Context, id primitive.ObjectID) (*models.UpgradePackage, error) {
	return s.packageRepo.GetByID(ctx, id)
}

func (s *packageService) ListPackages(ctx context.Context, params *utils.PaginationParams) ([]*models.UpgradePackage, int64, error) {
	return s.packageRepo.List(ctx, params)
}

func (s *packageService) UpdatePackage(ctx context.Context, id primitive.ObjectID, request *UpdatePackageRequest) (*models.UpgradePackage, error) {
	updates := map[string]interface{}{}

	if request.Name != nil {
		updates["name"] = *request.Name
	}
	if request.Description != nil {
		updates["description"] = *request.Description
	}
	if request.Price != nil {
		if *request.Price <= utils.MinPackagePrice {
			return nil, utils.InvalidStateError("package price must be positive")
		}
		updates["price"] = *request.Price
	}
	if request.DurationInMonths != nil {
		if *request.DurationInMonths <= 0 {
			return nil, utils.InvalidStateError("package duration must be at least one month")
		}
		updates["duration_in_months"] = *request.DurationInMonths
	}
	if request.ReferralCommissions != nil {
		if *request.ReferralCommissions < 0 || *request.ReferralCommissions > utils.MaxReferralCommission {
			return nil, utils.InvalidStateError("referral commission must be between 0 and 100 percent")
		}
		updates["referral_commissions"] = *request.ReferralCommissions
	}

	if len(updates) == 0 {
		return s.packageRepo.GetByID(ctx, id)
	}

	if err := s.packageRepo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	return s.packageRepo.GetByID(ctx, id)
}

func (s *packageService) DeletePackage(ctx context.Context, id primitive.ObjectID) error {
	return s.packageRepo.Delete(ctx, id)
}
