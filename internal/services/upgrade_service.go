package services

import (
	"context"
	"time"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"
	"goshop/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UpgradeService interface {
	// Lifecycle
	RequestUpgrade(ctx context.Context, sellerID, packageID primitive.ObjectID) (*models.UserUpgrade, error)
	AcceptUpgrade(ctx context.Context, adminID, upgradeID primitive.ObjectID) (*models.UserUpgrade, error)
	CheckUpgradeStatus(ctx context.Context, userID primitive.ObjectID) (*UpgradeStatusInfo, error)

	// Queries
	GetUpgrade(ctx context.Context, upgradeID primitive.ObjectID) (*models.UserUpgrade, error)
	GetUpgradeByCode(ctx context.Context, code string) (*models.UserUpgrade, error)
	GetUpgradesByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.UserUpgrade, int64, error)
	GetUpgradesByStatus(ctx context.Context, status models.UpgradeStatus, params *utils.PaginationParams) ([]*models.UserUpgrade, int64, error)
}

// UpgradeStatusInfo reports how much of the current subscription remains.
type UpgradeStatusInfo struct {
	Upgrade       *models.UserUpgrade `json:"upgrade"`
	ExpiryDate    time.Time           `json:"expiry_date"`
	DaysRemaining int                 `json:"days_remaining"`
}

type upgradeService struct {
	userRepo    interfaces.UserRepository
	packageRepo interfaces.UpgradePackageRepository
	upgradeRepo interfaces.UserUpgradeRepository
	sequences   interfaces.SequenceRepository
	revenue     RevenueService
	tx          TxRunner
	logger      *logger.Logger
}

func NewUpgradeService(
	userRepo interfaces.UserRepository,
	packageRepo interfaces.UpgradePackageRepository,
	upgradeRepo interfaces.UserUpgradeRepository,
	sequences interfaces.SequenceRepository,
	revenue RevenueService,
	tx TxRunner,
	logger *logger.Logger,
) UpgradeService {
	return &upgradeService{
		userRepo:    userRepo,
		packageRepo: packageRepo,
		upgradeRepo: upgradeRepo,
		sequences:   sequences,
		revenue:     revenue,
		tx:          tx,
		logger:      logger,
	}
}

func (s *upgradeService) RequestUpgrade(ctx context.Context, sellerID, packageID primitive.ObjectID) (*models.UserUpgrade, error) {
	seller, err := s.userRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !seller.HasRole(models.RoleSeller) {
		return nil, utils.UnauthorizedError("only sellers can request an upgrade")
	}

	pkg, err := s.packageRepo.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}

	// Reject while a subscription to this package is still running.
	active, err := s.upgradeRepo.GetActiveByUser(ctx, sellerID)
	if err != nil && !utils.IsNotFound(err) {
		return nil, err
	}
	if active != nil && active.PackageID == packageID && active.IsActive(time.Now()) {
		return nil, utils.ConflictError("an active upgrade for this package already exists")
	}

	// Reject while an earlier request for this package is still undecided.
	pending, err := s.upgradeRepo.GetPendingByUserAndPackage(ctx, sellerID, packageID)
	if err != nil && !utils.IsNotFound(err) {
		return nil, err
	}
	if pending != nil {
		return nil, utils.ConflictError("a pending upgrade request for this package already exists")
	}

	now := time.Now()
	seq, err := s.sequences.Next(ctx, utils.CodeKindUpgradeRequest, now)
	if err != nil {
		return nil, err
	}

	upgrade := &models.UserUpgrade{
		UserID:       sellerID,
		PackageID:    pkg.ID,
		CodeUpgrade:  utils.FormatSequenceCode(utils.CodeKindUpgradeRequest, now, seq),
		Status:       models.UpgradeStatusPending,
		UpgradeCount: 0,
		InUse:        false,
	}

	if err := s.upgradeRepo.Create(ctx, upgrade); err != nil {
		return nil, err
	}

	s.logger.LogUpgradeEvent(upgrade.ID, utils.EventUpgradeRequested, map[string]interface{}{
		"user_id":      sellerID.Hex(),
		"package_id":   packageID.Hex(),
		"code_upgrade": upgrade.CodeUpgrade,
	})

	return upgrade, nil
}

func (s *upgradeService) AcceptUpgrade(ctx context.Context, adminID, upgradeID primitive.ObjectID) (*models.UserUpgrade, error) {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, utils.UnauthorizedError("only admins can accept upgrades")
	}

	upgrade, err := s.upgradeRepo.GetByID(ctx, upgradeID)
	if err != nil {
		return nil, err
	}
	if upgrade.Status != models.UpgradeStatusPending {
		return nil, utils.NotFoundError("no pending upgrade with this id")
	}

	pkg, err := s.packageRepo.GetByID(ctx, upgrade.PackageID)
	if err != nil {
		return nil, err
	}

	seller, err := s.userRepo.GetByID(ctx, upgrade.UserID)
	if err != nil {
		return nil, err
	}

	hasReferrer := seller.ReferrerID != nil
	dist := s.revenue.Split(pkg.Price, hasReferrer, pkg.ReferralCommissions)
	dist.ReferrerID = seller.ReferrerID

	now := time.Now()
	expiry := utils.SubscriptionExpiry(now, pkg.DurationInMonths)

	// Demotion, promotion and ledger appends commit or abort together.
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		upgradeCount := 1
		prior, err := s.upgradeRepo.CancelActiveForUser(ctx, seller.ID, adminID)
		if err != nil && !utils.IsNotFound(err) {
			return err
		}
		if prior != nil {
			upgradeCount = prior.UpgradeCount + 1
		}

		updates := map[string]interface{}{
			"status":               models.UpgradeStatusAccepted,
			"in_use":               true,
			"admin_handle_id":      adminID,
			"expiry_date":          expiry,
			"upgrade_count":        upgradeCount,
			"revenue_distribution": &dist,
		}
		if err := s.upgradeRepo.Update(ctx, upgrade.ID, updates); err != nil {
			return err
		}

		upgrade.Status = models.UpgradeStatusAccepted
		upgrade.InUse = true
		upgrade.AdminHandleID = &adminID
		upgrade.ExpiryDate = &expiry
		upgrade.UpgradeCount = upgradeCount
		upgrade.RevenueDistribution = &dist
		upgrade.UpdatedAt = now

		return s.revenue.DistributeUpgradeRevenue(ctx, upgrade, pkg, adminID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogUpgradeEvent(upgrade.ID, utils.EventUpgradeAccepted, map[string]interface{}{
		"user_id":       seller.ID.Hex(),
		"admin_id":      adminID.Hex(),
		"package_id":    pkg.ID.Hex(),
		"expiry_date":   expiry,
		"upgrade_count": upgrade.UpgradeCount,
	})

	return upgrade, nil
}

func (s *upgradeService) CheckUpgradeStatus(ctx context.Context, userID primitive.ObjectID) (*UpgradeStatusInfo, error) {
	upgrade, err := s.upgradeRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upgrade.ExpiryDate == nil || upgrade.ExpiryDate.IsZero() {
		return nil, utils.InvalidStateError("active upgrade has no expiry date")
	}

	now := time.Now()
	if !upgrade.ExpiryDate.After(now) {
		return nil, utils.InvalidStateError("subscription has expired")
	}

	return &UpgradeStatusInfo{
		Upgrade:       upgrade,
		ExpiryDate:    *upgrade.ExpiryDate,
		DaysRemaining: utils.DaysUntil(now, *upgrade.ExpiryDate),
	}, nil
}

func (s *upgradeService) GetUpgrade(ctx context.Context, upgradeID primitive.ObjectID) (*models.UserUpgrade, error) {
	return s.upgradeRepo.GetByID(ctx, upgradeID)
}

func (s *upgradeService) GetUpgradeByCode(ctx context.Context, code string) (*models.UserUpgrade, error) {
	return s.upgradeRepo.GetByCode(ctx, code)
}

func (s *upgradeService) GetUpgradesByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.UserUpgrade, int64, error) {
	return s.upgradeRepo.GetByUser(ctx, userID, params)
}

func (s *upgradeService) GetUpgradesByStatus(ctx context.Context, status models.UpgradeStatus, params *utils.PaginationParams) ([]*models.UserUpgrade, int64, error) {
	return s.upgradeRepo.GetByStatus(ctx, status, params)
}
