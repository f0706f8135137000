package services

import (
	"context"
	"fmt"
	"time"

	"goshop/internal/config"
	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"
	"goshop/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RevenueService interface {
	// Split divides an upgrade price between the seller's referrer and the
	// handling admin. The two shares always sum to the full amount.
	Split(amount float64, hasReferrer bool, commissionPct float64) models.RevenueDistribution

	// DistributeUpgradeRevenue appends the ledger events for an accepted
	// upgrade. Must run inside the caller's transaction scope so the ledger
	// and the upgrade state commit together.
	DistributeUpgradeRevenue(ctx context.Context, upgrade *models.UserUpgrade, pkg *models.UpgradePackage, adminID primitive.ObjectID) error

	// RecordAffiliateRevenue appends a purchase-side ledger event.
	RecordAffiliateRevenue(ctx context.Context, userID, purchaseID primitive.ObjectID, money float64) error

	// Queries and reports
	GetTotalByUser(ctx context.Context, userID primitive.ObjectID) (*models.TotalRevenue, error)
	GetInviteHistory(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RevenueInvite, int64, error)
	GetAffiliateHistory(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RevenueAffiliate, int64, error)
	GetRevenueReport(ctx context.Context, from, to time.Time) (*RevenueReport, error)
}

// RevenueReport aggregates both ledgers over a period, sorted by total.
type RevenueReport struct {
	From       time.Time                     `json:"from"`
	To         time.Time                     `json:"to"`
	Invites    []*interfaces.RevenueSummary  `json:"invites"`
	Affiliates []*interfaces.RevenueSummary  `json:"affiliates"`
}

type revenueService struct {
	revenueRepo           interfaces.RevenueRepository
	platformAdminID       primitive.ObjectID
	platformLedgerEnabled bool
	logger                *logger.Logger
}

func NewRevenueService(
	cfg *config.RevenueConfig,
	revenueRepo interfaces.RevenueRepository,
	logger *logger.Logger,
) (RevenueService, error) {
	s := &revenueService{
		revenueRepo:           revenueRepo,
		platformLedgerEnabled: cfg.PlatformLedgerEnabled,
		logger:                logger,
	}

	if cfg.PlatformLedgerEnabled {
		if cfg.FixedAdminID == "" {
			return nil, fmt.Errorf("platform ledger enabled but REVENUE_PLATFORM_ADMIN_ID is not set")
		}
		id, err := primitive.ObjectIDFromHex(cfg.FixedAdminID)
		if err != nil {
			return nil, fmt.Errorf("invalid platform admin id %q: %w", cfg.FixedAdminID, err)
		}
		s.platformAdminID = id
	}

	return s, nil
}

func (s *revenueService) Split(amount float64, hasReferrer bool, commissionPct float64) models.RevenueDistribution {
	if !hasReferrer {
		return models.RevenueDistribution{
			ReferrerAmount: 0,
			AdminAmount:    amount,
		}
	}

	referrerAmount := amount * commissionPct / 100
	return models.RevenueDistribution{
		ReferrerAmount: referrerAmount,
		AdminAmount:    amount - referrerAmount,
	}
}

func (s *revenueService) DistributeUpgradeRevenue(ctx context.Context, upgrade *models.UserUpgrade, pkg *models.UpgradePackage, adminID primitive.ObjectID) error {
	dist := upgrade.RevenueDistribution
	if dist == nil {
		return utils.InvalidStateError("upgrade has no revenue distribution")
	}

	// A zero-commission referrer still gets a zero-money event, so the
	// referral itself stays visible in the ledger history.
	if dist.ReferrerID != nil {
		if err := s.appendInvite(ctx, *dist.ReferrerID, models.RoleSeller, upgrade, pkg, dist.ReferrerAmount); err != nil {
			return err
		}
	}

	if err := s.appendInvite(ctx, adminID, models.RoleAdmin, upgrade, pkg, dist.AdminAmount); err != nil {
		return err
	}

	// The platform ledger books the full price against the fixed admin on
	// top of the per-admin share. Reports summing both entries double-count
	// the handling admin's share on purpose; the toggle exists for
	// deployments that want a clean sum.
	if s.platformLedgerEnabled {
		if err := s.appendInvite(ctx, s.platformAdminID, models.RoleAdmin, upgrade, pkg, pkg.Price); err != nil {
			return err
		}
	}

	s.logger.LogLedgerEvent(upgrade.UserID, utils.EventRevenueDistributed, pkg.Price, map[string]interface{}{
		"upgrade_id":      upgrade.ID.Hex(),
		"package_id":      pkg.ID.Hex(),
		"referrer_amount": dist.ReferrerAmount,
		"admin_amount":    dist.AdminAmount,
	})

	return nil
}

func (s *revenueService) appendInvite(ctx context.Context, userID primitive.ObjectID, role models.UserRole, upgrade *models.UserUpgrade, pkg *models.UpgradePackage, money float64) error {
	invite := &models.RevenueInvite{
		UserID:           userID,
		UserUpgradeID:    upgrade.ID,
		UpgradePackageID: pkg.ID,
		Money:            money,
	}

	if err := s.revenueRepo.CreateInvite(ctx, invite); err != nil {
		return err
	}

	return s.revenueRepo.CreditInvite(ctx, userID, role, invite.ID, money)
}

func (s *revenueService) RecordAffiliateRevenue(ctx context.Context, userID, purchaseID primitive.ObjectID, money float64) error {
	affiliate := &models.RevenueAffiliate{
		UserID:     userID,
		PurchaseID: purchaseID,
		Money:      money,
	}

	if err := s.revenueRepo.CreateAffiliate(ctx, affiliate); err != nil {
		return err
	}

	if err := s.revenueRepo.CreditAffiliate(ctx, userID, models.RoleSeller, affiliate.ID, money); err != nil {
		return err
	}

	s.logger.LogLedgerEvent(userID, utils.EventRevenueDistributed, money, map[string]interface{}{
		"purchase_id": purchaseID.Hex(),
	})

	return nil
}

func (s *revenueService) GetTotalByUser(ctx context.Context, userID primitive.ObjectID) (*models.TotalRevenue, error) {
	return s.revenueRepo.GetTotalByUser(ctx, userID)
}

func (s *revenueService) GetInviteHistory(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RevenueInvite, int64, error) {
	return s.revenueRepo.GetInvitesByUser(ctx, userID, params)
}

func (s *revenueService) GetAffiliateHistory(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RevenueAffiliate, int64, error) {
	return s.revenueRepo.GetAffiliatesByUser(ctx, userID, params)
}

func (s *revenueService) GetRevenueReport(ctx context.Context, from, to time.Time) (*RevenueReport, error) {
	invites, err := s.revenueRepo.GetInviteSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	affiliates, err := s.revenueRepo.GetAffiliateSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &RevenueReport{
		From:       from,
		To:         to,
		Invites:    invites,
		Affiliates: affiliates,
	}, nil
}
