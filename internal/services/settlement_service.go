package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"goshop/internal/config"
	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"
	"goshop/pkg/logger"
	"goshop/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettlementService interface {
	// Payment recording. Each target accepts exactly one payment proof.
	RecordUpgradePayment(ctx context.Context, sellerID, upgradeID primitive.ObjectID, proof *ProofUpload) (*models.Transaction, error)
	RecordPurchasePayment(ctx context.Context, sellerID, purchaseID primitive.ObjectID, proof *ProofUpload) (*models.Transaction, error)

	// ConfirmByCode marks the transaction matching a purchase or upgrade code
	// as done. Confirming twice fails; confirmation never auto-accepts the
	// underlying upgrade.
	ConfirmByCode(ctx context.Context, code string) (*models.Transaction, error)

	// Queries
	GetTransaction(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	GetTransactionsBySeller(ctx context.Context, sellerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	GetTransactionDetails(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*interfaces.TransactionDetail, int64, error)
}

// ProofUpload is a bank-transfer screenshot submitted with a payment.
type ProofUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type settlementService struct {
	upgradeRepo     interfaces.UserUpgradeRepository
	purchaseRepo    interfaces.PurchaseRepository
	packageRepo     interfaces.UpgradePackageRepository
	transactionRepo interfaces.TransactionRepository
	sequences       interfaces.SequenceRepository
	proofStore      storage.ProofStore
	proofRules      *config.ProofUploadConfig
	cache           CacheService
	tx              TxRunner
	logger          *logger.Logger
	audit           *logger.AuditLogger
}

func NewSettlementService(
	upgradeRepo interfaces.UserUpgradeRepository,
	purchaseRepo interfaces.PurchaseRepository,
	packageRepo interfaces.UpgradePackageRepository,
	transactionRepo interfaces.TransactionRepository,
	sequences interfaces.SequenceRepository,
	proofStore storage.ProofStore,
	proofRules *config.ProofUploadConfig,
	cache CacheService,
	tx TxRunner,
	logger *logger.Logger,
	audit *logger.AuditLogger,
) SettlementService {
	return &settlementService{
		upgradeRepo:     upgradeRepo,
		purchaseRepo:    purchaseRepo,
		packageRepo:     packageRepo,
		transactionRepo: transactionRepo,
		sequences:       sequences,
		proofStore:      proofStore,
		proofRules:      proofRules,
		cache:           cache,
		tx:              tx,
		logger:          logger,
		audit:           audit,
	}
}

func (s *settlementService) RecordUpgradePayment(ctx context.Context, sellerID, upgradeID primitive.ObjectID, proof *ProofUpload) (*models.Transaction, error) {
	upgrade, err := s.upgradeRepo.GetByID(ctx, upgradeID)
	if err != nil {
		return nil, err
	}
	if upgrade.UserID != sellerID {
		return nil, utils.UnauthorizedError("upgrade belongs to another seller")
	}

	// Pre-check; the unique partial index on upgrade_id is the hard guard.
	existing, err := s.transactionRepo.GetByUpgradeID(ctx, upgradeID)
	if err != nil && !utils.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, utils.ConflictError("payment already submitted for this upgrade")
	}

	pkg, err := s.packageRepo.GetByID(ctx, upgrade.PackageID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	seq, err := s.sequences.Next(ctx, utils.CodeKindUpgradeTransaction, now)
	if err != nil {
		return nil, err
	}
	code := utils.FormatSequenceCode(utils.CodeKindUpgradeTransaction, now, seq)

	imageURL, imageKey, err := s.storeProof(ctx, code, proof)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		SellerID:        sellerID,
		UpgradeID:       &upgradeID,
		TransactionCode: code,
		CodeUpgrade:     upgrade.CodeUpgrade,
		TotalPrice:      pkg.Price,
		TransferImage:   imageURL,
		Status:          models.TransactionStatusPending,
	}

	err = s.tx.Run(ctx, func(ctx context.Context) error {
		if err := s.transactionRepo.Create(ctx, transaction); err != nil {
			return err
		}
		return s.upgradeRepo.Update(ctx, upgradeID, map[string]interface{}{
			"is_sent_payment": true,
		})
	})
	if err != nil {
		s.cleanupProof(ctx, imageKey)
		return nil, err
	}

	s.logger.LogSettlementEvent(transaction.ID, utils.EventPaymentSubmitted, pkg.Price, code)
	if s.audit != nil {
		s.audit.LogSettlementAudit(transaction.ID, code, pkg.Price, string(transaction.Status))
	}

	return transaction, nil
}

func (s *settlementService) RecordPurchasePayment(ctx context.Context, sellerID, purchaseID primitive.ObjectID, proof *ProofUpload) (*models.Transaction, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.SellerID != sellerID {
		return nil, utils.UnauthorizedError("purchase belongs to another seller")
	}

	existing, err := s.transactionRepo.GetByPurchaseID(ctx, purchaseID)
	if err != nil && !utils.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, utils.ConflictError("payment already submitted for this purchase")
	}

	now := time.Now()
	seq, err := s.sequences.Next(ctx, utils.CodeKindPurchaseTransaction, now)
	if err != nil {
		return nil, err
	}
	code := utils.FormatSequenceCode(utils.CodeKindPurchaseTransaction, now, seq)

	imageURL, imageKey, err := s.storeProof(ctx, code, proof)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		SellerID:        sellerID,
		PurchaseID:      &purchaseID,
		TransactionCode: code,
		CodePurchase:    purchase.CodePurchase,
		TotalPrice:      purchase.TotalPrice,
		TransferImage:   imageURL,
		Status:          models.TransactionStatusPending,
	}

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		s.cleanupProof(ctx, imageKey)
		return nil, err
	}

	s.logger.LogSettlementEvent(transaction.ID, utils.EventPaymentSubmitted, purchase.TotalPrice, code)
	if s.audit != nil {
		s.audit.LogSettlementAudit(transaction.ID, code, purchase.TotalPrice, string(transaction.Status))
	}

	return transaction, nil
}

func (s *settlementService) ConfirmByCode(ctx context.Context, code string) (*models.Transaction, error) {
	// Upgrade transactions store an empty purchase code, so an empty input
	// must never reach the code lookup.
	if code == "" {
		return nil, utils.InvalidStateError("transaction code is required")
	}

	transaction, err := s.transactionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if transaction.Status == models.TransactionStatusDone {
		return nil, utils.ConflictError("transaction already confirmed")
	}

	// MarkDone re-checks the status inside the update filter, so a
	// concurrent confirmation that slipped past the read above still fails.
	if err := s.transactionRepo.MarkDone(ctx, transaction.ID); err != nil {
		return nil, err
	}

	transaction.Status = models.TransactionStatusDone
	transaction.UpdatedAt = time.Now()

	if s.cache != nil {
		s.cache.Set(ctx, utils.CacheTransactionPrefix+code, transaction, utils.TransactionCacheTTL)
	}

	s.logger.LogSettlementEvent(transaction.ID, utils.EventPaymentConfirmed, transaction.TotalPrice, code)
	if s.audit != nil {
		s.audit.LogSettlementAudit(transaction.ID, code, transaction.TotalPrice, string(transaction.Status))
	}

	return transaction, nil
}

func (s *settlementService) GetTransaction(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, id)
}

func (s *settlementService) GetTransactionsBySeller(ctx context.Context, sellerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return s.transactionRepo.GetBySeller(ctx, sellerID, params)
}

func (s *settlementService) GetTransactionDetails(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*interfaces.TransactionDetail, int64, error) {
	return s.transactionRepo.ListDetailedByStatus(ctx, status, params)
}

func (s *settlementService) storeProof(ctx context.Context, code string, proof *ProofUpload) (url, key string, err error) {
	if proof == nil || proof.Reader == nil {
		return "", "", utils.InvalidStateError("payment proof image is required")
	}

	maxSize := int64(utils.MaxProofImageSize)
	if s.proofRules != nil && s.proofRules.MaxSizeBytes > 0 {
		maxSize = s.proofRules.MaxSizeBytes
	}
	if proof.Size > maxSize {
		return "", "", utils.InvalidStateError("payment proof image exceeds size limit")
	}
	if s.proofRules != nil && !s.proofRules.Allows(proof.ContentType) {
		return "", "", utils.InvalidStateError("payment proof image type is not accepted")
	}

	key = fmt.Sprintf("%s%s_%s", utils.ProofImageKeyPrefix, code, proof.FileName)
	resp, err := s.proofStore.Upload(ctx, &storage.UploadRequest{
		Key:         key,
		Reader:      proof.Reader,
		ContentType: proof.ContentType,
		Size:        proof.Size,
	})
	if err != nil {
		return "", "", utils.ExternalIOError("failed to store payment proof", err)
	}

	return resp.URL, key, nil
}

// cleanupProof removes an orphaned proof image after the settlement write
// failed. Cleanup failures are logged and swallowed; the caller's primary
// error is what surfaces.
func (s *settlementService) cleanupProof(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.proofStore.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("failed to delete orphaned payment proof")
	}
}
