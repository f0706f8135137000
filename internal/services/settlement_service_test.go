package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"goshop/internal/config"
	"goshop/internal/models"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type settlementFixture struct {
	svc          SettlementService
	upgrades     *fakeUpgradeRepo
	purchases    *fakePurchaseRepo
	transactions *fakeTransactionRepo
	proofs       *fakeProofStore
	sellerID     primitive.ObjectID
	pkg          *models.UpgradePackage
	upgrade      *models.UserUpgrade
	purchase     *models.Purchase
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()

	f := &settlementFixture{
		upgrades:     newFakeUpgradeRepo(),
		transactions: newFakeTransactionRepo(),
		proofs:       newFakeProofStore(),
		sellerID:     primitive.NewObjectID(),
	}

	f.pkg = &models.UpgradePackage{ID: primitive.NewObjectID(), Name: "gold", Price: 1000000, DurationInMonths: 6}

	f.upgrade = &models.UserUpgrade{
		UserID:      f.sellerID,
		PackageID:   f.pkg.ID,
		CodeUpgrade: "NC26083000001",
		Status:      models.UpgradeStatusPending,
	}
	if err := f.upgrades.Create(context.Background(), f.upgrade); err != nil {
		t.Fatalf("seed upgrade: %v", err)
	}

	f.purchase = &models.Purchase{
		SellerID:     f.sellerID,
		CustomerID:   primitive.NewObjectID(),
		CodePurchase: "DH26083000001",
		TotalPrice:   250000,
		Status:       models.PurchaseStatusPending,
	}
	f.purchases = newFakePurchaseRepo()
	if err := f.purchases.Create(context.Background(), f.purchase); err != nil {
		t.Fatalf("seed purchase: %v", err)
	}

	f.svc = NewSettlementService(
		f.upgrades,
		f.purchases,
		newFakePackageRepo(f.pkg),
		f.transactions,
		newFakeSequenceRepo(),
		f.proofs,
		testProofRules(),
		nil,
		passthroughTxRunner{},
		newTestLogger(),
		nil,
	)
	return f
}

func testProofRules() *config.ProofUploadConfig {
	return &config.ProofUploadConfig{
		MaxSizeBytes: 1 << 20,
		AllowedTypes: []string{"image/png", "image/jpeg"},
	}
}

func testProof() *ProofUpload {
	return &ProofUpload{
		FileName:    "transfer.png",
		ContentType: "image/png",
		Size:        4,
		Reader:      strings.NewReader("data"),
	}
}

func TestRecordUpgradePayment(t *testing.T) {
	f := newSettlementFixture(t)

	txn, err := f.svc.RecordUpgradePayment(context.Background(), f.sellerID, f.upgrade.ID, testProof())
	if err != nil {
		t.Fatalf("RecordUpgradePayment: %v", err)
	}

	if !strings.HasPrefix(txn.TransactionCode, "GDNC") {
		t.Fatalf("code = %s, want GDNC prefix", txn.TransactionCode)
	}
	wantCode := utils.FormatSequenceCode(utils.CodeKindUpgradeTransaction, time.Now(), 1)
	if txn.TransactionCode != wantCode {
		t.Fatalf("code = %s, want %s", txn.TransactionCode, wantCode)
	}
	if txn.Status != models.TransactionStatusPending {
		t.Fatalf("status = %s, want pending", txn.Status)
	}
	if txn.TotalPrice != f.pkg.Price {
		t.Fatalf("total = %v, want the package price %v", txn.TotalPrice, f.pkg.Price)
	}
	if txn.CodeUpgrade != f.upgrade.CodeUpgrade {
		t.Fatalf("code_upgrade = %s, want %s", txn.CodeUpgrade, f.upgrade.CodeUpgrade)
	}
	if txn.TransferImage == "" {
		t.Fatal("transaction must reference the stored proof image")
	}

	wantKey := utils.ProofImageKeyPrefix + txn.TransactionCode + "_transfer.png"
	if _, ok := f.proofs.stored[wantKey]; !ok {
		t.Fatalf("proof not stored under %s", wantKey)
	}

	upgrade, _ := f.upgrades.GetByID(context.Background(), f.upgrade.ID)
	if !upgrade.IsSentPayment {
		t.Fatal("upgrade must be flagged is_sent_payment")
	}
}

func TestRecordUpgradePaymentRejectsForeignUpgrade(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.svc.RecordUpgradePayment(context.Background(), primitive.NewObjectID(), f.upgrade.ID, testProof())
	if !utils.IsUnauthorized(err) {
		t.Fatalf("err = %v, want unauthorized for another seller's upgrade", err)
	}
	if len(f.proofs.stored) != 0 {
		t.Fatal("no proof may be stored for a rejected submission")
	}
}

func TestRecordUpgradePaymentRejectsDuplicate(t *testing.T) {
	f := newSettlementFixture(t)

	if _, err := f.svc.RecordUpgradePayment(context.Background(), f.sellerID, f.upgrade.ID, testProof()); err != nil {
		t.Fatalf("first submission: %v", err)
	}

	_, err := f.svc.RecordUpgradePayment(context.Background(), f.sellerID, f.upgrade.ID, testProof())
	if !utils.IsConflict(err) {
		t.Fatalf("err = %v, want conflict for a second submission", err)
	}
	if len(f.proofs.stored) != 1 {
		t.Fatalf("stored proofs = %d, the duplicate must not upload", len(f.proofs.stored))
	}
}

func TestRecordUpgradePaymentCleansUpProofOnFailure(t *testing.T) {
	f := newSettlementFixture(t)
	f.transactions.failCreate = errors.New("write failed")

	_, err := f.svc.RecordUpgradePayment(context.Background(), f.sellerID, f.upgrade.ID, testProof())
	if err == nil {
		t.Fatal("expected the storage failure to surface")
	}
	if len(f.proofs.deleted) != 1 {
		t.Fatalf("deleted proofs = %d, the orphaned image must be removed", len(f.proofs.deleted))
	}
	if len(f.proofs.stored) != 0 {
		t.Fatal("no proof may remain after cleanup")
	}

	upgrade, _ := f.upgrades.GetByID(context.Background(), f.upgrade.ID)
	if upgrade.IsSentPayment {
		t.Fatal("failed submission must not flag the upgrade")
	}
}

func TestRecordUpgradePaymentValidatesProof(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.svc.RecordUpgradePayment(context.Background(), f.sellerID, f.upgrade.ID, nil)
	if !utils.IsInvalidState(err) {
		t.Fatalf("err = %v, want invalid state for a missing proof", err)
	}

	oversized := testProof()
	oversized.Size = testProofRules().MaxSizeBytes + 1
	_, err = f.svc.RecordUpgradePayment(context.Background(), f.sellerID, f.upgrade.ID, oversized)
	if !utils.IsInvalidState(err) {
		t.Fatalf("err = %v, want invalid state for an oversized proof", err)
	}

	wrongType := testProof()
	wrongType.ContentType = "application/pdf"
	_, err = f.svc.RecordUpgradePayment(context.Background(), f.sellerID, f.upgrade.ID, wrongType)
	if !utils.IsInvalidState(err) {
		t.Fatalf("err = %v, want invalid state for a disallowed content type", err)
	}
	if len(f.proofs.stored) != 0 {
		t.Fatalf("stored proofs = %d, rejected uploads must not reach storage", len(f.proofs.stored))
	}
}

func TestRecordPurchasePayment(t *testing.T) {
	f := newSettlementFixture(t)

	txn, err := f.svc.RecordPurchasePayment(context.Background(), f.sellerID, f.purchase.ID, testProof())
	if err != nil {
		t.Fatalf("RecordPurchasePayment: %v", err)
	}

	if !strings.HasPrefix(txn.TransactionCode, "GDDH") {
		t.Fatalf("code = %s, want GDDH prefix", txn.TransactionCode)
	}
	if txn.CodePurchase != f.purchase.CodePurchase {
		t.Fatalf("code_purchase = %s, want %s", txn.CodePurchase, f.purchase.CodePurchase)
	}
	if txn.TotalPrice != f.purchase.TotalPrice {
		t.Fatalf("total = %v, want the purchase total %v", txn.TotalPrice, f.purchase.TotalPrice)
	}

	_, err = f.svc.RecordPurchasePayment(context.Background(), f.sellerID, f.purchase.ID, testProof())
	if !utils.IsConflict(err) {
		t.Fatalf("err = %v, want conflict for a second submission", err)
	}
}

func TestRecordPurchasePaymentRejectsForeignPurchase(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.svc.RecordPurchasePayment(context.Background(), primitive.NewObjectID(), f.purchase.ID, testProof())
	if !utils.IsUnauthorized(err) {
		t.Fatalf("err = %v, want unauthorized for another seller's purchase", err)
	}
}

func TestConfirmByCode(t *testing.T) {
	f := newSettlementFixture(t)

	txn, err := f.svc.RecordUpgradePayment(context.Background(), f.sellerID, f.upgrade.ID, testProof())
	if err != nil {
		t.Fatalf("RecordUpgradePayment: %v", err)
	}

	confirmed, err := f.svc.ConfirmByCode(context.Background(), f.upgrade.CodeUpgrade)
	if err != nil {
		t.Fatalf("ConfirmByCode: %v", err)
	}
	if confirmed.ID != txn.ID {
		t.Fatal("confirmation must resolve the transaction by its upgrade code")
	}
	if confirmed.Status != models.TransactionStatusDone {
		t.Fatalf("status = %s, want done", confirmed.Status)
	}

	// Confirmation never promotes the underlying upgrade.
	upgrade, _ := f.upgrades.GetByID(context.Background(), f.upgrade.ID)
	if upgrade.Status != models.UpgradeStatusPending {
		t.Fatalf("upgrade status = %s, confirmation must not accept it", upgrade.Status)
	}
}

func TestConfirmByCodeTwiceFails(t *testing.T) {
	f := newSettlementFixture(t)

	if _, err := f.svc.RecordPurchasePayment(context.Background(), f.sellerID, f.purchase.ID, testProof()); err != nil {
		t.Fatalf("RecordPurchasePayment: %v", err)
	}
	if _, err := f.svc.ConfirmByCode(context.Background(), f.purchase.CodePurchase); err != nil {
		t.Fatalf("first confirmation: %v", err)
	}

	_, err := f.svc.ConfirmByCode(context.Background(), f.purchase.CodePurchase)
	if !utils.IsConflict(err) {
		t.Fatalf("err = %v, want conflict for a repeated confirmation", err)
	}

	stored, err := f.transactions.GetByCode(context.Background(), f.purchase.CodePurchase)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if stored.Status != models.TransactionStatusDone {
		t.Fatalf("status = %s, the failed retry must not change state", stored.Status)
	}
}

func TestConfirmByCodeRejectsEmptyCode(t *testing.T) {
	f := newSettlementFixture(t)

	// Upgrade transactions carry an empty purchase code, so without the
	// guard an empty input would match the first of them.
	created, err := f.svc.RecordUpgradePayment(context.Background(), f.sellerID, f.upgrade.ID, testProof())
	if err != nil {
		t.Fatalf("RecordUpgradePayment: %v", err)
	}

	_, err = f.svc.ConfirmByCode(context.Background(), "")
	if !utils.IsInvalidState(err) {
		t.Fatalf("err = %v, want invalid state for an empty code", err)
	}

	stored, err := f.transactions.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != models.TransactionStatusPending {
		t.Fatalf("status = %s, the rejected call must not confirm anything", stored.Status)
	}
}

func TestConfirmByCodeLosesInterleavedConfirm(t *testing.T) {
	f := newSettlementFixture(t)

	created, err := f.svc.RecordPurchasePayment(context.Background(), f.sellerID, f.purchase.ID, testProof())
	if err != nil {
		t.Fatalf("RecordPurchasePayment: %v", err)
	}

	// A competing confirmation lands after the service's status read but
	// before its write. The guarded update must still refuse.
	f.transactions.onMarkDone = func() {
		f.transactions.transactions[created.ID].Status = models.TransactionStatusDone
	}

	_, err = f.svc.ConfirmByCode(context.Background(), f.purchase.CodePurchase)
	if !utils.IsConflict(err) {
		t.Fatalf("err = %v, want conflict when another confirmation won the race", err)
	}
}

func TestGetTransactionDetailsFiltersByStatus(t *testing.T) {
	f := newSettlementFixture(t)

	if _, err := f.svc.RecordUpgradePayment(context.Background(), f.sellerID, f.upgrade.ID, testProof()); err != nil {
		t.Fatalf("RecordUpgradePayment: %v", err)
	}
	if _, err := f.svc.RecordPurchasePayment(context.Background(), f.sellerID, f.purchase.ID, testProof()); err != nil {
		t.Fatalf("RecordPurchasePayment: %v", err)
	}
	if _, err := f.svc.ConfirmByCode(context.Background(), f.purchase.CodePurchase); err != nil {
		t.Fatalf("ConfirmByCode: %v", err)
	}

	params := &utils.PaginationParams{Page: 1, PageSize: 10, Sort: "created_at", Order: "desc"}

	pending, total, err := f.svc.GetTransactionDetails(context.Background(), models.TransactionStatusPending, params)
	if err != nil {
		t.Fatalf("GetTransactionDetails(pending): %v", err)
	}
	if total != 1 || len(pending) != 1 {
		t.Fatalf("pending total = %d, len = %d, want 1 and 1", total, len(pending))
	}
	if pending[0].CodeUpgrade != f.upgrade.CodeUpgrade {
		t.Fatalf("pending detail code = %q, want %q", pending[0].CodeUpgrade, f.upgrade.CodeUpgrade)
	}

	done, total, err := f.svc.GetTransactionDetails(context.Background(), models.TransactionStatusDone, params)
	if err != nil {
		t.Fatalf("GetTransactionDetails(done): %v", err)
	}
	if total != 1 || len(done) != 1 {
		t.Fatalf("done total = %d, len = %d, want 1 and 1", total, len(done))
	}
	if done[0].CodePurchase != f.purchase.CodePurchase {
		t.Fatalf("done detail code = %q, want %q", done[0].CodePurchase, f.purchase.CodePurchase)
	}
}

func TestConfirmByCodeUnknown(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.svc.ConfirmByCode(context.Background(), "GDNC26083099999")
	if !utils.IsNotFound(err) {
		t.Fatalf("err = %v, want not found for an unknown code", err)
	}
}
