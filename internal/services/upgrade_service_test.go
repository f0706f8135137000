package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"goshop/internal/models"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type upgradeFixture struct {
	svc         UpgradeService
	users       *fakeUserRepo
	packages    *fakePackageRepo
	upgrades    *fakeUpgradeRepo
	revenues    *fakeRevenueRepo
	seller      *models.User
	referrer    *models.User
	admin       *models.User
	pkg         *models.UpgradePackage
	platformID  primitive.ObjectID
}

func newUpgradeFixture(t *testing.T, withReferrer bool) *upgradeFixture {
	t.Helper()

	f := &upgradeFixture{
		upgrades:   newFakeUpgradeRepo(),
		revenues:   newFakeRevenueRepo(),
		platformID: primitive.NewObjectID(),
	}

	f.admin = &models.User{ID: primitive.NewObjectID(), Name: "Admin", Email: "admin@example.com", Roles: []models.UserRole{models.RoleAdmin}}
	f.seller = &models.User{ID: primitive.NewObjectID(), Name: "Seller", Email: "seller@example.com", Roles: []models.UserRole{models.RoleSeller}, AffCode: "SELL01"}
	f.referrer = &models.User{ID: primitive.NewObjectID(), Name: "Referrer", Email: "ref@example.com", Roles: []models.UserRole{models.RoleSeller}, AffCode: "REF01"}
	if withReferrer {
		f.seller.ReferrerID = &f.referrer.ID
	}
	f.users = newFakeUserRepo(f.admin, f.seller, f.referrer)

	f.pkg = &models.UpgradePackage{
		ID:                  primitive.NewObjectID(),
		Name:                "gold",
		Price:               1000000,
		DurationInMonths:    6,
		ReferralCommissions: 20,
	}
	f.packages = newFakePackageRepo(f.pkg)

	revenue := newRevenueForTest(t, f.revenues, true, f.platformID)
	f.svc = NewUpgradeService(f.users, f.packages, f.upgrades, newFakeSequenceRepo(), revenue, passthroughTxRunner{}, newTestLogger())
	return f
}

func TestRequestUpgradeCreatesPendingRequest(t *testing.T) {
	f := newUpgradeFixture(t, false)

	upgrade, err := f.svc.RequestUpgrade(context.Background(), f.seller.ID, f.pkg.ID)
	if err != nil {
		t.Fatalf("RequestUpgrade: %v", err)
	}

	if upgrade.Status != models.UpgradeStatusPending {
		t.Fatalf("status = %s, want pending", upgrade.Status)
	}
	if upgrade.InUse {
		t.Fatal("a freshly requested upgrade must not be in use")
	}
	if upgrade.UpgradeCount != 0 {
		t.Fatalf("upgrade count = %d, want 0", upgrade.UpgradeCount)
	}

	wantCode := utils.FormatSequenceCode(utils.CodeKindUpgradeRequest, time.Now(), 1)
	if upgrade.CodeUpgrade != wantCode {
		t.Fatalf("code = %s, want %s", upgrade.CodeUpgrade, wantCode)
	}
	if !strings.HasPrefix(upgrade.CodeUpgrade, "NC") {
		t.Fatalf("code %s should carry the NC prefix", upgrade.CodeUpgrade)
	}
}

func TestRequestUpgradeRejectsNonSeller(t *testing.T) {
	f := newUpgradeFixture(t, false)

	customer := &models.User{ID: primitive.NewObjectID(), Name: "Customer", Email: "c@example.com", Roles: []models.UserRole{models.RoleCustomer}}
	f.users.users[customer.ID] = customer

	_, err := f.svc.RequestUpgrade(context.Background(), customer.ID, f.pkg.ID)
	if !utils.IsUnauthorized(err) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestRequestUpgradeRejectsDuplicatePending(t *testing.T) {
	f := newUpgradeFixture(t, false)

	if _, err := f.svc.RequestUpgrade(context.Background(), f.seller.ID, f.pkg.ID); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err := f.svc.RequestUpgrade(context.Background(), f.seller.ID, f.pkg.ID)
	if !utils.IsConflict(err) {
		t.Fatalf("err = %v, want conflict for duplicate pending request", err)
	}
}

func TestRequestUpgradeRejectsActiveSamePackage(t *testing.T) {
	f := newUpgradeFixture(t, false)

	upgrade, err := f.svc.RequestUpgrade(context.Background(), f.seller.ID, f.pkg.ID)
	if err != nil {
		t.Fatalf("RequestUpgrade: %v", err)
	}
	if _, err := f.svc.AcceptUpgrade(context.Background(), f.admin.ID, upgrade.ID); err != nil {
		t.Fatalf("AcceptUpgrade: %v", err)
	}

	_, err = f.svc.RequestUpgrade(context.Background(), f.seller.ID, f.pkg.ID)
	if !utils.IsConflict(err) {
		t.Fatalf("err = %v, want conflict while the subscription is running", err)
	}
}

func TestAcceptUpgradeWithReferrer(t *testing.T) {
	f := newUpgradeFixture(t, true)

	requested, err := f.svc.RequestUpgrade(context.Background(), f.seller.ID, f.pkg.ID)
	if err != nil {
		t.Fatalf("RequestUpgrade: %v", err)
	}

	accepted, err := f.svc.AcceptUpgrade(context.Background(), f.admin.ID, requested.ID)
	if err != nil {
		t.Fatalf("AcceptUpgrade: %v", err)
	}

	if accepted.Status != models.UpgradeStatusAccepted || !accepted.InUse {
		t.Fatalf("upgrade = %s in_use=%v, want accepted and in use", accepted.Status, accepted.InUse)
	}
	if accepted.UpgradeCount != 1 {
		t.Fatalf("upgrade count = %d, want 1 for a first subscription", accepted.UpgradeCount)
	}
	if accepted.AdminHandleID == nil || *accepted.AdminHandleID != f.admin.ID {
		t.Fatal("accepting admin must be recorded on the upgrade")
	}

	if accepted.ExpiryDate == nil {
		t.Fatal("accepted upgrade must carry an expiry date")
	}
	wantExpiry := utils.EndOfDay(time.Now().AddDate(0, f.pkg.DurationInMonths, 0))
	if !accepted.ExpiryDate.Equal(wantExpiry) {
		t.Fatalf("expiry = %v, want %v", accepted.ExpiryDate, wantExpiry)
	}

	dist := accepted.RevenueDistribution
	if dist == nil {
		t.Fatal("accepted upgrade must carry a revenue distribution")
	}
	if dist.ReferrerID == nil || *dist.ReferrerID != f.referrer.ID {
		t.Fatal("distribution must name the seller's referrer")
	}
	if dist.ReferrerAmount != 200000 || dist.AdminAmount != 800000 {
		t.Fatalf("distribution = %v/%v, want 200000/800000", dist.ReferrerAmount, dist.AdminAmount)
	}

	if got := f.revenues.moneyOf(f.referrer.ID); got != 200000 {
		t.Fatalf("referrer ledger = %v, want 200000", got)
	}
	if got := f.revenues.moneyOf(f.admin.ID); got != 800000 {
		t.Fatalf("admin ledger = %v, want 800000", got)
	}
	if got := f.revenues.moneyOf(f.platformID); got != f.pkg.Price {
		t.Fatalf("platform ledger = %v, want the full price %v", got, f.pkg.Price)
	}
}

func TestAcceptUpgradeWithoutReferrer(t *testing.T) {
	f := newUpgradeFixture(t, false)

	requested, err := f.svc.RequestUpgrade(context.Background(), f.seller.ID, f.pkg.ID)
	if err != nil {
		t.Fatalf("RequestUpgrade: %v", err)
	}
	accepted, err := f.svc.AcceptUpgrade(context.Background(), f.admin.ID, requested.ID)
	if err != nil {
		t.Fatalf("AcceptUpgrade: %v", err)
	}

	dist := accepted.RevenueDistribution
	if dist.ReferrerID != nil || dist.ReferrerAmount != 0 {
		t.Fatalf("distribution = %+v, want no referrer share", dist)
	}
	if dist.AdminAmount != f.pkg.Price {
		t.Fatalf("admin amount = %v, want the full price %v", dist.AdminAmount, f.pkg.Price)
	}
	if got := f.revenues.moneyOf(f.referrer.ID); got != 0 {
		t.Fatalf("referrer ledger = %v, want 0", got)
	}
}

func TestAcceptUpgradeDemotesPriorSubscription(t *testing.T) {
	f := newUpgradeFixture(t, false)

	silver := &models.UpgradePackage{ID: primitive.NewObjectID(), Name: "silver", Price: 400000, DurationInMonths: 3, ReferralCommissions: 10}
	f.packages.packages[silver.ID] = silver

	first, err := f.svc.RequestUpgrade(context.Background(), f.seller.ID, silver.ID)
	if err != nil {
		t.Fatalf("request silver: %v", err)
	}
	if _, err := f.svc.AcceptUpgrade(context.Background(), f.admin.ID, first.ID); err != nil {
		t.Fatalf("accept silver: %v", err)
	}

	second, err := f.svc.RequestUpgrade(context.Background(), f.seller.ID, f.pkg.ID)
	if err != nil {
		t.Fatalf("request gold: %v", err)
	}
	accepted, err := f.svc.AcceptUpgrade(context.Background(), f.admin.ID, second.ID)
	if err != nil {
		t.Fatalf("accept gold: %v", err)
	}

	if n := f.upgrades.inUseCount(f.seller.ID); n != 1 {
		t.Fatalf("in-use upgrades = %d, want exactly 1 after the second acceptance", n)
	}
	if accepted.UpgradeCount != 2 {
		t.Fatalf("upgrade count = %d, want 2", accepted.UpgradeCount)
	}

	prior, err := f.upgrades.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if prior.InUse || prior.Status != models.UpgradeStatusCancelled {
		t.Fatalf("prior upgrade = %s in_use=%v, want cancelled and released", prior.Status, prior.InUse)
	}
	if prior.AdminHandleID == nil || *prior.AdminHandleID != f.admin.ID {
		t.Fatal("demotion must record the handling admin")
	}
}

func TestAcceptUpgradeRequiresAdmin(t *testing.T) {
	f := newUpgradeFixture(t, false)

	requested, err := f.svc.RequestUpgrade(context.Background(), f.seller.ID, f.pkg.ID)
	if err != nil {
		t.Fatalf("RequestUpgrade: %v", err)
	}

	_, err = f.svc.AcceptUpgrade(context.Background(), f.seller.ID, requested.ID)
	if !utils.IsUnauthorized(err) {
		t.Fatalf("err = %v, want unauthorized for a non-admin", err)
	}

	kept, _ := f.upgrades.GetByID(context.Background(), requested.ID)
	if kept.Status != models.UpgradeStatusPending {
		t.Fatalf("status = %s, the rejected acceptance must not change state", kept.Status)
	}
}

func TestAcceptUpgradeRejectsNonPending(t *testing.T) {
	f := newUpgradeFixture(t, false)

	requested, err := f.svc.RequestUpgrade(context.Background(), f.seller.ID, f.pkg.ID)
	if err != nil {
		t.Fatalf("RequestUpgrade: %v", err)
	}
	if _, err := f.svc.AcceptUpgrade(context.Background(), f.admin.ID, requested.ID); err != nil {
		t.Fatalf("AcceptUpgrade: %v", err)
	}

	_, err = f.svc.AcceptUpgrade(context.Background(), f.admin.ID, requested.ID)
	if !utils.IsNotFound(err) {
		t.Fatalf("err = %v, want not found for an already decided upgrade", err)
	}
}

func TestCheckUpgradeStatus(t *testing.T) {
	f := newUpgradeFixture(t, false)

	_, err := f.svc.CheckUpgradeStatus(context.Background(), f.seller.ID)
	if !utils.IsNotFound(err) {
		t.Fatalf("err = %v, want not found before any subscription", err)
	}

	requested, err := f.svc.RequestUpgrade(context.Background(), f.seller.ID, f.pkg.ID)
	if err != nil {
		t.Fatalf("RequestUpgrade: %v", err)
	}
	if _, err := f.svc.AcceptUpgrade(context.Background(), f.admin.ID, requested.ID); err != nil {
		t.Fatalf("AcceptUpgrade: %v", err)
	}

	info, err := f.svc.CheckUpgradeStatus(context.Background(), f.seller.ID)
	if err != nil {
		t.Fatalf("CheckUpgradeStatus: %v", err)
	}
	if info.Upgrade.ID != requested.ID {
		t.Fatal("status must report the accepted upgrade")
	}
	if info.DaysRemaining <= 0 {
		t.Fatalf("days remaining = %d, want positive for a 6 month subscription", info.DaysRemaining)
	}
}

func TestCheckUpgradeStatusExpired(t *testing.T) {
	f := newUpgradeFixture(t, false)

	expired := time.Now().Add(-24 * time.Hour)
	upgrade := &models.UserUpgrade{
		UserID:      f.seller.ID,
		PackageID:   f.pkg.ID,
		CodeUpgrade: "NC00000000001",
		Status:      models.UpgradeStatusAccepted,
		InUse:       true,
		ExpiryDate:  &expired,
	}
	if err := f.upgrades.Create(context.Background(), upgrade); err != nil {
		t.Fatalf("seed upgrade: %v", err)
	}

	_, err := f.svc.CheckUpgradeStatus(context.Background(), f.seller.ID)
	if !utils.IsInvalidState(err) {
		t.Fatalf("err = %v, want invalid state for an expired subscription", err)
	}
}
