package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"
	"goshop/pkg/logger"
	"goshop/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger() *logger.Logger {
	l, err := logger.NewLogger(&logger.Config{Level: "error", Format: "text", Output: "stdout"})
	if err != nil {
		panic(err)
	}
	l.SetOutput(io.Discard)
	return l
}

// passthroughTxRunner runs the function directly. The in-memory fakes have no
// transactional semantics, which the service-level tests don't need.
type passthroughTxRunner struct{}

func (passthroughTxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, utils.NotFoundError("user not found")
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, utils.NotFoundError("user not found")
}

func (r *fakeUserRepo) GetByAffCode(ctx context.Context, affCode string) (*models.User, error) {
	for _, u := range r.users {
		if u.AffCode == affCode {
			return u, nil
		}
	}
	return nil, utils.NotFoundError("user not found")
}

func (r *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	if _, ok := r.users[id]; !ok {
		return utils.NotFoundError("user not found")
	}
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) GetByRole(ctx context.Context, role models.UserRole, params *utils.PaginationParams) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range r.users {
		if u.HasRole(role) {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) GetReferrals(ctx context.Context, referrerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range r.users {
		if u.ReferrerID != nil && *u.ReferrerID == referrerID {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) GetTotalCount(ctx context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type fakePackageRepo struct {
	packages map[primitive.ObjectID]*models.UpgradePackage
}

func newFakePackageRepo(packages ...*models.UpgradePackage) *fakePackageRepo {
	r := &fakePackageRepo{packages: make(map[primitive.ObjectID]*models.UpgradePackage)}
	for _, p := range packages {
		r.packages[p.ID] = p
	}
	return r
}

func (r *fakePackageRepo) Create(ctx context.Context, pkg *models.UpgradePackage) error {
	if pkg.ID.IsZero() {
		pkg.ID = primitive.NewObjectID()
	}
	pkg.CreatedAt = time.Now()
	pkg.UpdatedAt = time.Now()
	r.packages[pkg.ID] = pkg
	return nil
}

func (r *fakePackageRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UpgradePackage, error) {
	p, ok := r.packages[id]
	if !ok {
		return nil, utils.NotFoundError("upgrade package not found")
	}
	return p, nil
}

func (r *fakePackageRepo) GetByName(ctx context.Context, name string) (*models.UpgradePackage, error) {
	for _, p := range r.packages {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, utils.NotFoundError("upgrade package not found")
}

func (r *fakePackageRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	p, ok := r.packages[id]
	if !ok {
		return utils.NotFoundError("upgrade package not found")
	}
	for k, v := range updates {
		switch k {
		case "name":
			p.Name = v.(string)
		case "description":
			p.Description = v.(string)
		case "price":
			p.Price = v.(float64)
		case "duration_in_months":
			p.DurationInMonths = v.(int)
		case "referral_commissions":
			p.ReferralCommissions = v.(float64)
		}
	}
	return nil
}

func (r *fakePackageRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.packages[id]; !ok {
		return utils.NotFoundError("upgrade package not found")
	}
	delete(r.packages, id)
	return nil
}

func (r *fakePackageRepo) List(ctx context.Context, params *utils.PaginationParams) ([]*models.UpgradePackage, int64, error) {
	var out []*models.UpgradePackage
	for _, p := range r.packages {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

type fakeUpgradeRepo struct {
	upgrades map[primitive.ObjectID]*models.UserUpgrade
}

func newFakeUpgradeRepo() *fakeUpgradeRepo {
	return &fakeUpgradeRepo{upgrades: make(map[primitive.ObjectID]*models.UserUpgrade)}
}

func (r *fakeUpgradeRepo) Create(ctx context.Context, upgrade *models.UserUpgrade) error {
	for _, u := range r.upgrades {
		if u.CodeUpgrade == upgrade.CodeUpgrade {
			return utils.ConflictError("upgrade with this code already exists")
		}
	}
	upgrade.ID = primitive.NewObjectID()
	upgrade.CreatedAt = time.Now()
	upgrade.UpdatedAt = time.Now()
	r.upgrades[upgrade.ID] = upgrade
	return nil
}

func (r *fakeUpgradeRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserUpgrade, error) {
	u, ok := r.upgrades[id]
	if !ok {
		return nil, utils.NotFoundError("user upgrade not found")
	}
	return u, nil
}

func (r *fakeUpgradeRepo) GetByCode(ctx context.Context, code string) (*models.UserUpgrade, error) {
	for _, u := range r.upgrades {
		if u.CodeUpgrade == code {
			return u, nil
		}
	}
	return nil, utils.NotFoundError("user upgrade not found")
}

func (r *fakeUpgradeRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	u, ok := r.upgrades[id]
	if !ok {
		return utils.NotFoundError("user upgrade not found")
	}
	for k, v := range updates {
		switch k {
		case "status":
			u.Status = v.(models.UpgradeStatus)
		case "in_use":
			u.InUse = v.(bool)
		case "admin_handle_id":
			id := v.(primitive.ObjectID)
			u.AdminHandleID = &id
		case "expiry_date":
			t := v.(time.Time)
			u.ExpiryDate = &t
		case "upgrade_count":
			u.UpgradeCount = v.(int)
		case "revenue_distribution":
			u.RevenueDistribution = v.(*models.RevenueDistribution)
		case "is_sent_payment":
			u.IsSentPayment = v.(bool)
		}
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUpgradeRepo) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.UserUpgrade, error) {
	for _, u := range r.upgrades {
		if u.UserID == userID && u.InUse {
			return u, nil
		}
	}
	return nil, utils.NotFoundError("no active upgrade for user")
}

func (r *fakeUpgradeRepo) GetPendingByUserAndPackage(ctx context.Context, userID, packageID primitive.ObjectID) (*models.UserUpgrade, error) {
	for _, u := range r.upgrades {
		if u.UserID == userID && u.PackageID == packageID && u.Status == models.UpgradeStatusPending {
			return u, nil
		}
	}
	return nil, utils.NotFoundError("no pending upgrade for user and package")
}

func (r *fakeUpgradeRepo) CancelActiveForUser(ctx context.Context, userID, adminID primitive.ObjectID) (*models.UserUpgrade, error) {
	for _, u := range r.upgrades {
		if u.UserID == userID && u.InUse {
			prior := *u
			u.InUse = false
			u.Status = models.UpgradeStatusCancelled
			u.AdminHandleID = &adminID
			u.UpdatedAt = time.Now()
			return &prior, nil
		}
	}
	return nil, utils.NotFoundError("no active upgrade for user")
}

func (r *fakeUpgradeRepo) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.UserUpgrade, int64, error) {
	var out []*models.UserUpgrade
	for _, u := range r.upgrades {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUpgradeRepo) GetByStatus(ctx context.Context, status models.UpgradeStatus, params *utils.PaginationParams) ([]*models.UserUpgrade, int64, error) {
	var out []*models.UserUpgrade
	for _, u := range r.upgrades {
		if u.Status == status {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUpgradeRepo) GetCountByStatus(ctx context.Context, status models.UpgradeStatus) (int64, error) {
	var n int64
	for _, u := range r.upgrades {
		if u.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeUpgradeRepo) inUseCount(userID primitive.ObjectID) int {
	n := 0
	for _, u := range r.upgrades {
		if u.UserID == userID && u.InUse {
			n++
		}
	}
	return n
}

type fakeTransactionRepo struct {
	transactions map[primitive.ObjectID]*models.Transaction
	failCreate   error

	// Runs at the top of MarkDone, before the status check. Lets a test
	// interleave a competing write between the service's read and its
	// confirming update.
	onMarkDone func()
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[primitive.ObjectID]*models.Transaction)}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, transaction *models.Transaction) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, t := range r.transactions {
		if transaction.UpgradeID != nil && t.UpgradeID != nil && *t.UpgradeID == *transaction.UpgradeID {
			return utils.ConflictError("transaction already exists for this target")
		}
		if transaction.PurchaseID != nil && t.PurchaseID != nil && *t.PurchaseID == *transaction.PurchaseID {
			return utils.ConflictError("transaction already exists for this target")
		}
	}
	transaction.ID = primitive.NewObjectID()
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = time.Now()
	r.transactions[transaction.ID] = transaction
	return nil
}

func (r *fakeTransactionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	t, ok := r.transactions[id]
	if !ok {
		return nil, utils.NotFoundError("transaction not found")
	}
	return t, nil
}

func (r *fakeTransactionRepo) MarkDone(ctx context.Context, id primitive.ObjectID) error {
	if r.onMarkDone != nil {
		r.onMarkDone()
	}
	t, ok := r.transactions[id]
	if !ok {
		return utils.NotFoundError("transaction not found")
	}
	if t.Status == models.TransactionStatusDone {
		return utils.ConflictError("transaction already confirmed")
	}
	t.Status = models.TransactionStatusDone
	t.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTransactionRepo) GetByUpgradeID(ctx context.Context, upgradeID primitive.ObjectID) (*models.Transaction, error) {
	for _, t := range r.transactions {
		if t.UpgradeID != nil && *t.UpgradeID == upgradeID {
			return t, nil
		}
	}
	return nil, utils.NotFoundError("transaction not found for upgrade")
}

func (r *fakeTransactionRepo) GetByPurchaseID(ctx context.Context, purchaseID primitive.ObjectID) (*models.Transaction, error) {
	for _, t := range r.transactions {
		if t.PurchaseID != nil && *t.PurchaseID == purchaseID {
			return t, nil
		}
	}
	return nil, utils.NotFoundError("transaction not found for purchase")
}

func (r *fakeTransactionRepo) GetByCode(ctx context.Context, code string) (*models.Transaction, error) {
	for _, t := range r.transactions {
		if t.CodePurchase == code || t.CodeUpgrade == code {
			return t, nil
		}
	}
	return nil, utils.NotFoundError("transaction not found for code")
}

func (r *fakeTransactionRepo) GetBySeller(ctx context.Context, sellerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	var out []*models.Transaction
	for _, t := range r.transactions {
		if t.SellerID == sellerID {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) GetByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	var out []*models.Transaction
	for _, t := range r.transactions {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) ListDetailedByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*interfaces.TransactionDetail, int64, error) {
	var out []*interfaces.TransactionDetail
	for _, t := range r.transactions {
		if t.Status == status {
			out = append(out, &interfaces.TransactionDetail{Transaction: *t})
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) GetCountByStatus(ctx context.Context, status models.TransactionStatus) (int64, error) {
	var n int64
	for _, t := range r.transactions {
		if t.Status == status {
			n++
		}
	}
	return n, nil
}

type fakePurchaseRepo struct {
	purchases map[primitive.ObjectID]*models.Purchase
}

func newFakePurchaseRepo(purchases ...*models.Purchase) *fakePurchaseRepo {
	r := &fakePurchaseRepo{purchases: make(map[primitive.ObjectID]*models.Purchase)}
	for _, p := range purchases {
		r.purchases[p.ID] = p
	}
	return r
}

func (r *fakePurchaseRepo) Create(ctx context.Context, purchase *models.Purchase) error {
	for _, p := range r.purchases {
		if p.CodePurchase == purchase.CodePurchase {
			return utils.ConflictError("purchase with this code already exists")
		}
	}
	purchase.ID = primitive.NewObjectID()
	purchase.CreatedAt = time.Now()
	purchase.UpdatedAt = time.Now()
	r.purchases[purchase.ID] = purchase
	return nil
}

func (r *fakePurchaseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return nil, utils.NotFoundError("purchase not found")
	}
	return p, nil
}

func (r *fakePurchaseRepo) GetByCode(ctx context.Context, code string) (*models.Purchase, error) {
	for _, p := range r.purchases {
		if p.CodePurchase == code {
			return p, nil
		}
	}
	return nil, utils.NotFoundError("purchase not found")
}

func (r *fakePurchaseRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	if _, ok := r.purchases[id]; !ok {
		return utils.NotFoundError("purchase not found")
	}
	return nil
}

func (r *fakePurchaseRepo) GetBySeller(ctx context.Context, sellerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Purchase, int64, error) {
	var out []*models.Purchase
	for _, p := range r.purchases {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

type fakeRevenueRepo struct {
	invites    []*models.RevenueInvite
	affiliates []*models.RevenueAffiliate
	totals     map[primitive.ObjectID]*models.TotalRevenue
}

func newFakeRevenueRepo() *fakeRevenueRepo {
	return &fakeRevenueRepo{totals: make(map[primitive.ObjectID]*models.TotalRevenue)}
}

func (r *fakeRevenueRepo) CreateInvite(ctx context.Context, invite *models.RevenueInvite) error {
	invite.ID = primitive.NewObjectID()
	invite.CreatedAt = time.Now()
	r.invites = append(r.invites, invite)
	return nil
}

func (r *fakeRevenueRepo) CreateAffiliate(ctx context.Context, affiliate *models.RevenueAffiliate) error {
	affiliate.ID = primitive.NewObjectID()
	affiliate.CreatedAt = time.Now()
	r.affiliates = append(r.affiliates, affiliate)
	return nil
}

func (r *fakeRevenueRepo) CreditInvite(ctx context.Context, userID primitive.ObjectID, role models.UserRole, inviteID primitive.ObjectID, money float64) error {
	t := r.total(userID, role)
	t.RevenueInviteIDs = append(t.RevenueInviteIDs, inviteID)
	t.Money += money
	t.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRevenueRepo) CreditAffiliate(ctx context.Context, userID primitive.ObjectID, role models.UserRole, affiliateID primitive.ObjectID, money float64) error {
	t := r.total(userID, role)
	t.RevenueAffiliateIDs = append(t.RevenueAffiliateIDs, affiliateID)
	t.Money += money
	t.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRevenueRepo) total(userID primitive.ObjectID, role models.UserRole) *models.TotalRevenue {
	t, ok := r.totals[userID]
	if !ok {
		t = &models.TotalRevenue{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Role:      role,
			CreatedAt: time.Now(),
		}
		r.totals[userID] = t
	}
	return t
}

func (r *fakeRevenueRepo) GetTotalByUser(ctx context.Context, userID primitive.ObjectID) (*models.TotalRevenue, error) {
	t, ok := r.totals[userID]
	if !ok {
		return nil, utils.NotFoundError("no revenue recorded for user")
	}
	return t, nil
}

func (r *fakeRevenueRepo) GetInvitesByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RevenueInvite, int64, error) {
	var out []*models.RevenueInvite
	for _, i := range r.invites {
		if i.UserID == userID {
			out = append(out, i)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRevenueRepo) GetAffiliatesByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RevenueAffiliate, int64, error) {
	var out []*models.RevenueAffiliate
	for _, a := range r.affiliates {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRevenueRepo) GetInviteSummary(ctx context.Context, from, to time.Time) ([]*interfaces.RevenueSummary, error) {
	byUser := make(map[primitive.ObjectID]*interfaces.RevenueSummary)
	for _, i := range r.invites {
		if i.CreatedAt.Before(from) || i.CreatedAt.After(to) {
			continue
		}
		s, ok := byUser[i.UserID]
		if !ok {
			s = &interfaces.RevenueSummary{UserID: i.UserID}
			byUser[i.UserID] = s
		}
		s.EventCount++
		s.Total += i.Money
	}
	var out []*interfaces.RevenueSummary
	for _, s := range byUser {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeRevenueRepo) GetAffiliateSummary(ctx context.Context, from, to time.Time) ([]*interfaces.RevenueSummary, error) {
	byUser := make(map[primitive.ObjectID]*interfaces.RevenueSummary)
	for _, a := range r.affiliates {
		if a.CreatedAt.Before(from) || a.CreatedAt.After(to) {
			continue
		}
		s, ok := byUser[a.UserID]
		if !ok {
			s = &interfaces.RevenueSummary{UserID: a.UserID}
			byUser[a.UserID] = s
		}
		s.EventCount++
		s.Total += a.Money
	}
	var out []*interfaces.RevenueSummary
	for _, s := range byUser {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeRevenueRepo) moneyOf(userID primitive.ObjectID) float64 {
	if t, ok := r.totals[userID]; ok {
		return t.Money
	}
	return 0
}

func (r *fakeRevenueRepo) eventSum(userID primitive.ObjectID) float64 {
	var sum float64
	for _, i := range r.invites {
		if i.UserID == userID {
			sum += i.Money
		}
	}
	for _, a := range r.affiliates {
		if a.UserID == userID {
			sum += a.Money
		}
	}
	return sum
}

type fakeSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{counters: make(map[string]int64)}
}

func (r *fakeSequenceRepo) Next(ctx context.Context, kind string, day time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := utils.SequenceKey(kind, day)
	r.counters[key]++
	return r.counters[key], nil
}

type fakeProofStore struct {
	stored  map[string][]byte
	deleted []string
}

func newFakeProofStore() *fakeProofStore {
	return &fakeProofStore{stored: make(map[string][]byte)}
}

func (s *fakeProofStore) Upload(ctx context.Context, request *storage.UploadRequest) (*storage.UploadResponse, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, request.Reader); err != nil {
		return nil, err
	}
	s.stored[request.Key] = buf.Bytes()
	return &storage.UploadResponse{
		Key:  request.Key,
		URL:  "https://proofs.test/" + request.Key,
		Size: int64(buf.Len()),
	}, nil
}

func (s *fakeProofStore) Delete(ctx context.Context, key string) error {
	delete(s.stored, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeProofStore) GetURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "https://proofs.test/" + key, nil
}

func (s *fakeProofStore) FileExists(ctx context.Context, key string) (bool, error) {
	_, ok := s.stored[key]
	return ok, nil
}
