package utils

import "time"

// Application Constants
const (
	AppName    = "GoShop"
	AppVersion = "1.0.0"

	// Default values
	DefaultLanguage = "vi"
	DefaultCurrency = "VND"
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 8

	// Settlement
	SequenceOrdinalDigits = 5
	MaxProofImageSize     = 5 * 1024 * 1024 // 5MB
	ProofImageKeyPrefix   = "transfer-proofs/"

	// Revenue
	MaxReferralCommission = 100.0 // percent
	MinPackagePrice       = 0.0

	// Cache TTLs
	PackageCacheTTL     = 30 * time.Minute
	TransactionCacheTTL = 30 * time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusFailed  = "failed"
)

// Error Messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrUserNotFound       = "user not found"
	ErrInvalidToken       = "invalid token"
	ErrTokenExpired       = "token expired"
	ErrInvalidInput       = "invalid input"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
	ErrNotFound           = "not found"
	ErrConflict           = "conflict"
	ErrValidationFailed   = "validation failed"
	ErrFileUploadFailed   = "file upload failed"
)

// Cache Keys
const (
	CacheUserPrefix        = "user:"
	CachePackagePrefix     = "package:"
	CacheTransactionPrefix = "transaction:"
	CacheUpgradePrefix     = "upgrade:"
	CacheRateLimitPrefix   = "rate_limit:"
)

// Event Types
const (
	EventUpgradeRequested   = "upgrade_requested"
	EventUpgradeAccepted    = "upgrade_accepted"
	EventUpgradeCancelled   = "upgrade_cancelled"
	EventPaymentSubmitted   = "payment_submitted"
	EventPaymentConfirmed   = "payment_confirmed"
	EventRevenueDistributed = "revenue_distributed"
)

// File Types
var (
	AllowedImageTypes = []string{"jpg", "jpeg", "png", "gif", "webp"}
)

// Mongo collections
const (
	CollectionUsers             = "users"
	CollectionUpgradePackages   = "upgradePackages"
	CollectionUserUpgrades      = "userUpgrades"
	CollectionTransactions      = "transactions"
	CollectionPurchases         = "purchases"
	CollectionTotalRevenues     = "totalRevenues"
	CollectionRevenuesInvite    = "revenuesInvite"
	CollectionRevenuesAffiliate = "revenuesAffiliate"
	CollectionCounters          = "counters"
)
