package routes

import (
	"goshop/internal/handlers"
	"goshop/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every handler the router wires.
type Handlers struct {
	Upgrade    *handlers.UpgradeHandler
	Settlement *handlers.SettlementHandler
	Package    *handlers.PackageHandler
	Revenue    *handlers.RevenueHandler
	Purchase   *handlers.PurchaseHandler
	User       *handlers.UserHandler
}

// Setup wires all route groups onto the api root.
func Setup(r *gin.RouterGroup, jwtSecret string, h *Handlers) {
	SetupUpgradeRoutes(r, jwtSecret, h.Upgrade)
	SetupSettlementRoutes(r, jwtSecret, h.Settlement)
	SetupPackageRoutes(r, jwtSecret, h.Package)
	SetupRevenueRoutes(r, jwtSecret, h.Revenue)
	SetupPurchaseRoutes(r, jwtSecret, h.Purchase)
	SetupUserRoutes(r, jwtSecret, h.User)
}

// SetupUpgradeRoutes sets up routes for the upgrade lifecycle
func SetupUpgradeRoutes(r *gin.RouterGroup, jwtSecret string, upgradeHandler *handlers.UpgradeHandler) {
	upgrades := r.Group("/upgrades")
	upgrades.Use(middleware.AuthRequired(jwtSecret))
	{
		upgrades.POST("/", middleware.SellerRequired(), upgradeHandler.RequestUpgrade)
		upgrades.GET("/status", upgradeHandler.CheckUpgradeStatus)
		upgrades.GET("/mine", upgradeHandler.GetMyUpgrades)
		upgrades.GET("/:id", upgradeHandler.GetUpgrade)
	}

	admin := r.Group("/admin/upgrades")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/", upgradeHandler.ListUpgradesByStatus)
		admin.PUT("/:id/accept", upgradeHandler.AcceptUpgrade)
	}
}

// SetupSettlementRoutes sets up routes for payment submission and confirmation
func SetupSettlementRoutes(r *gin.RouterGroup, jwtSecret string, settlementHandler *handlers.SettlementHandler) {
	transactions := r.Group("/transactions")
	transactions.Use(middleware.AuthRequired(jwtSecret))
	{
		transactions.POST("/upgrades/:id", middleware.SellerRequired(), settlementHandler.SubmitUpgradePayment)
		transactions.POST("/purchases/:id", middleware.SellerRequired(), settlementHandler.SubmitPurchasePayment)
		transactions.GET("/mine", settlementHandler.GetMyTransactions)
		transactions.GET("/:id", settlementHandler.GetTransaction)
	}

	admin := r.Group("/admin/transactions")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/", settlementHandler.ListTransactionsByStatus)
		admin.PUT("/confirm", settlementHandler.ConfirmTransaction)
	}
}

// SetupPackageRoutes sets up routes for the upgrade-package catalog
func SetupPackageRoutes(r *gin.RouterGroup, jwtSecret string, packageHandler *handlers.PackageHandler) {
	packages := r.Group("/packages")
	{
		packages.GET("/", packageHandler.ListPackages)
		packages.GET("/:id", packageHandler.GetPackage)
	}

	admin := r.Group("/admin/packages")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/", packageHandler.CreatePackage)
		admin.PUT("/:id", packageHandler.UpdatePackage)
		admin.DELETE("/:id", packageHandler.DeletePackage)
	}
}

// SetupRevenueRoutes sets up routes for ledger queries and reports
func SetupRevenueRoutes(r *gin.RouterGroup, jwtSecret string, revenueHandler *handlers.RevenueHandler) {
	revenue := r.Group("/revenue")
	revenue.Use(middleware.AuthRequired(jwtSecret))
	{
		revenue.GET("/mine", revenueHandler.GetMyRevenue)
		revenue.GET("/mine/invites", revenueHandler.GetMyInviteHistory)
		revenue.GET("/mine/affiliates", revenueHandler.GetMyAffiliateHistory)
	}

	admin := r.Group("/admin/revenue")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/report", revenueHandler.GetRevenueReport)
	}
}

// SetupPurchaseRoutes sets up routes for the purchase directory
func SetupPurchaseRoutes(r *gin.RouterGroup, jwtSecret string, purchaseHandler *handlers.PurchaseHandler) {
	purchases := r.Group("/purchases")
	purchases.Use(middleware.AuthRequired(jwtSecret))
	{
		purchases.POST("/", purchaseHandler.CreatePurchase)
		purchases.GET("/mine", purchaseHandler.GetMyPurchases)
		purchases.GET("/:id", purchaseHandler.GetPurchase)
	}
}

// SetupUserRoutes sets up routes for the narrow user directory
func SetupUserRoutes(r *gin.RouterGroup, jwtSecret string, userHandler *handlers.UserHandler) {
	users := r.Group("/users")
	users.Use(middleware.AuthRequired(jwtSecret))
	{
		users.GET("/me", userHandler.GetMe)
		users.GET("/me/referrals", userHandler.GetMyReferrals)
	}

	admin := r.Group("/admin/users")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/:id", userHandler.GetUser)
	}
}
