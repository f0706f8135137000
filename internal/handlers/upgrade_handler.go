package handlers

import (
	"goshop/internal/models"
	"goshop/internal/services"
	"goshop/internal/utils"

	"github.com/gin-gonic/gin"
)

type UpgradeHandler struct {
	upgradeService services.UpgradeService
}

func NewUpgradeHandler(upgradeService services.UpgradeService) *UpgradeHandler {
	return &UpgradeHandler{
		upgradeService: upgradeService,
	}
}

type requestUpgradeBody struct {
	PackageID string `json:"package_id" binding:"required"`
}

// RequestUpgrade creates a pending upgrade request for the calling seller
func (h *UpgradeHandler) RequestUpgrade(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body requestUpgradeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	packageID, err := parseObjectID(body.PackageID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid package ID")
		return
	}

	upgrade, err := h.upgradeService.RequestUpgrade(c.Request.Context(), sellerID, packageID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Upgrade requested successfully", upgrade)
}

// AcceptUpgrade transitions a pending upgrade to accepted (admin only)
func (h *UpgradeHandler) AcceptUpgrade(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	upgradeID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	upgrade, err := h.upgradeService.AcceptUpgrade(c.Request.Context(), adminID, upgradeID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Upgrade accepted successfully", upgrade)
}

// CheckUpgradeStatus reports the caller's current subscription and days left
func (h *UpgradeHandler) CheckUpgradeStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	status, err := h.upgradeService.CheckUpgradeStatus(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Upgrade status retrieved successfully", status)
}

// GetUpgrade retrieves one upgrade record
func (h *UpgradeHandler) GetUpgrade(c *gin.Context) {
	upgradeID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	upgrade, err := h.upgradeService.GetUpgrade(c.Request.Context(), upgradeID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Upgrade retrieved successfully", upgrade)
}

// GetMyUpgrades lists the calling seller's upgrade history
func (h *UpgradeHandler) GetMyUpgrades(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	upgrades, total, err := h.upgradeService.GetUpgradesByUser(c.Request.Context(), userID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Upgrades retrieved successfully", upgrades, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// ListUpgradesByStatus lists upgrades filtered by lifecycle status (admin only)
func (h *UpgradeHandler) ListUpgradesByStatus(c *gin.Context) {
	status := models.UpgradeStatus(c.DefaultQuery("status", string(models.UpgradeStatusPending)))
	switch status {
	case models.UpgradeStatusPending, models.UpgradeStatusAccepted, models.UpgradeStatusCancelled:
	default:
		utils.BadRequestResponse(c, "Invalid status")
		return
	}

	params := utils.GetPaginationParams(c)
	upgrades, total, err := h.upgradeService.GetUpgradesByStatus(c.Request.Context(), status, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Upgrades retrieved successfully", upgrades, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}
