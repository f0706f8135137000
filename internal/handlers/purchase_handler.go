package handlers

import (
	"goshop/internal/services"
	"goshop/internal/utils"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	purchaseService services.PurchaseService
}

func NewPurchaseHandler(purchaseService services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// CreatePurchase registers a purchase record for later settlement
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var request services.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Purchase created successfully", purchase)
}

// GetPurchase retrieves one purchase
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Purchase retrieved successfully", purchase)
}

// GetMyPurchases lists the calling seller's purchases
func (h *PurchaseHandler) GetMyPurchases(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	purchases, total, err := h.purchaseService.GetSellerPurchases(c.Request.Context(), sellerID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Purchases retrieved successfully", purchases, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}
