package handlers

import (
	"goshop/internal/models"
	"goshop/internal/services"
	"goshop/internal/utils"

	"github.com/gin-gonic/gin"
)

type SettlementHandler struct {
	settlementService services.SettlementService
}

func NewSettlementHandler(settlementService services.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// SubmitUpgradePayment records a bank-transfer proof against an upgrade
func (h *SettlementHandler) SubmitUpgradePayment(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	upgradeID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	proof, closeProof, ok := h.proofFromForm(c)
	if !ok {
		return
	}
	defer closeProof()

	transaction, err := h.settlementService.RecordUpgradePayment(c.Request.Context(), sellerID, upgradeID, proof)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Payment submitted successfully", transaction)
}

// SubmitPurchasePayment records a bank-transfer proof against a purchase
func (h *SettlementHandler) SubmitPurchasePayment(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	purchaseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	proof, closeProof, ok := h.proofFromForm(c)
	if !ok {
		return
	}
	defer closeProof()

	transaction, err := h.settlementService.RecordPurchasePayment(c.Request.Context(), sellerID, purchaseID, proof)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Payment submitted successfully", transaction)
}

type confirmBody struct {
	Code string `json:"code" binding:"required"`
}

// ConfirmTransaction marks the transaction matching a code as done (admin only)
func (h *SettlementHandler) ConfirmTransaction(c *gin.Context) {
	var body confirmBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	transaction, err := h.settlementService.ConfirmByCode(c.Request.Context(), body.Code)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Transaction confirmed successfully", transaction)
}

// GetTransaction retrieves one transaction
func (h *SettlementHandler) GetTransaction(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	transaction, err := h.settlementService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Transaction retrieved successfully", transaction)
}

// GetMyTransactions lists the calling seller's transactions
func (h *SettlementHandler) GetMyTransactions(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	transactions, total, err := h.settlementService.GetTransactionsBySeller(c.Request.Context(), sellerID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Transactions retrieved successfully", transactions, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// ListTransactionsByStatus lists transactions by settlement status (admin only)
func (h *SettlementHandler) ListTransactionsByStatus(c *gin.Context) {
	status := models.TransactionStatus(c.DefaultQuery("status", string(models.TransactionStatusPending)))
	if status != models.TransactionStatusPending && status != models.TransactionStatusDone {
		utils.BadRequestResponse(c, "Invalid status")
		return
	}

	params := utils.GetPaginationParams(c)
	transactions, total, err := h.settlementService.GetTransactionDetails(c.Request.Context(), status, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Transactions retrieved successfully", transactions, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

func (h *SettlementHandler) proofFromForm(c *gin.Context) (*services.ProofUpload, func(), bool) {
	fileHeader, err := c.FormFile("transfer_image")
	if err != nil {
		utils.BadRequestResponse(c, "transfer_image file is required")
		return nil, nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "failed to read transfer_image")
		return nil, nil, false
	}

	proof := &services.ProofUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	}

	return proof, func() { file.Close() }, true
}
