package handlers

import (
	"time"

	"goshop/internal/services"
	"goshop/internal/utils"

	"github.com/gin-gonic/gin"
)

type RevenueHandler struct {
	revenueService services.RevenueService
}

func NewRevenueHandler(revenueService services.RevenueService) *RevenueHandler {
	return &RevenueHandler{
		revenueService: revenueService,
	}
}

// GetMyRevenue returns the calling user's running total
func (h *RevenueHandler) GetMyRevenue(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	total, err := h.revenueService.GetTotalByUser(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Revenue retrieved successfully", total)
}

// GetMyInviteHistory lists the calling user's upgrade-side revenue events
func (h *RevenueHandler) GetMyInviteHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	invites, total, err := h.revenueService.GetInviteHistory(c.Request.Context(), userID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Revenue history retrieved successfully", invites, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// GetMyAffiliateHistory lists the calling user's purchase-side revenue events
func (h *RevenueHandler) GetMyAffiliateHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	affiliates, total, err := h.revenueService.GetAffiliateHistory(c.Request.Context(), userID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Revenue history retrieved successfully", affiliates, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// GetRevenueReport aggregates both ledgers over a date range (admin only).
// Defaults to the current month.
func (h *RevenueHandler) GetRevenueReport(c *gin.Context) {
	now := time.Now()
	from := utils.StartOfMonth(now)
	to := utils.EndOfMonth(now)

	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := utils.ParseTimeISO(fromStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid from date")
			return
		}
		from = parsed
	}

	if toStr := c.Query("to"); toStr != "" {
		parsed, err := utils.ParseTimeISO(toStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid to date")
			return
		}
		to = parsed
	}

	if to.Before(from) {
		utils.BadRequestResponse(c, "to date precedes from date")
		return
	}

	report, err := h.revenueService.GetRevenueReport(c.Request.Context(), from, to)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Revenue report retrieved successfully", report)
}
