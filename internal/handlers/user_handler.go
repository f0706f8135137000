package handlers

import (
	"goshop/internal/services"
	"goshop/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved successfully", user)
}

// GetMyReferrals lists users referred by the caller
func (h *UserHandler) GetMyReferrals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	referrals, total, err := h.userService.GetReferrals(c.Request.Context(), userID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Referrals retrieved successfully", referrals, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// GetUser retrieves one user (admin only)
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved successfully", user)
}
