package handlers

import (
	"goshop/internal/services"
	"goshop/internal/utils"

	"github.com/gin-gonic/gin"
)

type PackageHandler struct {
	packageService services.PackageService
}

func NewPackageHandler(packageService services.PackageService) *PackageHandler {
	return &PackageHandler{
		packageService: packageService,
	}
}

// CreatePackage creates an upgrade package (admin only)
func (h *PackageHandler) CreatePackage(c *gin.Context) {
	var request services.CreatePackageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	pkg, err := h.packageService.CreatePackage(c.Request.Context(), &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Package created successfully", pkg)
}

// GetPackage retrieves one upgrade package
func (h *PackageHandler) GetPackage(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	pkg, err := h.packageService.GetPackage(c.Request.Context(), id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Package retrieved successfully", pkg)
}

// ListPackages lists upgrade packages
func (h *PackageHandler) ListPackages(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	packages, total, err := h.packageService.ListPackages(c.Request.Context(), params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Packages retrieved successfully", packages, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// UpdatePackage updates an upgrade package (admin only)
func (h *PackageHandler) UpdatePackage(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request services.UpdatePackageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	pkg, err := h.packageService.UpdatePackage(c.Request.Context(), id, &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Package updated successfully", pkg)
}

// DeletePackage removes an upgrade package (admin only)
func (h *PackageHandler) DeletePackage(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.packageService.DeletePackage(c.Request.Context(), id); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Package deleted successfully", nil)
}
