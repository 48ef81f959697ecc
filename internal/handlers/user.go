package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/authz"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// UserHandler manages user records behind authentication.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// ListUsers returns users with pagination.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.authService.ListUsers(params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params.Page, params.Limit, total))
}

// GetUser returns a single user. Self or staff only.
func (h *UserHandler) GetUser(c *gin.Context) {
	targetID, actor, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	if !authz.CanManageUser(actor, targetID) {
		apierrors.Forbidden(c, "You can only view your own account")
		return
	}

	user, err := h.authService.GetUser(targetID)
	if err != nil {
		respondAuthError(c, h.authService, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser mutates a user record. Self or staff only.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	targetID, actor, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	if !authz.CanManageUser(actor, targetID) {
		apierrors.Forbidden(c, "You can only update your own account")
		return
	}

	type UpdateUserRequest struct {
		Username  *string `json:"username"`
		Email     *string `json:"email" binding:"omitempty,email"`
		Password  *string `json:"password"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateUser(targetID, services.UpdateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondAuthError(c, h.authService, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser removes a user account. Self or staff only.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	targetID, actor, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	if !authz.CanManageUser(actor, targetID) {
		apierrors.Forbidden(c, "You can only delete your own account")
		return
	}

	if err := h.authService.DeleteUser(targetID); err != nil {
		respondAuthError(c, h.authService, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *UserHandler) resolveTarget(c *gin.Context) (uint64, *models.User, bool) {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return 0, nil, false
	}

	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, nil, false
	}

	return targetID, actor, true
}
