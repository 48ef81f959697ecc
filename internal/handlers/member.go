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
)

// MemberHandler manages the membership registry of a project.
type MemberHandler struct {
	projectService *services.ProjectService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(projectService *services.ProjectService) *MemberHandler {
	return &MemberHandler{
		projectService: projectService,
	}
}

// ListMembers returns the member rows of a project.
func (h *MemberHandler) ListMembers(c *gin.Context) {
	project, _ := middleware.GetProject(c)

	_, members, err := h.projectService.GetProjectWithMembers(project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	memberDTOs := make([]dto.ProjectMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = dto.ToProjectMemberDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{"members": memberDTOs})
}

// AddMember grants a user a role in the project. Owner or Admin only.
func (h *MemberHandler) AddMember(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	role, _ := middleware.GetProjectRole(c)

	if !authz.Can(authz.Request{Role: role, Action: authz.ActionCreate, Resource: authz.ResourceProjectMember}) {
		apierrors.Forbidden(c, "Only the project owner or an admin can manage members")
		return
	}

	type AddMemberRequest struct {
		UserID uint64             `json:"user_id" binding:"required"`
		Role   models.ProjectRole `json:"role" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.projectService.AddMember(project, req.UserID, req.Role)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"project_id": member.ProjectID,
		"user_id":    member.UserID,
		"role":       member.Role,
	})
}

// ChangeRole updates a member's role. Owner or Admin only.
func (h *MemberHandler) ChangeRole(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	role, _ := middleware.GetProjectRole(c)

	if !authz.Can(authz.Request{Role: role, Action: authz.ActionUpdate, Resource: authz.ResourceProjectMember}) {
		apierrors.Forbidden(c, "Only the project owner or an admin can manage members")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type ChangeRoleRequest struct {
		Role models.ProjectRole `json:"role" binding:"required"`
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.projectService.ChangeRole(project.ID, targetID, req.Role); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member role updated"})
}

// RemoveMember revokes a user's role in the project. Owner or Admin only.
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	project, _ := middleware.GetProject(c)
	role, _ := middleware.GetProjectRole(c)

	if !authz.Can(authz.Request{Role: role, Action: authz.ActionDelete, Resource: authz.ResourceProjectMember}) {
		apierrors.Forbidden(c, "Only the project owner or an admin can manage members")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.projectService.RemoveMember(project.ID, targetID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
