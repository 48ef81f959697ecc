package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/authz"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// CommentHandler manages comments on tasks.
type CommentHandler struct {
	commentService *services.CommentService
	taskService    *services.TaskService
	projectService *services.ProjectService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService *services.CommentService, taskService *services.TaskService, projectService *services.ProjectService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		taskService:    taskService,
		projectService: projectService,
	}
}

// CreateComment adds a comment to a task. Any project member may comment.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateCommentRequest struct {
		Content string `json:"content" binding:"required"`
		TaskID  uint64 `json:"task" binding:"required"`
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	role, ok := h.roleForTask(c, req.TaskID, userID)
	if !ok {
		return
	}

	if !authz.Can(authz.Request{Role: role, Action: authz.ActionCreate, Resource: authz.ResourceComment}) {
		apierrors.Forbidden(c, "You do not have access to this task")
		return
	}

	comment, err := h.commentService.CreateComment(req.TaskID, userID, req.Content)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment))
}

// ListComments returns comments on a task, oldest first.
func (h *CommentHandler) ListComments(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, err := strconv.ParseUint(c.Query("task"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "The task query parameter is required")
		return
	}

	role, ok := h.roleForTask(c, taskID, userID)
	if !ok {
		return
	}

	if !authz.Can(authz.Request{Role: role, Action: authz.ActionRead, Resource: authz.ResourceComment}) {
		apierrors.Forbidden(c, "You do not have access to this task")
		return
	}

	params := utils.GetPaginationParams(c)

	comments, total, err := h.commentService.ListComments(taskID, params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentListResponse(comments, params.Page, params.Limit, total))
}

// GetComment returns a single comment.
func (h *CommentHandler) GetComment(c *gin.Context) {
	comment, _ := middleware.GetComment(c)
	c.JSON(http.StatusOK, dto.ToCommentDTO(*comment))
}

// UpdateComment edits a comment. The author, or the project Owner/Admin.
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	comment, _ := middleware.GetComment(c)
	role, _ := middleware.GetProjectRole(c)

	allowed := authz.Can(authz.Request{
		Role:     role,
		Action:   authz.ActionUpdate,
		Resource: authz.ResourceComment,
		IsAuthor: comment.UserID == userID,
	})
	if !allowed {
		apierrors.Forbidden(c, "You cannot edit this comment")
		return
	}

	type UpdateCommentRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.commentService.UpdateComment(comment, req.Content)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentDTO(*updated))
}

// DeleteComment removes a comment. The author, or the project Owner/Admin.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	comment, _ := middleware.GetComment(c)
	role, _ := middleware.GetProjectRole(c)

	allowed := authz.Can(authz.Request{
		Role:     role,
		Action:   authz.ActionDelete,
		Resource: authz.ResourceComment,
		IsAuthor: comment.UserID == userID,
	})
	if !allowed {
		apierrors.Forbidden(c, "You cannot delete this comment")
		return
	}

	if err := h.commentService.DeleteComment(comment.ID); err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// roleForTask resolves the caller's role in the project of the given task.
func (h *CommentHandler) roleForTask(c *gin.Context, taskID, userID uint64) (authz.Role, bool) {
	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		respondTaskError(c, err)
		return authz.RoleNone, false
	}

	project, err := h.projectService.GetProject(task.ProjectID)
	if err != nil {
		respondProjectError(c, err)
		return authz.RoleNone, false
	}

	role, err := h.projectService.RoleOf(project, userID)
	if err != nil {
		apierrors.InternalError(c, "")
		return authz.RoleNone, false
	}

	return role, true
}

func respondCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrEmptyComment):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
