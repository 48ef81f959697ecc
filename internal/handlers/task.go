package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/authz"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// TaskHandler manages task CRUD.
type TaskHandler struct {
	taskService    *services.TaskService
	projectService *services.ProjectService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, projectService *services.ProjectService) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		projectService: projectService,
	}
}

// CreateTask creates a task in a project. Owner or Admin of the project only.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description"`
		Status      models.TaskStatus   `json:"status"`
		Priority    models.TaskPriority `json:"priority"`
		AssignedTo  *uint64             `json:"assigned_to"`
		ProjectID   uint64              `json:"project" binding:"required"`
		DueDate     *time.Time          `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.GetProject(req.ProjectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	role, err := h.projectService.RoleOf(project, userID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	if !authz.Can(authz.Request{Role: role, Action: authz.ActionCreate, Resource: authz.ResourceTask}) {
		apierrors.Forbidden(c, "Only the project owner or an admin can create tasks")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		AssignedToID: req.AssignedTo,
		ProjectID:    req.ProjectID,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns tasks across the caller's projects, filtered and paginated.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectIDs, err := h.projectService.VisibleProjectIDs(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.TaskFilter{
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if v := c.Query("project"); v != "" {
		projectID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project filter")
			return
		}
		filter.ProjectID = &projectID
	}
	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		if !models.ValidStatus(status) {
			apierrors.BadRequest(c, services.ErrInvalidTaskStatus.Error())
			return
		}
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := models.TaskPriority(v)
		if !models.ValidPriority(priority) {
			apierrors.BadRequest(c, services.ErrInvalidPriority.Error())
			return
		}
		filter.Priority = &priority
	}
	if v := c.Query("assigned_to"); v != "" {
		assigneeID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_to filter")
			return
		}
		filter.AssignedToID = &assigneeID
	}
	if v := c.Query("due_date_from"); v != "" {
		from, err := parseDateFilter(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date_from filter")
			return
		}
		filter.DueDateFrom = &from
	}
	if v := c.Query("due_date_to"); v != "" {
		to, err := parseDateFilter(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date_to filter")
			return
		}
		filter.DueDateTo = &to
	}

	tasks, total, err := h.taskService.ListTasks(projectIDs, filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a single task.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, _ := middleware.GetTask(c)
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask updates a task. Owner or Admin of the project; the assignee may
// update the status and nothing else.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	task, _ := middleware.GetTask(c)
	role, _ := middleware.GetProjectRole(c)

	type UpdateTaskRequest struct {
		Title         string              `json:"title"`
		Description   *string             `json:"description"`
		Status        models.TaskStatus   `json:"status"`
		Priority      models.TaskPriority `json:"priority"`
		AssignedTo    *uint64             `json:"assigned_to"`
		ClearAssignee bool                `json:"clear_assignee"`
		DueDate       *time.Time          `json:"due_date"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		AssignedToID:  req.AssignedTo,
		ClearAssignee: req.ClearAssignee,
		DueDate:       req.DueDate,
	}

	isAssignee := task.AssignedToID != nil && *task.AssignedToID == userID
	allowed := authz.Can(authz.Request{
		Role:       role,
		Action:     authz.ActionUpdate,
		Resource:   authz.ResourceTask,
		IsAssignee: isAssignee,
		StatusOnly: input.StatusOnly(),
	})
	if !allowed {
		apierrors.Forbidden(c, "You cannot update this task")
		return
	}

	updated, err := h.taskService.UpdateTask(task, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask removes a task. Owner or Admin of the project only.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, _ := middleware.GetTask(c)
	role, _ := middleware.GetProjectRole(c)

	if !authz.Can(authz.Request{Role: role, Action: authz.ActionDelete, Resource: authz.ResourceTask}) {
		apierrors.Forbidden(c, "Only the project owner or an admin can delete tasks")
		return
	}

	if err := h.taskService.DeleteTask(task.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// parseDateFilter accepts a date or a full RFC 3339 timestamp.
func parseDateFilter(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidTaskTitle),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrAssigneeNotInScope):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
