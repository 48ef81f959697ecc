package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/authz"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

const contextKeyTask = "task"

// RequireTaskAccess resolves the task from the :id parameter, computes the
// caller's role in the task's project and gates on task read access.
func RequireTaskAccess(taskService *services.TaskService, projectService *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := taskService.GetTask(taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		project, err := projectService.GetProject(task.ProjectID)
		if err != nil {
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}

		role, err := projectService.RoleOf(project, userID)
		if err != nil {
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}

		if !authz.Can(authz.Request{Role: role, Action: authz.ActionRead, Resource: authz.ResourceTask}) {
			apierrors.Forbidden(c, "You do not have access to this task")
			c.Abort()
			return
		}

		c.Set(contextKeyTask, task)
		c.Set(contextKeyProject, project)
		c.Set(contextKeyProjectRole, role)
		c.Next()
	}
}

// GetTask retrieves the task resolved by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(contextKeyTask)
	if !exists {
		return nil, false
	}

	task, ok := value.(*models.Task)
	return task, ok
}
