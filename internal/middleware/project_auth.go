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

const (
	contextKeyProject     = "project"
	contextKeyProjectRole = "project_role"
)

// RequireProjectAccess resolves the project from the :id parameter, computes
// the caller's role and gates on project read access. The project and role
// are stored in context for the handlers behind it.
func RequireProjectAccess(projectService *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		project, err := projectService.GetProject(projectID)
		if err != nil {
			if errors.Is(err, services.ErrProjectNotFound) {
				apierrors.NotFound(c, "Project not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		role, err := projectService.RoleOf(project, userID)
		if err != nil {
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}

		if !authz.Can(authz.Request{Role: role, Action: authz.ActionRead, Resource: authz.ResourceProject}) {
			apierrors.Forbidden(c, "You do not have access to this project")
			c.Abort()
			return
		}

		c.Set(contextKeyProject, project)
		c.Set(contextKeyProjectRole, role)
		c.Next()
	}
}

// GetProject retrieves the project resolved by RequireProjectAccess
func GetProject(c *gin.Context) (*models.Project, bool) {
	value, exists := c.Get(contextKeyProject)
	if !exists {
		return nil, false
	}

	project, ok := value.(*models.Project)
	return project, ok
}

// GetProjectRole retrieves the caller's role resolved by the access middleware
func GetProjectRole(c *gin.Context) (authz.Role, bool) {
	value, exists := c.Get(contextKeyProjectRole)
	if !exists {
		return authz.RoleNone, false
	}

	role, ok := value.(authz.Role)
	return role, ok
}
