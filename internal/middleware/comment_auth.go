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

const contextKeyComment = "comment"

// RequireCommentAccess resolves the comment from the :id parameter and the
// caller's role in the comment's project. Authors keep access to their own
// comments even without a current role, so update/delete can still be
// decided by the engine downstream.
func RequireCommentAccess(commentService *services.CommentService, projectService *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		commentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid comment ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		comment, err := commentService.GetComment(commentID)
		if err != nil {
			if errors.Is(err, services.ErrCommentNotFound) {
				apierrors.NotFound(c, "Comment not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		project, err := projectService.GetProject(comment.Task.ProjectID)
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

		if role == authz.RoleNone && comment.UserID != userID {
			apierrors.Forbidden(c, "You do not have access to this comment")
			c.Abort()
			return
		}

		c.Set(contextKeyComment, comment)
		c.Set(contextKeyProject, project)
		c.Set(contextKeyProjectRole, role)
		c.Next()
	}
}

// GetComment retrieves the comment resolved by RequireCommentAccess
func GetComment(c *gin.Context) (*models.Comment, bool) {
	value, exists := c.Get(contextKeyComment)
	if !exists {
		return nil, false
	}

	comment, ok := value.(*models.Comment)
	return comment, ok
}
