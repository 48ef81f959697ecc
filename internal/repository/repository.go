package repository

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user. Duplicate email/username surfaces as the
	// storage uniqueness violation, not a prior read.
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List retrieves users with pagination
	List(params utils.PaginationParams) ([]models.User, int64, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete removes a user and cascades: owned projects (with their tasks,
	// comments and memberships), authored comments and memberships are
	// deleted; task assignments are cleared.
	Delete(id uint64) error
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// ListForUser lists projects the user owns or is a member of
	ListForUser(userID uint64, params utils.PaginationParams) ([]models.Project, int64, error)

	// ListIDsForUser lists the IDs of projects the user owns or is a
	// member of, without pagination. Used to scope task queries.
	ListIDsForUser(userID uint64) ([]uint64, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete removes a project and cascades its tasks, those tasks'
	// comments, and its member rows within one transaction.
	Delete(id uint64) error

	// AddMember adds a member row. A duplicate (project, user) pair
	// surfaces as the storage uniqueness violation.
	AddMember(member *models.ProjectMember) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// ListMembers lists all members of a project
	ListMembers(projectID uint64) ([]models.ProjectMember, error)

	// UpdateMemberRole changes a member's role
	UpdateMemberRole(projectID, userID uint64, role models.ProjectRole) error

	// RemoveMember removes a member row
	RemoveMember(projectID, userID uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID    *uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssignedToID *uint64
	DueDateFrom  *time.Time
	DueDateTo    *time.Time
	Page         int
	PageSize     int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks visible within the given projects
	List(projectIDs []uint64, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete removes a task and its comments within one transaction
	Delete(id uint64) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a new comment
	Create(comment *models.Comment) error

	// FindByID finds a comment by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Comment, error)

	// ListByTask lists comments on a task, oldest first
	ListByTask(taskID uint64, params utils.PaginationParams) ([]models.Comment, int64, error)

	// Update updates a comment
	Update(comment *models.Comment) error

	// Delete removes a comment
	Delete(id uint64) error
}
