package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidTaskTitle   = errors.New("task title cannot be empty")
	ErrInvalidTaskStatus  = errors.New("status must be one of: To Do, In Progress, Done")
	ErrInvalidPriority    = errors.New("priority must be one of: Low, Medium, High")
	ErrAssigneeNotInScope = errors.New("assignee must be the project owner or a project member")
)

// TaskService provides business logic for task operations.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

// CreateTaskInput represents parameters to create a new task.
type CreateTaskInput struct {
	Title        string
	Description  string
	Status       models.TaskStatus
	Priority     models.TaskPriority
	AssignedToID *uint64
	ProjectID    uint64
	DueDate      *time.Time
}

// CreateTask creates a task within a project. Status defaults to To Do and
// priority to Low when omitted.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidTaskTitle
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !models.ValidStatus(input.Status) {
		return nil, ErrInvalidTaskStatus
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityLow
	}
	if !models.ValidPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	if input.AssignedToID != nil {
		if err := s.checkAssignee(input.ProjectID, *input.AssignedToID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:        input.Title,
		Description:  input.Description,
		Status:       input.Status,
		Priority:     input.Priority,
		AssignedToID: input.AssignedToID,
		ProjectID:    input.ProjectID,
		DueDate:      input.DueDate,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task by ID with its assignee preloaded.
func (s *TaskService) GetTask(id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, "AssignedTo")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks returns tasks within the given projects, filtered and paginated.
func (s *TaskService) ListTasks(projectIDs []uint64, filter repository.TaskFilter) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(projectIDs, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateTaskInput holds the mutable task fields. Nil fields are untouched.
// ClearAssignee unassigns the task regardless of AssignedToID.
type UpdateTaskInput struct {
	Title         string
	Description   *string
	Status        models.TaskStatus
	Priority      models.TaskPriority
	AssignedToID  *uint64
	ClearAssignee bool
	DueDate       *time.Time
}

// StatusOnly reports whether the update touches nothing but the status.
// The Authorization Engine grants assignees status-only updates.
func (in UpdateTaskInput) StatusOnly() bool {
	return in.Status != "" &&
		in.Title == "" &&
		in.Description == nil &&
		in.Priority == "" &&
		in.AssignedToID == nil &&
		!in.ClearAssignee &&
		in.DueDate == nil
}

// UpdateTask applies the input to a task.
func (s *TaskService) UpdateTask(task *models.Task, input UpdateTaskInput) (*models.Task, error) {
	if input.Title != "" {
		task.Title = input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != "" {
		if !models.ValidStatus(input.Status) {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = input.Status
	}
	if input.Priority != "" {
		if !models.ValidPriority(input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = input.Priority
	}
	if input.ClearAssignee {
		task.AssignedToID = nil
		task.AssignedTo = nil
	} else if input.AssignedToID != nil {
		if err := s.checkAssignee(task.ProjectID, *input.AssignedToID); err != nil {
			return nil, err
		}
		task.AssignedToID = input.AssignedToID
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task and its comments.
func (s *TaskService) DeleteTask(id uint64) error {
	if _, err := s.GetTask(id); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// checkAssignee verifies the assignee has a relationship with the project.
func (s *TaskService) checkAssignee(projectID, userID uint64) error {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if project.OwnerID == userID {
		return nil
	}

	if _, err := s.projectRepo.FindMember(projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotInScope
		}
		return fmt.Errorf("failed to find project member: %w", err)
	}

	return nil
}
