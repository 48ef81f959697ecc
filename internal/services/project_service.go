package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-management-api/internal/authz"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidProjectName = errors.New("project name cannot be empty")
	ErrMemberExists       = errors.New("user already has a role in this project")
	ErrMemberNotFound     = errors.New("project member not found")
	ErrOwnerAsMember      = errors.New("the project owner cannot be added as a member")
	ErrInvalidRole        = errors.New("role must be Admin or Member")
)

// ProjectService provides business logic for projects and their membership
// registry.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     uint64
}

// CreateProject creates a new project. The owner is fixed at creation and is
// never stored as a member row.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns a project by ID.
func (s *ProjectService) GetProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// GetProjectWithMembers returns a project and all of its member rows.
func (s *ProjectService) GetProjectWithMembers(id uint64) (*models.Project, []models.ProjectMember, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.projectRepo.ListMembers(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list project members: %w", err)
	}

	return project, members, nil
}

// ListProjectsForUser returns projects the user owns or is a member of.
func (s *ProjectService) ListProjectsForUser(userID uint64, params utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.ListForUser(userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// VisibleProjectIDs returns the IDs of every project the user can see.
func (s *ProjectService) VisibleProjectIDs(userID uint64) ([]uint64, error) {
	ids, err := s.projectRepo.ListIDsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project ids: %w", err)
	}
	return ids, nil
}

// UpdateProjectInput holds the mutable project fields. The owner is immutable.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// UpdateProject updates a project's name and description.
func (s *ProjectService) UpdateProject(id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project and cascades its tasks, comments and
// member rows.
func (s *ProjectService) DeleteProject(id uint64) error {
	if _, err := s.GetProject(id); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// RoleOf resolves the effective role of a user for a project: Owner from the
// project's owner column, Admin/Member from the registry, None otherwise.
func (s *ProjectService) RoleOf(project *models.Project, userID uint64) (authz.Role, error) {
	if project.OwnerID == userID {
		return authz.RoleOwner, nil
	}

	member, err := s.projectRepo.FindMember(project.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.RoleNone, nil
		}
		return authz.RoleNone, fmt.Errorf("failed to find project member: %w", err)
	}

	return authz.RoleOf(project.OwnerID, member, userID), nil
}

// AddMember grants a user a role in a project. An existing (project, user)
// pair is rejected; the composite unique index is the canonical conflict
// signal under concurrency.
func (s *ProjectService) AddMember(project *models.Project, userID uint64, role models.ProjectRole) (*models.ProjectMember, error) {
	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, ErrInvalidRole
	}
	if project.OwnerID == userID {
		return nil, ErrOwnerAsMember
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      role,
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrMemberExists
		}
		return nil, fmt.Errorf("failed to add project member: %w", err)
	}

	return member, nil
}

// ChangeRole updates an existing member's role.
func (s *ProjectService) ChangeRole(projectID, userID uint64, role models.ProjectRole) error {
	if role != models.RoleAdmin && role != models.RoleMember {
		return ErrInvalidRole
	}

	if err := s.projectRepo.UpdateMemberRole(projectID, userID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to change member role: %w", err)
	}

	return nil
}

// RemoveMember revokes a user's role in a project.
func (s *ProjectService) RemoveMember(projectID, userID uint64) error {
	if err := s.projectRepo.RemoveMember(projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to remove project member: %w", err)
	}

	return nil
}
