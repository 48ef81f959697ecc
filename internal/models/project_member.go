package models

import "time"

type ProjectRole string

const (
	RoleAdmin  ProjectRole = "Admin"
	RoleMember ProjectRole = "Member"
)

// ProjectMember grants a user a role inside a project. The project owner is
// tracked on the project itself and never duplicated as a member row.
type ProjectMember struct {
	ID        uint64      `gorm:"primarykey" json:"id"`
	ProjectID uint64      `gorm:"not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID    uint64      `gorm:"not null;uniqueIndex:idx_project_user" json:"user_id"`
	Role      ProjectRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt  time.Time   `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
