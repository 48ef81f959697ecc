// Package authz is the central authorization decision point. It is a pure
// computation over already-fetched ownership and membership data and performs
// no I/O.
package authz

import "github.com/yukikurage/project-management-api/internal/models"

// Role is the effective privilege level of a user within a project. Owner is
// derived from the project's owner column; Admin and Member come from member
// rows. None means no relationship at all.
type Role int

const (
	RoleNone Role = iota
	RoleMember
	RoleAdmin
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "Owner"
	case RoleAdmin:
		return "Admin"
	case RoleMember:
		return "Member"
	case RoleNone:
		return "None"
	}
	return "None"
}

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Resource string

const (
	ResourceProject       Resource = "project"
	ResourceProjectMember Resource = "projectmember"
	ResourceTask          Resource = "task"
	ResourceComment       Resource = "comment"
)

// RoleOf resolves the effective role of userID for a project, given the
// project's owner and the user's member row (nil when none exists).
func RoleOf(ownerID uint64, member *models.ProjectMember, userID uint64) Role {
	if ownerID == userID {
		return RoleOwner
	}
	if member == nil || member.UserID != userID {
		return RoleNone
	}
	switch member.Role {
	case models.RoleAdmin:
		return RoleAdmin
	case models.RoleMember:
		return RoleMember
	}
	return RoleNone
}

// CanManageUser decides whether the actor may read or mutate another user's
// record: only the identity itself or a staff identity.
func CanManageUser(actor *models.User, targetID uint64) bool {
	if actor == nil {
		return false
	}
	return actor.ID == targetID || actor.IsStaff
}

// Request describes an attempted action for Can. IsAssignee, IsAuthor and
// StatusOnly qualify the actor's relationship to the specific task or comment.
type Request struct {
	Role     Role
	Action   Action
	Resource Resource

	// Task: the task's assignee is the actor, and the update touches only
	// the status field.
	IsAssignee bool
	StatusOnly bool

	// Comment: the comment's author is the actor.
	IsAuthor bool
}

// Can decides whether the request is allowed. Unknown resource/action
// combinations deny.
func Can(req Request) bool {
	switch req.Resource {
	case ResourceProject:
		switch req.Action {
		case ActionRead:
			return req.Role != RoleNone
		case ActionUpdate, ActionDelete:
			return req.Role == RoleOwner
		}
		return false

	case ResourceProjectMember:
		switch req.Action {
		case ActionRead:
			return req.Role != RoleNone
		case ActionCreate, ActionUpdate, ActionDelete:
			return req.Role == RoleOwner || req.Role == RoleAdmin
		}
		return false

	case ResourceTask:
		switch req.Action {
		case ActionRead:
			return req.Role != RoleNone
		case ActionCreate:
			return req.Role == RoleOwner || req.Role == RoleAdmin
		case ActionUpdate:
			if req.Role == RoleOwner || req.Role == RoleAdmin {
				return true
			}
			return req.IsAssignee && req.StatusOnly
		case ActionDelete:
			return req.Role == RoleOwner || req.Role == RoleAdmin
		}
		return false

	case ResourceComment:
		switch req.Action {
		case ActionRead, ActionCreate:
			return req.Role != RoleNone
		case ActionUpdate, ActionDelete:
			if req.Role == RoleOwner || req.Role == RoleAdmin {
				return true
			}
			return req.IsAuthor
		}
		return false
	}

	return false
}
