// Package access holds the role rules that decide which tasks a user may
// list, view, update or delete.
//
// Managers currently have the same reach as admins. A team-scoped manager
// model has been discussed but is not implemented; keep the two roles
// equivalent until product requirements say otherwise.
package access

import (
	"errors"

	"github.com/yukikurage/task-manager-api/internal/models"
)

// ErrForbidden is returned when an authenticated user may not act on a task.
var ErrForbidden = errors.New("not allowed to access this task")

// Action names the kind of operation being authorized.
type Action string

const (
	ActionView   Action = "view"
	ActionMutate Action = "mutate"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Action  Action
	Reason  string
}

func allow(action Action) Decision {
	return Decision{Allowed: true, Action: action}
}

func deny(action Action, reason string) Decision {
	return Decision{Action: action, Reason: reason}
}

// Err returns ErrForbidden for a denied decision and nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return ErrForbidden
}

// TaskScope is the listing predicate for a role. The zero value matches no task.
type TaskScope struct {
	// All matches every task.
	All bool
	// UserID, when All is false, matches tasks created by or assigned to this user.
	UserID string
}

// Matches evaluates the scope against a single task.
func (s TaskScope) Matches(task *models.Task) bool {
	if s.All {
		return true
	}
	if s.UserID == "" || task == nil {
		return false
	}
	return task.IsCreator(s.UserID) || task.IsAssignee(s.UserID)
}

// Empty reports whether the scope cannot match anything.
func (s TaskScope) Empty() bool {
	return !s.All && s.UserID == ""
}

// ScopeTaskQuery returns the listing scope for role.
func ScopeTaskQuery(role models.Role, userID string) TaskScope {
	switch role {
	case models.RoleAdmin, models.RoleManager:
		return TaskScope{All: true}
	case models.RoleMember:
		return TaskScope{UserID: userID}
	default:
		return TaskScope{}
	}
}

// AuthorizeView decides whether the user may read task.
func AuthorizeView(role models.Role, userID string, task *models.Task) Decision {
	switch role {
	case models.RoleAdmin, models.RoleManager:
		return allow(ActionView)
	case models.RoleMember:
		if ScopeTaskQuery(role, userID).Matches(task) {
			return allow(ActionView)
		}
		return deny(ActionView, "member is neither creator nor assignee")
	default:
		return deny(ActionView, "unknown role")
	}
}

// AuthorizeMutate decides whether the user may update or delete task.
// Being the assignee is not enough for a member.
func AuthorizeMutate(role models.Role, userID string, task *models.Task) Decision {
	switch role {
	case models.RoleAdmin, models.RoleManager:
		return allow(ActionMutate)
	case models.RoleMember:
		if task.IsCreator(userID) {
			return allow(ActionMutate)
		}
		return deny(ActionMutate, "member is not the creator")
	default:
		return deny(ActionMutate, "unknown role")
	}
}
