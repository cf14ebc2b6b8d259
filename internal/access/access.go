// Package access decides which boards, tasks and comments an authenticated
// user may read, change or delete.
//
// Every decision is a pure function of the actor id and a Resource describing
// the ownership and membership facts loaded by the caller. Editing is open to
// every board participant while destructive actions are reserved: a board is
// deleted only by its owner, a task only by its creator or the board owner, a
// comment only by its author.
package access

import (
	"fmt"

	"kanmind-api/internal/apperr"
)

// Action names an operation subject to authorization.
type Action string

const (
	BoardView   Action = "board:view"
	BoardCreate Action = "board:create"
	BoardUpdate Action = "board:update"
	BoardDelete Action = "board:delete"

	TaskView   Action = "task:view"
	TaskCreate Action = "task:create"
	TaskUpdate Action = "task:update"
	TaskDelete Action = "task:delete"

	CommentList   Action = "comment:list"
	CommentCreate Action = "comment:create"
	CommentDelete Action = "comment:delete"
)

// Resource holds the relation facts a rule is evaluated against. Board facts
// (OwnerID, MemberIDs) always describe the board the resource lives on.
type Resource struct {
	OwnerID   uint
	MemberIDs []uint
	// CreatorID is the task creator, set for task actions.
	CreatorID uint
	// AuthorID is the comment author, set for comment actions.
	AuthorID uint
}

// Rule reports whether actor may perform an action on r.
type Rule func(actor uint, r Resource) bool

var rules = map[Action]Rule{
	BoardView:   participant,
	BoardCreate: authenticated,
	BoardUpdate: participant,
	BoardDelete: owner,

	TaskView:   participant,
	TaskCreate: participant,
	TaskUpdate: participant,
	TaskDelete: func(actor uint, r Resource) bool {
		return actor == r.CreatorID || owner(actor, r)
	},

	CommentList:   participant,
	CommentCreate: participant,
	CommentDelete: func(actor uint, r Resource) bool {
		return actor != 0 && actor == r.AuthorID
	},
}

var details = map[Action]string{
	BoardView:     "You must be the owner or a member of this board.",
	BoardUpdate:   "You must be the owner or a member of this board.",
	BoardDelete:   "Only the board owner can delete this board.",
	TaskView:      "You must be a member of this task's board.",
	TaskCreate:    "You must be a member of this board.",
	TaskUpdate:    "You must be a member of this task's board.",
	TaskDelete:    "Only the task creator or the board owner can delete this task.",
	CommentList:   "You do not have access to this task.",
	CommentCreate: "You do not have access to this task.",
	CommentDelete: "You cannot delete this comment.",
}

func authenticated(actor uint, _ Resource) bool { return actor != 0 }

func owner(actor uint, r Resource) bool { return actor != 0 && actor == r.OwnerID }

func participant(actor uint, r Resource) bool { return IsParticipant(actor, r) }

// IsParticipant reports whether user is the owner or a member of the board
// described by r.
func IsParticipant(user uint, r Resource) bool {
	if user == 0 {
		return false
	}
	if user == r.OwnerID {
		return true
	}
	for _, id := range r.MemberIDs {
		if id == user {
			return true
		}
	}
	return false
}

// Allowed reports whether actor may perform action on r. Unknown actions are
// denied.
func Allowed(actor uint, action Action, r Resource) bool {
	rule, ok := rules[action]
	if !ok {
		return false
	}
	return rule(actor, r)
}

// Check returns nil when actor may perform action on r and a
// *apperr.PermissionError otherwise.
func Check(actor uint, action Action, r Resource) error {
	if Allowed(actor, action, r) {
		return nil
	}
	detail, ok := details[action]
	if !ok {
		detail = fmt.Sprintf("Action %q is not permitted.", action)
	}
	return apperr.Forbidden(detail)
}
