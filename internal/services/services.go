// Package services holds the identity, board, task and comment operations.
// Every operation takes the acting user's id explicitly and consults the
// access package before touching data.
package services

import (
	"errors"
	"fmt"

	"kanmind-api/internal/access"
	"kanmind-api/internal/apperr"
	"kanmind-api/internal/auth"
	"kanmind-api/internal/logging"
	"kanmind-api/internal/models"
	"kanmind-api/internal/validation"

	"gorm.io/gorm"
)

// Services bundles the domain services sharing one database handle.
type Services struct {
	Identity *IdentityService
	Boards   *BoardService
	Tasks    *TaskService
	Comments *CommentService
}

// New wires the domain services.
func New(db *gorm.DB, tokens *auth.TokenService, log logging.Logger, bcryptCost int) *Services {
	return &Services{
		Identity: NewIdentityService(db, tokens, log, bcryptCost),
		Boards:   NewBoardService(db, log),
		Tasks:    NewTaskService(db, log),
		Comments: NewCommentService(db, log),
	}
}

// boardResource describes the ownership facts of b for access checks.
func boardResource(b *models.Board) access.Resource {
	return access.Resource{OwnerID: b.OwnerID, MemberIDs: b.MemberIDs()}
}

// loadBoard fetches a board with its members.
func loadBoard(db *gorm.DB, id uint) (*models.Board, error) {
	var b models.Board
	if err := db.Preload("Members").First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("board")
		}
		return nil, fmt.Errorf("load board %d: %w", id, err)
	}
	return &b, nil
}

// loadTask fetches a task with its board, the board members and the
// assignee and reviewer.
func loadTask(db *gorm.DB, id uint) (*models.Task, error) {
	var t models.Task
	err := db.
		Preload("Board").
		Preload("Board.Members").
		Preload("Assignee").
		Preload("Reviewer").
		First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("task")
		}
		return nil, fmt.Errorf("load task %d: %w", id, err)
	}
	return &t, nil
}

// findUsers returns the users with the given ids, keyed by id.
func findUsers(db *gorm.DB, ids []uint) (map[uint]models.User, error) {
	out := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// collect runs struct validation on in and merges field errors into ve.
// Other failures are returned.
func collect(ve *apperr.ValidationError, in any) error {
	err := validation.Struct(in)
	var fieldErrs *apperr.ValidationError
	if errors.As(err, &fieldErrs) {
		ve.Merge(fieldErrs)
		return nil
	}
	return err
}
