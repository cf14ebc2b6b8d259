package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kanmind-api/internal/access"
	"kanmind-api/internal/apperr"
	"kanmind-api/internal/logging"
	"kanmind-api/internal/models"

	"gorm.io/gorm"
)

// CommentInput is the payload of comment creation.
type CommentInput struct {
	Content string `json:"content" validate:"notblank"`
}

// CommentView is the representation of a comment. Author is the author's
// full name.
type CommentView struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
}

// CommentService manages the comments of tasks.
type CommentService struct {
	db  *gorm.DB
	log logging.Logger
}

// NewCommentService returns a CommentService.
func NewCommentService(db *gorm.DB, log logging.Logger) *CommentService {
	return &CommentService{db: db, log: log}
}

// List returns the comments of a task, oldest first.
func (s *CommentService) List(ctx context.Context, actor, taskID uint) ([]CommentView, error) {
	db := s.db.WithContext(ctx)

	task, err := loadTask(db, taskID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(actor, access.CommentList, taskResource(task)); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := db.Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at, id").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentView(c))
	}
	return out, nil
}

// Create appends a comment by actor to a task on a board actor participates in.
func (s *CommentService) Create(ctx context.Context, actor, taskID uint, in CommentInput) (*CommentView, error) {
	db := s.db.WithContext(ctx)

	task, err := loadTask(db, taskID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(actor, access.CommentCreate, taskResource(task)); err != nil {
		return nil, err
	}

	ve := &apperr.ValidationError{}
	if err := collect(ve, in); err != nil {
		return nil, err
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	comment := models.Comment{
		TaskID:   taskID,
		AuthorID: actor,
		Content:  strings.TrimSpace(in.Content),
	}
	if err := db.Omit("Task", "Author").Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if err := db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		return nil, fmt.Errorf("reload comment: %w", err)
	}

	s.log.Info(ctx, "comment created", "comment_id", comment.ID, "task_id", taskID, "author_id", actor)
	v := commentView(comment)
	return &v, nil
}

// Delete removes a comment of a task. Only its author may delete it.
func (s *CommentService) Delete(ctx context.Context, actor, taskID, commentID uint) error {
	db := s.db.WithContext(ctx)

	var comment models.Comment
	err := db.Where("id = ? AND task_id = ?", commentID, taskID).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("comment")
	}
	if err != nil {
		return fmt.Errorf("load comment %d: %w", commentID, err)
	}

	if err := access.Check(actor, access.CommentDelete, access.Resource{AuthorID: comment.AuthorID}); err != nil {
		return err
	}

	if err := db.Delete(&models.Comment{}, comment.ID).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	s.log.Info(ctx, "comment deleted", "comment_id", comment.ID, "task_id", taskID, "actor_id", actor)
	return nil
}

func commentView(c models.Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		Author:    c.Author.Fullname,
		Content:   c.Content,
	}
}
