package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kanmind-api/internal/access"
	"kanmind-api/internal/apperr"
	"kanmind-api/internal/logging"
	"kanmind-api/internal/models"
	"kanmind-api/internal/nullable"

	"gorm.io/gorm"
)

const (
	msgBoardMissing   = "Board does not exist."
	msgUserMissing    = "User does not exist."
	msgNotParticipant = "Assignee/Reviewer must be member of the board."
)

// TaskCreateInput is the payload of task creation.
type TaskCreateInput struct {
	BoardID     *uint   `json:"board" validate:"required"`
	Title       string  `json:"title" validate:"notblank,max=200"`
	Description string  `json:"description"`
	Status      string  `json:"status" validate:"required,task_status"`
	Priority    string  `json:"priority" validate:"required,task_priority"`
	AssigneeID  *uint   `json:"assignee_id"`
	ReviewerID  *uint   `json:"reviewer_id"`
	DueDate     *string `json:"due_date" validate:"omitnil,datetime=2006-01-02"`
}

// TaskPatchInput is the payload of a partial task update. Board is accepted
// for compatibility and ignored. AssigneeID, ReviewerID and DueDate
// distinguish an omitted key from an explicit null.
type TaskPatchInput struct {
	Board       *uint                  `json:"board"`
	Title       *string                `json:"title" validate:"omitnil,notblank,max=200"`
	Description *string                `json:"description"`
	Status      *string                `json:"status" validate:"omitnil,task_status"`
	Priority    *string                `json:"priority" validate:"omitnil,task_priority"`
	AssigneeID  nullable.Field[uint]   `json:"assignee_id"`
	ReviewerID  nullable.Field[uint]   `json:"reviewer_id"`
	DueDate     nullable.Field[string] `json:"due_date"`
}

// TaskView is the representation of a task.
type TaskView struct {
	ID            uint                `json:"id"`
	Board         uint                `json:"board"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        models.TaskStatus   `json:"status"`
	Priority      models.TaskPriority `json:"priority"`
	Assignee      *models.UserPublic  `json:"assignee"`
	Reviewer      *models.UserPublic  `json:"reviewer"`
	DueDate       *string             `json:"due_date"`
	CommentsCount int64               `json:"comments_count"`
}

// TaskService manages tasks on boards.
type TaskService struct {
	db  *gorm.DB
	log logging.Logger
}

// NewTaskService returns a TaskService.
func NewTaskService(db *gorm.DB, log logging.Logger) *TaskService {
	return &TaskService{db: db, log: log}
}

// Create adds a task to a board actor participates in. Assignee and reviewer
// must be participants of that board. A creator outside the board gets a
// permission error (403), not a field error.
func (s *TaskService) Create(ctx context.Context, actor uint, in TaskCreateInput) (*TaskView, error) {
	db := s.db.WithContext(ctx)

	ve := &apperr.ValidationError{}
	if err := collect(ve, in); err != nil {
		return nil, err
	}

	var board *models.Board
	if in.BoardID != nil {
		b, err := loadBoard(db, *in.BoardID)
		switch {
		case apperr.IsNotFound(err):
			ve.Add("board", msgBoardMissing)
		case err != nil:
			return nil, err
		default:
			board = b
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	res := boardResource(board)
	if err := access.Check(actor, access.TaskCreate, res); err != nil {
		return nil, err
	}

	assignee, err := participantRef(db, res, "assignee_id", in.AssigneeID, ve)
	if err != nil {
		return nil, err
	}
	reviewer, err := participantRef(db, res, "reviewer_id", in.ReviewerID, ve)
	if err != nil {
		return nil, err
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	task := models.Task{
		BoardID:     board.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      models.TaskStatus(in.Status),
		Priority:    models.TaskPriority(in.Priority),
		AssigneeID:  assignee,
		ReviewerID:  reviewer,
		CreatedByID: actor,
	}
	if in.DueDate != nil {
		d, _ := time.Parse(models.DateLayout, *in.DueDate)
		task.DueDate = &d
	}

	if err := db.Omit("Board", "Assignee", "Reviewer", "CreatedBy").Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.log.Info(ctx, "task created", "task_id", task.ID, "board_id", task.BoardID, "actor_id", actor)
	return s.view(db, task.ID)
}

// Get returns a task for a participant of its board.
func (s *TaskService) Get(ctx context.Context, actor, id uint) (*TaskView, error) {
	db := s.db.WithContext(ctx)

	task, err := loadTask(db, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(actor, access.TaskView, taskResource(task)); err != nil {
		return nil, err
	}
	views, err := taskViews(db, []models.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update applies a partial update. The board of a task never changes.
func (s *TaskService) Update(ctx context.Context, actor, id uint, in TaskPatchInput) (*TaskView, error) {
	db := s.db.WithContext(ctx)

	task, err := loadTask(db, id)
	if err != nil {
		return nil, err
	}
	res := taskResource(task)
	if err := access.Check(actor, access.TaskUpdate, res); err != nil {
		return nil, err
	}

	ve := &apperr.ValidationError{}
	if err := collect(ve, in); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.Title != nil {
		changes["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.Priority != nil {
		changes["priority"] = *in.Priority
	}
	if in.DueDate.Present {
		if !in.DueDate.Valid {
			changes["due_date"] = nil
		} else if d, err := time.Parse(models.DateLayout, in.DueDate.Value); err != nil {
			ve.Add("due_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		} else {
			changes["due_date"] = d
		}
	}
	if in.AssigneeID.Present {
		ref, err := participantRef(db, res, "assignee_id", in.AssigneeID.Ptr(), ve)
		if err != nil {
			return nil, err
		}
		changes["assignee_id"] = ref
	}
	if in.ReviewerID.Present {
		ref, err := participantRef(db, res, "reviewer_id", in.ReviewerID.Ptr(), ve)
		if err != nil {
			return nil, err
		}
		changes["reviewer_id"] = ref
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		if err := db.Model(&models.Task{ID: task.ID}).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
		s.log.Info(ctx, "task updated", "task_id", task.ID, "actor_id", actor, "fields", len(changes))
	}
	return s.view(db, task.ID)
}

// Delete removes a task and its comments. Only the task creator or the board
// owner may delete it.
func (s *TaskService) Delete(ctx context.Context, actor, id uint) error {
	db := s.db.WithContext(ctx)

	task, err := loadTask(db, id)
	if err != nil {
		return err
	}
	if err := access.Check(actor, access.TaskDelete, taskResource(task)); err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete task comments: %w", err)
		}
		if err := tx.Delete(&models.Task{}, id).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "task deleted", "task_id", id, "board_id", task.BoardID, "actor_id", actor)
	return nil
}

// AssignedTo returns every task assigned to actor, ordered by id.
func (s *TaskService) AssignedTo(ctx context.Context, actor uint) ([]TaskView, error) {
	return s.listBy(ctx, "assignee_id", actor)
}

// Reviewing returns every task actor reviews, ordered by id.
func (s *TaskService) Reviewing(ctx context.Context, actor uint) ([]TaskView, error) {
	return s.listBy(ctx, "reviewer_id", actor)
}

func (s *TaskService) listBy(ctx context.Context, column string, actor uint) ([]TaskView, error) {
	db := s.db.WithContext(ctx)

	var tasks []models.Task
	if err := db.Preload("Assignee").Preload("Reviewer").
		Where(column+" = ?", actor).
		Order("id").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks by %s: %w", column, err)
	}
	return taskViews(db, tasks)
}

func (s *TaskService) view(db *gorm.DB, id uint) (*TaskView, error) {
	task, err := loadTask(db, id)
	if err != nil {
		return nil, err
	}
	views, err := taskViews(db, []models.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// taskResource describes the ownership facts of a loaded task.
func taskResource(t *models.Task) access.Resource {
	res := boardResource(&t.Board)
	res.CreatorID = t.CreatedByID
	return res
}

// participantRef validates an optional assignee or reviewer id against the
// board described by res. Problems are recorded on ve under field.
func participantRef(db *gorm.DB, res access.Resource, field string, id *uint, ve *apperr.ValidationError) (*uint, error) {
	if id == nil {
		return nil, nil
	}
	users, err := findUsers(db, []uint{*id})
	if err != nil {
		return nil, err
	}
	if _, ok := users[*id]; !ok {
		ve.Add(field, msgUserMissing)
		return nil, nil
	}
	if !access.IsParticipant(*id, res) {
		ve.Add(field, msgNotParticipant)
		return nil, nil
	}
	ref := *id
	return &ref, nil
}

// taskViews renders tasks with their live comment counts. Assignee and
// Reviewer must be preloaded.
func taskViews(db *gorm.DB, tasks []models.Task) ([]TaskView, error) {
	ids := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	counts, err := commentCounts(db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := TaskView{
			ID:            t.ID,
			Board:         t.BoardID,
			Title:         t.Title,
			Description:   t.Description,
			Status:        t.Status,
			Priority:      t.Priority,
			Assignee:      models.PublicOrNil(t.Assignee),
			Reviewer:      models.PublicOrNil(t.Reviewer),
			CommentsCount: counts[t.ID],
		}
		if t.DueDate != nil {
			d := t.DueDate.UTC().Format(models.DateLayout)
			v.DueDate = &d
		}
		out = append(out, v)
	}
	return out, nil
}

// commentCounts returns the number of comments per task id.
func commentCounts(db *gorm.DB, taskIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}

	type row struct {
		TaskID uint
		Count  int64
	}
	var rows []row
	if err := db.Model(&models.Comment{}).
		Select("task_id, COUNT(*) as count").
		Where("task_id IN ?", taskIDs).
		Group("task_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	for _, r := range rows {
		out[r.TaskID] = r.Count
	}
	return out, nil
}
