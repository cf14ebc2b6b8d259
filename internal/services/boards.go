package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"kanmind-api/internal/access"
	"kanmind-api/internal/apperr"
	"kanmind-api/internal/logging"
	"kanmind-api/internal/models"

	"gorm.io/gorm"
)

// BoardInput is the payload of board create and update. A nil field is left
// unchanged on update; on create Title is required and nil Members means no
// members.
type BoardInput struct {
	Title   *string `json:"title" validate:"omitnil,notblank,max=200"`
	Members *[]uint `json:"members"`
}

// BoardCounters are the derived counts of a board, computed at read time.
type BoardCounters struct {
	MemberCount        int64 `json:"member_count"`
	TicketCount        int64 `json:"ticket_count"`
	TasksToDoCount     int64 `json:"tasks_to_do_count"`
	TasksHighPrioCount int64 `json:"tasks_high_prio_count"`
}

// BoardSummary is the list representation of a board.
type BoardSummary struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	BoardCounters
	OwnerID uint `json:"owner_id"`
}

// BoardDetail is the single-board representation.
type BoardDetail struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	OwnerID uint   `json:"owner_id"`
	BoardCounters
	Members []models.UserPublic `json:"members"`
	Tasks   []TaskView          `json:"tasks"`
}

// BoardService manages boards and their membership.
type BoardService struct {
	db  *gorm.DB
	log logging.Logger
}

// NewBoardService returns a BoardService.
func NewBoardService(db *gorm.DB, log logging.Logger) *BoardService {
	return &BoardService{db: db, log: log}
}

// List returns the boards actor owns or is a member of, ordered by id.
func (s *BoardService) List(ctx context.Context, actor uint) ([]BoardSummary, error) {
	db := s.db.WithContext(ctx)

	memberOf := db.Table("board_members").Select("board_id").Where("user_id = ?", actor)

	var boards []models.Board
	if err := db.Where("owner_id = ? OR id IN (?)", actor, memberOf).Order("id").Find(&boards).Error; err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	ids := make([]uint, 0, len(boards))
	for _, b := range boards {
		ids = append(ids, b.ID)
	}
	counters, err := boardCounters(db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]BoardSummary, 0, len(boards))
	for _, b := range boards {
		out = append(out, BoardSummary{ID: b.ID, Title: b.Title, OwnerID: b.OwnerID, BoardCounters: counters[b.ID]})
	}
	return out, nil
}

// Create makes actor the owner of a new board. The owner is not added to
// the members.
func (s *BoardService) Create(ctx context.Context, actor uint, in BoardInput) (*BoardSummary, error) {
	if err := access.Check(actor, access.BoardCreate, access.Resource{}); err != nil {
		return nil, err
	}

	ve := &apperr.ValidationError{}
	if in.Title == nil {
		ve.Add("title", "This field is required.")
	}
	if err := collect(ve, in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var members []models.User
	if in.Members != nil {
		var err error
		members, err = resolveMembers(db, *in.Members, ve)
		if err != nil {
			return nil, err
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	board := models.Board{Title: strings.TrimSpace(*in.Title), OwnerID: actor}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Owner", "Members").Create(&board).Error; err != nil {
			return fmt.Errorf("create board: %w", err)
		}
		if len(members) > 0 {
			if err := tx.Model(&board).Association("Members").Append(members); err != nil {
				return fmt.Errorf("set board members: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	counters, err := boardCounters(db, []uint{board.ID})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "board created", "board_id", board.ID, "owner_id", actor, "members", len(members))
	return &BoardSummary{ID: board.ID, Title: board.Title, OwnerID: board.OwnerID, BoardCounters: counters[board.ID]}, nil
}

// Get returns the board detail for a participant.
func (s *BoardService) Get(ctx context.Context, actor, id uint) (*BoardDetail, error) {
	db := s.db.WithContext(ctx)

	board, err := loadBoard(db, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(actor, access.BoardView, boardResource(board)); err != nil {
		return nil, err
	}
	return boardDetail(db, board)
}

// Update changes the title and, when Members is given, replaces the whole
// membership.
func (s *BoardService) Update(ctx context.Context, actor, id uint, in BoardInput) (*BoardDetail, error) {
	db := s.db.WithContext(ctx)

	board, err := loadBoard(db, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(actor, access.BoardUpdate, boardResource(board)); err != nil {
		return nil, err
	}

	ve := &apperr.ValidationError{}
	if err := collect(ve, in); err != nil {
		return nil, err
	}
	var members []models.User
	if in.Members != nil {
		members, err = resolveMembers(db, *in.Members, ve)
		if err != nil {
			return nil, err
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if in.Title != nil {
			board.Title = strings.TrimSpace(*in.Title)
			if err := tx.Model(board).Update("title", board.Title).Error; err != nil {
				return fmt.Errorf("update board: %w", err)
			}
		}
		if in.Members != nil {
			assoc := tx.Model(board).Association("Members")
			if len(members) == 0 {
				if err := assoc.Clear(); err != nil {
					return fmt.Errorf("clear board members: %w", err)
				}
			} else if err := assoc.Replace(members); err != nil {
				return fmt.Errorf("replace board members: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "board updated", "board_id", board.ID, "actor_id", actor, "members_replaced", in.Members != nil)

	board, err = loadBoard(db, id)
	if err != nil {
		return nil, err
	}
	return boardDetail(db, board)
}

// Delete removes a board with its tasks, their comments and the membership
// rows. Only the owner may delete a board.
func (s *BoardService) Delete(ctx context.Context, actor, id uint) error {
	db := s.db.WithContext(ctx)

	board, err := loadBoard(db, id)
	if err != nil {
		return err
	}
	if err := access.Check(actor, access.BoardDelete, boardResource(board)); err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("board_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete board comments: %w", err)
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("delete board tasks: %w", err)
		}
		if err := tx.Model(board).Association("Members").Clear(); err != nil {
			return fmt.Errorf("delete board members: %w", err)
		}
		if err := tx.Delete(&models.Board{}, id).Error; err != nil {
			return fmt.Errorf("delete board: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "board deleted", "board_id", id, "owner_id", actor)
	return nil
}

// resolveMembers deduplicates ids and loads the users, recording unknown ids
// on ve under "members".
func resolveMembers(db *gorm.DB, ids []uint, ve *apperr.ValidationError) ([]models.User, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := findUsers(db, unique)
	if err != nil {
		return nil, err
	}

	var missing []string
	users := make([]models.User, 0, len(unique))
	for _, id := range unique {
		u, ok := found[id]
		if !ok {
			missing = append(missing, fmt.Sprint(id))
			continue
		}
		users = append(users, u)
	}
	if len(missing) > 0 {
		ve.Add("members", fmt.Sprintf("Invalid user ids: [%s]", strings.Join(missing, ", ")))
	}
	return users, nil
}

// boardDetail assembles the detail view of a loaded board.
func boardDetail(db *gorm.DB, board *models.Board) (*BoardDetail, error) {
	counters, err := boardCounters(db, []uint{board.ID})
	if err != nil {
		return nil, err
	}

	members := make([]models.UserPublic, 0, len(board.Members))
	for _, m := range board.Members {
		members = append(members, m.Public())
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	var tasks []models.Task
	if err := db.Preload("Assignee").Preload("Reviewer").Where("board_id = ?", board.ID).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("load board tasks: %w", err)
	}
	views, err := taskViews(db, tasks)
	if err != nil {
		return nil, err
	}

	return &BoardDetail{
		ID:            board.ID,
		Title:         board.Title,
		OwnerID:       board.OwnerID,
		BoardCounters: counters[board.ID],
		Members:       members,
		Tasks:         views,
	}, nil
}

// boardCounters computes the derived counts of the given boards with two
// grouped aggregate queries. Boards without tasks or members get zeros.
func boardCounters(db *gorm.DB, boardIDs []uint) (map[uint]BoardCounters, error) {
	out := make(map[uint]BoardCounters, len(boardIDs))
	if len(boardIDs) == 0 {
		return out, nil
	}

	type taskRow struct {
		BoardID       uint
		TicketCount   int64
		ToDoCount     int64
		HighPrioCount int64
	}
	var taskRows []taskRow
	if err := db.Model(&models.Task{}).
		Select("board_id, COUNT(*) AS ticket_count, "+
			"COUNT(CASE WHEN status = ? THEN 1 END) AS to_do_count, "+
			"COUNT(CASE WHEN priority = ? THEN 1 END) AS high_prio_count",
			models.StatusToDo, models.PriorityHigh).
		Where("board_id IN ?", boardIDs).
		Group("board_id").
		Scan(&taskRows).Error; err != nil {
		return nil, fmt.Errorf("count board tasks: %w", err)
	}

	type memberRow struct {
		BoardID     uint
		MemberCount int64
	}
	var memberRows []memberRow
	if err := db.Table("board_members").
		Select("board_id, COUNT(*) AS member_count").
		Where("board_id IN ?", boardIDs).
		Group("board_id").
		Scan(&memberRows).Error; err != nil {
		return nil, fmt.Errorf("count board members: %w", err)
	}

	for _, r := range taskRows {
		c := out[r.BoardID]
		c.TicketCount = r.TicketCount
		c.TasksToDoCount = r.ToDoCount
		c.TasksHighPrioCount = r.HighPrioCount
		out[r.BoardID] = c
	}
	for _, r := range memberRows {
		c := out[r.BoardID]
		c.MemberCount = r.MemberCount
		out[r.BoardID] = c
	}
	return out, nil
}
