package testutil

import (
	"testing"

	"kanmind-api/internal/auth"
	"kanmind-api/internal/database"
	"kanmind-api/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewInMemoryDB creates an in-memory SQLite DB with foreign keys enforced and
// runs migrations.
func NewInMemoryDB() (*gorm.DB, error) {
	return database.OpenSQLite(":memory:", &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
}

// MustDB is NewInMemoryDB for tests; the connection is closed on cleanup.
func MustDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := NewInMemoryDB()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// Password is the plain-text password of every seeded user.
const Password = "correct-horse-battery"

var passwordHash string

func init() {
	h, err := auth.HashPassword(Password, bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	passwordHash = h
}

// SeedUser inserts an active user with Password.
func SeedUser(t testing.TB, db *gorm.DB, email, fullname string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Fullname: fullname, Password: passwordHash, IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

// SeedBoard inserts a board owned by owner with the given members.
func SeedBoard(t testing.TB, db *gorm.DB, title string, owner *models.User, members ...*models.User) *models.Board {
	t.Helper()
	b := &models.Board{Title: title, OwnerID: owner.ID}
	if err := db.Omit("Owner", "Members").Create(b).Error; err != nil {
		t.Fatalf("seed board %s: %v", title, err)
	}
	if len(members) > 0 {
		users := make([]models.User, 0, len(members))
		for _, m := range members {
			users = append(users, *m)
		}
		if err := db.Model(b).Association("Members").Append(users); err != nil {
			t.Fatalf("seed board members: %v", err)
		}
	}
	return b
}

// SeedTask inserts a task on board created by creator.
func SeedTask(t testing.TB, db *gorm.DB, board *models.Board, creator *models.User, title string, status models.TaskStatus, priority models.TaskPriority) *models.Task {
	t.Helper()
	task := &models.Task{
		BoardID:     board.ID,
		Title:       title,
		Status:      status,
		Priority:    priority,
		CreatedByID: creator.ID,
	}
	if err := db.Omit("Board", "Assignee", "Reviewer", "CreatedBy").Create(task).Error; err != nil {
		t.Fatalf("seed task %s: %v", title, err)
	}
	return task
}

// SeedComment inserts a comment on task written by author.
func SeedComment(t testing.TB, db *gorm.DB, task *models.Task, author *models.User, content string) *models.Comment {
	t.Helper()
	c := &models.Comment{TaskID: task.ID, AuthorID: author.ID, Content: content}
	if err := db.Omit("Task", "Author").Create(c).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return c
}
