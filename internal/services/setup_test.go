package services

import (
	"testing"

	"kanmind-api/internal/auth"
	"kanmind-api/internal/logging"
	"kanmind-api/internal/models"
	"kanmind-api/internal/testutil"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      *Services
	owner    *models.User
	member   *models.User
	outsider *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.MustDB(t)
	tokens := auth.NewTokenService(db, auth.NewSigner("test-secret", "iss", "aud", 0))
	return &fixture{
		db:       db,
		svc:      New(db, tokens, logging.Discard(), bcrypt.MinCost),
		owner:    testutil.SeedUser(t, db, "owner@example.com", "Olivia Owner"),
		member:   testutil.SeedUser(t, db, "member@example.com", "Max Member"),
		outsider: testutil.SeedUser(t, db, "outsider@example.com", "Otto Outsider"),
	}
}

func ptr[T any](v T) *T { return &v }
