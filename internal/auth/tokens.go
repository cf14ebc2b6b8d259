package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kanmind-api/internal/apperr"
	"kanmind-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenService issues, resolves and revokes the single API token of a user.
type TokenService struct {
	db     *gorm.DB
	signer *Signer
	now    func() time.Time
}

// NewTokenService returns a TokenService backed by the auth_tokens table.
func NewTokenService(db *gorm.DB, signer *Signer) *TokenService {
	return &TokenService{db: db, signer: signer, now: time.Now}
}

// IssueFor returns the active token of user, creating it on first use. Repeated
// calls return the same token until it is revoked or expires.
func (s *TokenService) IssueFor(ctx context.Context, user *models.User) (string, error) {
	db := s.db.WithContext(ctx)

	var row models.AuthToken
	err := db.Where("user_id = ?", user.ID).First(&row).Error
	switch {
	case err == nil:
		if !s.signer.Expired(row.CreatedAt, s.now()) {
			return s.signer.Sign(row.UserID, row.TokenID, row.CreatedAt)
		}
		if err := db.Delete(&row).Error; err != nil {
			return "", fmt.Errorf("delete expired token: %w", err)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", fmt.Errorf("load token: %w", err)
	}

	row = models.AuthToken{
		UserID:    user.ID,
		TokenID:   uuid.NewString(),
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	if err := db.Create(&row).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", fmt.Errorf("create token: %w", err)
		}
		// A concurrent login created the row first.
		if err := db.Where("user_id = ?", user.ID).First(&row).Error; err != nil {
			return "", fmt.Errorf("load token: %w", err)
		}
	}
	return s.signer.Sign(row.UserID, row.TokenID, row.CreatedAt)
}

// Resolve returns the active user a token belongs to. Every failure is
// reported as apperr.ErrInvalidToken.
func (s *TokenService) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidToken, err)
	}

	db := s.db.WithContext(ctx)

	var row models.AuthToken
	if err := db.Where("user_id = ?", claims.UserID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, fmt.Errorf("load token: %w", err)
	}
	if row.TokenID != claims.ID {
		return nil, apperr.ErrInvalidToken
	}

	var user models.User
	if err := db.First(&user, row.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, apperr.ErrInvalidToken
	}
	return &user, nil
}

// Revoke deletes the token of userID. Revoking a user without a token is not
// an error.
func (s *TokenService) Revoke(ctx context.Context, userID uint) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error; err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// WithDB returns a copy of s bound to db, typically a transaction.
func (s *TokenService) WithDB(db *gorm.DB) *TokenService {
	cp := *s
	cp.db = db
	return &cp
}
