package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kanmind-api/internal/apperr"
	"kanmind-api/internal/auth"
	"kanmind-api/internal/logging"
	"kanmind-api/internal/models"

	"gorm.io/gorm"
)

const msgEmailExists = "Email already exists."

// RegisterInput is the registration payload.
type RegisterInput struct {
	Fullname         string `json:"fullname" validate:"notblank,max=150"`
	Email            string `json:"email" validate:"required,email,max=254"`
	Password         string `json:"password" validate:"required,min=8"`
	RepeatedPassword string `json:"repeated_password" validate:"required,min=8"`
}

// Session is an authenticated user together with their API token.
type Session struct {
	User  *models.User
	Token string
}

// IdentityService registers and authenticates users.
type IdentityService struct {
	db         *gorm.DB
	tokens     *auth.TokenService
	log        logging.Logger
	bcryptCost int
}

// NewIdentityService returns an IdentityService.
func NewIdentityService(db *gorm.DB, tokens *auth.TokenService, log logging.Logger, bcryptCost int) *IdentityService {
	return &IdentityService{db: db, tokens: tokens, log: log, bcryptCost: bcryptCost}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an active user and issues their token in one transaction.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	user, err := s.prepareUser(ctx, in)
	if err != nil {
		return nil, err
	}

	var token string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, user); err != nil {
			return err
		}
		token, err = s.tokens.WithDB(tx).IssueFor(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// CreateStaff creates an active staff user without issuing a token.
func (s *IdentityService) CreateStaff(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := s.prepareUser(ctx, in)
	if err != nil {
		return nil, err
	}
	user.IsStaff = true
	if err := createUser(s.db.WithContext(ctx), user); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "staff user created", "user_id", user.ID)
	return user, nil
}

// prepareUser validates in and returns the unsaved user with a hashed
// password.
func (s *IdentityService) prepareUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Fullname = strings.TrimSpace(in.Fullname)

	ve := &apperr.ValidationError{}
	if err := collect(ve, in); err != nil {
		return nil, err
	}

	if in.Password != "" && in.RepeatedPassword != "" && in.Password != in.RepeatedPassword {
		ve.Add("repeated_password", "Passwords do not match.")
	}

	if _, bad := ve.Fields["email"]; !bad {
		exists, err := s.emailExists(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			ve.Add("email", msgEmailExists)
		}
	}

	if in.Password != "" {
		for _, msg := range auth.ValidatePassword(in.Password, in.Email, in.Fullname) {
			if msg == auth.MsgPasswordTooShort && len(ve.Fields["password"]) > 0 {
				continue
			}
			ve.Add("password", msg)
		}
	}

	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &models.User{
		Email:    in.Email,
		Fullname: in.Fullname,
		Password: hash,
		IsActive: true,
	}, nil
}

func createUser(db *gorm.DB, user *models.User) error {
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.NewValidation("email", msgEmailExists)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *IdentityService) emailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

// Authenticate returns the active user matching email and password. Unknown
// emails, wrong passwords and inactive accounts all fail with
// apperr.ErrInvalidCredentials.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		auth.CheckDummyPassword(password)
		s.log.Warn(ctx, "login failed", "reason", "unknown email")
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		s.log.Warn(ctx, "login failed", "reason", "wrong password", "user_id", user.ID)
		return nil, apperr.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.log.Warn(ctx, "login failed", "reason", "inactive", "user_id", user.ID)
		return nil, apperr.ErrInvalidCredentials
	}
	return &user, nil
}

// Login authenticates the user and returns their token.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.IssueFor(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

// Logout revokes the token of userID.
func (s *IdentityService) Logout(ctx context.Context, userID uint) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return err
	}
	s.log.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// LookupByEmail returns the user registered under email.
func (s *IdentityService) LookupByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}
