package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hugh/flowboard/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnverifiedUser     = errors.New("email address is not verified")
	ErrAlreadyVerified    = errors.New("account already verified")
)

type Service struct {
	db           *gorm.DB
	jwt          *JWTService
	verification *VerificationTokenService
}

func NewService(db *gorm.DB, jwt *JWTService, verification *VerificationTokenService) *Service {
	return &Service{db: db, jwt: jwt, verification: verification}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates an unverified user and returns the verification token the
// caller should deliver by email.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("username = ?", input.Username).First(&existing).Error; err == nil {
		return nil, "", ErrUsernameTaken
	}
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.verification.Generate(input.Email)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		Username:          input.Username,
		Email:             input.Email,
		PasswordHash:      hash,
		IsVerified:        false,
		VerificationToken: token,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// Login authenticates a verified user by username and password.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("username = ?", input.Username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, ErrUnverifiedUser
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  &user,
	}, nil
}

// VerifyEmail confirms a verification token, flips the verified flag exactly
// once and clears the stored token.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	email, err := s.verification.Confirm(token)
	if err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	return s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"is_verified":        true,
		"verification_token": "",
	}).Error
}

// ResendVerification issues a fresh token for an unverified account. Callers
// are expected to mask ErrUserNotFound and ErrAlreadyVerified behind a
// success-shaped message so registered addresses cannot be probed.
func (s *Service) ResendVerification(ctx context.Context, email string) (*models.User, string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}

	if user.IsVerified {
		return nil, "", ErrAlreadyVerified
	}

	token, err := s.verification.Generate(email)
	if err != nil {
		return nil, "", err
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("verification_token", token).Error; err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
