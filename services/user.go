package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/security"
	"github.com/openbill/openbill/utils"
)

// UserStore is the persistence surface the user service needs. *stores.UserStore
// satisfies it; tests use an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	GetStats(ctx context.Context, userID uint) (*models.UserStats, error)
	UpdateStats(ctx context.Context, stats *models.UserStats) error
}

type UserService struct {
	userStore     UserStore
	jwtManager    *security.JWTManager
	tokenDuration time.Duration
	log           zerolog.Logger
}

func CreateUserService(userStore UserStore, jwtManager *security.JWTManager, tokenDuration time.Duration) *UserService {
	return &UserService{
		userStore:     userStore,
		jwtManager:    jwtManager,
		tokenDuration: tokenDuration,
		log:           utils.WithComponent("user_service"),
	}
}

// Register creates an account keyed by phone number. The username is derived
// from the full name, never chosen by the caller.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	if req.FullName == "" || req.PhoneNumber == "" || req.Password == "" {
		return nil, utils.NewAPIErrorWithDetails(400, "Invalid request", "full_name, phone_number and password are required")
	}

	if _, err := s.userStore.GetByPhone(ctx, req.PhoneNumber); err == nil {
		return nil, utils.ErrPhoneRegistered
	} else if !errors.Is(err, utils.ErrUserNotFound) {
		return nil, err
	}

	username, err := uniqueUsername(ctx, s.userStore, req.FullName)
	if err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, utils.WrapError(err, "hashing password")
	}

	user := &models.User{
		Username:    username,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Password:    hash,
	}
	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Msg("user registered")

	return &models.UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		FullName:    user.FullName,
		PhoneNumber: user.PhoneNumber,
	}, nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userStore.GetByPhone(ctx, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, utils.ErrUserNotFound) {
			return nil, utils.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Disabled || !security.VerifyPassword(user.Password, req.Password) {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.PhoneNumber, s.tokenDuration)
	if err != nil {
		return nil, utils.WrapError(err, "generating token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Username:    user.Username,
		PhoneNumber: user.PhoneNumber,
	}, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.UserResponse, error) {
	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &models.UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		FullName:    user.FullName,
		PhoneNumber: user.PhoneNumber,
	}, nil
}

func (s *UserService) GetStats(ctx context.Context, username string) (*models.UserStats, error) {
	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.userStore.GetStats(ctx, user.ID)
}

// uniqueUsername slugifies the full name and appends a numeric suffix until
// the result is free.
func uniqueUsername(ctx context.Context, store UserStore, fullName string) (string, error) {
	base := utils.SlugifyName(fullName)
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 1; ; i++ {
		taken, err := store.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}
