package stores

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/utils"
)

type UserStore struct {
	BaseStore
}

func CreateUserStore(db *gorm.DB) *UserStore {
	return &UserStore{BaseStore{db: db}}
}

// Create inserts the user together with a zeroed stats row.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return s.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.GetDB(txCtx).Create(user).Error; err != nil {
			return err
		}
		return s.GetDB(txCtx).Create(&models.UserStats{UserID: user.ID}).Error
	})
}

func (s *UserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.GetDB(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.GetDB(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	var user models.User
	if err := s.GetDB(ctx).First(&user, "phone_number = ?", phoneNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UsernameTaken reports whether any user already holds the username.
func (s *UserStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.GetDB(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *UserStore) GetStats(ctx context.Context, userID uint) (*models.UserStats, error) {
	var stats models.UserStats
	if err := s.GetDB(ctx).First(&stats, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrUserNotFound
		}
		return nil, err
	}
	return &stats, nil
}

func (s *UserStore) UpdateStats(ctx context.Context, stats *models.UserStats) error {
	return s.GetDB(ctx).Save(stats).Error
}
