package repository

import (
	"errors"
	"strings"
	"time"

	"go-chat-server/internal/model"
	"go-chat-server/pkg/db"
	"go-chat-server/pkg/pagination"

	"gorm.io/gorm"
)

// UserRepository handles user persistence. Soft-deleted rows are
// excluded by gorm's default delete scope on every query here.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository() *UserRepository {
	return &UserRepository{db: db.DB}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) Save(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByTelegramID(telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// SearchByUsername returns users whose username contains the search
// term (case-insensitive), paged. An empty term matches everyone.
func (r *UserRepository) SearchByUsername(search string, p pagination.Pageable) ([]model.User, int64, error) {
	query := r.db.Model(&model.User{})
	if search != "" {
		query = query.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := query.Order("username ASC").
		Limit(p.Size).
		Offset(p.Offset()).
		Find(&users).Error
	return users, total, err
}

// UpdateStatus flips presence and, when going offline, stamps lastSeen.
func (r *UserRepository) UpdateStatus(userID uint, status model.UserStatus, lastSeen *time.Time) error {
	updates := map[string]any{"status": status}
	if lastSeen != nil {
		updates["last_seen"] = lastSeen
	}
	return r.db.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}

// Trash soft-deletes the user.
func (r *UserRepository) Trash(id uint) error {
	return r.db.Delete(&model.User{}, id).Error
}
