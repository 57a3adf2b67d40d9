package service

import (
	"context"

	"go-chat-server/internal/apperrors"
	"go-chat-server/internal/dto"
	"go-chat-server/internal/model"
	"go-chat-server/internal/repository"
	"go-chat-server/pkg/pagination"
)

// UserService covers profile reads and mutations for the logged-in user.
type UserService struct {
	userRepo *repository.UserRepository
	files    *FileService
	presence *PresenceService
}

func NewUserService(userRepo *repository.UserRepository, files *FileService, presence *PresenceService) *UserService {
	return &UserService{userRepo: userRepo, files: files, presence: presence}
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
	Bio       string `json:"bio"`
}

func (s *UserService) Me(userID uint) (*dto.UserView, error) {
	user, err := s.mustFind(userID)
	if err != nil {
		return nil, err
	}
	view := dto.ToUserView(user)
	return &view, nil
}

func (s *UserService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*dto.UserView, error) {
	user, err := s.mustFind(userID)
	if err != nil {
		return nil, err
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if err := s.userRepo.Save(user); err != nil {
		return nil, err
	}
	view := dto.ToUserView(user)
	return &view, nil
}

// UpdateAvatar stores the picture and points the profile at it.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, filename string, data []byte) (*dto.UserView, error) {
	user, err := s.mustFind(userID)
	if err != nil {
		return nil, err
	}
	locator, err := s.files.StoreAvatar(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	user.AvatarURL = locator
	if err := s.userRepo.Save(user); err != nil {
		return nil, err
	}
	view := dto.ToUserView(user)
	return &view, nil
}

func (s *UserService) Delete(userID uint) error {
	user, err := s.mustFind(userID)
	if err != nil {
		return err
	}
	return s.userRepo.Trash(user.ID)
}

// Search pages users whose username contains the query, case-insensitive.
func (s *UserService) Search(query string, p pagination.Pageable) (*pagination.Page[dto.UserView], error) {
	users, total, err := s.userRepo.SearchByUsername(query, p)
	if err != nil {
		return nil, err
	}
	views := make([]dto.UserView, 0, len(users))
	for i := range users {
		views = append(views, dto.ToUserView(&users[i]))
	}
	page := pagination.NewPage(views, p, total)
	return &page, nil
}

// StatusOf reports another user's presence.
func (s *UserService) StatusOf(userID uint) (*dto.UserView, error) {
	user, err := s.mustFind(userID)
	if err != nil {
		return nil, err
	}
	status, lastSeen, err := s.presence.Status(user.ID)
	if err != nil {
		return nil, err
	}
	view := dto.ToUserView(user)
	view.Status = status
	view.LastSeen = lastSeen
	return &view, nil
}

func (s *UserService) FindByUsername(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.UsernameNotFound(username)
	}
	return user, nil
}

func (s *UserService) mustFind(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.UserNotFound(userID)
	}
	return user, nil
}
