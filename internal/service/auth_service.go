package service

import (
	"fmt"

	"go-chat-server/internal/apperrors"
	"go-chat-server/internal/dto"
	"go-chat-server/internal/model"
	"go-chat-server/internal/repository"
	"go-chat-server/pkg/logger"
	"go-chat-server/pkg/utils"

	"go.uber.org/zap"
)

// AuthService bridges Telegram login to the module's own JWT sessions.
type AuthService struct {
	userRepo  *repository.UserRepository
	validator *utils.TelegramAuthValidator
}

func NewAuthService(userRepo *repository.UserRepository, validator *utils.TelegramAuthValidator) *AuthService {
	return &AuthService{userRepo: userRepo, validator: validator}
}

type LoginResult struct {
	User   dto.UserView    `json:"user"`
	Tokens utils.TokenPair `json:"tokens"`
}

// Login verifies the Telegram widget payload, creates the user on first
// login, and issues a token pair.
func (s *AuthService) Login(req *utils.TelegramLoginRequest) (*LoginResult, error) {
	if !s.validator.Validate(*req) {
		return nil, apperrors.InvalidTelegramData(req.Hash)
	}

	user, err := s.userRepo.FindByTelegramID(req.TelegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &model.User{
			FirstName:  req.FirstName,
			TelegramID: req.TelegramID,
			Username:   usernameFor(req),
			AvatarURL:  req.PhotoURL,
			AuthDate:   req.AuthDate,
			Status:     model.StatusOffline,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
		logger.L.Info("Registered user from Telegram login",
			zap.Uint("userID", user.ID),
			zap.Int64("telegramID", user.TelegramID))
	} else {
		// Refresh the mutable profile bits Telegram sends on each login.
		user.FirstName = req.FirstName
		if req.PhotoURL != "" {
			user.AvatarURL = req.PhotoURL
		}
		user.AuthDate = req.AuthDate
		if err := s.userRepo.Save(user); err != nil {
			return nil, err
		}
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: dto.ToUserView(user), Tokens: *tokens}, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(refreshToken string) (*utils.TokenPair, error) {
	claims, err := utils.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.InvalidToken()
	}
	return utils.GenerateTokenPair(user.ID, user.Username)
}

// Telegram does not guarantee a username; fall back to a stable synthetic
// one so the unique index holds.
func usernameFor(req *utils.TelegramLoginRequest) string {
	if req.Username != "" {
		return req.Username
	}
	return fmt.Sprintf("tg_%d", req.TelegramID)
}
