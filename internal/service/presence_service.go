package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go-chat-server/internal/model"
	"go-chat-server/internal/repository"
	"go-chat-server/pkg/cache"
	"go-chat-server/pkg/logger"

	"go.uber.org/zap"
)

// PresenceService maps connection lifecycle to ONLINE/OFFLINE state.
// It keeps a count of open connections per user: the first connection
// flips the user ONLINE, the last disconnect flips them OFFLINE and
// stamps lastSeen. The database row is the source of truth; when redis
// is configured, reads are served from a TTL'd mirror first.
type PresenceService struct {
	userRepo *repository.UserRepository
	cache    *cache.RedisCache
	ttl      time.Duration

	mu    sync.Mutex
	conns map[uint]int
}

type presenceEntry struct {
	Status   model.UserStatus `json:"status"`
	LastSeen *time.Time       `json:"last_seen,omitempty"`
}

func NewPresenceService(userRepo *repository.UserRepository, redisCache *cache.RedisCache, ttl time.Duration) *PresenceService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceService{
		userRepo: userRepo,
		cache:    redisCache,
		ttl:      ttl,
		conns:    make(map[uint]int),
	}
}

// HandleUserConnected implements interfaces.ConnectionEventHandler.
func (s *PresenceService) HandleUserConnected(userID uint) {
	s.mu.Lock()
	s.conns[userID]++
	first := s.conns[userID] == 1
	s.mu.Unlock()

	if !first {
		return
	}
	if err := s.userRepo.UpdateStatus(userID, model.StatusOnline, nil); err != nil {
		logger.L.Error("Failed to persist ONLINE status", zap.Uint("userID", userID), zap.Error(err))
		return
	}
	s.mirror(userID, presenceEntry{Status: model.StatusOnline})
	logger.L.Info("User online", zap.Uint("userID", userID))
}

// HandleUserDisconnected implements interfaces.ConnectionEventHandler.
func (s *PresenceService) HandleUserDisconnected(userID uint) {
	s.mu.Lock()
	s.conns[userID]--
	last := s.conns[userID] <= 0
	if last {
		delete(s.conns, userID)
	}
	s.mu.Unlock()

	if !last {
		return
	}
	now := time.Now()
	if err := s.userRepo.UpdateStatus(userID, model.StatusOffline, &now); err != nil {
		logger.L.Error("Failed to persist OFFLINE status", zap.Uint("userID", userID), zap.Error(err))
		return
	}
	s.mirror(userID, presenceEntry{Status: model.StatusOffline, LastSeen: &now})
	logger.L.Info("User offline", zap.Uint("userID", userID), zap.Time("lastSeen", now))
}

// Status returns the user's presence, preferring the redis mirror.
func (s *PresenceService) Status(userID uint) (model.UserStatus, *time.Time, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(context.Background(), presenceKey(userID)); err == nil {
			var entry presenceEntry
			if err := json.Unmarshal([]byte(raw), &entry); err == nil {
				return entry.Status, entry.LastSeen, nil
			}
		}
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return model.StatusOffline, nil, nil
	}
	return user.Status, user.LastSeen, nil
}

func (s *PresenceService) mirror(userID uint, entry presenceEntry) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := s.cache.Set(context.Background(), presenceKey(userID), raw, s.ttl); err != nil {
		logger.L.Warn("Failed to mirror presence to redis", zap.Uint("userID", userID), zap.Error(err))
	}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("presence:%d", userID)
}
