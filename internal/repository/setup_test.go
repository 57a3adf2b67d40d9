package repository

import (
	"fmt"
	"testing"

	"go-chat-server/internal/model"
	"go-chat-server/pkg/config"
	"go-chat-server/pkg/db"
	"go-chat-server/pkg/pagination"

	"gorm.io/gorm"
)

func testPageable() pagination.Pageable {
	return pagination.Pageable{Page: 0, Size: pagination.DefaultSize}
}

func setupTestDB(t *testing.T) {
	if err := config.InitTest(); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	if err := db.InitDB(); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	cleanupTables(t)
}

func cleanupTables(t *testing.T) {
	models := []any{
		&model.MessageStatus{},
		&model.Message{},
		&model.ChatMember{},
		&model.Chat{},
		&model.FileAsset{},
		&model.User{},
	}
	for _, m := range models {
		if err := db.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
			t.Logf("Failed to cleanup table for %T: %v", m, err)
		}
	}
}

func createTestUser(t *testing.T, username string) *model.User {
	userRepo := NewUserRepository()
	user := &model.User{
		FirstName:  username,
		TelegramID: int64(100000 + len(username)),
		Username:   username,
	}
	if err := userRepo.Create(user); err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

func createTestUsers(t *testing.T, n int) []*model.User {
	users := make([]*model.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, createTestUser(t, fmt.Sprintf("testuser%d", i+1)))
	}
	return users
}
