package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go-chat-server/internal/event"
	"go-chat-server/internal/interfaces"
	"go-chat-server/internal/model"
	"go-chat-server/internal/repository"
	"go-chat-server/pkg/config"
	"go-chat-server/pkg/db"
	"go-chat-server/pkg/logger"
	"go-chat-server/pkg/pagination"
	"go-chat-server/pkg/storage"

	"gorm.io/gorm"
)

// fakeHub records everything published so tests can assert fan-out
// without real sockets. Users listed in connected receive pushes,
// everyone else behaves like a disconnected client.
type fakeHub struct {
	mu          sync.Mutex
	connected   map[uint]bool
	topics      map[string]map[uint]struct{}
	topicEvents map[string][]*event.Envelope
	userEvents  map[uint][]*event.Envelope
	handler     interfaces.ConnectionEventHandler
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		connected:   make(map[uint]bool),
		topics:      make(map[string]map[uint]struct{}),
		topicEvents: make(map[string][]*event.Envelope),
		userEvents:  make(map[uint][]*event.Envelope),
	}
}

func (f *fakeHub) connect(userIDs ...uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range userIDs {
		f.connected[id] = true
	}
}

func (f *fakeHub) Register(client interfaces.Client) {
	f.connect(client.GetUserID())
}

func (f *fakeHub) Unregister(client interfaces.Client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.connected, client.GetUserID())
}

func (f *fakeHub) Subscribe(topic string, userID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs, ok := f.topics[topic]
	if !ok {
		subs = make(map[uint]struct{})
		f.topics[topic] = subs
	}
	subs[userID] = struct{}{}
}

func (f *fakeHub) Unsubscribe(topic string, userID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if subs, ok := f.topics[topic]; ok {
		delete(subs, userID)
	}
}

func (f *fakeHub) PublishTopic(topic string, e *event.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topicEvents[topic] = append(f.topicEvents[topic], e)
	return nil
}

func (f *fakeHub) PublishUser(userID uint, e *event.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected[userID] {
		return errors.New("user not connected")
	}
	f.userEvents[userID] = append(f.userEvents[userID], e)
	return nil
}

func (f *fakeHub) IsClientConnected(userID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected[userID]
}

func (f *fakeHub) SetEventHandler(handler interfaces.ConnectionEventHandler) {
	f.handler = handler
}

func (f *fakeHub) subscribed(topic string, userID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs, ok := f.topics[topic]
	if !ok {
		return false
	}
	_, ok = subs[userID]
	return ok
}

func (f *fakeHub) userEventsOf(userID uint, t event.Type) []*event.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*event.Envelope
	for _, e := range f.userEvents[userID] {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeHub) topicEventsOf(topic string, t event.Type) []*event.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*event.Envelope
	for _, e := range f.topicEvents[topic] {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func decodePayload[T any](t *testing.T, e *event.Envelope) T {
	var payload T
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		t.Fatalf("Failed to decode %s payload: %v", e.Type, err)
	}
	return payload
}

// testEnv wires the full service stack against the in-memory database
// and a fake hub.
type testEnv struct {
	hub      *fakeHub
	presence *PresenceService
	files    *FileService
	users    *UserService
	chats    *ChatService
	messages *MessageService

	userRepo   *repository.UserRepository
	statusRepo *repository.MessageStatusRepository
}

func setupTestEnv(t *testing.T) *testEnv {
	if err := config.InitTest(); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}
	if err := logger.InitLogger("error", false); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if err := db.InitDB(); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	cleanupTables(t)

	userRepo := repository.NewUserRepository()
	chatRepo := repository.NewChatRepository()
	memberRepo := repository.NewChatMemberRepository()
	msgRepo := repository.NewMessageRepository()
	statusRepo := repository.NewMessageStatusRepository()
	fileRepo := repository.NewFileRepository()

	store, err := storage.NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create disk storage: %v", err)
	}

	hub := newFakeHub()
	presence := NewPresenceService(userRepo, nil, 0)
	files := NewFileService(fileRepo, store)
	users := NewUserService(userRepo, files, presence)
	chats := NewChatService(chatRepo, memberRepo, userRepo, msgRepo, statusRepo, presence, hub)
	messages := NewMessageService(msgRepo, statusRepo, memberRepo, userRepo, files, chats, hub)

	return &testEnv{
		hub:        hub,
		presence:   presence,
		files:      files,
		users:      users,
		chats:      chats,
		messages:   messages,
		userRepo:   userRepo,
		statusRepo: statusRepo,
	}
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

func (env *testEnv) createUser(t *testing.T, username string) *model.User {
	user := &model.User{
		FirstName:  username,
		TelegramID: int64(200000 + len(username)),
		Username:   username,
	}
	if err := env.userRepo.Create(user); err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

func (env *testEnv) createUsers(t *testing.T, n int) []*model.User {
	users := make([]*model.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, env.createUser(t, fmt.Sprintf("svcuser%d", i+1)))
	}
	return users
}

func (env *testEnv) createGroup(t *testing.T, owner *model.User, members ...*model.User) *model.Chat {
	memberIDs := make([]uint, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}
	summary, err := env.chats.CreateGroupChat(owner.ID, &CreateGroupRequest{
		Name:      "test group",
		MemberIDs: memberIDs,
	})
	if err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}
	return &model.Chat{
		ID:        summary.ID,
		ChatType:  summary.ChatType,
		GroupName: summary.GroupName,
	}
}

func testPage() pagination.Pageable {
	return pagination.Pageable{Page: 0, Size: pagination.DefaultSize}
}
