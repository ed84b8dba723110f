package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// Config returns a TEST configuration that does not depend on the environment.
func Config() *core.Config {
	return &core.Config{
		AppName:          "Darasa",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "test-secret",
		DefaultFromEmail: "noreply@darasa.test",
		Storage:          core.StorageMemory,
		Server: core.ServerConfig{
			Address:            ":0",
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: 7 * 24 * time.Hour,
		},
		Security: core.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
}

func CreateUser(t *testing.T, repo user.Repository, email, pwd string, role user.Role, createdAt ...time.Time) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
	}
	if err := usr.SetPassword(pwd, bcrypt.MinCost); err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// MailRecorder is a synchronous core.EmailService keeping every message it is handed.
type MailRecorder struct {
	mu       sync.Mutex
	messages []core.EmailMessage
}

var _ core.EmailService = (*MailRecorder)(nil)

func (r *MailRecorder) SendMessages(messages ...*core.EmailMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range messages {
		r.messages = append(r.messages, *msg)
	}
}

func (r *MailRecorder) Messages() []core.EmailMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := make([]core.EmailMessage, len(r.messages))
	copy(msgs, r.messages)
	return msgs
}
