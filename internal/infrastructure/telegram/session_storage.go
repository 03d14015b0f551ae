package telegram

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gotd/td/session"

	checkererrors "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/errors"
)

// MemorySessionStorage implements session.Storage for one short-lived client.
// The session never touches the disk; it leaves the process only as an exported token.
type MemorySessionStorage struct {
	mu   sync.RWMutex
	data []byte
}

// LoadSession returns the stored session or session.ErrNotFound for a fresh one
func (s *MemorySessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return nil, session.ErrNotFound
	}
	return append([]byte(nil), s.data...), nil
}

// StoreSession replaces the stored session
func (s *MemorySessionStorage) StoreSession(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append([]byte(nil), data...)
	return nil
}

// Token encodes the stored session as an opaque string
func (s *MemorySessionStorage) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return "", fmt.Errorf("session is empty")
	}
	return base64.StdEncoding.EncodeToString(s.data), nil
}

// NewMemorySessionStorage creates storage seeded from token. An empty token gives a fresh session.
// Tokens exported by Token are accepted as well as Telethon string sessions.
func NewMemorySessionStorage(ctx context.Context, token string) (*MemorySessionStorage, error) {
	storage := &MemorySessionStorage{}

	token = strings.TrimSpace(token)
	if token == "" {
		return storage, nil
	}

	if raw, err := base64.StdEncoding.DecodeString(token); err == nil && json.Valid(raw) {
		storage.data = raw
		return storage, nil
	}

	data, err := session.TelethonSession(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", checkererrors.ErrInvalidSession, err)
	}

	loader := session.Loader{Storage: storage}
	if err := loader.Save(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to load telethon session: %w", err)
	}

	return storage, nil
}
