package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubStore struct {
	values map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}}
}

func (s *stubStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	str, _ := value.(string)
	s.values[key] = str
	return nil
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	val, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return val, nil
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

type stubKeyer struct{}

func (stubKeyer) AccessSessionKey(accessID string) string {
	return "test:session:access:" + accessID
}

func newTestManager() (*Manager, *stubStore) {
	store := newStubStore()
	return &Manager{store: store, keyer: stubKeyer{}, ttl: time.Hour}, store
}

func TestCreateHasRevokeLifecycle(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager()

	accessID := NewAccessID()
	if err := manager.Create(ctx, accessID); err != nil {
		t.Fatalf("create session: %v", err)
	}

	ok, err := manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !ok {
		t.Fatal("expected session to exist after create")
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke session: %v", err)
	}

	ok, err = manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session after revoke: %v", err)
	}
	if ok {
		t.Fatal("expected session to be gone after revoke")
	}
}

func TestHasSessionMissingIDIsFalse(t *testing.T) {
	manager, _ := newTestManager()
	ok, err := manager.HasSession(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("blank access id should not resolve to a session")
	}
}

func TestCreateRequiresAccessID(t *testing.T) {
	manager, _ := newTestManager()
	if err := manager.Create(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty access id")
	}
}
