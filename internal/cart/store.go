package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgredis "github.com/atlasmedina/medina-backend/pkg/redis"
)

// DefaultTTL keeps abandoned carts around long enough for a returning
// visitor while letting redis reclaim them eventually.
const DefaultTTL = 30 * 24 * time.Hour

// Entry is one cart line as persisted: a product reference and a quantity.
type Entry struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type cartBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Store persists cart entries in redis keyed by the client's cart token.
type Store struct {
	backend cartBackend
	ttl     time.Duration
}

// NewStore builds a redis-backed cart store.
func NewStore(backend cartBackend, ttl time.Duration) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("cart backend required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{backend: backend, ttl: ttl}, nil
}

// Load returns the stored entries for the token. A missing key or a payload
// that fails to parse both yield an empty cart; a corrupt cart must never
// block the storefront.
func (s *Store) Load(ctx context.Context, token string) ([]Entry, error) {
	if token == "" {
		return nil, fmt.Errorf("cart token required")
	}

	raw, err := s.backend.Get(ctx, pkgredis.CartKey(token))
	if err != nil {
		if pkgredis.IsNil(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("loading cart %s: %w", token, err)
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return []Entry{}, nil
	}

	valid := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ProductID == uuid.Nil || e.Quantity <= 0 {
			continue
		}
		valid = append(valid, e)
	}
	return valid, nil
}

// Save overwrites the stored entries for the token.
func (s *Store) Save(ctx context.Context, token string, entries []Entry) error {
	if token == "" {
		return fmt.Errorf("cart token required")
	}
	if entries == nil {
		entries = []Entry{}
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding cart %s: %w", token, err)
	}
	if err := s.backend.Set(ctx, pkgredis.CartKey(token), payload, s.ttl); err != nil {
		return fmt.Errorf("saving cart %s: %w", token, err)
	}
	return nil
}

// Clear removes the cart for the token.
func (s *Store) Clear(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("cart token required")
	}
	if err := s.backend.Del(ctx, pkgredis.CartKey(token)); err != nil {
		return fmt.Errorf("clearing cart %s: %w", token, err)
	}
	return nil
}
