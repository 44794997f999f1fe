package tokenstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/nkiryanov/triply/internal/localstore"
	"github.com/nkiryanov/triply/internal/models"
)

// Well known keys tokens are kept under
const (
	AccessKey  = "access_token"
	RefreshKey = "refresh_token"
)

// Store is the single place the client reads and writes tokens
type Store interface {
	// Return current tokens, any of them may be empty
	Get(ctx context.Context) (models.TokenPair, error)

	// Overwrite both tokens unconditionally
	Set(ctx context.Context, pair models.TokenPair) error

	// Overwrite access token only, refresh token stays as is
	SetAccess(ctx context.Context, access string) error

	// Remove both tokens
	// Clearing empty store is not an error
	Clear(ctx context.Context) error
}

// Memory keeps tokens in process memory
type Memory struct {
	mu   sync.RWMutex
	pair models.TokenPair
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context) (models.TokenPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair, nil
}

func (m *Memory) Set(_ context.Context, pair models.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = pair
	return nil
}

func (m *Memory) SetAccess(_ context.Context, access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair.Access = access
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = models.TokenPair{}
	return nil
}

// Local keeps tokens in local store under AccessKey and RefreshKey
type Local struct {
	store localstore.Store
}

func NewLocal(store localstore.Store) *Local {
	return &Local{store: store}
}

func (l *Local) Get(ctx context.Context) (models.TokenPair, error) {
	var pair models.TokenPair

	access, _, err := l.store.Get(ctx, AccessKey)
	if err != nil {
		return pair, fmt.Errorf("error while reading access token. Err: %w", err)
	}
	refresh, _, err := l.store.Get(ctx, RefreshKey)
	if err != nil {
		return pair, fmt.Errorf("error while reading refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (l *Local) Set(ctx context.Context, pair models.TokenPair) error {
	if err := l.store.Set(ctx, AccessKey, pair.Access); err != nil {
		return fmt.Errorf("error while saving access token. Err: %w", err)
	}
	if err := l.store.Set(ctx, RefreshKey, pair.Refresh); err != nil {
		return fmt.Errorf("error while saving refresh token. Err: %w", err)
	}
	return nil
}

func (l *Local) SetAccess(ctx context.Context, access string) error {
	if err := l.store.Set(ctx, AccessKey, access); err != nil {
		return fmt.Errorf("error while saving access token. Err: %w", err)
	}
	return nil
}

func (l *Local) Clear(ctx context.Context) error {
	if err := l.store.Delete(ctx, AccessKey, RefreshKey); err != nil {
		return fmt.Errorf("error while clearing tokens. Err: %w", err)
	}
	return nil
}
