package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/logger"
	"github.com/nkiryanov/triply/internal/tokenstore"
)

const (
	defaultRefreshTimeout = 10 * time.Second

	// All refreshes share one key: there is only one session per store
	refreshKey = "refresh"
)

// Exchange refresh token for a new access token at backend
type ExchangeFunc func(ctx context.Context, refresh string) (access string, err error)

// Called once the session could not be recovered
// Cause is the refresh error
type SessionEndedFunc func(ctx context.Context, cause error)

type RefresherConfig struct {
	// Time limit of single exchange
	// If not set than default is used
	Timeout time.Duration
}

// Refresher turns authorization failure into one refresh exchange
// Concurrent callers share single in-flight exchange
type Refresher struct {
	store    tokenstore.Store
	exchange ExchangeFunc
	timeout  time.Duration
	logger   logger.Logger

	group singleflight.Group

	mu    sync.RWMutex
	ended []SessionEndedFunc
}

func NewRefresher(cfg RefresherConfig, store tokenstore.Store, exchange ExchangeFunc, l logger.Logger) *Refresher {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultRefreshTimeout
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Refresher{
		store:    store,
		exchange: exchange,
		timeout:  cfg.Timeout,
		logger:   l.With("component", "refresher"),
	}
}

// OnSessionEnded registers fn to be called when refresh fails
func (r *Refresher) OnSessionEnded(fn SessionEndedFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, fn)
}

// Refresh returns access token to retry request that was rejected with 'stale' access token
//
// If the store already holds another access token (somebody refreshed it meanwhile) it is returned
// without new exchange. Otherwise refresh token is exchanged, concurrent calls wait for the same exchange.
// On failure tokens are cleared, session ended hooks are called and returned error
// wraps both apperrors.ErrSessionTerminated and the cause.
func (r *Refresher) Refresh(ctx context.Context, stale string) (string, error) {
	// Unreadable store is handled by the exchange below: it ends the session
	pair, err := r.store.Get(ctx)
	if err != nil {
		r.logger.Warn("Failed to read tokens before refresh", "error", err)
	}
	if err == nil && stale != "" && pair.Access != "" && pair.Access != stale {
		r.logger.Debug("Access token was refreshed meanwhile, reuse it", "access", logger.Redact(pair.Access))
		return pair.Access, nil
	}

	// Exchange must not be cancelled by the first caller: others may wait for it too
	exchangeCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(refreshKey, func() (any, error) {
		return r.refresh(exchangeCtx)
	})

	select {
	case res := <-ch:
		access, _ := res.Val.(string)
		return access, res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Refresher) refresh(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pair, err := r.store.Get(ctx)
	if err != nil {
		return "", r.terminate(ctx, fmt.Errorf("error while reading refresh token. Err: %w", err))
	}
	if pair.Refresh == "" {
		r.logger.Warn("No refresh token available")
		return "", r.terminate(ctx, apperrors.ErrNoRefreshToken)
	}

	r.logger.Info("Refreshing access token", "refresh", logger.Redact(pair.Refresh))

	access, err := r.exchange(ctx, pair.Refresh)
	if err == nil && access == "" {
		err = apperrors.ErrInvalidTokenResp
	}
	if err != nil {
		return "", r.terminate(ctx, err)
	}

	if err := r.store.SetAccess(ctx, access); err != nil {
		return "", r.terminate(ctx, fmt.Errorf("error while saving access token. Err: %w", err))
	}

	r.logger.Info("Access token refreshed", "access", logger.Redact(access))
	return access, nil
}

// terminate ends the session: nothing stored may be used anymore
func (r *Refresher) terminate(ctx context.Context, cause error) error {
	r.logger.Warn("Token refresh failed, ending session", "error", cause)

	if err := r.store.Clear(ctx); err != nil {
		r.logger.Error("Failed to clear tokens", "error", err)
	}

	r.mu.RLock()
	hooks := append([]SessionEndedFunc(nil), r.ended...)
	r.mu.RUnlock()

	for _, fn := range hooks {
		fn(ctx, cause)
	}

	return fmt.Errorf("%w: %w", apperrors.ErrSessionTerminated, cause)
}
