package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/logger"
	"github.com/nkiryanov/triply/internal/models"
	"github.com/nkiryanov/triply/internal/tokenstore"
	"github.com/nkiryanov/triply/internal/validate"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

const (
	DefaultLoginRoute = "login"

	NoticeInfo    = "info"
	NoticeWarning = "warning"
)

// Notice is a message to show user on the next occasion
type Notice struct {
	Level    string
	Message  string
	Redirect string // where user should go next, may be empty
}

// Backend auth operations the controller relies on
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error)
	Register(ctx context.Context, reg models.Registration) (models.AuthResponse, error)
	Profile(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.User, error)
	ChangePassword(ctx context.Context, change models.PasswordChange) error
	Logout(ctx context.Context, refresh string) error
}

type ControllerConfig struct {
	// Ask backend to revoke refresh token on logout
	// Best effort: failure is logged only
	RevokeOnLogout bool

	// Where to send user once the session ended
	LoginRoute string

	// Called with LoginRoute when session ended, optional
	Navigate func(route string)
}

// Controller owns the current user and the authentication status
type Controller struct {
	cfg    ControllerConfig
	api    AuthAPI
	store  tokenstore.Store
	logger logger.Logger

	mu      sync.RWMutex
	status  Status
	user    *models.User
	notices []Notice
}

func NewController(cfg ControllerConfig, api AuthAPI, store tokenstore.Store, l logger.Logger) *Controller {
	if cfg.LoginRoute == "" {
		cfg.LoginRoute = DefaultLoginRoute
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Controller{
		cfg:    cfg,
		api:    api,
		store:  store,
		logger: l.With("component", "session"),
		status: StatusUnknown,
	}
}

// RestoreSession resolves Unknown status on startup
// No tokens means Anonymous without any request to backend
func (c *Controller) RestoreSession(ctx context.Context) error {
	pair, err := c.store.Get(ctx)
	if err != nil {
		c.setAnonymous()
		return fmt.Errorf("error while reading tokens. Err: %w", err)
	}

	if !pair.Complete() {
		c.logger.Debug("No stored session")
		c.setAnonymous()
		return nil
	}

	user, err := c.api.Profile(ctx)
	if err != nil {
		c.logger.Warn("Failed to restore session", "error", err)
		c.dropSession(ctx)
		return err
	}

	c.setUser(user)
	c.logger.Info("Session restored", "user", user.Email)
	return nil
}

func (c *Controller) Login(ctx context.Context, creds models.Credentials) (models.User, error) {
	if err := validate.Struct(creds); err != nil {
		return models.User{}, err
	}

	resp, err := c.api.Login(ctx, creds)
	if err != nil {
		return models.User{}, authFailure(err, "Invalid credentials")
	}

	pair := resp.Pair()
	if !pair.Complete() {
		return models.User{}, &apperrors.AuthError{Message: "Login failed", Err: apperrors.ErrInvalidTokenResp}
	}
	if err := c.store.Set(ctx, pair); err != nil {
		return models.User{}, fmt.Errorf("error while saving tokens. Err: %w", err)
	}

	user, err := c.api.Profile(ctx)
	if err != nil {
		c.logger.Warn("Failed to fetch profile after login", "error", err)
		c.dropSession(ctx)
		return models.User{}, err
	}

	c.setUser(user)
	c.logger.Info("User logged in", "user", user.Email)
	return user, nil
}

// Register creates account and keeps whatever session the backend returned
func (c *Controller) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	if err := validate.Struct(reg); err != nil {
		return models.User{}, err
	}

	resp, err := c.api.Register(ctx, reg)
	if err != nil {
		return models.User{}, authFailure(err, "Registration failed")
	}

	pair := resp.Pair()
	if pair.IsZero() {
		c.logger.Info("User registered without session", "email", reg.Email)
		c.setAnonymous()
		if resp.User != nil {
			return *resp.User, nil
		}
		return models.User{}, nil
	}
	if !pair.Complete() {
		return models.User{}, &apperrors.AuthError{Message: "Registration failed", Err: apperrors.ErrInvalidTokenResp}
	}

	if err := c.store.Set(ctx, pair); err != nil {
		return models.User{}, fmt.Errorf("error while saving tokens. Err: %w", err)
	}

	user := resp.User
	if user == nil {
		u, err := c.api.Profile(ctx)
		if err != nil {
			c.logger.Warn("Failed to fetch profile after registration", "error", err)
			c.dropSession(ctx)
			return models.User{}, err
		}
		user = &u
	}

	c.setUser(*user)
	c.logger.Info("User registered", "user", user.Email)
	return *user, nil
}

// Logout forgets the session locally whatever backend says
// Safe to call many times
func (c *Controller) Logout(ctx context.Context) error {
	pair, err := c.store.Get(ctx)
	if err != nil {
		c.logger.Warn("Failed to read tokens on logout", "error", err)
	}

	if c.cfg.RevokeOnLogout && pair.Refresh != "" {
		if err := c.api.Logout(ctx, pair.Refresh); err != nil {
			c.logger.Warn("Failed to revoke refresh token", "error", err)
		}
	}

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("error while clearing tokens. Err: %w", err)
	}

	c.setAnonymous()
	c.logger.Info("User logged out")
	return nil
}

func (c *Controller) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.User, error) {
	if _, err := c.RequireUser(); err != nil {
		return models.User{}, err
	}
	if err := validate.Struct(upd); err != nil {
		return models.User{}, err
	}

	user, err := c.api.UpdateProfile(ctx, upd)
	if err != nil {
		return models.User{}, err
	}

	c.setUser(user)
	return user, nil
}

func (c *Controller) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	if _, err := c.RequireUser(); err != nil {
		return err
	}
	if err := validate.Struct(change); err != nil {
		return err
	}
	return c.api.ChangePassword(ctx, change)
}

// SessionEnded is the hook for refresher: the session can't be recovered
func (c *Controller) SessionEnded(_ context.Context, cause error) {
	c.mu.Lock()
	c.user = nil
	c.status = StatusAnonymous
	c.notices = append(c.notices, Notice{
		Level:    NoticeWarning,
		Message:  apperrors.UserMessage(apperrors.ErrSessionTerminated, ""),
		Redirect: c.cfg.LoginRoute,
	})
	c.mu.Unlock()

	c.logger.Warn("Session ended", "cause", cause)

	if c.cfg.Navigate != nil {
		c.cfg.Navigate(c.cfg.LoginRoute)
	}
}

// CurrentUser returns copy of the current user, nil if there is none
func (c *Controller) CurrentUser() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Controller) Authenticated() bool {
	return c.Status() == StatusAuthenticated
}

// RequireUser guards operations available to logged in users only
func (c *Controller) RequireUser() (models.User, error) {
	user := c.CurrentUser()
	if user == nil {
		return models.User{}, apperrors.ErrNotAuthenticated
	}
	return *user, nil
}

// Notices returns queued notices and empties the queue
func (c *Controller) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.notices
	c.notices = nil
	return n
}

func (c *Controller) setUser(user models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &user
	c.status = StatusAuthenticated
}

// dropSession forgets tokens that could not be turned into a user
func (c *Controller) dropSession(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("Failed to clear tokens", "error", err)
	}
	c.setAnonymous()
}

func (c *Controller) setAnonymous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.status = StatusAnonymous
}

// authFailure wraps backend rejection of credentials with message ready to show
// Transport failures are returned as is
func authFailure(err error, fallback string) error {
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode >= http.StatusInternalServerError {
		return err
	}

	return &apperrors.AuthError{
		Message: apperrors.UserMessage(err, fallback),
		Err:     errors.Join(apperrors.ErrInvalidCredentials, err),
	}
}
