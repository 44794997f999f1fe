package api

import (
	"context"
	"net/http"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/models"
	"github.com/nkiryanov/triply/internal/session"
)

const authPrefix = "/api/v1/auth/"

type AuthClient struct {
	c *Client
}

// Login exchanges credentials for tokens
// 401 here means wrong credentials, so the request never triggers token refresh
func (a *AuthClient) Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := a.c.doJSON(session.WithoutRefresh(ctx), http.MethodPost, authPrefix+"login/", nil, creds, &resp)
	return resp, err
}

func (a *AuthClient) Register(ctx context.Context, reg models.Registration) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := a.c.doJSON(session.WithoutRefresh(ctx), http.MethodPost, authPrefix+"register/", nil, reg, &resp)
	return resp, err
}

func (a *AuthClient) Profile(ctx context.Context) (models.User, error) {
	var user models.User
	err := a.c.doJSON(ctx, http.MethodGet, authPrefix+"profile/", nil, nil, &user)
	return user, err
}

func (a *AuthClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.User, error) {
	var user models.User
	err := a.c.doJSON(ctx, http.MethodPut, authPrefix+"profile/", nil, upd, &user)
	return user, err
}

func (a *AuthClient) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	return a.c.doJSON(ctx, http.MethodPost, authPrefix+"change-password/", nil, change, nil)
}

// Refresh exchanges refresh token for a new access token
// Must be called on a client without session transport
func (a *AuthClient) Refresh(ctx context.Context, refresh string) (string, error) {
	in := struct {
		Refresh string `json:"refresh"`
	}{Refresh: refresh}

	var resp models.RefreshResponse
	if err := a.c.doJSON(session.WithoutRefresh(ctx), http.MethodPost, authPrefix+"token/refresh/", nil, in, &resp); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", apperrors.ErrInvalidTokenResp
	}
	return resp.Access, nil
}

// Logout asks backend to revoke refresh token
func (a *AuthClient) Logout(ctx context.Context, refresh string) error {
	in := struct {
		Refresh string `json:"refresh"`
	}{Refresh: refresh}

	return a.c.doJSON(session.WithoutRefresh(ctx), http.MethodPost, authPrefix+"logout/", nil, in, nil)
}
