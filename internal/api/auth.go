package api

import (
	"context"
	"fmt"

	"github.com/minhng/taskdeck/internal/model"
)

// AuthResponse is returned by the login and register endpoints.
type AuthResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Login authenticates with email and password. On success the returned
// token is stored in the session store, so subsequent requests carry it.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.post(ctx, "/api/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Token != "" {
		if err := c.session.SetToken(resp.Token); err != nil {
			return nil, fmt.Errorf("storing session token: %w", err)
		}
	}

	c.log.Info().Str("email", email).Msg("logged in")
	return &resp, nil
}

// Register creates a new account. The name is optional. On success the
// returned token is stored in the session store.
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.post(ctx, "/api/auth/register", registerRequest{
		Email:    email,
		Password: password,
		Name:     name,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Token != "" {
		if err := c.session.SetToken(resp.Token); err != nil {
			return nil, fmt.Errorf("storing session token: %w", err)
		}
	}

	c.log.Info().Str("email", email).Msg("registered")
	return &resp, nil
}

// Logout notifies the backend and clears the local session. The token
// is removed even when the backend call fails; the request error is
// still reported so callers can log it.
func (c *Client) Logout(ctx context.Context) error {
	reqErr := c.post(ctx, "/api/auth/logout", nil, nil)

	if err := c.session.Clear(); err != nil {
		c.log.Error().Err(err).Msg("clearing session after logout")
		if reqErr == nil {
			return err
		}
	}

	c.log.Info().Msg("logged out")
	return reqErr
}

// GetProfile fetches the currently authenticated user.
func (c *Client) GetProfile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, "/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
