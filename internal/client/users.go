package client

import (
	"context"
	"net/http"
	"strconv"
)

// User is the signed-in user's profile.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
}

// Registration holds the fields for a new account.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type authResponse struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (c *Client) adopt(ar authResponse) *Session {
	*c.session = Session{
		Token:    ar.Token,
		UserID:   ar.ID,
		Username: ar.Username,
		Role:     ar.Role,
	}
	return c.session
}

// Login signs in and stores the new session on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var ar authResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, &ar)
	if err != nil {
		return nil, err
	}
	return c.adopt(ar), nil
}

// Register creates an account and signs in as it.
func (c *Client) Register(ctx context.Context, reg Registration) (*Session, error) {
	var ar authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", reg, &ar); err != nil {
		return nil, err
	}
	return c.adopt(ar), nil
}

// Logout revokes the current token and clears the session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	*c.session = Session{}
	return nil
}

// Me returns the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var u User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword changes the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPut, "/api/users/me/password",
		map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}, nil)
}

// ListUsers returns every active account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var users []User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes an account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, "/api/users/"+strconv.FormatInt(id, 10), nil, nil)
}
