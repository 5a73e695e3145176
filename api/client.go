package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	// DefaultLoginPath is the credential exchange endpoint.
	DefaultLoginPath = "/api/auth/login"

	maxBodyBytes = 1 << 20
)

// Client talks to one backend origin.
type Client struct {
	baseURL   string
	loginPath string
	http      *http.Client
}

// Option customizes a [Client].
type Option func(*Client)

// WithLoginPath overrides [DefaultLoginPath].
func WithLoginPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.loginPath = path
		}
	}
}

// NewClient returns a client for baseURL. A nil httpClient means http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		loginPath: DefaultLoginPath,
		http:      httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoginResponse is the decoded login body. Raw keeps every field the backend sent.
type LoginResponse struct {
	Token string
	Raw   map[string]any
}

// Login exchanges email and password for a credential.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	payload, err := json.Marshal(struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password})
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := c.do(ctx, "login", http.MethodPost, c.loginPath, payload, &raw); err != nil {
		return nil, err
	}

	token, _ := raw["token"].(string)
	if token == "" {
		return nil, ErrNoToken
	}
	return &LoginResponse{Token: token, Raw: raw}, nil
}

// ID accepts both JSON strings and numbers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// User is a back-office account.
type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

// GetUser fetches /api/users/{id}.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.do(ctx, "get user", http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Gym is the organization an administrator manages.
type Gym struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// GetGym fetches /api/gyms/{id}.
func (c *Client) GetGym(ctx context.Context, id string) (*Gym, error) {
	var gym Gym
	if err := c.do(ctx, "get gym", http.MethodGet, "/api/gyms/"+url.PathEscape(id), nil, &gym); err != nil {
		return nil, err
	}
	return &gym, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProtocolError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, op, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
		return ""
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 || strings.ContainsAny(text, "<\n") {
		return ""
	}
	return text
}
