// Package bookclient is the HTTP client for the booksearch API. Every
// request carries the stored session credential as a Bearer token when one
// is present.
package bookclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/heimsharon/booksearch/pkg/session"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Store
}

func NewClient(baseURL string, sess *session.Store) *Client {
	return &Client{
		baseURL: baseURL,
		session: sess,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type User struct {
	ID         uint        `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	SavedBooks []SavedBook `json:"saved_books"`
}

type SavedBook struct {
	ID          uint     `json:"id"`
	UserID      uint     `json:"user_id"`
	BookID      string   `json:"book_id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Link        string   `json:"link"`
}

type Book struct {
	BookID      string   `json:"book_id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Link        string   `json:"link"`
}

type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type SearchResult struct {
	Total int64  `json:"total"`
	Books []Book `json:"books"`
}

// Register creates an account and stores the issued credential.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Credentials, error) {
	body := map[string]string{"username": username, "email": email, "password": password}

	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/api/v1/register", body, &creds); err != nil {
		return nil, err
	}

	if err := c.session.Login(creds.Token); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}
	return &creds, nil
}

// Login authenticates and stores the issued credential.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	body := map[string]string{"email": email, "password": password}

	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/api/v1/login", body, &creds); err != nil {
		return nil, err
	}

	if err := c.session.Login(creds.Token); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}
	return &creds, nil
}

// Logout discards the stored credential. The token itself stays valid until
// its TTL elapses; there is nothing to tell the server.
func (c *Client) Logout() error {
	return c.session.Logout()
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Search(ctx context.Context, query string, page, size int) (*SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}

	var result SearchResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/search?"+q.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SaveBook(ctx context.Context, book Book) (*SavedBook, error) {
	var saved SavedBook
	if err := c.do(ctx, http.MethodPost, "/api/v1/books", book, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) ListSaved(ctx context.Context) ([]SavedBook, error) {
	var books []SavedBook
	if err := c.do(ctx, http.MethodGet, "/api/v1/books", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) RemoveBook(ctx context.Context, bookID string) ([]SavedBook, error) {
	var remaining []SavedBook
	if err := c.do(ctx, http.MethodDelete, "/api/v1/books/"+url.PathEscape(bookID), nil, &remaining); err != nil {
		return nil, err
	}
	return remaining, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
