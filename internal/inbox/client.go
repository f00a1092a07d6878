// Package inbox holds the admin-side list controller and the HTTP client it drives.
package inbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/welldanyogia/folio-backend/internal/models"
)

const (
	defaultTimeout = 15 * time.Second

	// maxErrorBody bounds how much of an error response is read
	maxErrorBody = 64 * 1024
)

// API is the admin inbox surface the controller depends on
type API interface {
	ListMessages(ctx context.Context, req models.PageRequest) (*models.PageResponse, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	UpdateMessage(ctx context.Context, id string, update models.MessageUpdate) error
	DeleteMessage(ctx context.Context, id string) error
}

// APIError is a non-2xx response from the admin API
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("inbox api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("inbox api: %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the admin API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to the admin inbox endpoints over HTTP
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithToken sets the admin bearer token
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the API rooted at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pageEnvelope struct {
	Success    bool              `json:"success"`
	Messages   []models.Message  `json:"messages"`
	Pagination models.Pagination `json:"pagination"`
}

type messageEnvelope struct {
	Success bool           `json:"success"`
	Data    models.Message `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	// echo's default error handler
	Message string `json:"message"`
}

// ListMessages fetches one page of the inbox
func (c *Client) ListMessages(ctx context.Context, req models.PageRequest) (*models.PageResponse, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(req.Page))
	query.Set("limit", strconv.Itoa(req.PageSize))
	if req.Status != "" {
		query.Set("status", string(req.Status))
	}
	if req.LastDocID != "" {
		query.Set("lastDocId", req.LastDocID)
	}

	var env pageEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/messages?"+query.Encode(), nil, &env); err != nil {
		return nil, err
	}

	messages := env.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	return &models.PageResponse{Messages: messages, Pagination: env.Pagination}, nil
}

// GetMessage fetches a single message
func (c *Client) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	var env messageEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/messages/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateMessage applies a partial update
func (c *Client) UpdateMessage(ctx context.Context, id string, update models.MessageUpdate) error {
	return c.do(ctx, http.MethodPut, "/api/messages/"+url.PathEscape(id), update, nil)
}

// DeleteMessage permanently removes a message
func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/messages/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inbox api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err == nil {
		apiErr.Code = env.Code
		apiErr.Message = env.Error
		if apiErr.Message == "" {
			apiErr.Message = env.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
