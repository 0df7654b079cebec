// Package api is the typed HTTP client for the leave-tracking backend. It
// owns URL shapes, the bearer header, and the response envelope; everything
// above it deals in domain structs and classified errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"leave-sync/internal/models"
	"leave-sync/internal/session"
	"leave-sync/pkg/utils"
)

type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
	log     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(baseURL string, sess *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: sess,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one request. The token is re-read from the session store on
// every call so a mid-session rotation is honored without plumbing.
func (c *Client) do(ctx context.Context, method, path string, body any, dest any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return networkError(fmt.Errorf("failed to encode request body: %w", err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return networkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	var envelope utils.APIResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			envelope = utils.APIResponse{}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return httpError(resp.StatusCode, envelope.Message)
	}

	if dest != nil && envelope.Data != nil {
		data, err := json.Marshal(envelope.Data)
		if err != nil {
			return networkError(fmt.Errorf("failed to re-encode response data: %w", err))
		}
		if err := json.Unmarshal(data, dest); err != nil {
			return networkError(fmt.Errorf("failed to decode response data: %w", err))
		}
	}
	return nil
}

// MyTeam fetches the caller's team. A 404 means "no team yet" and is
// reported as (nil, nil), not as an error.
func (c *Client) MyTeam(ctx context.Context) (*models.Team, error) {
	var team models.Team
	err := c.do(ctx, http.MethodGet, "/api/teams/my-team", nil, &team)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (c *Client) PendingApprovals(ctx context.Context) ([]models.Approval, error) {
	var approvals []models.Approval
	if err := c.do(ctx, http.MethodGet, "/api/leaves/pending", nil, &approvals); err != nil {
		return nil, err
	}
	return approvals, nil
}

func (c *Client) TeamLeaves(ctx context.Context, teamID string) ([]models.LeaveRecord, error) {
	if teamID == "" {
		return nil, validationError("team id is required")
	}
	var records []models.LeaveRecord
	if err := c.do(ctx, http.MethodGet, "/api/teams/"+teamID+"/leaves", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) PendingUsers(ctx context.Context) ([]models.PendingUser, error) {
	var users []models.PendingUser
	if err := c.do(ctx, http.MethodGet, "/api/users/temp-passwords", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) ApproveLeave(ctx context.Context, id, reason string) error {
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	return c.do(ctx, http.MethodPut, "/api/leaves/"+id+"/approve", body, nil)
}

func (c *Client) RejectLeave(ctx context.Context, id, reason string) error {
	return c.do(ctx, http.MethodPut, "/api/leaves/"+id+"/reject",
		map[string]string{"rejectionReason": reason}, nil)
}

func (c *Client) AddMember(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	err := c.do(ctx, http.MethodPost, "/api/teams/members", map[string]string{"email": email}, &member)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) RemoveMember(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/teams/members/"+id, nil, nil)
}

func (c *Client) CreateTeam(ctx context.Context, name, description string) (*models.Team, error) {
	var team models.Team
	err := c.do(ctx, http.MethodPost, "/api/teams",
		map[string]string{"name": name, "description": description}, &team)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// Login authenticates against the backend and returns the bearer token. The
// caller stores it in the session store; the client never keeps it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}
