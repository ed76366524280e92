// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/metonline/hesap-paylas/apperr"
	"github.com/metonline/hesap-paylas/groupcode"
	"github.com/metonline/hesap-paylas/models"
)

func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", req, &resp); err != nil {
		return nil, err
	}
	return authResult(&resp)
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return authResult(&resp)
}

// LoginGoogle exchanges a Google Identity credential for a backend token.
func (c *Client) LoginGoogle(ctx context.Context, credential string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	body := models.GoogleLoginRequest{Token: credential}
	if err := c.do(ctx, http.MethodPost, "/auth/google", "", body, &resp); err != nil {
		return nil, err
	}
	return authResult(&resp)
}

func authResult(resp *models.AuthResponse) (*models.AuthResponse, error) {
	if resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "backend issued no token"
		}
		return nil, apperr.New(apperr.CodeUnauthorized, msg)
	}
	return resp, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/user/profile", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Groups lists the caller's groups. The backend answers either with a bare
// array or with {"groups": [...]}.
func (c *Client) Groups(ctx context.Context, token string) ([]models.GroupSummary, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/user/groups", token, nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var groups []models.GroupSummary
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &groups); err != nil {
			return nil, apperr.Wrap(apperr.CodeBackend, "unreadable group list", err)
		}
		return groups, nil
	}

	var wrapped struct {
		Groups []models.GroupSummary `json:"groups"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, apperr.Wrap(apperr.CodeBackend, "unreadable group list", err)
	}
	return wrapped.Groups, nil
}

func (c *Client) CreateGroup(ctx context.Context, token string, req models.CreateGroupRequest) (*models.GroupSummary, error) {
	var resp models.CreateGroupResponse
	if err := c.do(ctx, http.MethodPost, "/groups", token, req, &resp); err != nil {
		return nil, err
	}
	if resp.Group.ID == 0 && !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "group could not be created"
		}
		return nil, apperr.New(apperr.CodeBackend, msg)
	}
	return &resp.Group, nil
}

func (c *Client) GetGroup(ctx context.Context, token string, id int) (*models.Group, error) {
	var group models.Group
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/groups/%d", id), token, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// JoinGroup adds the caller to the group identified by code. Joining a group
// the caller already belongs to is reported as apperr.ErrJoinAlreadyMember.
func (c *Client) JoinGroup(ctx context.Context, token string, code groupcode.Code) (*models.GroupSummary, error) {
	var resp models.JoinGroupResponse
	body := models.JoinGroupRequest{Code: code.String()}
	if err := c.do(ctx, http.MethodPost, "/groups/join", token, body, &resp); err != nil {
		return nil, err
	}

	switch {
	case resp.Group != nil:
		return resp.Group, nil
	case resp.ID != 0:
		return &models.GroupSummary{ID: resp.ID, Name: resp.Name}, nil
	case resp.Success:
		return &models.GroupSummary{Name: resp.Name}, nil
	}

	msg := resp.Message
	if msg == "" {
		msg = resp.Error
	}
	if msg == "" {
		msg = "join failed"
	}
	return nil, mapStatus(http.StatusOK, msg)
}
