// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wechat is the boundary to the publishing platform: credentials
// in, draft IDs out. The token lifecycle is handled internally; callers
// only see Upload and RefreshToken.
package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdiddy/wx-press/internal/httputil"
	"github.com/pdiddy/wx-press/internal/markdown"
)

// apiBase is the platform API root. Package-level var so tests can
// substitute an httptest server.
var apiBase = "https://api.weixin.qq.com"

// Client uploads article drafts to one platform account.
type Client struct {
	appID      string
	appSecret  string
	HTTPClient *http.Client

	mu    sync.Mutex
	token string
}

// New creates a client and acquires an access token, so bad credentials
// fail at construction rather than on the first upload.
func New(ctx context.Context, appID, appSecret string) (*Client, error) {
	c := &Client{
		appID:      appID,
		appSecret:  appSecret,
		HTTPClient: http.DefaultClient,
	}
	if _, err := c.RefreshToken(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
}

// RefreshToken discards the cached access token and fetches a new one.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	params := url.Values{
		"grant_type": {"client_credential"},
		"appid":      {c.appID},
		"secret":     {c.appSecret},
	}
	reqURL := apiBase + "/cgi-bin/token?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, req, 0)
	if err != nil {
		return "", fmt.Errorf("requesting access token: %w", err)
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if tr.ErrCode != 0 || tr.AccessToken == "" {
		return "", fmt.Errorf("authentication failed (errcode %d): %s", tr.ErrCode, tr.ErrMsg)
	}

	c.mu.Lock()
	c.token = tr.AccessToken
	c.mu.Unlock()
	return tr.AccessToken, nil
}

type draftArticle struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Digest  string `json:"digest,omitempty"`
}

type draftAddRequest struct {
	Articles []draftArticle `json:"articles"`
}

type draftAddResponse struct {
	MediaID string `json:"media_id"`
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// tokenExpired covers the platform error codes for an invalid or expired
// access token.
func tokenExpired(code int) bool { return code == 40001 || code == 42001 }

// Upload pushes the article file as a draft and returns the draft ID.
// The file path (not pre-read content) is the unit of upload so relative
// image references are resolved against the article's own directory.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	meta, body, err := markdown.ReadFile(path)
	if err != nil {
		return "", err
	}

	title := meta.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	article := draftArticle{
		Title:   title,
		Content: body,
		Digest:  meta.Description,
	}

	draftID, err := c.addDraft(ctx, article)
	if err == nil {
		return draftID, nil
	}

	// One retry with a fresh token; the token can be invalidated
	// externally at any time.
	var de *draftError
	if errors.As(err, &de) && tokenExpired(de.code) {
		if _, rerr := c.RefreshToken(ctx); rerr != nil {
			return "", rerr
		}
		return c.addDraft(ctx, article)
	}
	return "", err
}

type draftError struct {
	code int
	msg  string
}

func (e *draftError) Error() string {
	return fmt.Sprintf("draft upload failed (errcode %d): %s", e.code, e.msg)
}

func (c *Client) addDraft(ctx context.Context, article draftArticle) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	payload, err := json.Marshal(draftAddRequest{Articles: []draftArticle{article}})
	if err != nil {
		return "", fmt.Errorf("marshaling draft request: %w", err)
	}

	reqURL := apiBase + "/cgi-bin/draft/add?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating draft request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, req, 0)
	if err != nil {
		return "", fmt.Errorf("uploading draft: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("draft upload returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var dr draftAddResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return "", fmt.Errorf("decoding draft response: %w", err)
	}
	if dr.ErrCode != 0 || dr.MediaID == "" {
		return "", &draftError{code: dr.ErrCode, msg: dr.ErrMsg}
	}
	return dr.MediaID, nil
}
