// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/wx-press/internal/httputil"
	"github.com/pdiddy/wx-press/pkg/types"
)

// sceneInstruction is the fixed system instruction for scene descriptions.
const sceneInstruction = "Generate a 2-3 sentence visual scene description in English for a cover image based on the article content."

// OpenAI request/response shapes. Auth is a bearer header; text goes
// through chat/completions, images through images/generations.

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

type openAIImageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

type openAIImageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

func (c *Client) openAIDescribe(ctx context.Context, content string) (string, error) {
	reqBody := openAIChatRequest{
		Model: c.Models.TextModel,
		Messages: []openAIMessage{
			{Role: "system", Content: sceneInstruction},
			{Role: "user", Content: fmt.Sprintf("Article content:\n\n%s\n\nScene description:", content)},
		},
		Temperature: c.Models.Temperature,
	}

	var resp openAIChatResponse
	if err := c.postJSON(ctx, c.baseURL()+"/chat/completions", reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) openAIGenerate(ctx context.Context, prompt string) (ImageRef, error) {
	reqBody := openAIImageRequest{
		Model:   c.Models.ImageModel,
		Prompt:  prompt,
		Size:    c.Models.ImageSize,
		Quality: c.Models.ImageQuality,
		N:       1,
	}

	var resp openAIImageResponse
	if err := c.postJSON(ctx, c.baseURL()+"/images/generations", reqBody, &resp); err != nil {
		return ImageRef{}, err
	}
	if len(resp.Data) == 0 {
		return ImageRef{}, fmt.Errorf("no image data in %s response", c.name())
	}
	if resp.Data[0].URL != "" {
		return ImageRef{URL: resp.Data[0].URL}, nil
	}
	if resp.Data[0].B64JSON != "" {
		return ImageRef{Inline: resp.Data[0].B64JSON}, nil
	}
	return ImageRef{}, fmt.Errorf("no image data in %s response", c.name())
}

// postJSON sends a JSON POST and decodes the response, attaching the
// bearer header for OpenAI-style auth. Gemini uses it too with the key
// already embedded in the URL.
func (c *Client) postJSON(ctx context.Context, url string, reqBody, out any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Selection.Kind != types.ProviderGemini {
		req.Header.Set("Authorization", "Bearer "+c.Selection.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, req, 0)
	if err != nil {
		return fmt.Errorf("calling %s API: %w", c.name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Provider: c.name(), Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", c.name(), err)
	}
	return nil
}

// fetch downloads a generated image from a URL.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, req, 0)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Provider: c.name(), Status: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}
	return data, nil
}
