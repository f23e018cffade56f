// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Gemini request/response shapes. The API key travels in the URL; text
// goes through <model>:generateContent, images through <model>:predict.

type geminiGenerateRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiPredictRequest struct {
	Instances  []geminiInstance        `json:"instances"`
	Parameters geminiPredictParameters `json:"parameters"`
}

type geminiInstance struct {
	Prompt string `json:"prompt"`
}

type geminiPredictParameters struct {
	NumberOfImages int    `json:"numberOfImages"`
	AspectRatio    string `json:"aspectRatio"`
}

type geminiPredictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
	} `json:"predictions"`
}

// geminiURL builds a model endpoint with the API key embedded.
func (c *Client) geminiURL(model, action string) string {
	return fmt.Sprintf("%s/%s:%s?key=%s", c.baseURL(), model, action, url.QueryEscape(c.Selection.APIKey))
}

func (c *Client) geminiDescribe(ctx context.Context, content string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nArticle content:\n\n%s\n\nScene description:", sceneInstruction, content)
	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{Temperature: c.Models.Temperature},
	}

	var resp geminiGenerateResponse
	if err := c.postJSON(ctx, c.geminiURL(c.Models.TextModel, "generateContent"), reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
}

func (c *Client) geminiGenerate(ctx context.Context, prompt string) (ImageRef, error) {
	reqBody := geminiPredictRequest{
		Instances: []geminiInstance{{Prompt: prompt}},
		Parameters: geminiPredictParameters{
			NumberOfImages: 1,
			AspectRatio:    c.Models.ImageSize,
		},
	}

	var resp geminiPredictResponse
	if err := c.postJSON(ctx, c.geminiURL(c.Models.ImageModel, "predict"), reqBody, &resp); err != nil {
		return ImageRef{}, err
	}
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return ImageRef{}, fmt.Errorf("no predictions in %s response", c.name())
	}
	return ImageRef{Inline: resp.Predictions[0].BytesBase64Encoded}, nil
}
