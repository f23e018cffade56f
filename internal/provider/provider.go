// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider unifies the AI backends used for cover generation
// behind one capability set: describe a scene from article content, build
// an image prompt, generate an image, and save it locally. Backends are a
// closed set of kinds dispatched exhaustively; callers never know which
// one they are talking to.
package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/pdiddy/wx-press/pkg/types"
)

// maxSceneInput bounds how much article content is sent to the text
// endpoint when describing a scene.
const maxSceneInput = 2000

// fallbackScene is substituted when a backend returns an empty scene
// description. Cover generation never blocks on empty description text.
const fallbackScene = "A serene landscape with rolling hills under a soft, dreamy sky filled with gentle clouds. The scene evokes a sense of peaceful contemplation and infinite possibilities."

// APIError reports a failed call to an AI backend, keeping the raw
// response around for diagnostics.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned HTTP %d: %s", e.Provider, e.Status, e.Body)
}

// ImageRef is a generated image, either retrievable by URL or carried
// inline as a base64 payload. Downstream code never needs to know which
// form a backend produced.
type ImageRef struct {
	URL    string
	Inline string
}

// IsInline reports whether the image payload is carried inline.
func (r ImageRef) IsInline() bool { return r.Inline != "" }

// ModelConfig names the models and generation parameters for one backend.
type ModelConfig struct {
	TextModel    string
	ImageModel   string
	Temperature  float64
	ImageSize    string
	ImageQuality string
}

func openAIModels() ModelConfig {
	return ModelConfig{
		TextModel:    "gpt-4o-mini",
		ImageModel:   "dall-e-3",
		Temperature:  0.7,
		ImageSize:    "1536x1024",
		ImageQuality: "standard",
	}
}

func geminiModels() ModelConfig {
	return ModelConfig{
		TextModel:    "gemini-2.5-flash",
		ImageModel:   "imagen-4.0-generate-001",
		Temperature:  0.7,
		ImageSize:    "16:9",
		ImageQuality: "high",
	}
}

// Client talks to one AI backend selected by a ProviderSelection.
type Client struct {
	Selection  types.ProviderSelection
	Models     ModelConfig
	HTTPClient *http.Client
}

// New returns a client for the selected backend with its default models.
func New(sel types.ProviderSelection) *Client {
	models := openAIModels()
	if sel.Kind == types.ProviderGemini {
		models = geminiModels()
	}
	return &Client{
		Selection:  sel,
		Models:     models,
		HTTPClient: http.DefaultClient,
	}
}

// name returns the backend name used in error and log messages.
func (c *Client) name() string {
	switch c.Selection.Kind {
	case types.ProviderGemini:
		return "Gemini"
	default:
		return "OpenAI"
	}
}

// baseURL returns the backend endpoint root, honoring an override from
// the selection.
func (c *Client) baseURL() string {
	if c.Selection.BaseURL != "" {
		return c.Selection.BaseURL
	}
	switch c.Selection.Kind {
	case types.ProviderGemini:
		return "https://generativelanguage.googleapis.com/v1beta/models"
	default:
		return "https://api.openai.com/v1"
	}
}

// DescribeScene asks the text endpoint for a short visual scene
// description of the article content. An empty response is replaced with
// a deterministic fallback rather than reported as a failure.
func (c *Client) DescribeScene(ctx context.Context, content string) (string, error) {
	content = truncate(content, maxSceneInput)

	var (
		scene string
		err   error
	)
	switch c.Selection.Kind {
	case types.ProviderOpenAI:
		scene, err = c.openAIDescribe(ctx, content)
	case types.ProviderGemini:
		scene, err = c.geminiDescribe(ctx, content)
	default:
		return "", fmt.Errorf("unhandled provider kind %q", c.Selection.Kind)
	}
	if err != nil {
		return "", err
	}
	if scene == "" {
		scene = fallbackScene
	}
	return scene, nil
}

// BuildPrompt wraps a scene description in the fixed stylistic framing
// used for every cover. Pure function, no I/O.
func (c *Client) BuildPrompt(scene string) string {
	return fmt.Sprintf("Create a wide, Ghibli-style image to represent this scene: %s", scene)
}

// GenerateImage sends the prompt to the image endpoint and returns the
// normalized image reference.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (ImageRef, error) {
	switch c.Selection.Kind {
	case types.ProviderOpenAI:
		return c.openAIGenerate(ctx, prompt)
	case types.ProviderGemini:
		return c.geminiGenerate(ctx, prompt)
	default:
		return ImageRef{}, fmt.Errorf("unhandled provider kind %q", c.Selection.Kind)
	}
}

// Download saves the referenced image to dest, creating missing parent
// directories. Inline payloads are decoded directly; URLs are fetched.
func (c *Client) Download(ctx context.Context, ref ImageRef, dest string) error {
	var data []byte
	if ref.IsInline() {
		decoded, err := base64.StdEncoding.DecodeString(ref.Inline)
		if err != nil {
			return fmt.Errorf("decoding inline image from %s: %w", c.name(), err)
		}
		data = decoded
	} else {
		fetched, err := c.fetch(ctx, ref.URL)
		if err != nil {
			return err
		}
		data = fetched
	}

	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", dest, err)
		}
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing image %s: %w", dest, err)
	}
	return nil
}

// truncate limits s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
