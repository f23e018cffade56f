// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cover decides whether an article needs a cover image generated
// and drives the AI provider to produce one. Generation failures degrade
// to warnings; publication proceeds without a cover.
package cover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/wx-press/internal/output"
	"github.com/pdiddy/wx-press/internal/provider"
)

// Generator is the provider capability set the resolver drives. Satisfied
// by *provider.Client; tests supply mocks.
type Generator interface {
	DescribeScene(ctx context.Context, content string) (string, error)
	BuildPrompt(scene string) string
	GenerateImage(ctx context.Context, prompt string) (provider.ImageRef, error)
	Download(ctx context.Context, ref provider.ImageRef, dest string) error
}

// Resolver applies the cover decision policy for one article.
type Resolver struct {
	// Gen is nil when no AI provider is configured; the resolver then
	// only warns about dangling cover references.
	Gen Generator
	Out output.Sink
}

// Ensure makes sure the article has a cover image where its metadata says
// one should be, generating it when missing. It returns the cover
// reference to record in metadata, or "" when there is nothing new to
// record. Failures never propagate: a failed generation produces a
// warning and an empty result.
func (r *Resolver) Ensure(ctx context.Context, content, articlePath, declared string) string {
	if r.Gen == nil {
		// No provider: nothing to generate, but a declared cover whose
		// file is missing will make the upload fail downstream.
		if declared != "" {
			if resolved, exists := ResolvePath(articlePath, declared); !exists {
				r.Out.Warnf("cover missing (%s), no AI provider to generate it: %s", declared, resolved)
			}
		}
		return ""
	}

	if declared == "" {
		name := autoCoverName(articlePath)
		dest := filepath.Join(filepath.Dir(articlePath), name)
		r.Out.Generatef("generating cover: %s", articlePath)
		if err := r.generate(ctx, content, dest); err != nil {
			r.Out.Warnf("cover generation failed: %v", err)
			return ""
		}
		r.Out.Generatef("cover generated: %s", name)
		return name
	}

	resolved, exists := ResolvePath(articlePath, declared)
	if exists {
		return declared
	}

	// Declared but missing on disk: generate to the declared location so
	// the metadata reference stays valid as written.
	r.Out.Generatef("cover missing (%s), generating: %s", declared, articlePath)
	if err := r.generate(ctx, content, resolved); err != nil {
		r.Out.Warnf("cover generation to %s failed: %v", resolved, err)
		return ""
	}
	r.Out.Generatef("cover generated: %s", declared)
	return declared
}

// generate runs the describe → prompt → generate → download chain.
func (r *Resolver) generate(ctx context.Context, content, dest string) error {
	scene, err := r.Gen.DescribeScene(ctx, content)
	if err != nil {
		return fmt.Errorf("describing scene: %w", err)
	}

	prompt := r.Gen.BuildPrompt(scene)
	r.Out.Infof("image prompt: %s", prompt)

	ref, err := r.Gen.GenerateImage(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generating image: %w", err)
	}

	if err := r.Gen.Download(ctx, ref, dest); err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// autoCoverName derives a unique cover filename from the article filename.
func autoCoverName(articlePath string) string {
	stem := strings.TrimSuffix(filepath.Base(articlePath), filepath.Ext(articlePath))
	if stem == "" {
		stem = "article"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_cover_%s.png", stem, suffix)
}

// ResolvePath resolves a cover reference against the article's directory
// (never the process working directory) and reports whether the file
// exists. Absolute references resolve to themselves.
func ResolvePath(articlePath, ref string) (string, bool) {
	resolved := ref
	if !filepath.IsAbs(ref) {
		resolved = filepath.Join(filepath.Dir(articlePath), ref)
	}
	_, err := os.Stat(resolved)
	return resolved, err == nil
}
