// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package uploader orchestrates the publish pipeline for single files
// and directory trees: parse, resolve the cover, upload, mark published.
package uploader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/wx-press/internal/markdown"
	"github.com/pdiddy/wx-press/internal/output"
	"github.com/pdiddy/wx-press/pkg/types"
)

// Publisher pushes one article file to the platform and returns its
// draft ID.
type Publisher interface {
	Upload(ctx context.Context, path string) (string, error)
}

// CoverResolver guarantees an article a usable cover image reference,
// or an empty string when none can be produced.
type CoverResolver interface {
	Ensure(ctx context.Context, content, articlePath, declared string) string
}

// PublishError wraps a per-article failure with the article path.
type PublishError struct {
	Path string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publishing %s: %v", e.Path, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Summary counts the outcomes of a directory run.
type Summary struct {
	Uploaded int
	Skipped  int
	Failed   int
}

// Uploader runs the publish pipeline. DefaultTheme and DefaultCode fill
// in missing metadata fields in memory only; the file on disk is never
// rewritten with defaults.
type Uploader struct {
	Publisher    Publisher
	Covers       CoverResolver
	Out          output.Sink
	DefaultTheme string
	DefaultCode  string
}

// UploadFile publishes a single article. When force is false, articles
// already marked published are skipped. Force never bypasses parse or
// upload failures, only the published check.
func (u *Uploader) UploadFile(ctx context.Context, path string, force bool) error {
	_, err := u.publish(ctx, path, force)
	return err
}

// publish runs the pipeline for one article and reports whether it was
// skipped rather than uploaded.
func (u *Uploader) publish(ctx context.Context, path string, force bool) (skipped bool, err error) {
	meta, body, err := markdown.ReadFile(path)
	if err != nil {
		u.Out.Errorf("%s: %v", path, err)
		return false, &PublishError{Path: path, Err: err}
	}

	if meta.Theme == "" && u.DefaultTheme != "" {
		meta.Theme = u.DefaultTheme
	}
	if meta.Code == "" && u.DefaultCode != "" {
		meta.Code = u.DefaultCode
	}

	if !force && meta.IsPublished() {
		u.Out.Skipf("%s: already published", path)
		return true, nil
	}

	declared := meta.Cover
	cover := u.Covers.Ensure(ctx, body, path, declared)
	if cover != "" && cover != declared {
		// The cover reference is persisted before upload so the
		// article file and the generated image never diverge.
		uerr := markdown.Update(path, func(m *types.Metadata) error {
			m.Cover = cover
			return nil
		})
		if uerr != nil {
			u.Out.Errorf("%s: %v", path, uerr)
			return false, &PublishError{Path: path, Err: uerr}
		}
	}

	u.Out.Progressf("uploading %s", path)
	draftID, err := u.Publisher.Upload(ctx, path)
	if err != nil {
		u.Out.Errorf("%s: %v", path, err)
		return false, &PublishError{Path: path, Err: err}
	}

	err = markdown.Update(path, func(m *types.Metadata) error {
		m.Published = types.StatusDraft
		return nil
	})
	if err != nil {
		u.Out.Errorf("%s: uploaded as draft %s but could not record status: %v", path, draftID, err)
		return false, &PublishError{Path: path, Err: err}
	}

	u.Out.Successf("%s: uploaded as draft %s", path, draftID)
	return false, nil
}

// ProcessDirectory walks dir and publishes every unpublished markdown
// file it finds. A failing article is reported and counted but does not
// stop the walk; only a traversal error aborts the run.
func (u *Uploader) ProcessDirectory(ctx context.Context, dir string) (Summary, error) {
	var sum Summary

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isMarkdown(path) {
			return nil
		}

		skipped, ferr := u.publish(ctx, path, false)
		switch {
		case ferr != nil:
			sum.Failed++
		case skipped:
			sum.Skipped++
		default:
			sum.Uploaded++
		}
		return nil
	})
	if err != nil {
		return sum, fmt.Errorf("walking %s: %w", dir, err)
	}

	if sum.Uploaded+sum.Skipped+sum.Failed == 0 {
		u.Out.Infof("no markdown files found under %s", dir)
		return sum, nil
	}

	u.Out.Infof("done: %d uploaded, %d skipped, %d failed", sum.Uploaded, sum.Skipped, sum.Failed)
	return sum, nil
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// Stat reports whether path is a directory, so the command layer can
// pick between single-file and directory mode.
func Stat(path string) (isDir bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("inspecting %s: %w", path, err)
	}
	return info.IsDir(), nil
}
