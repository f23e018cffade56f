// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/pdiddy/wx-press/internal/output"
	"github.com/pdiddy/wx-press/internal/provider"
)

// fakeGenerator scripts the provider capability chain. Download writes a
// marker file so tests can see where the image landed.
type fakeGenerator struct {
	describeErr error
	generateErr error
	downloadErr error

	downloads []string
}

func (f *fakeGenerator) DescribeScene(_ context.Context, _ string) (string, error) {
	if f.describeErr != nil {
		return "", f.describeErr
	}
	return "a scene", nil
}

func (f *fakeGenerator) BuildPrompt(scene string) string { return "prompt: " + scene }

func (f *fakeGenerator) GenerateImage(_ context.Context, _ string) (provider.ImageRef, error) {
	if f.generateErr != nil {
		return provider.ImageRef{}, f.generateErr
	}
	return provider.ImageRef{URL: "https://img.example/x.png"}, nil
}

func (f *fakeGenerator) Download(_ context.Context, _ provider.ImageRef, dest string) error {
	if f.downloadErr != nil {
		return f.downloadErr
	}
	f.downloads = append(f.downloads, dest)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("png"), 0o644)
}

func articleAt(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "my-post.md")
	if err := os.WriteFile(path, []byte("---\ntitle: T\n---\nbody\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

var autoNameRe = regexp.MustCompile(`^my-post_cover_[0-9a-f]{32}\.png$`)

func TestEnsureGeneratesWhenUndeclared(t *testing.T) {
	dir := t.TempDir()
	article := articleAt(t, dir)
	gen := &fakeGenerator{}
	r := &Resolver{Gen: gen, Out: output.Discard{}}

	got := r.Ensure(context.Background(), "body", article, "")

	if !autoNameRe.MatchString(got) {
		t.Fatalf("cover name = %q, want derived from article stem", got)
	}
	if len(gen.downloads) != 1 || filepath.Dir(gen.downloads[0]) != dir {
		t.Errorf("downloads = %v, want one file beside the article", gen.downloads)
	}
	if _, err := os.Stat(filepath.Join(dir, got)); err != nil {
		t.Errorf("generated file missing: %v", err)
	}
}

func TestEnsureKeepsExistingDeclaredCover(t *testing.T) {
	dir := t.TempDir()
	article := articleAt(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "cover.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	gen := &fakeGenerator{}
	r := &Resolver{Gen: gen, Out: output.Discard{}}

	got := r.Ensure(context.Background(), "body", article, "cover.png")

	if got != "cover.png" {
		t.Errorf("Ensure() = %q, want declared reference unchanged", got)
	}
	if len(gen.downloads) != 0 {
		t.Errorf("generation ran for an existing cover: %v", gen.downloads)
	}
}

func TestEnsureRegeneratesDeclaredMissingCover(t *testing.T) {
	dir := t.TempDir()
	article := articleAt(t, dir)
	gen := &fakeGenerator{}
	r := &Resolver{Gen: gen, Out: output.Discard{}}

	got := r.Ensure(context.Background(), "body", article, "img/cover.png")

	if got != "img/cover.png" {
		t.Errorf("Ensure() = %q, want declared reference preserved", got)
	}
	want := filepath.Join(dir, "img", "cover.png")
	if len(gen.downloads) != 1 || gen.downloads[0] != want {
		t.Errorf("downloads = %v, want %q", gen.downloads, want)
	}
}

func TestEnsureFailuresDegradeToEmpty(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"describe fails", &fakeGenerator{describeErr: errors.New("boom")}},
		{"generate fails", &fakeGenerator{generateErr: errors.New("boom")}},
		{"download fails", &fakeGenerator{downloadErr: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article := articleAt(t, t.TempDir())
			r := &Resolver{Gen: tt.gen, Out: output.Discard{}}

			if got := r.Ensure(context.Background(), "body", article, ""); got != "" {
				t.Errorf("Ensure() = %q, want empty on failure", got)
			}
		})
	}
}

func TestEnsureFailedRegenerationPreservesNothing(t *testing.T) {
	article := articleAt(t, t.TempDir())
	gen := &fakeGenerator{generateErr: errors.New("boom")}
	r := &Resolver{Gen: gen, Out: output.Discard{}}

	if got := r.Ensure(context.Background(), "body", article, "img/cover.png"); got != "" {
		t.Errorf("Ensure() = %q, want empty when regeneration fails", got)
	}
}

func TestEnsureNoProvider(t *testing.T) {
	article := articleAt(t, t.TempDir())
	r := &Resolver{Gen: nil, Out: output.Discard{}}

	if got := r.Ensure(context.Background(), "body", article, ""); got != "" {
		t.Errorf("Ensure() = %q, want empty without a provider", got)
	}
	if got := r.Ensure(context.Background(), "body", article, "missing.png"); got != "" {
		t.Errorf("Ensure() = %q, want empty for dangling reference without a provider", got)
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	article := articleAt(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "cover.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	resolved, exists := ResolvePath(article, "cover.png")
	if !exists || resolved != filepath.Join(dir, "cover.png") {
		t.Errorf("ResolvePath() = %q, %v", resolved, exists)
	}

	resolved, exists = ResolvePath(article, "nope.png")
	if exists || !strings.HasPrefix(resolved, dir) {
		t.Errorf("ResolvePath() = %q, %v, want resolution against article dir", resolved, exists)
	}

	abs := filepath.Join(dir, "cover.png")
	resolved, exists = ResolvePath(article, abs)
	if !exists || resolved != abs {
		t.Errorf("ResolvePath() abs = %q, %v", resolved, exists)
	}
}

func TestAutoCoverNameUnique(t *testing.T) {
	a := autoCoverName("/tmp/post.md")
	b := autoCoverName("/tmp/post.md")
	if a == b {
		t.Errorf("autoCoverName() returned duplicates: %q", a)
	}
}
