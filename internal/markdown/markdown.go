// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown splits article files into a metadata block and a body,
// and serializes the pair back. The metadata block is a YAML mapping
// bounded by "---" delimiter lines at the top of the file; unknown keys
// survive a parse/format round trip unchanged.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/adrg/frontmatter"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wx-press/pkg/types"
)

// yamlFormat recognizes "---"-delimited YAML blocks. The unmarshal func is
// yaml/v3 so the inline Extra map follows v3 semantics.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// ParseError reports a metadata block that was recognized but could not be
// decoded. Absence of a metadata block is not an error.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing metadata block: %s", e.Reason)
	}
	return fmt.Sprintf("parsing metadata block in %s: %s", e.Path, e.Reason)
}

// Parse splits raw article text into metadata and body. Text without a
// leading delimiter pair yields zero metadata and the entire input as the
// body. A recognized but malformed block yields a *ParseError; metadata
// that parses but fails whitelist validation yields a
// *types.ValidationError.
func Parse(raw string) (types.Metadata, string, error) {
	var meta types.Metadata
	rest, err := frontmatter.Parse(bytes.NewReader([]byte(raw)), &meta, yamlFormat)
	if err != nil {
		return types.Metadata{}, "", &ParseError{Reason: err.Error()}
	}
	if err := meta.Validate(); err != nil {
		return types.Metadata{}, "", err
	}
	return meta, string(rest), nil
}

// Format serializes metadata and body back into article text. Absent
// optional fields are omitted; empty metadata serializes as the empty
// mapping marker.
func Format(meta types.Metadata, body string) (string, error) {
	out, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("serializing metadata: %w", err)
	}
	return fmt.Sprintf("---\n%s---\n%s", out, body), nil
}

// ReadFile reads and parses an article file.
func ReadFile(path string) (types.Metadata, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Metadata{}, "", fmt.Errorf("reading %s: %w", path, err)
	}
	meta, body, err := Parse(string(data))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return types.Metadata{}, "", err
	}
	return meta, body, nil
}

// WriteFile serializes metadata and body and writes them to path.
func WriteFile(path string, meta types.Metadata, body string) error {
	content, err := Format(meta, body)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Update reads an article file, applies mutate to its metadata in place,
// and writes the result back. This is the only production path that
// mutates a file's metadata, so external edits between pipeline steps are
// picked up rather than clobbered.
func Update(path string, mutate func(*types.Metadata) error) error {
	meta, body, err := ReadFile(path)
	if err != nil {
		return err
	}
	if err := mutate(&meta); err != nil {
		return err
	}
	return WriteFile(path, meta, body)
}
