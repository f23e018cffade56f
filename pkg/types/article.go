// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the domain types shared across wx-press: article
// metadata, publishing accounts, and AI provider selection.
package types

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Status is the publication marker stored in an article's metadata block.
// Authors sometimes write the published field as a bare YAML boolean, so
// decoding accepts both scalar forms and normalizes booleans to their
// string spelling.
type Status string

const (
	// StatusDraft marks an article uploaded to the platform as a draft.
	StatusDraft Status = "draft"
	// StatusPublished marks an article as publicly published. Files with
	// this status are skipped in directory mode.
	StatusPublished Status = "true"
)

// UnmarshalYAML accepts a string or boolean scalar for the status field.
func (s *Status) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!bool" {
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		if b {
			*s = StatusPublished
		} else {
			*s = "false"
		}
		return nil
	}
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}
	*s = Status(str)
	return nil
}

// Metadata is the typed representation of an article's metadata block.
// Fields not modeled here are captured losslessly in Extra and merged back
// verbatim on serialization.
type Metadata struct {
	// Title of the article.
	Title string `yaml:"title,omitempty"`

	// Published tracks the publication state: absent means never uploaded,
	// "draft" means uploaded as a draft, "true" means publicly published.
	Published Status `yaml:"published,omitempty"`

	// Cover is a file reference to the cover image, relative to the
	// article's directory unless absolute. Generated by AI when missing.
	Cover string `yaml:"cover,omitempty"`

	// Theme selects the article styling. Must be one of ValidThemes.
	Theme string `yaml:"theme,omitempty"`

	// Code selects the syntax highlighter. Must be one of ValidCodeHighlighters.
	Code string `yaml:"code,omitempty"`

	// Description is an optional article summary.
	Description string `yaml:"description,omitempty"`

	// Extra captures any metadata keys not modeled above.
	Extra map[string]any `yaml:",inline"`
}

// IsPublished reports whether the article is publicly published. This is
// the single skip predicate used everywhere: it accepts the canonical
// string marker and, for compatibility with hand-edited files, a boolean
// true stored under a "published" key in Extra.
func (m *Metadata) IsPublished() bool {
	if m.Published == StatusPublished {
		return true
	}
	if v, ok := m.Extra["published"]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// IsDraft reports whether the article was uploaded as a draft.
func (m *Metadata) IsDraft() bool { return m.Published == StatusDraft }

// IsUnpublished reports whether the article has never been uploaded.
func (m *Metadata) IsUnpublished() bool { return m.Published == "" }

// Validate checks theme and code highlighter against their whitelists.
func (m *Metadata) Validate() error {
	if m.Theme != "" && !IsValidTheme(m.Theme) {
		return &ValidationError{Field: "theme", Value: m.Theme, Allowed: ValidThemes}
	}
	if m.Code != "" && !IsValidCodeHighlighter(m.Code) {
		return &ValidationError{Field: "code", Value: m.Code, Allowed: ValidCodeHighlighters}
	}
	return nil
}

// ValidationError reports a metadata field outside its whitelist.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q, available: %s", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// ValidThemes lists the supported article themes.
var ValidThemes = []string{
	"default",
	"lapis",
	"maize",
	"orangeheart",
	"phycat",
	"pie",
	"purple",
	"rainbow",
}

// ValidCodeHighlighters lists the supported syntax highlighters.
var ValidCodeHighlighters = []string{
	"github",
	"github-dark",
	"vscode",
	"atom-one-light",
	"atom-one-dark",
	"solarized-light",
	"solarized-dark",
	"monokai",
	"dracula",
	"xcode",
}

// IsValidTheme reports whether theme is in ValidThemes.
func IsValidTheme(theme string) bool {
	for _, t := range ValidThemes {
		if t == theme {
			return true
		}
	}
	return false
}

// IsValidCodeHighlighter reports whether highlighter is in ValidCodeHighlighters.
func IsValidCodeHighlighter(highlighter string) bool {
	for _, h := range ValidCodeHighlighters {
		if h == highlighter {
			return true
		}
	}
	return false
}
