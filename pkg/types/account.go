// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Account is one named credential pair for the publishing platform.
type Account struct {
	// Name is the unique key the account is selected by.
	Name string `yaml:"-" toml:"-"`

	// AppID is the platform application ID.
	AppID string `yaml:"app_id" toml:"app_id"`

	// AppSecret is the platform application secret.
	AppSecret string `yaml:"app_secret" toml:"app_secret"`

	// Description is an optional free-form label shown in account listings.
	Description string `yaml:"description,omitempty" toml:"description,omitempty"`
}

// ProviderKind identifies an AI backend. The set is closed: every
// capability call site switches over it exhaustively.
type ProviderKind string

const (
	ProviderOpenAI ProviderKind = "openai"
	ProviderGemini ProviderKind = "gemini"
)

// ProviderSelection names the AI backend to use for cover generation,
// with its API key and an optional base-URL override. It carries no
// mutable state.
type ProviderSelection struct {
	Kind    ProviderKind `yaml:"provider" toml:"provider"`
	APIKey  string       `yaml:"api_key" toml:"api_key"`
	BaseURL string       `yaml:"base_url,omitempty" toml:"base_url,omitempty"`
}
