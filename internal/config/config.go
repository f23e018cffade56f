// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves the runtime configuration from environment
// variables, an optional multi-account config file, and CLI overrides.
// Resolution is fail-fast: a broken account or provider set aborts the
// run before any article is touched.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wx-press/pkg/types"
)

// Environment variable names for legacy single-account mode.
const (
	EnvAppID      = "WECHAT_APP_ID"
	EnvAppSecret  = "WECHAT_APP_SECRET"
	EnvProvider   = "AI_PROVIDER"
	EnvOpenAIKey  = "OPENAI_API_KEY"
	EnvGeminiKey  = "GEMINI_API_KEY"
	EnvOpenAIBase = "OPENAI_BASE_URL"
	EnvGeminiBase = "GEMINI_BASE_URL"
)

// envAccountName is the synthetic account name used in environment mode.
const envAccountName = "default"

// MissingCredentialError names the specific environment variable that was
// required but absent.
type MissingCredentialError struct {
	Var string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing required environment variable: %s", e.Var)
}

// EmptyAccountSetError reports a config file that declares no accounts.
type EmptyAccountSetError struct {
	Path string
}

func (e *EmptyAccountSetError) Error() string {
	return fmt.Sprintf("no accounts declared in %s", e.Path)
}

// AccountNotFoundError reports a requested account name that is not in
// the account set, listing the valid names.
type AccountNotFoundError struct {
	Name      string
	Available []string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %q not found, available: %s", e.Name, strings.Join(e.Available, ", "))
}

// UnsupportedProviderError reports an AI provider selector naming a
// backend this tool does not implement.
type UnsupportedProviderError struct {
	Name string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported AI provider %q (supported: openai, gemini)", e.Name)
}

// Config is the fully resolved runtime configuration: the active account,
// the full account set, and the optional AI provider selection.
type Config struct {
	// Account is the active publishing account.
	Account types.Account

	// Accounts maps account name to account, covering every declared
	// account including the active one.
	Accounts map[string]types.Account

	// AI selects the cover-generation backend; nil disables generation.
	AI *types.ProviderSelection

	// Verbose switches the colored status lines for leveled log lines.
	Verbose bool

	// DefaultTheme and DefaultCode are applied in memory to articles
	// that do not set their own; they are never written back.
	DefaultTheme string
	DefaultCode  string

	// Source is the config file the configuration came from, empty in
	// environment mode.
	Source string

	// names preserves account declaration order for listings and the
	// first-account selection fallback.
	names []string
}

// Names returns the account names in declaration order.
func (c *Config) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// FromEnvironment builds a single-account configuration from environment
// variables. The two credential variables are required; the AI provider
// is optional and silently disabled when its key variable is absent.
func FromEnvironment() (*Config, error) {
	appID := os.Getenv(EnvAppID)
	if appID == "" {
		return nil, &MissingCredentialError{Var: EnvAppID}
	}
	appSecret := os.Getenv(EnvAppSecret)
	if appSecret == "" {
		return nil, &MissingCredentialError{Var: EnvAppSecret}
	}

	ai, err := providerFromEnvironment()
	if err != nil {
		return nil, err
	}

	account := types.Account{
		Name:      envAccountName,
		AppID:     appID,
		AppSecret: appSecret,
	}
	return &Config{
		Account:  account,
		Accounts: map[string]types.Account{account.Name: account},
		AI:       ai,
		names:    []string{account.Name},
	}, nil
}

// providerFromEnvironment resolves the optional AI provider selection.
// A selector naming a known provider without its key variable yields no
// provider, not an error.
func providerFromEnvironment() (*types.ProviderSelection, error) {
	selector := strings.ToLower(strings.TrimSpace(os.Getenv(EnvProvider)))
	if selector == "" {
		selector = string(types.ProviderOpenAI)
	}

	switch types.ProviderKind(selector) {
	case types.ProviderOpenAI:
		key := os.Getenv(EnvOpenAIKey)
		if key == "" {
			return nil, nil
		}
		return &types.ProviderSelection{
			Kind:    types.ProviderOpenAI,
			APIKey:  key,
			BaseURL: os.Getenv(EnvOpenAIBase),
		}, nil
	case types.ProviderGemini:
		key := os.Getenv(EnvGeminiKey)
		if key == "" {
			return nil, nil
		}
		return &types.ProviderSelection{
			Kind:    types.ProviderGemini,
			APIKey:  key,
			BaseURL: os.Getenv(EnvGeminiBase),
		}, nil
	default:
		return nil, &UnsupportedProviderError{Name: selector}
	}
}

// fileSchema is the on-disk shape of a multi-account config file.
type fileSchema struct {
	Default  string                   `yaml:"default" toml:"default"`
	Accounts accountSet               `yaml:"accounts" toml:"accounts"`
	AI       *types.ProviderSelection `yaml:"ai" toml:"ai"`
	Settings fileSettings             `yaml:"settings" toml:"settings"`
}

type fileSettings struct {
	Verbose      bool   `yaml:"verbose" toml:"verbose"`
	DefaultTheme string `yaml:"default_theme" toml:"default_theme"`
	DefaultCode  string `yaml:"default_code" toml:"default_code"`
}

// accountSet is an ordered account map. YAML decoding walks the mapping
// node so declaration order survives; TOML order is recovered separately.
type accountSet struct {
	byName map[string]types.Account
	names  []string
}

func (s *accountSet) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("accounts must be a mapping")
	}
	s.byName = make(map[string]types.Account, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		name := value.Content[i].Value
		var acct types.Account
		if err := value.Content[i+1].Decode(&acct); err != nil {
			return fmt.Errorf("account %q: %w", name, err)
		}
		acct.Name = name
		s.byName[name] = acct
		s.names = append(s.names, name)
	}
	return nil
}

// tomlSchema mirrors fileSchema for go-toml/v2, which decodes tables
// into plain maps; declaration order is recovered afterwards from the
// raw document.
type tomlSchema struct {
	Default  string                   `toml:"default"`
	Accounts map[string]types.Account `toml:"accounts"`
	AI       *types.ProviderSelection `toml:"ai"`
	Settings fileSettings             `toml:"settings"`
}

// FromFile builds a configuration from a multi-account config file. The
// serialization is selected by extension (.yaml/.yml or .toml). Account
// selection order: requestedAccount, then the file's default, then the
// first declared account.
func FromFile(path, requestedAccount string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var schema fileSchema
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case ".toml":
		var ts tomlSchema
		if err := toml.Unmarshal(data, &ts); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		schema.Default = ts.Default
		schema.AI = ts.AI
		schema.Settings = ts.Settings
		schema.Accounts.byName = make(map[string]types.Account, len(ts.Accounts))
		for name, acct := range ts.Accounts {
			acct.Name = name
			schema.Accounts.byName[name] = acct
			schema.Accounts.names = append(schema.Accounts.names, name)
		}
		schema.Accounts.names = tomlAccountOrder(string(data), schema.Accounts.names)
	default:
		return nil, fmt.Errorf("unsupported config file format %q (use .yaml, .yml, or .toml)", ext)
	}

	if len(schema.Accounts.byName) == 0 {
		return nil, &EmptyAccountSetError{Path: path}
	}

	selected := requestedAccount
	if selected == "" {
		selected = schema.Default
	}
	if selected == "" {
		selected = schema.Accounts.names[0]
	}
	active, ok := schema.Accounts.byName[selected]
	if !ok {
		return nil, &AccountNotFoundError{Name: selected, Available: sortedNames(schema.Accounts.byName)}
	}

	ai := schema.AI
	if ai == nil {
		// No provider block in the file: fall back to the environment.
		ai, err = providerFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Account:      active,
		Accounts:     schema.Accounts.byName,
		AI:           ai,
		Verbose:      schema.Settings.Verbose,
		DefaultTheme: schema.Settings.DefaultTheme,
		DefaultCode:  schema.Settings.DefaultCode,
		Source:       path,
		names:        schema.Accounts.names,
	}
	if err := cfg.validateDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// tomlAccountOrder sorts account names by the byte offset of their
// [accounts.<name>] header, recovering declaration order lost by the map
// decode. Names without a header (inline tables) keep map order at the end.
func tomlAccountOrder(doc string, names []string) []string {
	offset := func(name string) int {
		for _, header := range []string{"[accounts." + name + "]", "accounts." + name} {
			if i := strings.Index(doc, header); i >= 0 {
				return i
			}
		}
		return len(doc)
	}
	ordered := make([]string, len(names))
	copy(ordered, names)
	sort.SliceStable(ordered, func(i, j int) bool {
		return offset(ordered[i]) < offset(ordered[j])
	})
	return ordered
}

func sortedNames(accounts map[string]types.Account) []string {
	names := make([]string, 0, len(accounts))
	for name := range accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateDefaults checks the optional global theme/code settings against
// the metadata whitelists at load time.
func (c *Config) validateDefaults() error {
	if c.DefaultTheme != "" && !types.IsValidTheme(c.DefaultTheme) {
		return &types.ValidationError{Field: "default_theme", Value: c.DefaultTheme, Allowed: types.ValidThemes}
	}
	if c.DefaultCode != "" && !types.IsValidCodeHighlighter(c.DefaultCode) {
		return &types.ValidationError{Field: "default_code", Value: c.DefaultCode, Allowed: types.ValidCodeHighlighters}
	}
	return nil
}

// Validate checks the resolved configuration: a non-empty account set and
// non-blank credentials on every declared account, not just the active one.
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return &EmptyAccountSetError{Path: c.Source}
	}
	if err := validateAccount(c.Account); err != nil {
		return err
	}
	for _, name := range c.names {
		if err := validateAccount(c.Accounts[name]); err != nil {
			return err
		}
	}
	return c.validateDefaults()
}

func validateAccount(acct types.Account) error {
	if strings.TrimSpace(acct.AppID) == "" {
		return fmt.Errorf("account %q: app ID cannot be empty", acct.Name)
	}
	if strings.TrimSpace(acct.AppSecret) == "" {
		return fmt.Errorf("account %q: app secret cannot be empty", acct.Name)
	}
	return nil
}

// SwitchAccount replaces the active account with another entry from the
// account set. The set itself is never modified.
func (c *Config) SwitchAccount(name string) error {
	acct, ok := c.Accounts[name]
	if !ok {
		return &AccountNotFoundError{Name: name, Available: sortedNames(c.Accounts)}
	}
	c.Account = acct
	return nil
}
