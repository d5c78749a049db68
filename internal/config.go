package internal

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/menushell/internal/scan"
	"github.com/starford/menushell/internal/shell"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Shell input modes.
const (
	ShellModeLine   = "line"
	ShellModeSelect = "select"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Tree    TreeConfig        `yaml:"tree"`
	Shell   ShellConfig       `yaml:"shell"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Watch   WatchConfig       `yaml:"watch"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Tree.Validate(); err != nil {
		return err
	}
	if err := c.Shell.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// TreeConfig locates the action tree and the projects directory.
type TreeConfig struct {
	Root        string   `yaml:"root"`
	Projects    string   `yaml:"projects"`
	SkipDirs    []string `yaml:"skip_dirs"`
	MetadataExt string   `yaml:"metadata_ext"`
}

// Validate validates the tree configuration.
func (c *TreeConfig) Validate() error {
	if c.MetadataExt != "" && !strings.HasPrefix(c.MetadataExt, ".") {
		c.MetadataExt = "." + c.MetadataExt
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Projects, validation.Required),
		validation.Field(&c.MetadataExt, validation.Required),
	)
}

// ShellConfig controls the console surface.
type ShellConfig struct {
	Mode           string `yaml:"mode"`
	SeparatorWidth int    `yaml:"separator_width"`
	Prompt         string `yaml:"prompt"`
	// Accessible makes select mode fall back to plain prompts for screen
	// readers.
	Accessible bool `yaml:"accessible"`
}

// Validate validates the shell configuration.
func (c *ShellConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = ShellModeLine
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.In(ShellModeLine, ShellModeSelect)),
		validation.Field(&c.SeparatorWidth, validation.Min(0), validation.Max(400)),
	)
}

// CatalogConfig holds the SQLite menu catalog configuration.
type CatalogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// WatchConfig controls live reload of the tree.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration for the browse API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Tree: TreeConfig{
			Root:        "./tools",
			Projects:    "./projects",
			SkipDirs:    slices.Clone(scan.DefaultSkipDirs),
			MetadataExt: scan.DefaultMetadataExt,
		},
		Shell: ShellConfig{
			Mode:           ShellModeLine,
			SeparatorWidth: shell.DefaultSeparatorWidth,
			Prompt:         "> ",
		},
		Catalog: CatalogConfig{
			Path: "./menushell.db",
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
