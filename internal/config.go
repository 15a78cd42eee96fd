package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/chordbook/internal/fretboard"
	"github.com/starford/chordbook/internal/render"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Library LibraryConfig     `yaml:"library"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Render  RenderConfig      `yaml:"render"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Render.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
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

// LibraryConfig holds the song document and audio directories.
type LibraryConfig struct {
	Path      string `yaml:"path"`
	MediaPath string `yaml:"media_path"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.MediaPath, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
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
	// Normalise empty mode to "disabled" for backward compatibility.
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

// RenderConfig holds the fretboard diagram geometry and print layout.
type RenderConfig struct {
	Geometry fretboard.Geometry  `yaml:"geometry"`
	Print    render.PrintOptions `yaml:"print"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	g := &c.Geometry
	if err := validation.ValidateStruct(g,
		validation.Field(&g.NutWidth, validation.Min(0.0)),
		validation.Field(&g.FretSpacing, validation.Required, validation.Min(1.0)),
		validation.Field(&g.StringSpacing, validation.Required, validation.Min(1.0)),
		validation.Field(&g.ColumnWidth, validation.Required, validation.Min(1.0)),
		validation.Field(&g.MaxFrets, validation.Required, validation.Min(1), validation.Max(36)),
	); err != nil {
		return fmt.Errorf("render: geometry: %w", err)
	}
	p := &c.Print
	if err := validation.ValidateStruct(p,
		validation.Field(&p.LinesPerPage, validation.Min(0), validation.Max(200)),
		validation.Field(&p.FontSize, validation.Required, validation.Min(6.0), validation.Max(24.0)),
		validation.Field(&p.PageSize, validation.Required, validation.In("A3", "A4", "A5", "Letter", "Legal")),
	); err != nil {
		return fmt.Errorf("render: print: %w", err)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Library: LibraryConfig{
			Path:      "./data/songs",
			MediaPath: "./data/media",
		},
		SQLite: SQLiteConfig{
			Path: "./chordbook.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Render: RenderConfig{
			Geometry: fretboard.DefaultGeometry(),
			Print:    render.DefaultPrintOptions(),
		},
	}
}
