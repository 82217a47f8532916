package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/fretwise/internal/theory"
	"github.com/starford/fretwise/internal/tracker"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration. Values come from the
// YAML file first; FRETWISE_* environment variables override them.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Library  LibraryConfig     `yaml:"library"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Quiz     QuizConfig        `yaml:"quiz"`
	Explorer ExplorerConfig    `yaml:"explorer"`
	Sessions SessionsConfig    `yaml:"sessions"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.App, &c.Library, &c.SQLite, &c.Quiz, &c.Explorer, &c.Sessions} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" env:"FRETWISE_LOG_LEVEL"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port" env:"FRETWISE_HTTP_PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"FRETWISE_HTTP_SHUTDOWN_TIMEOUT"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// LibraryConfig points at the directory of chord-set YAML documents.
// An empty Path serves the built-in sets only.
type LibraryConfig struct {
	Path     string        `yaml:"path" env:"FRETWISE_LIBRARY_PATH"`
	Watch    bool          `yaml:"watch" env:"FRETWISE_LIBRARY_WATCH"`
	Debounce time.Duration `yaml:"debounce" env:"FRETWISE_LIBRARY_DEBOUNCE"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"FRETWISE_SQLITE_PATH"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// QuizConfig controls how quiz rounds are drawn and judged.
type QuizConfig struct {
	ChordSet    string `yaml:"chord_set" env:"FRETWISE_QUIZ_CHORD_SET"`
	MatchPolicy string `yaml:"match_policy" env:"FRETWISE_QUIZ_MATCH_POLICY"`
}

// Validate validates the quiz configuration.
func (c *QuizConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ChordSet, validation.Required),
		validation.Field(&c.MatchPolicy, validation.Required,
			validation.In(string(tracker.MatchSuperset), string(tracker.MatchExact))),
	)
}

// Policy returns the parsed match policy.
func (c *QuizConfig) Policy() tracker.MatchPolicy {
	return tracker.MatchPolicy(c.MatchPolicy)
}

// ExplorerConfig selects the chord set offered by explorer sessions.
type ExplorerConfig struct {
	ChordSet string `yaml:"chord_set" env:"FRETWISE_EXPLORER_CHORD_SET"`
}

// Validate validates the explorer configuration.
func (c *ExplorerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ChordSet, validation.Required),
	)
}

// SessionsConfig bounds the in-memory session store.
type SessionsConfig struct {
	Max           int           `yaml:"max" env:"FRETWISE_SESSIONS_MAX"`
	IdleTimeout   time.Duration `yaml:"idle_timeout" env:"FRETWISE_SESSIONS_IDLE_TIMEOUT"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"FRETWISE_SESSIONS_SWEEP_INTERVAL"`
}

// Validate validates the session configuration.
func (c *SessionsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Max, validation.Min(0)),
		validation.Field(&c.IdleTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.SweepInterval, validation.When(c.IdleTimeout > 0, validation.Required, validation.Min(time.Second))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" env:"FRETWISE_AUTH_MODE"`
	Token string `yaml:"token" env:"FRETWISE_AUTH_TOKEN"`
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
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:            8080,
				ShutdownTimeout: 10 * time.Second,
			},
		},
		Library: LibraryConfig{
			Path:     "./library",
			Watch:    true,
			Debounce: 250 * time.Millisecond,
		},
		SQLite: SQLiteConfig{
			Path: "./fretwise.db",
		},
		Quiz: QuizConfig{
			ChordSet:    theory.QuizSetName,
			MatchPolicy: string(tracker.MatchSuperset),
		},
		Explorer: ExplorerConfig{
			ChordSet: theory.ExplorerSetName,
		},
		Sessions: SessionsConfig{
			Max:           1000,
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
