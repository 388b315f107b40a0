// Package config provides configuration loading and management for envsync.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/envsync/internal/promotion/normalize"
	"github.com/stacklok/envsync/internal/telemetry"
	"github.com/stacklok/envsync/internal/translation"
)

const (
	// EnvPrefix is the prefix of every environment variable override
	EnvPrefix = "ENVSYNC"

	// PasswordEnvVar holds the database password when no password file is configured
	PasswordEnvVar = "ENVSYNC_DATABASE_PASSWORD"

	// DefaultAddress is the default HTTP listen address
	DefaultAddress = ":8080"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
	env  *viper.Viper
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// WithEnvOverrides applies ENVSYNC_* environment variables on top of the file
func WithEnvOverrides() Option {
	return func(cfg *loaderConfig) error {
		v := viper.New()
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		cfg.env = v
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Database  *DatabaseConfig   `yaml:"database,omitempty"`
	Promotion PromotionConfig   `yaml:"promotion"`
	Auth      AuthConfig        `yaml:"auth"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// AuthMode selects how the caller identity is resolved
type AuthMode string

const (
	// AuthModeHeaders trusts the identity headers set by a fronting gateway
	AuthModeHeaders AuthMode = "headers"
	// AuthModeJWT derives the identity from a signed bearer token
	AuthModeJWT AuthMode = "jwt"
)

// AuthConfig defines how API callers are identified
type AuthConfig struct {
	// Mode defaults to headers
	Mode AuthMode `yaml:"mode,omitempty"`

	// JWT is required in jwt mode
	JWT *JWTConfig `yaml:"jwt,omitempty"`
}

// GetMode returns the auth mode, defaulting to AuthModeHeaders
func (a *AuthConfig) GetMode() AuthMode {
	if a.Mode == "" {
		return AuthModeHeaders
	}
	return a.Mode
}

// JWTConfig configures HMAC signed bearer tokens
type JWTConfig struct {
	// SecretFile holds the shared HMAC secret
	SecretFile string `yaml:"secretFile"`

	// Issuer is the expected iss claim, unchecked when empty
	Issuer string `yaml:"issuer,omitempty"`

	// Audience is the expected aud claim, unchecked when empty
	Audience string `yaml:"audience,omitempty"`

	// OrganizationClaim names the claim carrying the organization id, defaults to "org"
	OrganizationClaim string `yaml:"organizationClaim,omitempty"`

	// Realm is reported in WWW-Authenticate challenges
	Realm string `yaml:"realm,omitempty"`
}

// GetSecret reads the HMAC secret, trimming surrounding whitespace
func (j *JWTConfig) GetSecret() ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(j.SecretFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read jwt secret from file %s: %w", j.SecretFile, err)
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return nil, fmt.Errorf("jwt secret file %s is empty", j.SecretFile)
	}
	return []byte(secret), nil
}

// GetOrganizationClaim returns the organization claim name
func (j *JWTConfig) GetOrganizationClaim() string {
	if j.OrganizationClaim == "" {
		return "org"
	}
	return j.OrganizationClaim
}

// ServerConfig defines the HTTP API settings
type ServerConfig struct {
	// Address is the listen address, defaults to ":8080"
	Address string `yaml:"address,omitempty"`

	// RequestTimeout bounds a single diff or publish request (e.g., "2m")
	RequestTimeout string `yaml:"requestTimeout,omitempty"`
}

// GetAddress returns the listen address, using DefaultAddress if not specified
func (s *ServerConfig) GetAddress() string {
	if s.Address == "" {
		return DefaultAddress
	}
	return s.Address
}

// GetRequestTimeout returns the request timeout, zero when unset
func (s *ServerConfig) GetRequestTimeout() time.Duration {
	d, _ := time.ParseDuration(s.RequestTimeout)
	return d
}

// PromotionConfig defines the promotion engine settings
type PromotionConfig struct {
	// Enterprise enables enterprise-only capabilities
	Enterprise bool `yaml:"enterprise"`

	// SelfHosted marks a self-hosted installation
	SelfHosted bool `yaml:"selfHosted"`

	// BatchSize is the default deletion batch size of a publish
	BatchSize int `yaml:"batchSize,omitempty"`

	// Transactional runs every publish in one store session
	Transactional bool `yaml:"transactional"`

	// CompareRules are jq expressions applied to normalized resources before comparison
	CompareRules CompareRulesConfig `yaml:"compareRules"`
}

// CompareRulesConfig holds one optional jq expression per resource type
type CompareRulesConfig struct {
	Workflow string `yaml:"workflow,omitempty"`
	Step     string `yaml:"step,omitempty"`
	Layout   string `yaml:"layout,omitempty"`
}

// CompiledRules are the compiled compare rules. Unset rules are nil.
type CompiledRules struct {
	Workflow *normalize.Rule
	Step     *normalize.Rule
	Layout   *normalize.Rule
}

// Compile compiles every configured rule
func (c *CompareRulesConfig) Compile() (CompiledRules, error) {
	var rules CompiledRules
	var errs []error
	var err error
	if rules.Workflow, err = normalize.CompileRule(c.Workflow); err != nil {
		errs = append(errs, fmt.Errorf("workflow: %w", err))
	}
	if rules.Step, err = normalize.CompileRule(c.Step); err != nil {
		errs = append(errs, fmt.Errorf("step: %w", err))
	}
	if rules.Layout, err = normalize.CompileRule(c.Layout); err != nil {
		errs = append(errs, fmt.Errorf("layout: %w", err))
	}
	return rules, errors.Join(errs...)
}

// Features returns the installation feature switches
func (p *PromotionConfig) Features() translation.Features {
	return translation.Features{Enterprise: p.Enterprise, SelfHosted: p.SelfHosted}
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the minimum number of idle connections kept in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from ENVSYNC_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(PasswordEnvVar); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s environment variable", PasswordEnvVar,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	), nil
}

// LoadConfig loads configuration from a YAML file and the environment.
// Without a path only defaults and environment overrides apply.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	var config Config
	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if loaderCfg.env != nil {
		config.applyEnv(loaderCfg.env)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyEnv overrides scalar settings with ENVSYNC_<SECTION>_<KEY> variables
func (c *Config) applyEnv(v *viper.Viper) {
	if v.IsSet("server.address") {
		c.Server.Address = v.GetString("server.address")
	}
	if v.IsSet("promotion.enterprise") {
		c.Promotion.Enterprise = v.GetBool("promotion.enterprise")
	}
	if v.IsSet("promotion.selfhosted") {
		c.Promotion.SelfHosted = v.GetBool("promotion.selfhosted")
	}
	if v.IsSet("auth.mode") {
		c.Auth.Mode = AuthMode(v.GetString("auth.mode"))
	}
	if v.IsSet("promotion.transactional") {
		c.Promotion.Transactional = v.GetBool("promotion.transactional")
	}

	if !v.IsSet("database.host") && c.Database == nil {
		return
	}
	if c.Database == nil {
		c.Database = &DatabaseConfig{}
	}
	if v.IsSet("database.host") {
		c.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		c.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		c.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.name") {
		c.Database.Database = v.GetString("database.name")
	}
	if v.IsSet("database.sslmode") {
		c.Database.SSLMode = v.GetString("database.sslmode")
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.Server.RequestTimeout != "" {
		if _, err := time.ParseDuration(c.Server.RequestTimeout); err != nil {
			return fmt.Errorf("server.requestTimeout must be a valid duration (e.g., '30s', '2m'): %w", err)
		}
	}

	if c.Promotion.BatchSize < 0 {
		return fmt.Errorf("promotion.batchSize must not be negative, got %d", c.Promotion.BatchSize)
	}
	if _, err := c.Promotion.CompareRules.Compile(); err != nil {
		return fmt.Errorf("promotion.compareRules: %w", err)
	}

	switch c.Auth.GetMode() {
	case AuthModeHeaders:
	case AuthModeJWT:
		if c.Auth.JWT == nil || c.Auth.JWT.SecretFile == "" {
			return fmt.Errorf("auth.jwt.secretFile is required when auth.mode is %q", AuthModeJWT)
		}
	default:
		return fmt.Errorf("auth.mode must be %q or %q, got %q", AuthModeHeaders, AuthModeJWT, c.Auth.Mode)
	}

	if c.Database != nil && c.Database.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("database.connMaxLifetime must be a valid duration: %w", err)
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}
