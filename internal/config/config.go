package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for recdocs.
type Config struct {
	BaseDir  string         `toml:"base_dir"`
	LogDir   string         `toml:"log_dir"`
	Layout   LayoutConfig   `toml:"layout"`
	Staging  StagingConfig  `toml:"staging"`
	Backend  BackendConfig  `toml:"backend"`
	Vault    VaultConfig    `toml:"vault"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Workflow WorkflowConfig `toml:"workflow"`
}

// LayoutConfig selects how a record's folder is organised.
type LayoutConfig struct {
	Type       string   `toml:"type"`                 // "categorized" (default) or "single"
	Categories []string `toml:"categories,omitempty"` // defaults to the built-in project categories
}

// StagingConfig represents configuration for the staging area.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StagingConfig struct {
	Type       string `toml:"type"`                  // "memory" or "filesystem"
	StagingDir string `toml:"staging_dir,omitempty"` // only used for type=filesystem
	Encrypt    bool   `toml:"encrypt"`               // age-encrypt staged content at rest
	KeyPath    string `toml:"key_path,omitempty"`    // identity file, created on first use
}

// BackendConfig selects where folders and files are stored.
// "local" runs the drive service in-process; "remote" talks to a recdocs server.
type BackendConfig struct {
	Type    string `toml:"type"`              // "local" (default) or "remote"
	URL     string `toml:"url,omitempty"`     // only used for type=remote
	Timeout string `toml:"timeout,omitempty"` // Go duration, defaults to 30s
}

// RequestTimeout parses Timeout, falling back to 30 seconds when unset.
func (b BackendConfig) RequestTimeout() (time.Duration, error) {
	if b.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid backend timeout %q: %w", b.Timeout, err)
	}
	return d, nil
}

// VaultConfig represents configuration for a vault backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"

	// S3-specific fields (only used when Type == "s3")
	S3Bucket       string `toml:"s3_bucket,omitempty"`
	S3Prefix       string `toml:"s3_prefix,omitempty"`
	S3Region       string `toml:"s3_region,omitempty"`
	S3Endpoint     string `toml:"s3_endpoint,omitempty"`      // custom endpoint for MinIO and friends
	S3AccessKeyID  string `toml:"s3_access_key_id,omitempty"` // static credentials; the default chain is used when empty
	S3SecretKey    string `toml:"s3_secret_key,omitempty"`
	S3LinkTTL      string `toml:"s3_link_ttl,omitempty"` // lifetime of presigned links, defaults to 1h
	S3UsePathStyle bool   `toml:"s3_use_path_style,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// LinkTTL parses S3LinkTTL, falling back to one hour when unset.
func (v VaultConfig) LinkTTL() (time.Duration, error) {
	if v.S3LinkTTL == "" {
		return time.Hour, nil
	}
	d, err := time.ParseDuration(v.S3LinkTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid s3 link ttl %q: %w", v.S3LinkTTL, err)
	}
	return d, nil
}

// DatabaseConfig represents configuration for the metadata database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ServerConfig configures `recdocs serve`.
type ServerConfig struct {
	ListenAddr      string   `toml:"listen_addr"`
	AllowedOrigins  []string `toml:"allowed_origins,omitempty"`
	MaxRequestBytes int64    `toml:"max_request_bytes,omitempty"` // 0 means 64 MiB
}

// DefaultMaxRequestBytes bounds upload request bodies when MaxRequestBytes is unset.
const DefaultMaxRequestBytes int64 = 64 << 20

// RequestLimit returns the configured request body limit.
func (s ServerConfig) RequestLimit() int64 {
	if s.MaxRequestBytes <= 0 {
		return DefaultMaxRequestBytes
	}
	return s.MaxRequestBytes
}

// WorkflowConfig tunes the attach workflow.
type WorkflowConfig struct {
	UploadFailure    string `toml:"upload_failure"`              // "discard" (default) or "restore"
	RequestRecipient string `toml:"request_recipient,omitempty"` // address for additional document requests
}

// NewConfig creates a new Config rooted at baseDir with local defaults:
// filesystem staging, an in-process backend over a filesystem vault and SQLite.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Layout:  LayoutConfig{Type: "categorized"},
		Staging: StagingConfig{
			Type:       "filesystem",
			StagingDir: filepath.Join(baseDir, "staging"),
			KeyPath:    filepath.Join(baseDir, "keys", "staging.key"),
		},
		Backend: BackendConfig{Type: "local", Timeout: "30s"},
		Vault: VaultConfig{
			Type:        "filesystem",
			FSVaultRoot: filepath.Join(baseDir, "vault"),
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "db")},
		Server:   ServerConfig{ListenAddr: ":8080"},
		Workflow: WorkflowConfig{UploadFailure: "discard"},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
