// Package config holds the cspctl configuration: where the CSP binaries
// live, which store to use by default, and how to reach a remote signing
// host. Values come from an optional YAML file with CSPCTL_* environment
// overrides on top.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/abakumov/cryptopro-csp/internal/certmgr"
	"github.com/abakumov/cryptopro-csp/internal/cryptcp"
	"github.com/abakumov/cryptopro-csp/internal/runner"
)

const envPrefix = "CSPCTL_"

// Duration is a time.Duration that decodes from "10s" / "1m30s" strings in
// both YAML and environment values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the env
// override parser.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the top-level cspctl configuration.
type Config struct {
	// Certmgr is the path to the certificate store manager binary.
	Certmgr string `yaml:"certmgr" env:"CERTMGR"`

	// Cryptcp is the path to the sign/verify binary.
	Cryptcp string `yaml:"cryptcp" env:"CRYPTCP"`

	// Store is the default certificate store.
	Store string `yaml:"store" env:"STORE"`

	// Timeout bounds a single tool invocation.
	Timeout Duration `yaml:"timeout" env:"TIMEOUT"`

	// Remote, when enabled, runs the tools on a remote signing host
	// over SSH instead of locally.
	Remote Remote `yaml:"remote"`
}

// Remote holds the SSH settings for a remote signing host.
type Remote struct {
	Enabled bool   `yaml:"enabled" env:"REMOTE_ENABLED"`
	Host    string `yaml:"host" env:"REMOTE_HOST"`
	Port    string `yaml:"port" env:"REMOTE_PORT"`
	User    string `yaml:"user" env:"REMOTE_USER"`

	// KeyFile is the SSH private key used to authenticate.
	KeyFile string `yaml:"key_file" env:"REMOTE_KEY_FILE"`

	// PassphraseEnv names the environment variable holding the key
	// passphrase, so the passphrase itself never lands in a file.
	PassphraseEnv string `yaml:"passphrase_env" env:"REMOTE_PASSPHRASE_ENV"`

	// KnownHostsFile overrides ~/.ssh/known_hosts for host key checks.
	KnownHostsFile string `yaml:"known_hosts_file" env:"REMOTE_KNOWN_HOSTS_FILE"`

	// Insecure disables host key verification. Test setups only.
	Insecure bool `yaml:"insecure" env:"REMOTE_INSECURE"`

	Timeout Duration `yaml:"timeout" env:"REMOTE_TIMEOUT"`
}

// Default returns the configuration for a stock CryptoPro CSP installation
// on UNIX platforms.
func Default() Config {
	return Config{
		Certmgr: certmgr.DefaultBinary,
		Cryptcp: cryptcp.DefaultBinary,
		Store:   certmgr.DefaultStore,
		Timeout: Duration(60 * time.Second),
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then CSPCTL_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Certmgr == "" {
		return fmt.Errorf("certmgr path is required")
	}
	if c.Cryptcp == "" {
		return fmt.Errorf("cryptcp path is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if c.Remote.Enabled {
		if c.Remote.Host == "" {
			return fmt.Errorf("remote.host is required when remote is enabled")
		}
		if c.Remote.User == "" {
			return fmt.Errorf("remote.user is required when remote is enabled")
		}
		if c.Remote.KeyFile == "" {
			return fmt.Errorf("remote.key_file is required when remote is enabled")
		}
	}

	return nil
}

// Runner returns the command runner the configuration selects: SSH when
// the remote section is enabled, local execution otherwise.
func (c Config) Runner() runner.Runner {
	if !c.Remote.Enabled {
		return runner.ExecRunner{}
	}

	var passphrase []byte
	if c.Remote.PassphraseEnv != "" {
		passphrase = []byte(os.Getenv(c.Remote.PassphraseEnv))
	}

	return runner.SSHRunner{
		Host:                        c.Remote.Host,
		Port:                        c.Remote.Port,
		User:                        c.Remote.User,
		KeyPath:                     c.Remote.KeyFile,
		Passphrase:                  passphrase,
		KnownHostsPath:              c.Remote.KnownHostsFile,
		InsecureSkipHostKeyChecking: c.Remote.Insecure,
		Timeout:                     c.Remote.Timeout.Std(),
	}
}
