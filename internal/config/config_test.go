package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abakumov/cryptopro-csp/internal/runner"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cspctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// =============================================================================
// Unit Tests: Load
// =============================================================================

func TestU_Load_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Certmgr != "/opt/cprocsp/bin/amd64/certmgr" {
		t.Errorf("Certmgr = %q, want the stock UNIX path", cfg.Certmgr)
	}
	if cfg.Cryptcp != "/opt/cprocsp/bin/amd64/cryptcp" {
		t.Errorf("Cryptcp = %q, want the stock UNIX path", cfg.Cryptcp)
	}
	if cfg.Store != "uMy" {
		t.Errorf("Store = %q, want uMy", cfg.Store)
	}
	if cfg.Timeout.Std() != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
}

func TestU_Load_YAMLFile(t *testing.T) {
	path := writeConfig(t, `
certmgr: /usr/local/bin/certmgr
cryptcp: /usr/local/bin/cryptcp
store: uRoot
timeout: 10s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Certmgr != "/usr/local/bin/certmgr" {
		t.Errorf("Certmgr = %q", cfg.Certmgr)
	}
	if cfg.Store != "uRoot" {
		t.Errorf("Store = %q, want uRoot", cfg.Store)
	}
	if cfg.Timeout.Std() != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
}

func TestU_Load_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "store: uRoot\n")
	t.Setenv("CSPCTL_STORE", "uCA")
	t.Setenv("CSPCTL_CERTMGR", "/env/certmgr")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store != "uCA" {
		t.Errorf("Store = %q, want the env override", cfg.Store)
	}
	if cfg.Certmgr != "/env/certmgr" {
		t.Errorf("Certmgr = %q, want the env override", cfg.Certmgr)
	}
}

func TestU_Load_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("Load() with a missing file should fail")
	}
}

func TestU_Load_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "certmgr: [oops\n")

	if _, err := Load(path); err == nil {
		t.Fatal("Load() with malformed YAML should fail")
	}
}

// =============================================================================
// Unit Tests: Validate
// =============================================================================

func TestU_Validate_RemoteRequiresHostUserKey(t *testing.T) {
	cfg := Default()
	cfg.Remote.Enabled = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() with a bare remote section should fail")
	}

	cfg.Remote.Host = "signer.local"
	cfg.Remote.User = "sign"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() without remote.key_file should fail")
	}

	cfg.Remote.KeyFile = "/home/sign/.ssh/id_ed25519"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestU_Validate_EmptyBinaryPath(t *testing.T) {
	cfg := Default()
	cfg.Cryptcp = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() with an empty cryptcp path should fail")
	}
}

// =============================================================================
// Unit Tests: Runner selection
// =============================================================================

func TestU_Runner_LocalByDefault(t *testing.T) {
	cfg := Default()

	if _, ok := cfg.Runner().(runner.ExecRunner); !ok {
		t.Errorf("Runner() = %T, want runner.ExecRunner", cfg.Runner())
	}
}

func TestU_Runner_SSHWhenRemoteEnabled(t *testing.T) {
	cfg := Default()
	cfg.Remote = Remote{
		Enabled: true,
		Host:    "signer.local",
		User:    "sign",
		KeyFile: "/home/sign/.ssh/id_ed25519",
		Timeout: Duration(5 * time.Second),
	}

	r, ok := cfg.Runner().(runner.SSHRunner)
	if !ok {
		t.Fatalf("Runner() = %T, want runner.SSHRunner", cfg.Runner())
	}
	if r.Host != "signer.local" || r.User != "sign" {
		t.Errorf("SSHRunner = %+v, want host/user from config", r)
	}
}
