package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHRunner executes commands on a remote host over SSH. CryptoPro CSP is
// commonly installed on a dedicated signing host; this runner lets the CLI
// drive it from anywhere.
type SSHRunner struct {
	Host                        string
	Port                        string
	User                        string
	KeyPath                     string
	Passphrase                  []byte
	KnownHostsPath              string
	InsecureSkipHostKeyChecking bool
	Timeout                     time.Duration
}

func (r SSHRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	client, err := r.dial(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return nil, nil, err
	}
	defer session.Close()

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-done:
		}
	}()

	err = session.Run(joinCommand(name, args))
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			// Same contract as ExecRunner: the command ran, its outcome
			// lives in the captured output.
			return stdout.Bytes(), stderr.Bytes(), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout.Bytes(), stderr.Bytes(), ctxErr
		}
		return stdout.Bytes(), stderr.Bytes(), err
	}

	return stdout.Bytes(), stderr.Bytes(), nil
}

func (r SSHRunner) dial(ctx context.Context) (*ssh.Client, error) {
	address, err := r.address()
	if err != nil {
		return nil, err
	}

	config, err := r.clientConfig()
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	d.Timeout = r.Timeout
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return ssh.NewClient(clientConn, chans, reqs), nil
}

func (r SSHRunner) address() (string, error) {
	host := strings.TrimSpace(r.Host)
	if host == "" {
		return "", fmt.Errorf("ssh host is required")
	}

	if r.Port != "" {
		return net.JoinHostPort(host, r.Port), nil
	}

	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}

	return net.JoinHostPort(host, "22"), nil
}

func (r SSHRunner) clientConfig() (*ssh.ClientConfig, error) {
	if r.User == "" {
		return nil, fmt.Errorf("ssh user is required")
	}

	signer, err := r.signer()
	if err != nil {
		return nil, err
	}

	var hostKeyCallback ssh.HostKeyCallback
	if r.InsecureSkipHostKeyChecking {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		callback, err := r.knownHostsCallback()
		if err != nil {
			return nil, err
		}
		hostKeyCallback = callback
	}

	return &ssh.ClientConfig{
		User:            r.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         r.Timeout,
	}, nil
}

func (r SSHRunner) signer() (ssh.Signer, error) {
	if r.KeyPath == "" {
		return nil, fmt.Errorf("ssh key path is required")
	}

	privateKey, err := os.ReadFile(r.KeyPath)
	if err != nil {
		return nil, err
	}

	if len(r.Passphrase) > 0 {
		return ssh.ParsePrivateKeyWithPassphrase(privateKey, r.Passphrase)
	}

	return ssh.ParsePrivateKey(privateKey)
}

func (r SSHRunner) knownHostsCallback() (ssh.HostKeyCallback, error) {
	path := strings.TrimSpace(r.KnownHostsPath)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("known hosts path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	return knownhosts.New(path)
}

// joinCommand builds a single shell command line with every argument
// single-quoted, so DN values with spaces survive the remote shell.
func joinCommand(cmd string, args []string) string {
	if len(args) == 0 {
		return shellEscape(cmd)
	}

	var builder strings.Builder
	builder.WriteString(shellEscape(cmd))
	for _, arg := range args {
		builder.WriteByte(' ')
		builder.WriteString(shellEscape(arg))
	}

	return builder.String()
}

func shellEscape(value string) string {
	if value == "" {
		return "''"
	}

	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
