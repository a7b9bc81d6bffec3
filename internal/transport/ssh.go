// Package transport dials the SSH connections remote bundles are read over.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultSSHPort is used when SSHOpts.Port is zero.
const DefaultSSHPort = 22

// SSHOpts configures SSH connection behavior.
type SSHOpts struct {
	User       string // empty = current user
	Port       int    // 0 = DefaultSSHPort
	KeyFile    string // override key file path; empty = try defaults
	Password   string // empty = skip password auth
	KnownHosts string // empty = ~/.ssh/known_hosts
}

// ErrNoAuthMethods is returned when no agent, key or password is usable.
var ErrNoAuthMethods = errors.New("no SSH auth methods available (set SSH_AUTH_SOCK, provide a key, or a password)")

// DialSSH connects to host. Auth methods are tried in order: the SSH agent
// (SSH_AUTH_SOCK), key files (opts.KeyFile, or ~/.ssh/id_ed25519, id_ecdsa,
// id_rsa), then opts.Password.
func DialSSH(ctx context.Context, host string, opts SSHOpts) (*ssh.Client, error) {
	userName := opts.User
	if userName == "" {
		u, err := user.Current()
		if err != nil {
			return nil, fmt.Errorf("determine current user: %w", err)
		}
		userName = u.Username
	}

	port := opts.Port
	if port == 0 {
		port = DefaultSSHPort
	}

	methods := buildAuthMethods(opts)
	if len(methods) == 0 {
		return nil, ErrNoAuthMethods
	}

	hostKeyCallback, err := hostKeyCallback(opts.KnownHosts)
	if err != nil {
		// Most CLI tools accept an unknown host on first connection.
		slog.Warn("known_hosts unavailable, host key not verified", "host", host, "error", err)
		hostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // fallback for systems without known_hosts
	}

	config := &ssh.ClientConfig{
		User:            userName,
		Auth:            methods,
		HostKeyCallback: hostKeyCallback,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", addr, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ssh handshake %s: %w", addr, err)
	}
	return ssh.NewClient(c, chans, reqs), nil
}

func buildAuthMethods(opts SSHOpts) []ssh.AuthMethod {
	var methods []ssh.AuthMethod

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	if opts.KeyFile != "" {
		if m := keyFileAuth(opts.KeyFile); m != nil {
			methods = append(methods, m)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
			if m := keyFileAuth(filepath.Join(home, ".ssh", name)); m != nil {
				methods = append(methods, m)
			}
		}
	}

	if opts.Password != "" {
		methods = append(methods, ssh.Password(opts.Password))
	}
	return methods
}

func keyFileAuth(path string) ssh.AuthMethod {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied key path
	if err != nil {
		return nil
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil
	}
	return ssh.PublicKeys(signer)
}

func hostKeyCallback(path string) (ssh.HostKeyCallback, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	return knownhosts.New(path)
}
