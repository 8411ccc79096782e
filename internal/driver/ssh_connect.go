package driver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

// commandRunner executes CLI commands on an established session
type commandRunner interface {
	Run(ctx context.Context, cmd string) (string, error)
	Close() error
}

// dialFunc opens an SSH session to addr
type dialFunc func(ctx context.Context, addr string, config *ssh.ClientConfig) (commandRunner, error)

// buildSSHConfig creates a client config for password auth. Network operating
// systems frequently only offer keyboard-interactive, so both are tried.
func buildSSHConfig(t Target, timeout time.Duration) (*ssh.ClientConfig, error) {
	if t.Username == "" {
		return nil, errors.New("username is required for ssh")
	}
	if t.Password == "" {
		return nil, errors.New("password is required for ssh")
	}

	password := t.Password
	challenge := func(_, _ string, questions []string, _ []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range answers {
			answers[i] = password
		}
		return answers, nil
	}

	return &ssh.ClientConfig{
		User: t.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(challenge),
		},
		// Lab devices are rebuilt constantly and regenerate host keys
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}, nil
}

// dialSSH establishes an SSH connection honouring ctx
func dialSSH(timeout time.Duration) dialFunc {
	return func(ctx context.Context, addr string, config *ssh.ClientConfig) (commandRunner, error) {
		dialer := &net.Dialer{Timeout: timeout}

		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to dial: %w", err)
		}

		sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
		}

		return &sshRunner{client: ssh.NewClient(sshConn, chans, reqs)}, nil
	}
}

func sshAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

type sshRunner struct {
	client *ssh.Client
}

// Run executes cmd in a fresh session. A non-zero exit status still
// returns the output; some CLIs exit non-zero on warnings.
func (r *sshRunner) Run(ctx context.Context, cmd string) (string, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)

	go func() {
		out, err := session.CombinedOutput(cmd)
		done <- result{out: out, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			var exitErr *ssh.ExitError
			if errors.As(res.err, &exitErr) {
				return string(res.out), nil
			}
			return "", fmt.Errorf("command %q failed: %w", cmd, res.err)
		}
		return string(res.out), nil
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command %q: %w", cmd, ctx.Err())
	}
}

func (r *sshRunner) Close() error {
	return r.client.Close()
}
