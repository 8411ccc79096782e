package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"labsync/internal/domain"
	"labsync/internal/logger"
)

// DefaultMountedPaths are scanned when no paths are configured
var DefaultMountedPaths = []string{"/secrets/labsync", "/run/secrets/labsync"}

// DefaultEntry is the directory name holding the fallback pair
const DefaultEntry = "default"

// Mounted reads credential pairs from mounted secret directories laid out as
// <path>/<device>/username and <path>/<device>/password. A <path>/default
// entry applies to every device without its own.
type Mounted struct {
	mu    sync.RWMutex
	paths []string
	creds *Map
	log   logger.Logger
}

// NewMounted creates a provider over the given paths. Call Load before use.
func NewMounted(log logger.Logger, paths ...string) *Mounted {
	if len(paths) == 0 {
		paths = DefaultMountedPaths
	}
	return &Mounted{
		paths: paths,
		creds: NewMap(nil),
		log:   log.WithComponent("credentials"),
	}
}

// Load scans the configured paths. Missing paths are skipped, and earlier
// paths take precedence over later ones. It can be called again to refresh.
func (m *Mounted) Load() error {
	next := NewMap(nil)

	for i := len(m.paths) - 1; i >= 0; i-- {
		base := m.paths[i]
		entries, err := os.ReadDir(base)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read secrets path %s: %w", base, err)
		}

		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			c, err := readPair(filepath.Join(base, e.Name()))
			if err != nil {
				m.log.Warn().Err(err).Str("path", base).Str("entry", e.Name()).Msg("Skipping mounted credentials")
				continue
			}
			if e.Name() == DefaultEntry {
				def := c
				next.Default = &def
				continue
			}
			next.Set(e.Name(), c)
		}
	}

	m.mu.Lock()
	m.creds = next
	m.mu.Unlock()

	m.log.Debug().Int("devices", len(next.Devices)).Bool("default", next.Default != nil).Msg("Loaded mounted credentials")
	return nil
}

// Lookup returns the device's mounted pair, then the mounted default
func (m *Mounted) Lookup(device string) (domain.Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds.Lookup(device)
}

func readPair(dir string) (domain.Credentials, error) {
	password, err := readSecret(filepath.Join(dir, "password"))
	if err != nil {
		return domain.Credentials{}, err
	}
	// username is optional for community-only transports
	username, err := readSecret(filepath.Join(dir, "username"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.Credentials{}, err
	}
	return domain.Credentials{Username: username, Password: password}, nil
}

func readSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Chain asks each provider in order and returns the first pair found
type Chain []Provider

// Lookup returns the first provider's pair that is not ErrNoCredentials
func (c Chain) Lookup(device string) (domain.Credentials, error) {
	for _, p := range c {
		creds, err := p.Lookup(device)
		if err == nil {
			return creds, nil
		}
		if !errors.Is(err, ErrNoCredentials) {
			return domain.Credentials{}, err
		}
	}
	return domain.Credentials{}, fmt.Errorf("%w for %s", ErrNoCredentials, device)
}
