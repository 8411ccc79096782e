package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labsync/internal/domain"
	"labsync/internal/logger"
)

func writeSecret(t *testing.T, base, entry, name, value string) {
	t.Helper()
	dir := filepath.Join(base, entry)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value), 0o600))
}

func TestMountedLoad(t *testing.T) {
	base := t.TempDir()
	writeSecret(t, base, "leaf1", "username", "admin\n")
	writeSecret(t, base, "leaf1", "password", "leafpass\n")
	writeSecret(t, base, "default", "username", "labuser")
	writeSecret(t, base, "default", "password", "labpass")
	writeSecret(t, base, "snmp-only", "password", "public")
	writeSecret(t, base, "broken", "username", "nobody")

	m := NewMounted(logger.NewTestLogger(), base)
	require.NoError(t, m.Load())

	c, err := m.Lookup("leaf1")
	require.NoError(t, err)
	assert.Equal(t, domain.Credentials{Username: "admin", Password: "leafpass"}, c)

	c, err = m.Lookup("snmp-only")
	require.NoError(t, err)
	assert.Equal(t, "", c.Username)
	assert.Equal(t, "public", c.Password)

	// no password file, falls back to default
	c, err = m.Lookup("broken")
	require.NoError(t, err)
	assert.Equal(t, "labuser", c.Username)

	c, err = m.Lookup("spine1")
	require.NoError(t, err)
	assert.Equal(t, "labpass", c.Password)
}

func TestMountedPrecedence(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeSecret(t, first, "leaf1", "password", "first")
	writeSecret(t, second, "leaf1", "password", "second")
	writeSecret(t, second, "leaf2", "password", "only-second")

	m := NewMounted(logger.NewTestLogger(), first, second, filepath.Join(first, "missing"))
	require.NoError(t, m.Load())

	c, err := m.Lookup("leaf1")
	require.NoError(t, err)
	assert.Equal(t, "first", c.Password)

	c, err = m.Lookup("leaf2")
	require.NoError(t, err)
	assert.Equal(t, "only-second", c.Password)
}

func TestMountedEmpty(t *testing.T) {
	m := NewMounted(logger.NewTestLogger(), t.TempDir())
	require.NoError(t, m.Load())

	_, err := m.Lookup("leaf1")
	assert.True(t, errors.Is(err, ErrNoCredentials))
}

func TestChain(t *testing.T) {
	overrides := NewMap(nil)
	overrides.Set("leaf1", domain.Credentials{Username: "root", Password: "override"})

	chain := Chain{overrides, NewStatic("admin", "admin")}

	c, err := chain.Lookup("leaf1")
	require.NoError(t, err)
	assert.Equal(t, "override", c.Password)

	c, err = chain.Lookup("spine1")
	require.NoError(t, err)
	assert.Equal(t, "admin", c.Password)

	_, err = Chain{NewMap(nil)}.Lookup("spine1")
	assert.True(t, errors.Is(err, ErrNoCredentials))
}
