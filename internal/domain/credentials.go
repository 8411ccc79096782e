package domain

import "fmt"

// Credentials is a username/password pair. It lives only in memory and is
// never persisted or printed.
type Credentials struct {
	Username string `json:"-" yaml:"-"`
	Password string `json:"-" yaml:"-"`
}

// NewCredentials creates a credential pair
func NewCredentials(username, password string) *Credentials {
	return &Credentials{Username: username, Password: password}
}

// Valid reports whether a password is present. The username may be empty for
// transports that authenticate with a shared secret only (SNMPv2c community).
func (c *Credentials) Valid() bool {
	return c != nil && c.Password != ""
}

// String redacts the password
func (c Credentials) String() string {
	return fmt.Sprintf("%s:****", c.Username)
}

// GoString redacts the password for %#v
func (c Credentials) GoString() string {
	return fmt.Sprintf("domain.Credentials{Username:%q, Password:\"****\"}", c.Username)
}
