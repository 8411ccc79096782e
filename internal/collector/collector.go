// Package collector wraps a single driver session behind a protocol-agnostic
// facade. The driver is resolved once at construction; retrieval calls never
// fail outright and instead report failure through Result.
package collector

import (
	"context"
	"errors"
	"fmt"

	"labsync/internal/driver"
)

// Result carries a retrieved value or the reason it is empty
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the retrieval succeeded
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Option configures a Collector
type Option func(*Collector)

// WithDriver injects an already built driver instead of resolving one by name
func WithDriver(d driver.Driver) Option {
	return func(c *Collector) {
		c.driver = d
	}
}

// WithOptions sets transport options used when resolving the driver
func WithOptions(opts driver.Options) Option {
	return func(c *Collector) {
		c.opts = opts
	}
}

// Collector owns one transport session to one device.
// A Collector must not be shared between goroutines.
type Collector struct {
	target driver.Target
	opts   driver.Options
	driver driver.Driver
	open   bool
}

// New resolves the named driver. An unknown name fails with
// *driver.UnsupportedDriverError before any network I/O.
func New(name string, target driver.Target, opts ...Option) (*Collector, error) {
	c := &Collector{target: target}
	for _, opt := range opts {
		opt(c)
	}

	if c.driver == nil {
		d, err := driver.New(name, c.opts)
		if err != nil {
			return nil, err
		}
		c.driver = d
	}

	return c, nil
}

// Driver returns the canonical name of the resolved driver
func (c *Collector) Driver() string {
	return c.driver.Name()
}

// Target returns the device the collector talks to
func (c *Collector) Target() driver.Target {
	return c.target
}

// Open establishes the transport session
func (c *Collector) Open(ctx context.Context) error {
	if c.open {
		return nil
	}
	if err := c.driver.Connect(ctx, c.target); err != nil {
		return err
	}
	c.open = true
	return nil
}

// Close releases the session. Closing a collector that was never opened
// or is already closed does nothing.
func (c *Collector) Close() error {
	if !c.open {
		return nil
	}
	c.open = false
	return c.driver.Close()
}

// Session opens the collector, runs fn and closes on every exit path.
// A close failure is joined with fn's error.
func (c *Collector) Session(ctx context.Context, fn func(ctx context.Context, c *Collector) error) (err error) {
	if err := c.Open(ctx); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = c.Close()
			panic(r)
		}
		if cerr := c.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close %s session: %w", c.driver.Name(), cerr))
		}
	}()

	return fn(ctx, c)
}

// Facts returns the device summary, or an empty value and the collection error
func (c *Collector) Facts(ctx context.Context) Result[driver.Facts] {
	if !c.open {
		return Result[driver.Facts]{Err: c.notConnected("facts")}
	}
	facts, err := c.driver.Facts(ctx)
	if err != nil {
		return Result[driver.Facts]{Err: err}
	}
	return Result[driver.Facts]{Value: facts}
}

// Interfaces returns per-interface detail, or nil and the collection error
func (c *Collector) Interfaces(ctx context.Context) Result[[]driver.InterfaceFacts] {
	if !c.open {
		return Result[[]driver.InterfaceFacts]{Err: c.notConnected("interfaces")}
	}
	ifaces, err := c.driver.Interfaces(ctx)
	if err != nil {
		return Result[[]driver.InterfaceFacts]{Err: err}
	}
	return Result[[]driver.InterfaceFacts]{Value: ifaces}
}

// Config returns the running configuration, or "" and the collection error
func (c *Collector) Config(ctx context.Context) Result[string] {
	if !c.open {
		return Result[string]{Err: c.notConnected("config")}
	}
	cfg, err := c.driver.Config(ctx)
	if err != nil {
		return Result[string]{Err: err}
	}
	return Result[string]{Value: cfg}
}

func (c *Collector) notConnected(op string) error {
	return &driver.CollectionError{
		Driver: c.driver.Name(),
		Host:   c.target.Host,
		Op:     op,
		Err:    driver.ErrNotConnected,
	}
}
