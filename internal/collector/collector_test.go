package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"labsync/internal/driver"
)

var target = driver.Target{Host: "172.20.20.2", Username: "admin", Password: "admin", DeviceType: "arista_eos"}

func TestNewUnsupportedDriver(t *testing.T) {
	c, err := New("unsupported", target)
	assert.Nil(t, c)

	var unsupported *driver.UnsupportedDriverError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "unsupported", unsupported.Name)
}

func TestNewResolvesAlias(t *testing.T) {
	c, err := New("napalm", target)
	require.NoError(t, err)
	assert.Equal(t, "snmp", c.Driver())
	assert.Equal(t, target, c.Target())
}

func TestCloseWithoutOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := driver.NewMockDriver(ctrl)

	c, err := New("ignored", target, WithDriver(d))
	require.NoError(t, err)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestRetrievalBeforeOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := driver.NewMockDriver(ctrl)
	d.EXPECT().Name().Return("ssh").AnyTimes()

	c, err := New("ssh", target, WithDriver(d))
	require.NoError(t, err)

	res := c.Facts(context.Background())
	assert.False(t, res.OK())
	assert.True(t, res.Value.IsZero())
	assert.True(t, errors.Is(res.Err, driver.ErrNotConnected))

	assert.True(t, errors.Is(c.Interfaces(context.Background()).Err, driver.ErrNotConnected))
	assert.True(t, errors.Is(c.Config(context.Background()).Err, driver.ErrNotConnected))
}

func TestSessionCollectsAndCloses(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := driver.NewMockDriver(ctrl)
	ctx := context.Background()

	facts := driver.Facts{Hostname: "leaf1", Serial: "SN1", OSVersion: "4.28.0F"}
	ifaces := []driver.InterfaceFacts{{Name: "Ethernet1", Enabled: true}}

	gomock.InOrder(
		d.EXPECT().Connect(ctx, target).Return(nil),
		d.EXPECT().Facts(ctx).Return(facts, nil),
		d.EXPECT().Interfaces(ctx).Return(ifaces, nil),
		d.EXPECT().Close().Return(nil),
	)

	c, err := New("ssh", target, WithDriver(d))
	require.NoError(t, err)

	err = c.Session(ctx, func(ctx context.Context, c *Collector) error {
		f := c.Facts(ctx)
		require.True(t, f.OK())
		assert.Equal(t, facts, f.Value)

		i := c.Interfaces(ctx)
		require.True(t, i.OK())
		assert.Equal(t, ifaces, i.Value)
		return nil
	})
	require.NoError(t, err)

	// already closed
	assert.NoError(t, c.Close())
}

func TestFactsFailureYieldsEmptyResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := driver.NewMockDriver(ctrl)
	ctx := context.Background()

	collErr := &driver.CollectionError{Driver: "snmp", Host: target.Host, Op: "facts", Err: errors.New("timeout")}

	d.EXPECT().Connect(ctx, target).Return(nil)
	d.EXPECT().Facts(ctx).Return(driver.Facts{}, collErr)
	d.EXPECT().Close().Return(nil)

	c, err := New("snmp", target, WithDriver(d))
	require.NoError(t, err)

	var res Result[driver.Facts]
	require.NoError(t, c.Session(ctx, func(ctx context.Context, c *Collector) error {
		res = c.Facts(ctx)
		return nil
	}))

	assert.True(t, res.Value.IsZero())
	assert.Equal(t, collErr, res.Err)
}

func TestSessionConnectFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := driver.NewMockDriver(ctrl)
	ctx := context.Background()

	connErr := &driver.ConnectionError{Driver: "ssh", Host: target.Host, Err: errors.New("auth failed")}
	d.EXPECT().Connect(ctx, target).Return(connErr)

	c, err := New("ssh", target, WithDriver(d))
	require.NoError(t, err)

	called := false
	err = c.Session(ctx, func(context.Context, *Collector) error {
		called = true
		return nil
	})

	assert.False(t, called)
	var ce *driver.ConnectionError
	assert.True(t, errors.As(err, &ce))
	assert.NoError(t, c.Close())
}

func TestSessionJoinsCloseError(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := driver.NewMockDriver(ctrl)
	ctx := context.Background()

	fnErr := errors.New("apply failed")
	closeErr := errors.New("broken pipe")

	d.EXPECT().Name().Return("ssh").AnyTimes()
	d.EXPECT().Connect(ctx, target).Return(nil)
	d.EXPECT().Close().Return(closeErr)

	c, err := New("ssh", target, WithDriver(d))
	require.NoError(t, err)

	err = c.Session(ctx, func(context.Context, *Collector) error { return fnErr })
	assert.True(t, errors.Is(err, fnErr))
	assert.True(t, errors.Is(err, closeErr))
}

func TestSessionClosesOnPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := driver.NewMockDriver(ctrl)
	ctx := context.Background()

	d.EXPECT().Connect(ctx, target).Return(nil)
	d.EXPECT().Close().Return(nil)

	c, err := New("ssh", target, WithDriver(d))
	require.NoError(t, err)

	assert.Panics(t, func() {
		_ = c.Session(ctx, func(context.Context, *Collector) error { panic("boom") })
	})
}
