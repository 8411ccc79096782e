package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"labsync/internal/collector"
	"labsync/internal/credentials"
	"labsync/internal/domain"
	"labsync/internal/driver"
	"labsync/internal/inventory"
	"labsync/internal/logger"
)

type fakeProber struct {
	up  map[string]bool
	err error
}

func (f *fakeProber) Reachable(_ context.Context, hosts []string) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		out[h] = f.up[h]
	}
	return out, nil
}

// hostFactory hands out a per-host mock driver
func hostFactory(drivers map[string]driver.Driver) CollectorFactory {
	return func(name string, target driver.Target, opts ...collector.Option) (*collector.Collector, error) {
		d, ok := drivers[target.Host]
		if !ok {
			return nil, fmt.Errorf("no driver for %s", target.Host)
		}
		return collector.New(name, target, append(opts, collector.WithDriver(d))...)
	}
}

func healthyDriver(ctrl *gomock.Controller, hostname string) *driver.MockDriver {
	d := driver.NewMockDriver(ctrl)
	d.EXPECT().Name().Return("ssh").AnyTimes()
	d.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nil)
	d.EXPECT().Facts(gomock.Any()).Return(driver.Facts{Hostname: hostname, Serial: "SN-" + hostname}, nil)
	d.EXPECT().Interfaces(gomock.Any()).Return(nil, nil)
	d.EXPECT().Close().Return(nil)
	return d
}

func testSite(t *testing.T, nodes ...[2]string) *domain.Site {
	t.Helper()
	site := domain.NewSite("lab-a")
	for _, n := range nodes {
		d := domain.NewDevice(n[0])
		d.MgmtIP = n[1]
		d.Kind = "linux"
		d.Driver = "linux"
		require.NoError(t, d.JoinSite(site))
	}
	return site
}

func TestRunnerContinuesAfterDeviceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	inv := NewMockInventory(ctrl)
	ctx := context.Background()

	site := testSite(t,
		[2]string{"leaf1", "172.20.20.2/24"},
		[2]string{"leaf2", "172.20.20.3/24"},
		[2]string{"host1", ""},
	)

	broken := driver.NewMockDriver(ctrl)
	broken.EXPECT().Name().Return("ssh").AnyTimes()
	broken.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(&driver.ConnectionError{Driver: "ssh", Host: "172.20.20.3", Err: errors.New("auth failed")})

	drivers := map[string]driver.Driver{
		"172.20.20.2": healthyDriver(ctrl, "leaf1"),
		"172.20.20.3": broken,
	}

	inv.EXPECT().FindSite(gomock.Any(), "lab-a").Return(&inventory.Site{ID: 3, Name: "lab-a", Slug: "lab-a"}, nil)
	inv.EXPECT().FindPlatform(gomock.Any(), "linux").Return(nil, nil)
	inv.EXPECT().FindDevice(gomock.Any(), inventory.DeviceKey{Name: "leaf1", Site: "lab-a"}).Return(nil, nil)
	inv.EXPECT().CreateDevice(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p inventory.DeviceCreate) (*inventory.Device, error) {
			assert.Equal(t, "leaf1", p.Name)
			assert.Equal(t, "SN-leaf1", p.Serial)
			assert.Equal(t, 3, *p.Site)
			return &inventory.Device{ID: 50, Name: p.Name, Serial: p.Serial}, nil
		})

	runner := NewRunner(NewReconciler(inv, logger.NewTestLogger()), credentials.NewStatic("admin", "admin"),
		RunnerConfig{Driver: "ssh"}, logger.NewTestLogger(), WithCollectorFactory(hostFactory(drivers)))

	report := runner.Run(ctx, site)

	assert.Equal(t, ActionUnchanged, report.SiteAction)
	require.Len(t, report.Outcomes, 3)

	assert.Equal(t, "leaf1", report.Outcomes[0].Device)
	assert.Equal(t, ActionCreated, report.Outcomes[0].Action)
	assert.Equal(t, StageDone, report.Outcomes[0].Stage)
	assert.True(t, report.Outcomes[0].FactsCollected)

	assert.Equal(t, ActionFailed, report.Outcomes[1].Action)
	assert.Equal(t, StageCollect, report.Outcomes[1].Stage)
	var ce *driver.ConnectionError
	assert.True(t, errors.As(report.Outcomes[1].Err, &ce))
	assert.NotEmpty(t, report.Outcomes[1].Error)

	assert.Equal(t, ActionSkipped, report.Outcomes[2].Action)
	assert.True(t, errors.Is(report.Outcomes[2].Err, ErrNoManagementAddress))

	assert.Equal(t, Summary{Total: 3, Created: 1, Failed: 1, Skipped: 1, FactsCollected: 1}, report.Summary)
	assert.True(t, report.Failed())
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestRunnerSiteFailureDoesNotAbort(t *testing.T) {
	ctrl := gomock.NewController(t)
	inv := NewMockInventory(ctrl)

	site := testSite(t, [2]string{"leaf1", "172.20.20.2"})

	inv.EXPECT().FindSite(gomock.Any(), "lab-a").Return(nil, &inventory.RequestError{Method: "GET", StatusCode: 403, Err: inventory.ErrUnexpectedStatus})
	inv.EXPECT().FindPlatform(gomock.Any(), "linux").Return(nil, nil)
	inv.EXPECT().FindDevice(gomock.Any(), gomock.Any()).Return(&inventory.Device{ID: 8, Name: "leaf1", Serial: "SN-leaf1", Status: inventory.ChoiceValue{Value: "active"}}, nil)

	runner := NewRunner(NewReconciler(inv, logger.NewTestLogger()), credentials.NewStatic("admin", "admin"),
		RunnerConfig{Driver: "ssh"}, logger.NewTestLogger(),
		WithCollectorFactory(hostFactory(map[string]driver.Driver{"172.20.20.2": healthyDriver(ctrl, "leaf1")})))

	report := runner.Run(context.Background(), site)

	assert.Equal(t, ActionFailed, report.SiteAction)
	assert.Contains(t, report.SiteError, "403")
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, ActionUnchanged, report.Outcomes[0].Action)
	assert.True(t, report.Failed())
}

func TestRunnerPreflightAndCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	inv := NewMockInventory(ctrl)

	site := testSite(t,
		[2]string{"leaf1", "172.20.20.2"},
		[2]string{"leaf2", "172.20.20.3"},
	)

	inv.EXPECT().FindSite(gomock.Any(), gomock.Any()).Return(&inventory.Site{ID: 3, Slug: "lab-a"}, nil)

	// only leaf1 has a pair, and it is unreachable
	creds := credentials.NewMap(nil)
	creds.Set("leaf1", domain.Credentials{Username: "admin", Password: "admin"})

	runner := NewRunner(NewReconciler(inv, logger.NewTestLogger()), creds,
		RunnerConfig{Driver: "ssh"}, logger.NewTestLogger(),
		WithPreflight(&fakeProber{up: map[string]bool{"172.20.20.3": true}}),
		WithCollectorFactory(hostFactory(nil)))

	report := runner.Run(context.Background(), site)

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, ActionSkipped, report.Outcomes[0].Action)
	assert.Equal(t, StagePreflight, report.Outcomes[0].Stage)
	assert.True(t, errors.Is(report.Outcomes[0].Err, ErrUnreachable))

	assert.Equal(t, ActionFailed, report.Outcomes[1].Action)
	assert.Equal(t, StageCredentials, report.Outcomes[1].Stage)
	assert.True(t, errors.Is(report.Outcomes[1].Err, credentials.ErrNoCredentials))
}

func TestRunnerParallelKeepsOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	inv := NewMockInventory(ctrl)

	names := []string{"leaf1", "leaf2", "leaf3", "leaf4", "spine1"}
	nodes := make([][2]string, 0, len(names))
	drivers := make(map[string]driver.Driver, len(names))
	for i, name := range names {
		host := fmt.Sprintf("172.20.20.%d", i+2)
		nodes = append(nodes, [2]string{name, host})
		drivers[host] = healthyDriver(ctrl, name)
	}
	site := testSite(t, nodes...)

	inv.EXPECT().FindSite(gomock.Any(), gomock.Any()).Return(&inventory.Site{ID: 3, Slug: "lab-a"}, nil)
	inv.EXPECT().FindPlatform(gomock.Any(), "linux").Return(&inventory.Platform{ID: 1, Slug: "linux"}, nil).Times(len(names))
	inv.EXPECT().FindDevice(gomock.Any(), gomock.Any()).Return(nil, nil).Times(len(names))
	inv.EXPECT().CreateDevice(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p inventory.DeviceCreate) (*inventory.Device, error) {
			return &inventory.Device{ID: 100, Name: p.Name}, nil
		}).Times(len(names))

	bus := NewEventBus()
	events := make(chan Event, 16)
	bus.Subscribe(events)

	runner := NewRunner(NewReconciler(inv, logger.NewTestLogger()), credentials.NewStatic("admin", "admin"),
		RunnerConfig{Driver: "ssh", Workers: 3}, logger.NewTestLogger(),
		WithCollectorFactory(hostFactory(drivers)), WithObserver(bus))

	report := runner.Run(context.Background(), site)

	require.Len(t, report.Outcomes, len(names))
	for i, name := range names {
		assert.Equal(t, name, report.Outcomes[i].Device)
		assert.Equal(t, ActionCreated, report.Outcomes[i].Action)
	}
	assert.False(t, report.Failed())
	assert.Equal(t, len(names), report.Summary.Created)

	assert.Len(t, events, len(names)+1)
	var last Event
	for len(events) > 0 {
		last = <-events
	}
	assert.Equal(t, EventRunCompleted, last.Type)
	assert.Same(t, report, last.Payload)
}

func TestRunnerDeviceCredentialsWin(t *testing.T) {
	ctrl := gomock.NewController(t)
	inv := NewMockInventory(ctrl)

	site := testSite(t, [2]string{"leaf1", "172.20.20.2"})
	site.Device("leaf1").SetCredentials("root", "device-secret")

	drv := driver.NewMockDriver(ctrl)
	drv.EXPECT().Name().Return("ssh").AnyTimes()
	drv.EXPECT().Connect(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, target driver.Target) error {
		assert.Equal(t, "root", target.Username)
		assert.Equal(t, "device-secret", target.Password)
		return &driver.ConnectionError{Driver: "ssh", Host: target.Host, Err: errors.New("refused")}
	})

	inv.EXPECT().FindSite(gomock.Any(), gomock.Any()).Return(&inventory.Site{ID: 3, Slug: "lab-a"}, nil)

	runner := NewRunner(NewReconciler(inv, logger.NewTestLogger()), nil,
		RunnerConfig{Driver: "ssh"}, logger.NewTestLogger(),
		WithCollectorFactory(hostFactory(map[string]driver.Driver{"172.20.20.2": drv})))

	report := runner.Run(context.Background(), site)
	assert.Equal(t, StageCollect, report.Outcomes[0].Stage)
}

func TestRunnerWithoutReconcilerOnlyCollects(t *testing.T) {
	ctrl := gomock.NewController(t)

	site := testSite(t,
		[2]string{"leaf1", "172.20.20.2/24"},
		[2]string{"leaf2", "172.20.20.3/24"},
	)

	drv := driver.NewMockDriver(ctrl)
	drv.EXPECT().Name().Return("ssh").AnyTimes()
	drv.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nil)
	drv.EXPECT().Facts(gomock.Any()).Return(driver.Facts{Hostname: "leaf1", Serial: "SN-leaf1"}, nil)
	drv.EXPECT().Interfaces(gomock.Any()).Return(nil, nil)
	drv.EXPECT().Config(gomock.Any()).Return("hostname leaf1\n", nil)
	drv.EXPECT().Close().Return(nil)

	runner := NewRunner(nil, credentials.NewStatic("admin", "admin"),
		RunnerConfig{Driver: "ssh", CollectConfig: true}, logger.NewTestLogger(),
		WithPreflight(&fakeProber{up: map[string]bool{"172.20.20.2": true}}),
		WithCollectorFactory(hostFactory(map[string]driver.Driver{"172.20.20.2": drv})))

	report := runner.Run(context.Background(), site)

	assert.Equal(t, ActionSkipped, report.SiteAction)
	assert.Equal(t, ActionCollected, report.Outcomes[0].Action)
	assert.Equal(t, StageDone, report.Outcomes[0].Stage)
	assert.Equal(t, ActionSkipped, report.Outcomes[1].Action)
	assert.Equal(t, StagePreflight, report.Outcomes[1].Stage)

	leaf1 := site.Device("leaf1")
	assert.Equal(t, "SN-leaf1", leaf1.Serial)
	assert.Equal(t, "hostname leaf1\n", leaf1.Config)
	assert.Equal(t, Summary{Total: 2, Skipped: 1, Collected: 1, FactsCollected: 1}, report.Summary)
	assert.False(t, report.Failed())
}
